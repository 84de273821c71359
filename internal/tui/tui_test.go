package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gerunddev/notionbridge/internal/blocks"
	"github.com/gerunddev/notionbridge/internal/convert"
)

func parse(t *testing.T, md string) []blocks.Block {
	t.Helper()
	bs, err := convert.MarkdownToBlocks(md)
	if err != nil {
		t.Fatalf("MarkdownToBlocks(%q) error = %v", md, err)
	}
	return bs
}

func TestFlatten(t *testing.T) {
	bs := parse(t, "# Title\n\n- parent\n    - child\n\n| a | b |\n| --- | --- |\n| 1 | 2 |")
	rows := Flatten(bs)

	want := []struct {
		depth int
		typ   blocks.Type
	}{
		{0, blocks.TypeHeading1},
		{0, blocks.TypeBulletedListItem},
		{1, blocks.TypeBulletedListItem},
		{0, blocks.TypeTable},
		{1, blocks.TypeTableRow},
		{1, blocks.TypeTableRow},
	}
	if len(rows) != len(want) {
		t.Fatalf("Flatten() returned %d rows, want %d", len(rows), len(want))
	}
	for i, w := range want {
		if rows[i].Depth != w.depth || rows[i].Type != w.typ {
			t.Errorf("row %d = %d/%s, want %d/%s", i, rows[i].Depth, rows[i].Type, w.depth, w.typ)
		}
	}
	if rows[1].Children != 1 {
		t.Errorf("parent children = %d, want 1", rows[1].Children)
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		md   string
		want string
	}{
		{"**bold** and _it_", "bold and it"},
		{"```go\nx := 1\ny := 2\n```", "x := 1 y := 2"},
		{"$$E = mc^2$$", "E = mc^2"},
		{"[bookmark](https://example.com)", "https://example.com"},
		{"[image](https://example.com/a.png)", "https://example.com/a.png"},
	}
	for _, tt := range tests {
		bs := parse(t, tt.md)
		if got := Summary(bs[0]); got != tt.want {
			t.Errorf("Summary(%q) = %q, want %q", tt.md, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"a longer line", 8, "a longe…"},
		{"日本語テキスト", 7, "日本語…"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestBrowseEnterShowsMarkdown(t *testing.T) {
	bs := parse(t, "first\n\nsecond")
	var rendered []blocks.Block
	render := func(sel []blocks.Block) string {
		rendered = sel
		return convert.BlocksToMarkdown(sel)
	}

	var model tea.Model = InitBrowseModel("test", bs, render)
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if len(rendered) != 1 || Summary(rendered[0]) != "second" {
		t.Fatalf("render called with %+v, want the second block", rendered)
	}
	if view := model.View(); !strings.Contains(view, "second") {
		t.Errorf("View() after enter does not show the block:\n%s", view)
	}

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if view := model.View(); !strings.Contains(view, "Blocks: 2") {
		t.Errorf("View() after esc should list blocks:\n%s", view)
	}
}

func TestBrowseQuit(t *testing.T) {
	var model tea.Model = InitBrowseModel("test", nil, nil)
	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestTaskModelCompletes(t *testing.T) {
	var model tea.Model = InitTaskModel("Pushing", nil)
	if !strings.Contains(model.View(), "Pushing") {
		t.Errorf("View() = %q, want status", model.View())
	}

	model, _ = model.Update(taskDoneMsg{summary: "Pushed 3 blocks"})
	if !strings.Contains(model.View(), "Pushed 3 blocks") {
		t.Errorf("View() = %q, want summary", model.View())
	}

	model, _ = InitTaskModel("Pushing", nil).Update(taskDoneMsg{err: errors.New("boom")})
	if !strings.Contains(model.View(), "boom") {
		t.Errorf("View() = %q, want error", model.View())
	}
}

func TestRenderStatus(t *testing.T) {
	out := RenderStatus(StatusData{
		ConfigPath:   "/cfg/config.json",
		NotesDir:     "/notes",
		TrackedNotes: 4,
		LastSync:     time.Now().Add(-time.Minute),
		FilesSynced:  2,
		LogLines:     []string{"2025-01-01 10:00:00 INFO sync completed files_synced=2", ""},
	})

	for _, want := range []string{"/cfg/config.json", "/notes", "not set", "(2 files)", "sync completed"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderStatus() missing %q:\n%s", want, out)
		}
	}
}
