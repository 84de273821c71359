package commands

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gerunddev/notionbridge/internal/config"
	"github.com/gerunddev/notionbridge/internal/convert"
)

func TestFlagValue(t *testing.T) {
	tests := []struct {
		args      []string
		wantValue string
		wantRest  []string
	}{
		{[]string{"a.md", "--out", "b.json"}, "b.json", []string{"a.md"}},
		{[]string{"--out=b.json", "a.md"}, "b.json", []string{"a.md"}},
		{[]string{"a.md"}, "", []string{"a.md"}},
		{[]string{"a.md", "--out"}, "", []string{"a.md", "--out"}},
	}
	for _, tt := range tests {
		value, rest := flagValue(tt.args, "--out")
		if value != tt.wantValue || !reflect.DeepEqual(rest, tt.wantRest) {
			t.Errorf("flagValue(%q) = %q, %q, want %q, %q", tt.args, value, rest, tt.wantValue, tt.wantRest)
		}
	}
}

func TestHasFlag(t *testing.T) {
	found, rest := hasFlag([]string{"page", "--replace", "a.md"}, "--replace")
	if !found || !reflect.DeepEqual(rest, []string{"page", "a.md"}) {
		t.Errorf("hasFlag() = %v, %q", found, rest)
	}
	found, _ = hasFlag([]string{"page"}, "--replace")
	if found {
		t.Error("hasFlag() found a missing flag")
	}
}

func TestParseLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notionbridge.log")
	content := "2025-11-27 14:10:00 INFO sync started notes_dir=/notes\n" +
		"2025-11-27 14:10:02 INFO sync completed files_synced=3 errors=0\n" +
		"2025-11-27 14:11:00 INFO push started page_id=x\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	lines, lastSync, files := ParseLogFile(path, 2)
	if len(lines) != 2 {
		t.Errorf("got %d lines, want 2", len(lines))
	}
	if files != 3 {
		t.Errorf("files_synced = %d, want 3", files)
	}
	if lastSync.IsZero() || lastSync.Minute() != 10 || lastSync.Second() != 2 {
		t.Errorf("lastSync = %v", lastSync)
	}
}

func TestParseLogFileMissing(t *testing.T) {
	lines, lastSync, files := ParseLogFile(filepath.Join(t.TempDir(), "none.log"), 10)
	if len(lines) != 1 || !lastSync.IsZero() || files != 0 {
		t.Errorf("ParseLogFile() = %q, %v, %d", lines, lastSync, files)
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"secret_abcdefgh1234", "secr***********1234"},
		{"short", "*****"},
	}
	for _, tt := range tests {
		if got := maskToken(tt.in); got != tt.want {
			t.Errorf("maskToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsNote(t *testing.T) {
	cfg := &config.Config{NotesDir: "/notes", ExcludePatterns: []string{"*.tmp.md", "drafts/*"}}
	tests := []struct {
		path string
		want bool
	}{
		{"/notes/a.md", true},
		{"/notes/sub/b.md", true},
		{"/notes/a.txt", false},
		{"/notes/scratch.tmp.md", false},
		{"/notes/drafts/wip.md", false},
	}
	for _, tt := range tests {
		if got := isNote(cfg, tt.path); got != tt.want {
			t.Errorf("isNote(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestDryRunPusherCountsNestedBlocks(t *testing.T) {
	bs, err := convert.MarkdownToBlocks("- parent\n    - child\n\nafter")
	if err != nil {
		t.Fatal(err)
	}
	p := &dryRunPusher{pages: map[string]int{}}
	n, err := p.ReplaceBlocks(context.Background(), "page", bs)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 || p.pages["page"] != 3 {
		t.Errorf("ReplaceBlocks() = %d, pages = %v, want 3", n, p.pages)
	}
}

func TestWriteOutputAddsNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	if err := writeOutput(path, "text"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "text\n" {
		t.Errorf("wrote %q, want %q", data, "text\n")
	}
}

func TestServiceFor(t *testing.T) {
	tests := []struct {
		goos     string
		wantPath string
		wantExec string
	}{
		{"linux", "/home/u/.config/systemd/user/notionbridge.service", "ExecStart=/bin/notionbridge watch"},
		{"darwin", "/home/u/Library/LaunchAgents/com.notionbridge.plist", "<string>watch</string>"},
	}
	for _, tt := range tests {
		svc, ok := serviceFor(tt.goos, "/home/u", "/bin/notionbridge", "/tmp/nb.log")
		if !ok {
			t.Fatalf("serviceFor(%q) not supported", tt.goos)
		}
		if svc.Path != tt.wantPath {
			t.Errorf("serviceFor(%q).Path = %q, want %q", tt.goos, svc.Path, tt.wantPath)
		}
		if !strings.Contains(svc.Content, tt.wantExec) {
			t.Errorf("serviceFor(%q).Content missing %q:\n%s", tt.goos, tt.wantExec, svc.Content)
		}
		if len(svc.Enable) == 0 || len(svc.Disable) == 0 {
			t.Errorf("serviceFor(%q) has no enable/disable commands", tt.goos)
		}
	}

	if _, ok := serviceFor("plan9", "/home/u", "/bin/notionbridge", ""); ok {
		t.Error("serviceFor(plan9) should be unsupported")
	}
}
