package sync

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gerunddev/notionbridge/internal/blocks"
	"github.com/gerunddev/notionbridge/internal/config"
	"github.com/gerunddev/notionbridge/internal/logger"
	"github.com/gerunddev/notionbridge/internal/state"
)

const (
	pageA = "1f2e3d4c-5b6a-4978-8695-a4b3c2d1e0f9"
	pageB = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

type pushCall struct {
	pageID string
	blocks []blocks.Block
}

type fakePusher struct {
	calls []pushCall
	fail  map[string]bool
}

func (f *fakePusher) ReplaceBlocks(_ context.Context, pageID string, bs []blocks.Block) (int, error) {
	if f.fail[pageID] {
		return 0, errors.New("notion unavailable")
	}
	f.calls = append(f.calls, pushCall{pageID: pageID, blocks: bs})
	return len(bs), nil
}

func writeNote(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write note: %v", err)
	}
	return path
}

func newTestSyncer(t *testing.T) (*Syncer, *fakePusher, *config.Config) {
	t.Helper()
	cfg := &config.Config{NotesDir: t.TempDir()}
	pusher := &fakePusher{}
	return NewSyncer(cfg, state.NewState(), nil, pusher), pusher, cfg
}

func TestReadNote(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		wantPage string
		wantBody string
		wantErr  bool
	}{
		{
			name:     "front matter with id",
			content:  "---\nnotion_page: " + pageA + "\ntags: [x]\n---\n# Title\n",
			wantPage: pageA,
			wantBody: "# Title",
		},
		{
			name:     "front matter with url",
			content:  "---\nnotion_page: https://www.notion.so/Plan-1f2e3d4c5b6a49788695a4b3c2d1e0f9\n---\nbody",
			wantPage: pageA,
			wantBody: "body",
		},
		{
			name:     "no front matter",
			content:  "# Just markdown\n",
			wantBody: "# Just markdown",
		},
		{
			name:    "bad page reference",
			content: "---\nnotion_page: somewhere\n---\nbody",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeNote(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".md", tt.content)
			note, err := ReadNote(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadNote() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if note.PageID != tt.wantPage {
				t.Errorf("PageID = %q, want %q", note.PageID, tt.wantPage)
			}
			if got := strings.TrimSpace(note.Body); got != tt.wantBody {
				t.Errorf("Body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestSyncPushesPairedNotes(t *testing.T) {
	syncer, pusher, cfg := newTestSyncer(t)

	writeNote(t, cfg.NotesDir, "a.md", "---\nnotion_page: "+pageA+"\n---\n# A\n\n- one\n- two\n")
	writeNote(t, cfg.NotesDir, "sub/b.md", "---\nnotion_page: "+pageB+"\n---\nplain\n")
	writeNote(t, cfg.NotesDir, "loose.md", "no front matter\n")
	writeNote(t, cfg.NotesDir, "notes.txt", "ignored\n")

	result, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if result.FilesPushed != 2 {
		t.Errorf("FilesPushed = %d, want 2", result.FilesPushed)
	}
	if len(result.Unpaired) != 1 {
		t.Errorf("Unpaired = %v, want loose.md", result.Unpaired)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v", result.Errors)
	}
	if result.BlocksSent != 4 {
		t.Errorf("BlocksSent = %d, want 4", result.BlocksSent)
	}

	pushed := map[string]int{}
	for _, c := range pusher.calls {
		pushed[c.pageID] = len(c.blocks)
	}
	if pushed[pageA] != 3 || pushed[pageB] != 1 {
		t.Errorf("pushed = %v, want 3 blocks to A and 1 to B", pushed)
	}
}

func TestSyncSkipsUnchanged(t *testing.T) {
	syncer, pusher, cfg := newTestSyncer(t)
	path := writeNote(t, cfg.NotesDir, "a.md", "---\nnotion_page: "+pageA+"\n---\nbody\n")

	if _, err := syncer.Sync(context.Background()); err != nil {
		t.Fatalf("first Sync() error = %v", err)
	}
	result, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}
	if result.FilesPushed != 0 || len(result.Unchanged) != 1 {
		t.Errorf("second sync pushed %d, unchanged %v", result.FilesPushed, result.Unchanged)
	}

	// Edit with a distinct mtime
	writeNote(t, cfg.NotesDir, "a.md", "---\nnotion_page: "+pageA+"\n---\nedited\n")
	later := time.Now().Add(10 * time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	result, err = syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("third Sync() error = %v", err)
	}
	if result.FilesPushed != 1 {
		t.Errorf("edited note pushed %d times, want 1", result.FilesPushed)
	}
	if len(pusher.calls) != 2 {
		t.Errorf("pusher called %d times, want 2", len(pusher.calls))
	}
}

func TestSyncCollectsErrors(t *testing.T) {
	syncer, pusher, cfg := newTestSyncer(t)
	pusher.fail = map[string]bool{pageB: true}

	writeNote(t, cfg.NotesDir, "ok.md", "---\nnotion_page: "+pageA+"\n---\nfine\n")
	writeNote(t, cfg.NotesDir, "down.md", "---\nnotion_page: "+pageB+"\n---\nfine\n")
	writeNote(t, cfg.NotesDir, "cols.md", "---\nnotion_page: "+pageA+"\n---\n::: columns\n::: column\nonly\n:::\n:::\n")

	var logBuf bytes.Buffer
	syncer.SetLogger(logger.New(&logBuf))

	result, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if len(result.Errors) != 2 {
		t.Errorf("Errors = %v, want 2", result.Errors)
	}
	if result.FilesPushed != 1 {
		t.Errorf("FilesPushed = %d, want 1", result.FilesPushed)
	}

	logOutput := logBuf.String()
	for _, want := range []string{"sync completed", "conversion failed", "file error"} {
		if !strings.Contains(logOutput, want) {
			t.Errorf("Expected %q in log, got: %s", want, logOutput)
		}
	}
}

func TestSyncStopsOnCancel(t *testing.T) {
	syncer, pusher, cfg := newTestSyncer(t)
	writeNote(t, cfg.NotesDir, "a.md", "---\nnotion_page: "+pageA+"\n---\nbody\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := syncer.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if len(pusher.calls) != 0 {
		t.Errorf("pusher called %d times after cancel", len(pusher.calls))
	}
	if len(result.Errors) != 1 || !errors.Is(result.Errors[0], context.Canceled) {
		t.Errorf("Errors = %v, want context.Canceled", result.Errors)
	}
}

func TestSyncFile(t *testing.T) {
	syncer, pusher, cfg := newTestSyncer(t)
	path := writeNote(t, cfg.NotesDir, "a.md", "---\nnotion_page: "+pageA+"\n---\nbody\n")

	result, err := syncer.SyncFile(context.Background(), path)
	if err != nil {
		t.Fatalf("SyncFile() error = %v", err)
	}
	if result.FilesPushed != 1 || len(pusher.calls) != 1 {
		t.Errorf("SyncFile pushed %d, calls %d", result.FilesPushed, len(pusher.calls))
	}
}

func TestScanDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	for _, name := range []string{
		"file1.md",
		"file2.md",
		"file.txt",
		"subdir/file3.md",
		"drafts/wip.md",
		"scratch.tmp.md",
		".obsidian/cache.md",
	} {
		writeNote(t, tmpDir, name, "test")
	}

	all, err := ScanDirectory(tmpDir, ".md", []string{})
	if err != nil {
		t.Fatalf("ScanDirectory failed: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("Expected 5 .md files, got %d: %v", len(all), all)
	}

	filtered, err := ScanDirectory(tmpDir, ".md", []string{"drafts", "*.tmp.md"})
	if err != nil {
		t.Fatalf("ScanDirectory failed: %v", err)
	}
	if len(filtered) != 3 {
		t.Errorf("Expected 3 .md files after excludes, got %d: %v", len(filtered), filtered)
	}
}

func TestSyncResultString(t *testing.T) {
	r := &SyncResult{FilesPushed: 2, Unchanged: []string{"a"}, StartTime: time.Now()}
	r.EndTime = r.StartTime.Add(1500 * time.Millisecond)

	got := r.String()
	if !strings.Contains(got, "2 files pushed") || !strings.Contains(got, "1 unchanged") {
		t.Errorf("String() = %q", got)
	}
}
