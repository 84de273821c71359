package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testPage = "12345678-1234-1234-1234-123456789abc"

func TestNewState(t *testing.T) {
	s := NewState()

	if s.Files == nil {
		t.Error("Files map should be initialized")
	}
	if len(s.Files) != 0 {
		t.Error("Files map should be empty")
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	statePath := filepath.Join(tmpDir, "state.json")

	state := NewState()
	state.Files["notes/test.md"] = &FileState{
		MTime:    123456789,
		Hash:     "sha256:abc123",
		PageID:   testPage,
		PushedAt: 1700000000,
	}

	if err := state.Save(statePath); err != nil {
		t.Fatalf("Failed to save state: %v", err)
	}

	loaded, err := Load(statePath)
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}

	if len(loaded.Files) != 1 {
		t.Errorf("Expected 1 file, got %d", len(loaded.Files))
	}

	fileState := loaded.Files["notes/test.md"]
	if fileState == nil {
		t.Fatal("File state not found")
	}
	if fileState.MTime != 123456789 {
		t.Errorf("MTime mismatch: got %d, want 123456789", fileState.MTime)
	}
	if fileState.Hash != "sha256:abc123" {
		t.Errorf("Hash mismatch: got %s, want sha256:abc123", fileState.Hash)
	}
	if fileState.PageID != testPage {
		t.Errorf("PageID mismatch: got %s, want %s", fileState.PageID, testPage)
	}
	if got := loaded.LastPushed("notes/test.md"); got.Unix() != 1700000000 {
		t.Errorf("LastPushed = %v, want unix 1700000000", got)
	}
}

func TestLoadNonExistent(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "nonexistent.json")

	// Should return empty state, not error
	state, err := Load(statePath)
	if err != nil {
		t.Fatalf("Load should not error on missing file: %v", err)
	}
	if state == nil || len(state.Files) != 0 {
		t.Error("State should be empty")
	}
}

func TestLoadCorrupt(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(statePath, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(statePath); err == nil {
		t.Error("Load should fail on a corrupt state file")
	}
}

func TestComputeHash(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.md")

	if err := os.WriteFile(testFile, []byte("Hello, World!"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	hash, err := ComputeHash(testFile)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}
	if hash[:7] != "sha256:" {
		t.Errorf("Hash should start with 'sha256:', got: %s", hash)
	}

	hash2, err := ComputeHash(testFile)
	if err != nil {
		t.Fatalf("Second ComputeHash failed: %v", err)
	}
	if hash != hash2 {
		t.Error("Hash should be deterministic")
	}

	if err := os.WriteFile(testFile, []byte("Different content"), 0644); err != nil {
		t.Fatalf("Failed to update test file: %v", err)
	}
	hash3, err := ComputeHash(testFile)
	if err != nil {
		t.Fatalf("Third ComputeHash failed: %v", err)
	}
	if hash == hash3 {
		t.Error("Hash should change when content changes")
	}
}

func TestHasChanged(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.md")

	if err := os.WriteFile(testFile, []byte("Initial content"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	state := NewState()

	// New file - should be changed
	changed, err := state.HasChanged(testFile, testPage)
	if err != nil {
		t.Fatalf("HasChanged failed: %v", err)
	}
	if !changed {
		t.Error("New file should be marked as changed")
	}

	if err := state.Update(testFile, testPage); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	changed, err = state.HasChanged(testFile, testPage)
	if err != nil {
		t.Fatalf("HasChanged failed: %v", err)
	}
	if changed {
		t.Error("Unchanged file should not be marked as changed")
	}

	// Same content, different target page
	changed, err = state.HasChanged(testFile, "another-page")
	if err != nil {
		t.Fatalf("HasChanged failed: %v", err)
	}
	if !changed {
		t.Error("File paired with a new page should be marked as changed")
	}

	// Touch file (change mtime but not content)
	newTime := time.Now().Add(5 * time.Second)
	if err := os.Chtimes(testFile, newTime, newTime); err != nil {
		t.Fatalf("Failed to touch file: %v", err)
	}

	changed, err = state.HasChanged(testFile, testPage)
	if err != nil {
		t.Fatalf("HasChanged failed after touch: %v", err)
	}
	if changed {
		t.Error("File with only mtime change should not be marked as changed")
	}

	// Actually change content, with a distinct mtime
	if err := os.WriteFile(testFile, []byte("New content"), 0644); err != nil {
		t.Fatalf("Failed to update file: %v", err)
	}
	later := time.Now().Add(10 * time.Second)
	if err := os.Chtimes(testFile, later, later); err != nil {
		t.Fatalf("Failed to touch file: %v", err)
	}

	changed, err = state.HasChanged(testFile, testPage)
	if err != nil {
		t.Fatalf("HasChanged failed after content change: %v", err)
	}
	if !changed {
		t.Error("File with content change should be marked as changed")
	}
}

func TestHasChangedMissingFile(t *testing.T) {
	state := NewState()
	if _, err := state.HasChanged(filepath.Join(t.TempDir(), "gone.md"), testPage); err == nil {
		t.Error("HasChanged should fail for a missing file")
	}
}

func TestUpdateAndForget(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.md")
	if err := os.WriteFile(testFile, []byte("Test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	state := NewState()
	if err := state.Update(testFile, testPage); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fileState := state.Files[testFile]
	if fileState == nil {
		t.Fatal("File state not found after update")
	}
	if fileState.MTime == 0 || fileState.Hash == "" || fileState.PushedAt == 0 {
		t.Errorf("incomplete file state: %+v", fileState)
	}
	if got := state.PageID(testFile); got != testPage {
		t.Errorf("PageID() = %q, want %q", got, testPage)
	}

	state.Forget(testFile)
	if got := state.PageID(testFile); got != "" {
		t.Errorf("PageID() after Forget = %q, want empty", got)
	}
	if !state.LastPushed(testFile).IsZero() {
		t.Error("LastPushed after Forget should be zero")
	}
}

func TestPathsSorted(t *testing.T) {
	state := NewState()
	for _, p := range []string{"b.md", "c.md", "a.md"} {
		state.Files[p] = &FileState{}
	}
	got := state.Paths()
	if len(got) != 3 || got[0] != "a.md" || got[2] != "c.md" {
		t.Errorf("Paths() = %v, want sorted", got)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "nested", "dir", "state.json")

	state := NewState()
	state.Files["test.md"] = &FileState{MTime: 123, Hash: "sha256:test"}

	if err := state.Save(statePath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(statePath); os.IsNotExist(err) {
		t.Error("State file was not created")
	}
}
