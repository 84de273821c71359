package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// FileState records the last push of one Markdown note
type FileState struct {
	MTime    int64  `json:"mtime"`
	Hash     string `json:"hash"`
	PageID   string `json:"page_id"`
	PushedAt int64  `json:"pushed_at,omitempty"`
}

// State maps note paths to their last pushed version
type State struct {
	Files map[string]*FileState `json:"files"`
}

// NewState creates a new empty state
func NewState() *State {
	return &State{
		Files: make(map[string]*FileState),
	}
}

// Load reads state from the state file
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	if state.Files == nil {
		state.Files = make(map[string]*FileState)
	}

	return &state, nil
}

// Save writes state to the state file
func (s *State) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// ComputeHash computes SHA256 hash of a file
func ComputeHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", h.Sum(nil)), nil
}

// HasChanged reports whether path differs from its last push, or was last
// pushed to a different page. The mtime is checked before hashing.
func (s *State) HasChanged(path, pageID string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	fileState, exists := s.Files[path]
	if !exists || fileState.PageID != pageID {
		return true, nil
	}

	if info.ModTime().Unix() == fileState.MTime {
		return false, nil
	}

	hash, err := ComputeHash(path)
	if err != nil {
		return false, err
	}

	return hash != fileState.Hash, nil
}

// Update records a successful push of path to pageID
func (s *State) Update(path, pageID string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	hash, err := ComputeHash(path)
	if err != nil {
		return err
	}

	s.Files[path] = &FileState{
		MTime:    info.ModTime().Unix(),
		Hash:     hash,
		PageID:   pageID,
		PushedAt: time.Now().Unix(),
	}

	return nil
}

// Forget drops the entry for path
func (s *State) Forget(path string) {
	delete(s.Files, path)
}

// PageID returns the page path was last pushed to
func (s *State) PageID(path string) string {
	if fileState, exists := s.Files[path]; exists {
		return fileState.PageID
	}
	return ""
}

// LastPushed returns when path was last pushed, or the zero time
func (s *State) LastPushed(path string) time.Time {
	if fileState, exists := s.Files[path]; exists && fileState.PushedAt != 0 {
		return time.Unix(fileState.PushedAt, 0)
	}
	return time.Time{}
}

// Paths returns the tracked paths in sorted order
func (s *State) Paths() []string {
	paths := make([]string, 0, len(s.Files))
	for p := range s.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
