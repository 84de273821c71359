package sync

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/gerunddev/notionbridge/internal/blocks"
	"github.com/gerunddev/notionbridge/internal/config"
	"github.com/gerunddev/notionbridge/internal/convert"
	"github.com/gerunddev/notionbridge/internal/logger"
	"github.com/gerunddev/notionbridge/internal/notion"
	"github.com/gerunddev/notionbridge/internal/state"
)

// Pusher replaces the content of a Notion page with blocks
type Pusher interface {
	ReplaceBlocks(ctx context.Context, pageID string, bs []blocks.Block) (int, error)
}

// Syncer pushes changed Markdown notes to the pages named in their front
// matter
type Syncer struct {
	config *config.Config
	state  *state.State
	conv   *convert.Converter
	pusher Pusher
	logger *logger.Logger
}

// NewSyncer creates a new syncer instance
func NewSyncer(cfg *config.Config, st *state.State, conv *convert.Converter, pusher Pusher) *Syncer {
	if conv == nil {
		conv = convert.New(nil)
	}
	return &Syncer{
		config: cfg,
		state:  st,
		conv:   conv,
		pusher: pusher,
		logger: logger.Discard(),
	}
}

// SetLogger sets the logger for the syncer
func (s *Syncer) SetLogger(l *logger.Logger) {
	s.logger = l
}

// SyncResult represents the result of a sync operation
type SyncResult struct {
	FilesPushed int
	BlocksSent  int
	Unchanged   []string
	Unpaired    []string
	Errors      []error
	StartTime   time.Time
	EndTime     time.Time
}

// Note is a Markdown file with its front matter split off
type Note struct {
	Path   string
	PageID string
	Body   string
}

type noteMeta struct {
	NotionPage string `yaml:"notion_page" json:"notion_page" toml:"notion_page"`
}

// ReadNote reads a note and the notion_page key of its front matter. A note
// without front matter has an empty PageID and its whole content as Body.
func ReadNote(path string) (*Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var meta noteMeta
	rest, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return nil, fmt.Errorf("failed to read front matter of %s: %w", path, err)
	}

	note := &Note{Path: path, Body: string(rest)}
	if ref := strings.TrimSpace(meta.NotionPage); ref != "" {
		id, err := notion.ParsePageID(ref)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		note.PageID = id
	}
	return note, nil
}

// Sync pushes every changed, paired note under notes_dir. Per-file failures
// are collected in the result; only scan failures abort the run.
func (s *Syncer) Sync(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{
		StartTime: time.Now(),
	}
	s.logger.SyncStarted(s.config.NotesDir)

	files, err := ScanDirectory(s.config.NotesDir, ".md", s.config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.config.NotesDir, err)
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, err)
			break
		}
		s.syncFile(ctx, path, result)
	}

	result.EndTime = time.Now()
	s.logger.SyncCompleted(result.FilesPushed, len(result.Errors), result.EndTime.Sub(result.StartTime))
	return result, nil
}

// SyncFile pushes one note if it changed since its last push
func (s *Syncer) SyncFile(ctx context.Context, path string) (*SyncResult, error) {
	result := &SyncResult{StartTime: time.Now()}
	s.syncFile(ctx, path, result)
	result.EndTime = time.Now()
	if len(result.Errors) > 0 {
		return result, result.Errors[0]
	}
	return result, nil
}

func (s *Syncer) syncFile(ctx context.Context, path string, result *SyncResult) {
	note, err := ReadNote(path)
	if err != nil {
		s.logger.FileError(path, err)
		result.Errors = append(result.Errors, err)
		return
	}
	if note.PageID == "" {
		s.logger.PushSkipped(path, "no notion_page")
		result.Unpaired = append(result.Unpaired, path)
		return
	}

	changed, err := s.state.HasChanged(path, note.PageID)
	if err != nil {
		s.logger.FileError(path, err)
		result.Errors = append(result.Errors, err)
		return
	}
	if !changed {
		s.logger.PushSkipped(path, "unchanged")
		result.Unchanged = append(result.Unchanged, path)
		return
	}

	start := time.Now()
	s.logger.PushStarted(note.PageID, path)

	bs, err := s.conv.MarkdownToBlocks(note.Body)
	if err != nil {
		s.logger.ConversionError(path, note.PageID, err)
		result.Errors = append(result.Errors, fmt.Errorf("%s: %w", path, err))
		return
	}

	n, err := s.pusher.ReplaceBlocks(ctx, note.PageID, bs)
	if err != nil {
		s.logger.FileError(path, err)
		result.Errors = append(result.Errors, fmt.Errorf("%s: %w", path, err))
		return
	}

	if err := s.state.Update(path, note.PageID); err != nil {
		s.logger.StateError("update", err)
		result.Errors = append(result.Errors, err)
		return
	}

	s.logger.PushCompleted(note.PageID, n, time.Since(start))
	result.FilesPushed++
	result.BlocksSent += n
}

// ScanDirectory scans a directory for files with given extension, skipping
// hidden directories and paths matching any exclude pattern. Patterns match
// the path relative to dir or the base name.
func ScanDirectory(dir string, ext string, excludePatterns []string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}

		if info.IsDir() {
			if path != dir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			if path != dir && excluded(rel, info.Name(), excludePatterns) {
				return filepath.SkipDir
			}
			return nil
		}

		if filepath.Ext(path) == ext && !excluded(rel, info.Name(), excludePatterns) {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

func excluded(rel, base string, patterns []string) bool {
	rel = filepath.ToSlash(rel)
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}

// String returns a human-readable summary of the sync result
func (r *SyncResult) String() string {
	duration := r.EndTime.Sub(r.StartTime)
	return fmt.Sprintf(
		"Sync complete: %d files pushed, %d unchanged, %d unpaired, %d errors (took %v)",
		r.FilesPushed,
		len(r.Unchanged),
		len(r.Unpaired),
		len(r.Errors),
		duration.Round(time.Millisecond),
	)
}
