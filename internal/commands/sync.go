package commands

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gerunddev/notionbridge/internal/blocks"
	"github.com/gerunddev/notionbridge/internal/config"
	"github.com/gerunddev/notionbridge/internal/convert"
	"github.com/gerunddev/notionbridge/internal/logger"
	"github.com/gerunddev/notionbridge/internal/state"
	"github.com/gerunddev/notionbridge/internal/styles"
	"github.com/gerunddev/notionbridge/internal/sync"
)

// debounce is how long a note must stay quiet before watch pushes it
const debounce = 500 * time.Millisecond

// dryRunPusher counts blocks instead of sending them
type dryRunPusher struct {
	pages map[string]int
}

func (d *dryRunPusher) ReplaceBlocks(_ context.Context, pageID string, bs []blocks.Block) (int, error) {
	n := 0
	for _, b := range bs {
		n += countTree(b)
	}
	d.pages[pageID] += n
	return n, nil
}

func countTree(b blocks.Block) int {
	n := 1
	for _, c := range b.ChildBlocks() {
		n += countTree(c)
	}
	return n
}

// newSyncer wires a syncer to the push state and, unless dryRun is set,
// to the Notion API
func newSyncer(ctx context.Context, cfg *config.Config, log *logger.Logger, st *state.State, dryRun bool) *sync.Syncer {
	a := aliases(cfg, log)
	if dryRun {
		s := sync.NewSyncer(cfg, st, convert.NewWithResolver(a), &dryRunPusher{pages: map[string]int{}})
		s.SetLogger(log)
		return s
	}

	client := notionClient(cfg, log)
	conv := convert.NewWithResolver(onlineResolver(client.Resolver(ctx, nil), a))
	s := sync.NewSyncer(cfg, st, conv, client)
	s.SetLogger(log)
	return s
}

// Sync pushes every changed note that names a Notion page
func Sync(args []string) {
	dryRun, _ := hasFlag(args, "--dry-run")

	cfg := loadConfig()
	log, cleanup := setupLogger(cfg)
	defer cleanup()

	statePath := config.StateFilePath()
	st, err := state.Load(statePath)
	if err != nil {
		fail("Error loading state", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if dryRun {
		fmt.Println(styles.WarningStyle.Render("DRY RUN: nothing is sent to Notion"))
		fmt.Println()
	}

	syncer := newSyncer(ctx, cfg, log, st, dryRun)
	result, err := syncer.Sync(ctx)
	if err != nil {
		fail("Sync failed", err)
	}

	for _, path := range result.Unpaired {
		fmt.Println(styles.DimStyle.Render("  - " + relTo(cfg.NotesDir, path) + " (no notion_page)"))
	}
	for _, e := range result.Errors {
		fmt.Println(styles.ErrorStyle.Render("  ✗ " + e.Error()))
	}

	if !dryRun {
		if err := st.Save(statePath); err != nil {
			log.StateError("save", err)
			fail("Error saving state", err)
		}
	}

	summary := result.String()
	if len(result.Errors) > 0 {
		fmt.Println(styles.WarningStyle.Render(summary))
		os.Exit(1)
	}
	fmt.Println(styles.SuccessStyle.Render("✓ " + summary))
}

// Watch pushes notes as they are saved until interrupted
func Watch(args []string) {
	cfg := loadConfig()
	log, cleanup := setupLogger(cfg, os.Stderr)
	defer cleanup()

	statePath := config.StateFilePath()
	st, err := state.Load(statePath)
	if err != nil {
		fail("Error loading state", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncer := newSyncer(ctx, cfg, log, st, false)

	// Catch up on edits made while nothing was watching
	if result, err := syncer.Sync(ctx); err != nil {
		log.Error("initial sync failed", "error", err)
	} else if err := st.Save(statePath); err != nil {
		log.StateError("save", err)
	} else {
		log.Info("initial sync completed", "files_synced", result.FilesPushed, "errors", len(result.Errors))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fail("Cannot watch notes", err)
	}
	defer watcher.Close()

	if err := watchTree(watcher, cfg); err != nil {
		fail("Cannot watch notes", err)
	}
	log.Info("watching", "notes_dir", cfg.NotesDir)

	pending := map[string]time.Time{}
	ticker := time.NewTicker(debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := st.Save(statePath); err != nil {
				log.StateError("save", err)
			}
			log.Info("watch stopped")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchTree(watcher, &config.Config{NotesDir: event.Name, ExcludePatterns: cfg.ExcludePatterns}); err != nil {
						log.FileError(event.Name, err)
					}
					continue
				}
			}
			if !isNote(cfg, event.Name) {
				continue
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				delete(pending, event.Name)
				st.Forget(event.Name)
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending[event.Name] = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Error("watch error", "error", err)

		case now := <-ticker.C:
			pushed := false
			for path, last := range pending {
				if now.Sub(last) < debounce {
					continue
				}
				delete(pending, path)
				result, err := syncer.SyncFile(ctx, path)
				if err != nil {
					continue
				}
				pushed = pushed || result.FilesPushed > 0
			}
			if pushed {
				if err := st.Save(statePath); err != nil {
					log.StateError("save", err)
				}
			}
		}
	}
}

// watchTree adds the notes directory and its visible, non-excluded
// subdirectories to the watcher
func watchTree(w *fsnotify.Watcher, cfg *config.Config) error {
	return filepath.WalkDir(cfg.NotesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != cfg.NotesDir {
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			for _, p := range cfg.ExcludePatterns {
				if ok, _ := filepath.Match(p, d.Name()); ok {
					return filepath.SkipDir
				}
			}
		}
		return w.Add(path)
	})
}

func isNote(cfg *config.Config, path string) bool {
	if filepath.Ext(path) != ".md" {
		return false
	}
	for _, p := range cfg.ExcludePatterns {
		if ok, _ := filepath.Match(p, filepath.Base(path)); ok {
			return false
		}
		if ok, _ := filepath.Match(p, filepath.ToSlash(relTo(cfg.NotesDir, path))); ok {
			return false
		}
	}
	return true
}

func relTo(dir, path string) string {
	if rel, err := filepath.Rel(dir, path); err == nil {
		return rel
	}
	return path
}
