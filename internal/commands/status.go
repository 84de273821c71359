package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/gerunddev/notionbridge/internal/blocks"
	"github.com/gerunddev/notionbridge/internal/config"
	"github.com/gerunddev/notionbridge/internal/schema"
	"github.com/gerunddev/notionbridge/internal/state"
	"github.com/gerunddev/notionbridge/internal/styles"
	"github.com/gerunddev/notionbridge/internal/sync"
	"github.com/gerunddev/notionbridge/internal/tui"
)

// Browse shows the block tree of a note, a block JSON file or a Notion page
func Browse(args []string) {
	if len(args) != 1 {
		usage("browse <file.md|blocks.json|page-id|url>")
	}

	cfg := loadConfig()
	log, cleanup := setupLogger(cfg)
	defer cleanup()

	conv := offlineConverter(cfg, log)
	var bs []blocks.Block
	var err error

	switch {
	case strings.HasSuffix(args[0], ".json"):
		var data string
		data, err = readInput(args[0])
		if err == nil {
			bs, err = schema.Decode([]byte(data))
		}
	case fileExists(args[0]):
		var note *sync.Note
		note, err = sync.ReadNote(args[0])
		if err == nil {
			bs, err = conv.MarkdownToBlocks(note.Body)
		}
	default:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		bs, _, err = pullPage(ctx, cfg, log, args[0])
	}
	if err != nil {
		fail("Cannot load blocks", err)
	}

	render := func(sel []blocks.Block) string {
		return conv.BlocksToMarkdown(sel)
	}
	if err := tui.Browse(filepath.Base(args[0]), bs, render); err != nil {
		fail("Error", err)
	}
}

// Status shows configuration, push state and recent log activity
func Status() {
	cfg := loadConfig()

	statePath := config.StateFilePath()
	st, err := state.Load(statePath)
	if err != nil {
		fail("Error loading state", err)
	}

	var lastPush time.Time
	for _, path := range st.Paths() {
		if t := st.LastPushed(path); t.After(lastPush) {
			lastPush = t
		}
	}

	data := tui.StatusData{
		ConfigPath:   config.ConfigPath(),
		StatePath:    statePath,
		NotesDir:     cfg.NotesDir,
		LogFile:      cfg.LogFile,
		TokenSet:     cfg.RequireToken() == nil,
		TrackedNotes: len(st.Files),
		LastPush:     lastPush,
	}
	if fileExists(cfg.LogFile) {
		data.LogLines, data.LastSync, data.FilesSynced = ParseLogFile(cfg.LogFile, 10)
	}

	fmt.Print(tui.RenderStatus(data))
}

// Config prints the effective configuration with the token masked
func Config() {
	cfg := loadConfig()

	token := styles.WarningStyle.Render("not set")
	if cfg.NotionToken != "" {
		token = maskToken(cfg.NotionToken)
	}

	fmt.Println(styles.TitleStyle.Render("notionbridge config"))
	fmt.Println()
	field := func(label, value string) {
		fmt.Println(styles.DimStyle.Render(fmt.Sprintf("  %-16s", label)) + value)
	}
	field("file", config.ConfigPath())
	field("notion_token", token)
	field("notes_dir", cfg.NotesDir)
	field("log_file", cfg.LogFile)
	field("log_level", cfg.LogLevel)
	field("aliases_file", cfg.AliasesFile)
	field("page_size", fmt.Sprintf("%d", cfg.PageSize))
	field("request_timeout", cfg.RequestTimeout.String())
	field("exclude_patterns", strings.Join(cfg.ExcludePatterns, ", "))
}

// Init writes the default configuration file if none exists
func Init() {
	path := config.ConfigPath()
	if fileExists(path) {
		fmt.Println(styles.DimStyle.Render("Config already exists at " + path))
		return
	}
	if err := config.DefaultConfig().Save(); err != nil {
		fail("Cannot write config", err)
	}
	fmt.Println(styles.SuccessStyle.Render("✓ Wrote " + path))
	fmt.Println(styles.DimStyle.Render("  Set notion_token there or export " + config.TokenEnv))
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
