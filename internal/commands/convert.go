package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gerunddev/notionbridge/internal/diff"
	"github.com/gerunddev/notionbridge/internal/schema"
	"github.com/gerunddev/notionbridge/internal/styles"
	"github.com/gerunddev/notionbridge/internal/sync"
)

const renderWidth = 100

// Parse converts a Markdown file to Notion block JSON
func Parse(args []string) {
	out, rest := flagValue(args, "--out")
	if len(rest) != 1 {
		usage("parse <file.md|-> [--out blocks.json]")
	}

	cfg := loadConfig()
	log, cleanup := setupLogger(cfg)
	defer cleanup()

	markdown, err := readInput(rest[0])
	if err != nil {
		fail("Cannot read input", err)
	}
	if rest[0] != "-" {
		if note, err := sync.ReadNote(rest[0]); err == nil {
			markdown = note.Body
		}
	}

	start := time.Now()
	bs, err := offlineConverter(cfg, log).MarkdownToBlocks(markdown)
	if err != nil {
		log.ConversionError(rest[0], "blocks", err)
		fail("Conversion failed", err)
	}
	log.ParseCompleted(rest[0], len(bs), time.Since(start))

	data, err := json.MarshalIndent(bs, "", "  ")
	if err != nil {
		fail("Cannot encode blocks", err)
	}
	if err := writeOutput(out, string(data)); err != nil {
		fail("Cannot write output", err)
	}
}

// Render converts Notion block JSON back to Markdown
func Render(args []string) {
	out, rest := flagValue(args, "--out")
	if len(rest) != 1 {
		usage("render <blocks.json|-> [--out file.md]")
	}

	cfg := loadConfig()
	log, cleanup := setupLogger(cfg)
	defer cleanup()

	data, err := readInput(rest[0])
	if err != nil {
		fail("Cannot read input", err)
	}

	start := time.Now()
	bs, err := schema.Decode([]byte(data))
	if err != nil {
		log.ConversionError(rest[0], "markdown", err)
		fail("Invalid block document", err)
	}

	markdown := offlineConverter(cfg, log).BlocksToMarkdown(bs)
	log.RenderCompleted(rest[0], len(markdown), time.Since(start))

	if err := writeOutput(out, markdown); err != nil {
		fail("Cannot write output", err)
	}
}

// Validate checks block JSON against the block document schema
func Validate(args []string) {
	if len(args) != 1 {
		usage("validate <blocks.json|->")
	}

	data, err := readInput(args[0])
	if err != nil {
		fail("Cannot read input", err)
	}
	if err := schema.Validate([]byte(data)); err != nil {
		fail("Invalid block document", err)
	}
	fmt.Println(styles.SuccessStyle.Render("✓ " + args[0] + " is a valid block document"))
}

// Roundtrip converts a Markdown file to blocks and back, showing what the
// conversion does not preserve
func Roundtrip(args []string) {
	raw, rest := hasFlag(args, "--raw")
	if len(rest) != 1 {
		usage("roundtrip <file.md|-> [--raw]")
	}

	cfg := loadConfig()
	log, cleanup := setupLogger(cfg)
	defer cleanup()

	markdown, err := readInput(rest[0])
	if err != nil {
		fail("Cannot read input", err)
	}
	if rest[0] != "-" {
		if note, err := sync.ReadNote(rest[0]); err == nil {
			markdown = note.Body
		}
	}

	unified, err := diff.RoundTrip(rest[0], markdown, offlineConverter(cfg, log))
	if err != nil {
		log.ConversionError(rest[0], "markdown", err)
		fail("Conversion failed", err)
	}

	if unified == "" {
		fmt.Println(styles.SuccessStyle.Render("✓ " + rest[0] + " round-trips unchanged"))
		return
	}

	if raw {
		fmt.Print(unified)
	} else {
		fmt.Print(diff.Render(unified, renderWidth))
	}
	os.Exit(1)
}
