package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/gerunddev/notionbridge/internal/blocks"
	"github.com/gerunddev/notionbridge/internal/config"
	"github.com/gerunddev/notionbridge/internal/convert"
	"github.com/gerunddev/notionbridge/internal/diff"
	"github.com/gerunddev/notionbridge/internal/logger"
	"github.com/gerunddev/notionbridge/internal/notion"
	"github.com/gerunddev/notionbridge/internal/state"
	"github.com/gerunddev/notionbridge/internal/styles"
	"github.com/gerunddev/notionbridge/internal/sync"
	"github.com/gerunddev/notionbridge/internal/tui"
)

// pullPage fetches a page and renders it with mentions named through the
// alias table and the API
func pullPage(ctx context.Context, cfg *config.Config, log *logger.Logger, ref string) ([]blocks.Block, string, error) {
	pageID, err := notion.ParsePageID(ref)
	if err != nil {
		return nil, "", err
	}

	client := notionClient(cfg, log)
	log.PullStarted(pageID)
	start := time.Now()

	bs, err := client.FetchBlocks(ctx, pageID)
	if err != nil {
		return nil, "", err
	}
	log.PullCompleted(pageID, len(bs), time.Since(start))

	res := onlineResolver(client.Resolver(ctx, nil), aliases(cfg, log))
	markdown := convert.NewWithResolver(res).BlocksToMarkdown(bs)
	return bs, markdown, nil
}

// Pull fetches a Notion page and writes it as Markdown
func Pull(args []string) {
	out, rest := flagValue(args, "--out")
	if len(rest) != 1 {
		usage("pull <page-id|url> [--out file.md]")
	}

	cfg := loadConfig()
	log, cleanup := setupLogger(cfg)
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if out == "" {
		_, markdown, err := pullPage(ctx, cfg, log, rest[0])
		if err != nil {
			fail("Pull failed", err)
		}
		if err := writeOutput("", markdown); err != nil {
			fail("Cannot write output", err)
		}
		return
	}

	err := tui.RunTask("Pulling "+rest[0], func() (string, error) {
		bs, markdown, err := pullPage(ctx, cfg, log, rest[0])
		if err != nil {
			return "", err
		}
		if err := writeOutput(out, markdown); err != nil {
			return "", err
		}
		return fmt.Sprintf("Pulled %d blocks into %s", len(bs), out), nil
	})
	if err != nil {
		fail("Pull failed", err)
	}
}

// Preview renders a Notion page or a local Markdown file in the terminal
func Preview(args []string) {
	if len(args) != 1 {
		usage("preview <page-id|url|file.md>")
	}

	cfg := loadConfig()
	log, cleanup := setupLogger(cfg)
	defer cleanup()

	var markdown string
	if _, err := os.Stat(args[0]); err == nil {
		// Local notes are shown as Notion would store them
		note, err := sync.ReadNote(args[0])
		if err != nil {
			fail("Cannot read note", err)
		}
		conv := offlineConverter(cfg, log)
		bs, err := conv.MarkdownToBlocks(note.Body)
		if err != nil {
			fail("Conversion failed", err)
		}
		markdown = conv.BlocksToMarkdown(bs)
	} else {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		_, markdown, err = pullPage(ctx, cfg, log, args[0])
		if err != nil {
			fail("Preview failed", err)
		}
	}

	fmt.Print(diff.Markdown(markdown, renderWidth))
}

// Push converts a Markdown file and appends it to a Notion page. With
// --replace the page's existing blocks are deleted first.
func Push(args []string) {
	replace, rest := hasFlag(args, "--replace")
	if len(rest) != 2 {
		usage("push <page-id|url> <file.md> [--replace]")
	}
	pageRef, path := rest[0], rest[1]

	cfg := loadConfig()
	log, cleanup := setupLogger(cfg)
	defer cleanup()

	pageID, err := notion.ParsePageID(pageRef)
	if err != nil {
		fail("Invalid page", err)
	}
	note, err := sync.ReadNote(path)
	if err != nil {
		fail("Cannot read note", err)
	}

	client := notionClient(cfg, log)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conv := convert.NewWithResolver(onlineResolver(client.Resolver(ctx, nil), aliases(cfg, log)))
	bs, err := conv.MarkdownToBlocks(note.Body)
	if err != nil {
		log.ConversionError(path, pageID, err)
		fail("Conversion failed", err)
	}

	err = tui.RunTask("Pushing "+path, func() (string, error) {
		log.PushStarted(pageID, path)
		start := time.Now()

		var n int
		var err error
		if replace {
			n, err = client.ReplaceBlocks(ctx, pageID, bs)
		} else {
			n, err = client.AppendBlocks(ctx, pageID, bs)
		}
		if err != nil {
			log.FileError(path, err)
			return "", err
		}
		log.PushCompleted(pageID, n, time.Since(start))
		return fmt.Sprintf("Pushed %d blocks to %s", n, pageID), nil
	})
	if err != nil {
		fail("Push failed", err)
	}

	statePath := config.StateFilePath()
	st, err := state.Load(statePath)
	if err != nil {
		log.StateError("load", err)
		return
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if err := st.Update(path, pageID); err != nil {
		log.StateError("update", err)
		return
	}
	if err := st.Save(statePath); err != nil {
		log.StateError("save", err)
		fmt.Println(styles.WarningStyle.Render("⚠ Push state not saved: " + err.Error()))
	}
}
