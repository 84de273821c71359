package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gerunddev/notionbridge/internal/config"
	"github.com/gerunddev/notionbridge/internal/convert"
	"github.com/gerunddev/notionbridge/internal/logger"
	"github.com/gerunddev/notionbridge/internal/notion"
	"github.com/gerunddev/notionbridge/internal/resolver"
	"github.com/gerunddev/notionbridge/internal/richtext"
	"github.com/gerunddev/notionbridge/internal/styles"
)

// fail prints an error line and exits
func fail(msg string, err error) {
	if err != nil {
		msg += ": " + err.Error()
	}
	fmt.Println(styles.ErrorStyle.Render("✗ " + msg))
	os.Exit(1)
}

func usage(line string) {
	fmt.Fprintf(os.Stderr, "Usage: notionbridge %s\n", line)
	os.Exit(1)
}

// loadConfig loads the configuration or exits
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fail("Error loading config", err)
	}
	return cfg
}

// setupLogger opens the configured log file. Extra writers, when given,
// receive the same records.
func setupLogger(cfg *config.Config, extra ...io.Writer) (*logger.Logger, func()) {
	level := logger.ParseLevel(cfg.LogLevel)
	if len(extra) > 0 {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return logger.NewMultiLogger(level, extra...), func() {}
		}
		return logger.NewMultiLogger(level, append(extra, f)...), func() { f.Close() }
	}

	log, cleanup, err := logger.NewFileLogger(cfg.LogFile, level)
	if err != nil {
		return logger.Discard(), func() {}
	}
	log.ConfigLoaded(cfg.NotesDir, cfg.PageSize, cfg.RequestTimeout)
	return log, cleanup
}

// aliases loads the alias table, warning instead of failing
func aliases(cfg *config.Config, log *logger.Logger) *resolver.Aliases {
	a, err := resolver.LoadAliases(cfg.AliasesFile)
	if err != nil {
		log.Warn("aliases not loaded", "file", cfg.AliasesFile, "error", err)
		fmt.Println(styles.WarningStyle.Render("⚠ Ignoring aliases: " + err.Error()))
		a, _ = resolver.ParseAliases(nil)
	}
	return a
}

// offlineConverter resolves mentions from the alias table only
func offlineConverter(cfg *config.Config, log *logger.Logger) *convert.Converter {
	return convert.NewWithResolver(aliases(cfg, log))
}

// notionClient builds an API client, exiting when no token is configured
func notionClient(cfg *config.Config, log *logger.Logger) *notion.Client {
	if err := cfg.RequireToken(); err != nil {
		fail("Cannot reach Notion", err)
	}
	return notion.NewClient(cfg.NotionToken, notion.Options{
		PageSize: cfg.PageSize,
		Timeout:  cfg.RequestTimeout,
		Logger:   log,
	})
}

// onlineResolver tries the alias table first, then the API
func onlineResolver(r *notion.Resolver, a *resolver.Aliases) richtext.Resolver {
	return resolver.Chain{a, r}
}

// readInput reads a file, or stdin for "-"
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

// writeOutput writes content to path, or stdout when path is empty
func writeOutput(path, content string) error {
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if path == "" {
		_, err := io.WriteString(os.Stdout, content)
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

// flagValue returns the value following name in args and the remaining
// positional arguments
func flagValue(args []string, name string) (string, []string) {
	var value string
	var rest []string
	for i := 0; i < len(args); i++ {
		if args[i] == name && i+1 < len(args) {
			value = args[i+1]
			i++
			continue
		}
		if v, ok := strings.CutPrefix(args[i], name+"="); ok {
			value = v
			continue
		}
		rest = append(rest, args[i])
	}
	return value, rest
}

// hasFlag reports whether name is present and returns args without it
func hasFlag(args []string, name string) (bool, []string) {
	found := false
	var rest []string
	for _, a := range args {
		if a == name {
			found = true
			continue
		}
		rest = append(rest, a)
	}
	return found, rest
}

// ParseLogFile reads the last N lines from the log file and extracts sync info
func ParseLogFile(logPath string, maxLines int) ([]string, time.Time, int) {
	content, err := os.ReadFile(logPath)
	if err != nil {
		return []string{"Unable to read log file"}, time.Time{}, 0
	}

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")

	// Get last N lines
	startIdx := 0
	if len(lines) > maxLines {
		startIdx = len(lines) - maxLines
	}
	recentLines := lines[startIdx:]

	var lastSync time.Time
	filesSynced := 0

	// Look for the most recent "sync completed" line in the whole file
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if strings.Contains(line, "sync completed") {
			// Format: 2025-11-27 14:11:57 INFO sync completed
			if len(line) > 19 {
				if t, err := time.ParseInLocation(time.DateTime, line[:19], time.Local); err == nil {
					lastSync = t
				}
			}

			if idx := strings.Index(line, "files_synced="); idx != -1 {
				_, _ = fmt.Sscanf(line[idx:], "files_synced=%d", &filesSynced) //nolint:errcheck // best effort parsing
			}
			break
		}
	}

	return recentLines, lastSync, filesSynced
}
