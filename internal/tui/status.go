package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/gerunddev/notionbridge/internal/styles"
)

// StatusData holds the information shown by the status command
type StatusData struct {
	ConfigPath   string
	StatePath    string
	NotesDir     string
	LogFile      string
	TokenSet     bool
	TrackedNotes int
	LastPush     time.Time
	LastSync     time.Time
	FilesSynced  int
	LogLines     []string
}

// RenderStatus formats status data for the terminal
func RenderStatus(d StatusData) string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("notionbridge status"))
	b.WriteString("\n\n")

	field := func(label, value string) {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  %-14s", label)))
		b.WriteString(styles.NormalTextStyle.Render(value))
		b.WriteString("\n")
	}

	field("Config", d.ConfigPath)
	field("State", d.StatePath)
	field("Notes", d.NotesDir)
	field("Log", d.LogFile)
	if d.TokenSet {
		field("Token", styles.SuccessStyle.Render("set"))
	} else {
		field("Token", styles.WarningStyle.Render("not set"))
	}
	field("Tracked notes", fmt.Sprintf("%d", d.TrackedNotes))
	field("Last push", formatTime(d.LastPush))

	if d.LastSync.IsZero() {
		field("Last sync", "never")
	} else {
		field("Last sync", fmt.Sprintf("%s (%d files)", formatTime(d.LastSync), d.FilesSynced))
	}

	if len(d.LogLines) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.HeaderStyle.Render("Recent log"))
		b.WriteString("\n")
		for _, line := range d.LogLines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			b.WriteString(styles.DimStyle.Render("  " + line))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	ago := time.Since(t).Round(time.Second)
	return fmt.Sprintf("%s (%s ago)", t.Format(time.DateTime), ago)
}
