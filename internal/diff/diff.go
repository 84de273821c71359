package diff

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/gerunddev/notionbridge/internal/convert"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// Unified returns a unified diff from before to after, or "" when the two
// are equal
func Unified(beforeName, afterName, before, after string) string {
	if before == after {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath(beforeName), before, after)
	return fmt.Sprint(gotextdiff.ToUnified(beforeName, afterName, before, edits))
}

// RoundTrip parses markdown into blocks, renders them back and diffs the
// result against the input. An empty diff means the document is a fixed
// point of the converter.
func RoundTrip(name, markdown string, conv *convert.Converter) (string, error) {
	if conv == nil {
		conv = convert.New(nil)
	}

	bs, err := conv.MarkdownToBlocks(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", name, err)
	}

	before := normalize(markdown)
	after := normalize(conv.BlocksToMarkdown(bs))

	return Unified(name, name+" (roundtrip)", before, after), nil
}

// normalize makes line endings and the trailing newline comparable
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return s
	}
	return s + "\n"
}

// Render wraps a unified diff in a diff code fence and renders it for the
// terminal. The plain fenced diff is returned if rendering fails.
func Render(unified string, width int) string {
	if width <= 0 {
		width = 120
	}
	diffMarkdown := fmt.Sprintf("```diff\n%s```\n", unified)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return diffMarkdown
	}

	rendered, err := renderer.Render(diffMarkdown)
	if err != nil {
		return diffMarkdown
	}

	return rendered
}

// Markdown renders a Markdown document for the terminal, falling back to
// the source text
func Markdown(markdown string, width int) string {
	if width <= 0 {
		width = 120
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}
	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}
