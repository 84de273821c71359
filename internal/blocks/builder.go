package blocks

import (
	"strconv"
	"strings"

	"github.com/gerunddev/notionbridge/internal/richtext"
)

// MarkdownBuilder assembles a document in the Markdown dialect the default
// registry parses. Text arguments are inline Markdown and pass through
// unchanged.
//
//	md := NewMarkdownBuilder().
//		H1("Release notes").
//		Callout("Read before upgrading", "⚠️").
//		Toggle("Details", func(b *MarkdownBuilder) {
//			b.Paragraph("Hidden until expanded")
//		}).
//		Build()
type MarkdownBuilder struct {
	parts []string
}

// toggleFence opens a toggle when followed by a title and closes any
// piped container alone
const toggleFence = "+++"

func NewMarkdownBuilder() *MarkdownBuilder {
	return &MarkdownBuilder{}
}

func (b *MarkdownBuilder) add(s string) *MarkdownBuilder {
	b.parts = append(b.parts, s)
	return b
}

// Build joins top-level blocks with a blank line
func (b *MarkdownBuilder) Build() string {
	return strings.Join(b.parts, "\n\n")
}

// nested builds a child block list the way nested siblings are written
func nested(fill func(*MarkdownBuilder)) string {
	if fill == nil {
		return ""
	}
	child := NewMarkdownBuilder()
	fill(child)
	return strings.Join(child.parts, "\n")
}

func (b *MarkdownBuilder) H1(text string) *MarkdownBuilder { return b.Heading(1, text) }
func (b *MarkdownBuilder) H2(text string) *MarkdownBuilder { return b.Heading(2, text) }
func (b *MarkdownBuilder) H3(text string) *MarkdownBuilder { return b.Heading(3, text) }

// Heading clamps level to 1..3
func (b *MarkdownBuilder) Heading(level int, text string) *MarkdownBuilder {
	return b.add(strings.Repeat("#", clampLevel(level)) + " " + text)
}

func (b *MarkdownBuilder) Paragraph(text string) *MarkdownBuilder {
	return b.add(text)
}

func (b *MarkdownBuilder) Quote(text string) *MarkdownBuilder {
	return b.add("> " + text)
}

// ColoredQuote writes a quote with a background color such as "blue"
func (b *MarkdownBuilder) ColoredQuote(color, text string) *MarkdownBuilder {
	return b.add("> [background:" + color + "] " + text)
}

func (b *MarkdownBuilder) Divider() *MarkdownBuilder {
	return b.add("---")
}

func (b *MarkdownBuilder) BulletedList(items ...string) *MarkdownBuilder {
	for _, item := range items {
		b.add("- " + item)
	}
	return b
}

// NumberedList writes every item as "1."; Notion numbers them itself
func (b *MarkdownBuilder) NumberedList(items ...string) *MarkdownBuilder {
	for _, item := range items {
		b.add("1. " + item)
	}
	return b
}

func (b *MarkdownBuilder) Todo(text string, checked bool) *MarkdownBuilder {
	box := "[ ]"
	if checked {
		box = "[x]"
	}
	return b.add("- " + box + " " + text)
}

// Callout uses the default icon when emoji is empty
func (b *MarkdownBuilder) Callout(text, emoji string) *MarkdownBuilder {
	if emoji == "" || emoji == defaultCalloutEmoji {
		return b.add("[callout](" + text + ")")
	}
	return b.add("[callout](" + text + ` "` + emoji + `")`)
}

// Toggle writes a collapsible block whose children fill adds
func (b *MarkdownBuilder) Toggle(title string, fill func(*MarkdownBuilder)) *MarkdownBuilder {
	return b.add(piped(toggleFence+" "+title, nested(fill)))
}

func (b *MarkdownBuilder) ToggleableHeading(level int, title string, fill func(*MarkdownBuilder)) *MarkdownBuilder {
	header := "+" + strings.Repeat("#", clampLevel(level)) + " " + title
	return b.add(piped(header, nested(fill)))
}

func piped(header, body string) string {
	parts := []string{header}
	if body != "" {
		lines := strings.Split(body, "\n")
		for i, l := range lines {
			if l == "" {
				lines[i] = "|"
			} else {
				lines[i] = "| " + l
			}
		}
		parts = append(parts, lines...)
	}
	return strings.Join(append(parts, toggleFence), "\n")
}

// Code writes a fenced block with the language normalized; unknown and
// empty languages mean plain text
func (b *MarkdownBuilder) Code(language, code, caption string) *MarkdownBuilder {
	lang := NormalizeLanguage(language)
	if lang == PlainTextLanguage {
		lang = ""
	}
	var sb strings.Builder
	sb.WriteString(CodeFence + lang + "\n")
	if code != "" {
		sb.WriteString(strings.TrimRight(code, "\n") + "\n")
	}
	sb.WriteString(CodeFence)
	if caption != "" {
		sb.WriteString("\nCaption: " + caption)
	}
	return b.add(sb.String())
}

// Equation writes a one-line $$expr$$ or a $$ block for multi-line input
func (b *MarkdownBuilder) Equation(expression string) *MarkdownBuilder {
	expr := strings.TrimSpace(expression)
	if strings.Contains(expr, "\n") {
		return b.add(EquationDelimiter + "\n" + expr + "\n" + EquationDelimiter)
	}
	return b.add(EquationDelimiter + expr + EquationDelimiter)
}

func (b *MarkdownBuilder) Image(url, caption string) *MarkdownBuilder {
	return b.media("image", url, caption)
}

func (b *MarkdownBuilder) Video(url, caption string) *MarkdownBuilder {
	return b.media("video", url, caption)
}

func (b *MarkdownBuilder) Audio(url, caption string) *MarkdownBuilder {
	return b.media("audio", url, caption)
}

func (b *MarkdownBuilder) File(url, caption string) *MarkdownBuilder {
	return b.media("file", url, caption)
}

func (b *MarkdownBuilder) PDF(url, caption string) *MarkdownBuilder {
	return b.media("pdf", url, caption)
}

func (b *MarkdownBuilder) media(tag, url, caption string) *MarkdownBuilder {
	return b.add("[" + tag + "](" + url + quoted(caption) + ")")
}

// Bookmark takes an optional title and a description, which needs a title
func (b *MarkdownBuilder) Bookmark(url, title, description string) *MarkdownBuilder {
	if title == "" {
		description = ""
	}
	return b.add("[bookmark](" + url + quoted(title) + quoted(description) + ")")
}

func (b *MarkdownBuilder) Embed(url, caption string) *MarkdownBuilder {
	return b.add("[embed](" + url + quoted(caption) + ")")
}

func quoted(s string) string {
	if s == "" {
		return ""
	}
	return ` "` + s + `"`
}

// Table writes a header row followed by rows. Rows are padded or cut to the
// header width; a literal | in a cell is escaped.
func (b *MarkdownBuilder) Table(headers []string, rows [][]string) *MarkdownBuilder {
	if len(headers) == 0 {
		return b
	}
	row := func(cells []string) string {
		out := make([]string, len(headers))
		for i := range out {
			if i < len(cells) {
				out[i] = strings.ReplaceAll(cells[i], "|", `\|`)
			}
		}
		return "| " + strings.Join(out, " | ") + " |"
	}
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	lines := []string{row(headers), "| " + strings.Join(sep, " | ") + " |"}
	for _, r := range rows {
		lines = append(lines, row(r))
	}
	return b.add(strings.Join(lines, "\n"))
}

// BuilderColumn is one column of a Columns block. Ratio 0 leaves the width to
// Notion; either every column or none must set it.
type BuilderColumn struct {
	Ratio float64
	Fill  func(*MarkdownBuilder)
}

func (b *MarkdownBuilder) Columns(columns ...BuilderColumn) *MarkdownBuilder {
	lines := []string{"::: columns"}
	for _, c := range columns {
		header := "::: column"
		if c.Ratio > 0 {
			header += " " + strconv.FormatFloat(c.Ratio, 'f', -1, 64)
		}
		lines = append(lines, header)
		if body := nested(c.Fill); body != "" {
			lines = append(lines, body)
		}
		lines = append(lines, ":::")
	}
	return b.add(strings.Join(append(lines, ":::"), "\n"))
}

// TableOfContents takes an optional color such as "gray_background"
func (b *MarkdownBuilder) TableOfContents(color string) *MarkdownBuilder {
	if color == "" || color == string(richtext.ColorDefault) {
		return b.add("[toc]")
	}
	return b.add("[toc](" + color + ")")
}

func (b *MarkdownBuilder) Breadcrumb() *MarkdownBuilder {
	return b.add("[breadcrumb]")
}

// SyncedBlock writes an original synced block with indented content
func (b *MarkdownBuilder) SyncedBlock(fill func(*MarkdownBuilder)) *MarkdownBuilder {
	header := SyncedBlockMarker + " Synced Block"
	body := nested(fill)
	if body == "" {
		return b.add(header)
	}
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = "    " + l
		}
	}
	return b.add(header + "\n" + strings.Join(lines, "\n"))
}

// SyncedFrom writes a copy of the synced block with id blockID
func (b *MarkdownBuilder) SyncedFrom(blockID string) *MarkdownBuilder {
	return b.add(SyncedBlockMarker + " Synced from: " + blockID)
}

// MentionPage returns inline Markdown for a page mention. ref is a page ID
// or a name the converter's resolver knows.
func MentionPage(ref string) string { return "@page[" + ref + "]" }

func MentionDatabase(ref string) string { return "@database[" + ref + "]" }

func MentionDataSource(ref string) string { return "@datasource[" + ref + "]" }

func MentionUser(ref string) string { return "@user[" + ref + "]" }

// MentionDate returns a date mention; end may be empty
func MentionDate(start, end string) string {
	if end == "" {
		return "@date[" + start + "]"
	}
	return "@date[" + start + richtext.DateSeparator + end + "]"
}

// Colored wraps inline Markdown in a color group such as (red:text)
func Colored(color richtext.Color, text string) string {
	return "(" + string(color) + ":" + text + ")"
}

func clampLevel(level int) int {
	return min(max(level, 1), 3)
}
