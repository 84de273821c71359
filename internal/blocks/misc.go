package blocks

import (
	"regexp"
	"strings"

	"github.com/gerunddev/notionbridge/internal/richtext"
)

var calloutPattern = regexp.MustCompile(`^\[callout\]\(([^"]+?)(?:\s+"([^"]+)")?\)$`)

const (
	defaultCalloutEmoji = "💡"
	defaultCalloutColor = richtext.ColorGrayBackground
)

type CalloutElement struct{ base }

func NewCallout(f *richtext.Formatter) *CalloutElement {
	return &CalloutElement{base{name: "callout", format: f}}
}

func (e *CalloutElement) MatchesMarkdownLine(line string) bool {
	return calloutPattern.MatchString(strings.TrimSpace(line))
}

func (e *CalloutElement) MarkdownToBlock(text string) []Block {
	m := calloutPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	content := strings.TrimSpace(m[1])
	if content == "" {
		return nil
	}
	emoji := m[2]
	if emoji == "" {
		emoji = defaultCalloutEmoji
	}
	b := New(TypeCallout)
	b.Callout = &Callout{
		RichText: e.format.Parse(content),
		Icon:     &Icon{Type: "emoji", Emoji: emoji},
		Color:    defaultCalloutColor,
	}
	return []Block{b}
}

func (e *CalloutElement) MatchesBlock(b *Block) bool {
	return b.Type == TypeCallout && b.Callout != nil
}

func (e *CalloutElement) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	content := e.format.Render(b.Callout.RichText)
	if content == "" {
		return "", false
	}
	if icon := b.Callout.Icon; icon != nil && icon.Emoji != "" && icon.Emoji != defaultCalloutEmoji {
		return `[callout](` + content + ` "` + icon.Emoji + `")`, true
	}
	return "[callout](" + content + ")", true
}

func (e *CalloutElement) ChildSyntax() ChildSyntax { return ChildrenIndented }

var dividerPattern = regexp.MustCompile(`^-{3,}$`)

type DividerElement struct{ base }

func NewDivider(f *richtext.Formatter) *DividerElement {
	return &DividerElement{base{name: "divider", format: f}}
}

func (e *DividerElement) MatchesMarkdownLine(line string) bool {
	return dividerPattern.MatchString(strings.TrimSpace(line))
}

// MarkdownToBlock emits an empty paragraph before the divider
func (e *DividerElement) MarkdownToBlock(text string) []Block {
	if !e.MatchesMarkdownLine(text) {
		return nil
	}
	b := New(TypeDivider)
	b.Divider = &Empty{}
	return []Block{EmptyParagraph(), b}
}

func (e *DividerElement) MatchesBlock(b *Block) bool {
	return b.Type == TypeDivider
}

func (e *DividerElement) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	return "---", true
}

var (
	equationLinkPattern   = regexp.MustCompile(`^\[equation\]\((.+)\)$`)
	equationQuotedPattern = regexp.MustCompile(`^\[equation\]\("((?:[^"\\]|\\.)*)"\)$`)
	equationDollarPattern = regexp.MustCompile(`^\$\$(.+)\$\$$`)
	trailingBackslashes   = regexp.MustCompile(`(\\+)$`)
)

// EquationDelimiter opens and closes a multi-line equation block
const EquationDelimiter = "$$"

type EquationElement struct{ base }

func NewEquation(f *richtext.Formatter) *EquationElement {
	return &EquationElement{base{name: "equation", format: f}}
}

func (e *EquationElement) MatchesMarkdownLine(line string) bool {
	line = strings.TrimSpace(line)
	return equationLinkPattern.MatchString(line) || equationDollarPattern.MatchString(line)
}

// MarkdownToBlock accepts the single-line forms and a full $$ ... $$ block
func (e *EquationElement) MarkdownToBlock(text string) []Block {
	text = strings.TrimSpace(text)
	var expr string
	switch {
	case strings.HasPrefix(text, EquationDelimiter+"\n"):
		body := strings.TrimPrefix(text, EquationDelimiter+"\n")
		body = strings.TrimSuffix(strings.TrimRight(body, " \t"), EquationDelimiter)
		lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
		for i, l := range lines {
			lines[i] = fixLineBreak(l)
		}
		expr = strings.TrimSpace(strings.Join(lines, "\n"))
	case equationQuotedPattern.MatchString(text):
		m := equationQuotedPattern.FindStringSubmatch(text)
		expr = unescapeEquation(m[1])
	case equationLinkPattern.MatchString(text):
		expr = equationLinkPattern.FindStringSubmatch(text)[1]
	case equationDollarPattern.MatchString(text):
		expr = equationDollarPattern.FindStringSubmatch(text)[1]
	}
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}
	b := New(TypeEquation)
	b.Equation = &Equation{Expression: expr}
	return []Block{b}
}

func (e *EquationElement) MatchesBlock(b *Block) bool {
	return b.Type == TypeEquation && b.Equation != nil
}

func (e *EquationElement) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	expr := strings.TrimSpace(b.Equation.Expression)
	if expr == "" {
		return "", false
	}
	if strings.Contains(expr, "\n") {
		return EquationDelimiter + "\n" + expr + "\n" + EquationDelimiter, true
	}
	return EquationDelimiter + expr + EquationDelimiter, true
}

// fixLineBreak doubles an odd run of trailing backslashes on a line of a
// $$ block so it reads as a LaTeX line break
func fixLineBreak(line string) string {
	if m := trailingBackslashes.FindString(line); len(m)%2 == 1 {
		return line + `\`
	}
	return line
}

func unescapeEquation(s string) string {
	r := strings.NewReplacer(`\"`, `"`, `\n`, "\n")
	return r.Replace(s)
}

var tocPattern = regexp.MustCompile(`(?i)^\[toc\](?:\(([a-z_]+)\))?$`)

type TableOfContentsElement struct{ base }

func NewTableOfContents(f *richtext.Formatter) *TableOfContentsElement {
	return &TableOfContentsElement{base{name: "table_of_contents", format: f}}
}

func (e *TableOfContentsElement) MatchesMarkdownLine(line string) bool {
	return tocPattern.MatchString(strings.TrimSpace(line))
}

func (e *TableOfContentsElement) MarkdownToBlock(text string) []Block {
	m := tocPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	color := richtext.ColorDefault
	if m[1] != "" {
		c, ok := richtext.ParseColor(m[1])
		if !ok {
			return nil
		}
		color = c
	}
	b := New(TypeTableOfContents)
	b.TableOfContents = &TableOfContents{Color: color}
	return []Block{b}
}

func (e *TableOfContentsElement) MatchesBlock(b *Block) bool {
	return b.Type == TypeTableOfContents
}

func (e *TableOfContentsElement) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	if b.TableOfContents == nil || b.TableOfContents.Color.IsDefault() {
		return "[toc]", true
	}
	return "[toc](" + string(b.TableOfContents.Color) + ")", true
}

var breadcrumbPattern = regexp.MustCompile(`(?i)^\[breadcrumb\]$`)

type BreadcrumbElement struct{ base }

func NewBreadcrumb(f *richtext.Formatter) *BreadcrumbElement {
	return &BreadcrumbElement{base{name: "breadcrumb", format: f}}
}

func (e *BreadcrumbElement) MatchesMarkdownLine(line string) bool {
	return breadcrumbPattern.MatchString(strings.TrimSpace(line))
}

func (e *BreadcrumbElement) MarkdownToBlock(text string) []Block {
	if !e.MatchesMarkdownLine(text) {
		return nil
	}
	b := New(TypeBreadcrumb)
	b.Breadcrumb = &Empty{}
	return []Block{b}
}

func (e *BreadcrumbElement) MatchesBlock(b *Block) bool {
	return b.Type == TypeBreadcrumb
}

func (e *BreadcrumbElement) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	return "[breadcrumb]", true
}

var syncedBlockPattern = regexp.MustCompile(`(?i)^>>>\s*synced\s+(?:block|from:\s*([0-9a-f-]*))$`)

// SyncedBlockMarker starts both forms of a synced block line
const SyncedBlockMarker = ">>>"

// SyncedBlockElement handles ">>> Synced Block", an original whose content
// follows indented, and ">>> Synced from: <block-id>", a copy of another
// synced block. A copy without an id is dropped.
type SyncedBlockElement struct{ base }

func NewSyncedBlock(f *richtext.Formatter) *SyncedBlockElement {
	return &SyncedBlockElement{base{name: "synced_block", format: f}}
}

func (e *SyncedBlockElement) MatchesMarkdownLine(line string) bool {
	return syncedBlockPattern.MatchString(strings.TrimSpace(line))
}

func (e *SyncedBlockElement) MarkdownToBlock(text string) []Block {
	text = strings.TrimSpace(text)
	m := syncedBlockPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	b := New(TypeSyncedBlock)
	b.SyncedBlock = &SyncedBlock{}
	if strings.Contains(strings.ToLower(text), "from:") {
		if m[1] == "" {
			return []Block{}
		}
		b.SyncedBlock.SyncedFrom = &SyncedFrom{Type: "block_id", BlockID: m[1]}
	}
	return []Block{b}
}

func (e *SyncedBlockElement) MatchesBlock(b *Block) bool {
	return b.Type == TypeSyncedBlock && b.SyncedBlock != nil
}

func (e *SyncedBlockElement) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	if from := b.SyncedBlock.SyncedFrom; from != nil {
		return SyncedBlockMarker + " Synced from: " + from.BlockID, true
	}
	return SyncedBlockMarker + " Synced Block", true
}

func (e *SyncedBlockElement) ChildSyntax() ChildSyntax { return ChildrenIndented }

// ChildPageElement renders child_page blocks. Pages are created through the
// pages API, so it never matches Markdown.
type ChildPageElement struct{ base }

func NewChildPage(f *richtext.Formatter) *ChildPageElement {
	return &ChildPageElement{base{name: "child_page", format: f}}
}

func (e *ChildPageElement) MatchesMarkdownLine(string) bool { return false }

func (e *ChildPageElement) MarkdownToBlock(string) []Block { return nil }

func (e *ChildPageElement) MatchesBlock(b *Block) bool {
	return b.Type == TypeChildPage && b.ChildPage != nil
}

func (e *ChildPageElement) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	return "📄 " + b.ChildPage.Title, true
}
