package blocks

import (
	"regexp"
	"strings"

	"github.com/gerunddev/notionbridge/internal/richtext"
)

// Paragraph is the catch-all element: any non-empty line
type Paragraph struct{ base }

func NewParagraph(f *richtext.Formatter) *Paragraph {
	return &Paragraph{base{name: "paragraph", format: f}}
}

func (e *Paragraph) MatchesMarkdownLine(line string) bool {
	return strings.TrimSpace(line) != ""
}

func (e *Paragraph) MarkdownToBlock(text string) []Block {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	b := New(TypeParagraph)
	b.Paragraph = &TextBlock{RichText: e.format.Parse(text), Color: richtext.ColorDefault}
	return []Block{b}
}

func (e *Paragraph) MatchesBlock(b *Block) bool {
	return b.Type == TypeParagraph && b.Paragraph != nil
}

func (e *Paragraph) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	return e.format.Render(b.Paragraph.RichText), true
}

var headingPattern = regexp.MustCompile(`^(#{1,3})[ \t]+(.+)$`)

var headingTypes = [...]Type{TypeHeading1, TypeHeading2, TypeHeading3}

func newHeading(level int, rt []richtext.RichText, toggleable bool) Block {
	b := New(headingTypes[level-1])
	h := &Heading{RichText: rt, Color: richtext.ColorDefault, IsToggleable: toggleable}
	switch level {
	case 1:
		b.Heading1 = h
	case 2:
		b.Heading2 = h
	default:
		b.Heading3 = h
	}
	return b
}

func headingLevel(t Type) int {
	for i, ht := range headingTypes {
		if ht == t {
			return i + 1
		}
	}
	return 0
}

// HeadingElement handles # to ### headings that are not toggleable
type HeadingElement struct{ base }

func NewHeading(f *richtext.Formatter) *HeadingElement {
	return &HeadingElement{base{name: "heading", format: f}}
}

func (e *HeadingElement) MatchesMarkdownLine(line string) bool {
	return headingPattern.MatchString(strings.TrimSpace(line))
}

func (e *HeadingElement) MarkdownToBlock(text string) []Block {
	m := headingPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	content := strings.TrimSpace(m[2])
	if content == "" {
		return nil
	}
	return []Block{newHeading(len(m[1]), e.format.Parse(content), false)}
}

func (e *HeadingElement) MatchesBlock(b *Block) bool {
	h := b.Heading()
	return h != nil && !h.IsToggleable
}

func (e *HeadingElement) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	prefix := strings.Repeat("#", headingLevel(b.Type))
	return prefix + " " + e.format.Render(b.Heading().RichText), true
}

var toggleableHeadingPattern = regexp.MustCompile(`^\+(?:\+\+\s*)?(#{1,3})\s+(.+)$`)

// ToggleableHeading handles +# Title; its children follow on | lines
type ToggleableHeading struct{ base }

func NewToggleableHeading(f *richtext.Formatter) *ToggleableHeading {
	return &ToggleableHeading{base{name: "toggleable_heading", format: f}}
}

func (e *ToggleableHeading) MatchesMarkdownLine(line string) bool {
	return toggleableHeadingPattern.MatchString(strings.TrimSpace(line))
}

func (e *ToggleableHeading) MarkdownToBlock(text string) []Block {
	m := toggleableHeadingPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	content := strings.TrimSpace(m[2])
	if content == "" {
		return nil
	}
	return []Block{newHeading(len(m[1]), e.format.Parse(content), true)}
}

func (e *ToggleableHeading) MatchesBlock(b *Block) bool {
	h := b.Heading()
	return h != nil && h.IsToggleable
}

func (e *ToggleableHeading) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	prefix := "+" + strings.Repeat("#", headingLevel(b.Type))
	return prefix + " " + e.format.Render(b.Heading().RichText), true
}

func (e *ToggleableHeading) ChildSyntax() ChildSyntax { return ChildrenPiped }

var togglePattern = regexp.MustCompile(`^\+{3}\s+(.+)$`)

// Toggle handles +++ Title blocks
type Toggle struct{ base }

func NewToggle(f *richtext.Formatter) *Toggle {
	return &Toggle{base{name: "toggle", format: f}}
}

func (e *Toggle) MatchesMarkdownLine(line string) bool {
	line = strings.TrimSpace(line)
	return togglePattern.MatchString(line) && !toggleableHeadingPattern.MatchString(line)
}

func (e *Toggle) MarkdownToBlock(text string) []Block {
	text = strings.TrimSpace(text)
	if toggleableHeadingPattern.MatchString(text) {
		return nil
	}
	m := togglePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	b := New(TypeToggle)
	b.Toggle = &TextBlock{RichText: e.format.Parse(strings.TrimSpace(m[1])), Color: richtext.ColorDefault}
	return []Block{b}
}

func (e *Toggle) MatchesBlock(b *Block) bool {
	return b.Type == TypeToggle && b.Toggle != nil
}

func (e *Toggle) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	return "+++ " + e.format.Render(b.Toggle.RichText), true
}

func (e *Toggle) ChildSyntax() ChildSyntax { return ChildrenPiped }

var (
	bulletPattern = regexp.MustCompile(`^[*\-+]\s+(.+)$`)
	todoPattern   = regexp.MustCompile(`^[*\-+]\s+\[([ xX])\]\s+(.+)$`)
	numberPattern = regexp.MustCompile(`^(\d+)\.\s+(.+)$`)
)

// BulletedList handles -, * and + items that are not to-dos
type BulletedList struct{ base }

func NewBulletedList(f *richtext.Formatter) *BulletedList {
	return &BulletedList{base{name: "bulleted_list", format: f}}
}

func (e *BulletedList) MatchesMarkdownLine(line string) bool {
	line = strings.TrimSpace(line)
	return bulletPattern.MatchString(line) && !todoPattern.MatchString(line)
}

func (e *BulletedList) MarkdownToBlock(text string) []Block {
	text = strings.TrimSpace(text)
	if todoPattern.MatchString(text) {
		return nil
	}
	m := bulletPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	b := New(TypeBulletedListItem)
	b.BulletedListItem = &TextBlock{RichText: e.format.Parse(strings.TrimSpace(m[1])), Color: richtext.ColorDefault}
	return []Block{b}
}

func (e *BulletedList) MatchesBlock(b *Block) bool {
	return b.Type == TypeBulletedListItem && b.BulletedListItem != nil
}

func (e *BulletedList) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	return "- " + e.format.Render(b.BulletedListItem.RichText), true
}

func (e *BulletedList) ChildSyntax() ChildSyntax { return ChildrenIndented }

// NumberedList handles "1." items; rendering always emits 1.
type NumberedList struct{ base }

func NewNumberedList(f *richtext.Formatter) *NumberedList {
	return &NumberedList{base{name: "numbered_list", format: f}}
}

func (e *NumberedList) MatchesMarkdownLine(line string) bool {
	return numberPattern.MatchString(strings.TrimSpace(line))
}

func (e *NumberedList) MarkdownToBlock(text string) []Block {
	m := numberPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	b := New(TypeNumberedListItem)
	b.NumberedListItem = &TextBlock{RichText: e.format.Parse(strings.TrimSpace(m[2])), Color: richtext.ColorDefault}
	return []Block{b}
}

func (e *NumberedList) MatchesBlock(b *Block) bool {
	return b.Type == TypeNumberedListItem && b.NumberedListItem != nil
}

func (e *NumberedList) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	return "1. " + e.format.Render(b.NumberedListItem.RichText), true
}

func (e *NumberedList) ChildSyntax() ChildSyntax { return ChildrenIndented }

// ToDoElement handles - [ ] and - [x] items
type ToDoElement struct{ base }

func NewToDo(f *richtext.Formatter) *ToDoElement {
	return &ToDoElement{base{name: "todo", format: f}}
}

func (e *ToDoElement) MatchesMarkdownLine(line string) bool {
	return todoPattern.MatchString(strings.TrimSpace(line))
}

func (e *ToDoElement) MarkdownToBlock(text string) []Block {
	m := todoPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	b := New(TypeToDo)
	b.ToDo = &ToDo{
		RichText: e.format.Parse(strings.TrimSpace(m[2])),
		Checked:  strings.EqualFold(m[1], "x"),
		Color:    richtext.ColorDefault,
	}
	return []Block{b}
}

func (e *ToDoElement) MatchesBlock(b *Block) bool {
	return b.Type == TypeToDo && b.ToDo != nil
}

func (e *ToDoElement) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	box := "[ ]"
	if b.ToDo.Checked {
		box = "[x]"
	}
	return "- " + box + " " + e.format.Render(b.ToDo.RichText), true
}

func (e *ToDoElement) ChildSyntax() ChildSyntax { return ChildrenIndented }

var quotePattern = regexp.MustCompile(`^>\s*(?:\[background:(\w+)\]\s*)?(.+)$`)

// QuoteElement handles single-line > quotes with an optional
// [background:color] token
type QuoteElement struct{ base }

func NewQuote(f *richtext.Formatter) *QuoteElement {
	return &QuoteElement{base{name: "quote", format: f}}
}

func (e *QuoteElement) MatchesMarkdownLine(line string) bool {
	return quotePattern.MatchString(strings.TrimSpace(line))
}

func (e *QuoteElement) MarkdownToBlock(text string) []Block {
	m := quotePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	content := strings.TrimSpace(m[2])
	if content == "" {
		return nil
	}
	color := richtext.ColorDefault
	if m[1] != "" {
		name := strings.TrimSuffix(strings.ToLower(m[1]), "_background")
		if c, ok := richtext.ParseColor(name + "_background"); ok {
			color = c
		}
	}
	b := New(TypeQuote)
	b.Quote = &TextBlock{RichText: e.format.Parse(content), Color: color}
	return []Block{b}
}

func (e *QuoteElement) MatchesBlock(b *Block) bool {
	return b.Type == TypeQuote && b.Quote != nil
}

func (e *QuoteElement) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	text := strings.TrimSpace(e.format.Render(b.Quote.RichText))
	if text == "" {
		return "", false
	}
	if c := string(b.Quote.Color); strings.HasSuffix(c, "_background") {
		return "> [background:" + strings.TrimSuffix(c, "_background") + "] " + text, true
	}
	return "> " + text, true
}

func (e *QuoteElement) ChildSyntax() ChildSyntax { return ChildrenIndented }
