package blocks

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gerunddev/notionbridge/internal/richtext"
)

var (
	columnListPattern = regexp.MustCompile(`(?i)^:::\s*columns\s*$`)
	columnPattern     = regexp.MustCompile(`(?i)^:::\s*column(?:\s+(.*?))?\s*$`)
	fenceClosePattern = regexp.MustCompile(`^:::\s*$`)
)

// IsFenceClose reports whether line is a bare ::: closing a column or
// column list
func IsFenceClose(line string) bool {
	return fenceClosePattern.MatchString(strings.TrimSpace(line))
}

type ColumnListElement struct{ base }

func NewColumnList(f *richtext.Formatter) *ColumnListElement {
	return &ColumnListElement{base{name: "column_list", format: f}}
}

func (e *ColumnListElement) ChildSyntax() ChildSyntax { return ChildrenFenced }

func (e *ColumnListElement) MatchesMarkdownLine(line string) bool {
	return columnListPattern.MatchString(strings.TrimSpace(line))
}

func (e *ColumnListElement) MarkdownToBlock(text string) []Block {
	if !e.MatchesMarkdownLine(text) {
		return nil
	}
	b := New(TypeColumnList)
	b.ColumnList = &Container{}
	return []Block{b}
}

func (e *ColumnListElement) MatchesBlock(b *Block) bool {
	return b.Type == TypeColumnList
}

func (e *ColumnListElement) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	return "::: columns", true
}

type ColumnElement struct{ base }

func NewColumn(f *richtext.Formatter) *ColumnElement {
	return &ColumnElement{base{name: "column", format: f}}
}

func (e *ColumnElement) ChildSyntax() ChildSyntax { return ChildrenFenced }

func (e *ColumnElement) MatchesMarkdownLine(line string) bool {
	return columnPattern.MatchString(strings.TrimSpace(line))
}

// MarkdownToBlock reads an optional width ratio; values outside (0, 1] or
// that fail to parse leave the ratio unset
func (e *ColumnElement) MarkdownToBlock(text string) []Block {
	m := columnPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	b := New(TypeColumn)
	b.Column = &Column{WidthRatio: parseRatio(m[1])}
	return []Block{b}
}

func parseRatio(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil || r <= 0 || r > 1 {
		return nil
	}
	return &r
}

func (e *ColumnElement) MatchesBlock(b *Block) bool {
	return b.Type == TypeColumn
}

func (e *ColumnElement) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	if b.Column != nil && b.Column.WidthRatio != nil {
		return "::: column " + strconv.FormatFloat(*b.Column.WidthRatio, 'f', -1, 64), true
	}
	return "::: column", true
}
