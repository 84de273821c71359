package blocks

import (
	"github.com/gerunddev/notionbridge/internal/richtext"
)

// ChildSyntax describes how a container's children are written in Markdown
type ChildSyntax int

const (
	// ChildrenNone marks elements that never carry children
	ChildrenNone ChildSyntax = iota
	// ChildrenIndented renders children one indentation step deeper
	ChildrenIndented
	// ChildrenPiped renders children as "| " prefixed lines closed by +++
	ChildrenPiped
	// ChildrenFenced renders children between ::: markers
	ChildrenFenced
	// ChildrenInline means the element renders its own children
	ChildrenInline
)

// Element converts one block type between Markdown and Block form
type Element interface {
	// Name identifies the element in a registry
	Name() string
	// MatchesMarkdownLine is a cheap syntactic test for a line
	MatchesMarkdownLine(line string) bool
	// MarkdownToBlock returns nil when the element does not apply
	MarkdownToBlock(text string) []Block
	// MatchesBlock reports whether BlockToMarkdown applies to b
	MatchesBlock(b *Block) bool
	// BlockToMarkdown renders b without its children
	BlockToMarkdown(b *Block) (string, bool)
	// IsMultiline is true when the element's Markdown spans several lines
	// before container handling applies, as for code fences and tables
	IsMultiline() bool
	// ChildSyntax reports how children of this element's blocks are written
	ChildSyntax() ChildSyntax
}

// base provides the defaults most single-line elements share
type base struct {
	name   string
	format *richtext.Formatter
}

func (e base) Name() string { return e.name }

func (e base) IsMultiline() bool { return false }

func (e base) ChildSyntax() ChildSyntax { return ChildrenNone }

// quotedCaption renders a caption as the ` "caption"` suffix used by media
// and embed syntax
func quotedCaption(f *richtext.Formatter, caption []richtext.RichText) string {
	if len(caption) == 0 {
		return ""
	}
	text := f.Render(caption)
	if text == "" {
		return ""
	}
	return ` "` + text + `"`
}

func parseCaption(f *richtext.Formatter, caption string) []richtext.RichText {
	if caption == "" {
		return nil
	}
	return f.Parse(caption)
}
