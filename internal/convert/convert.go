// Package convert converts between Markdown documents and Notion block trees.
package convert

import (
	"github.com/gerunddev/notionbridge/internal/blocks"
	"github.com/gerunddev/notionbridge/internal/richtext"
)

// Converter pairs a parser and a renderer over one registry
type Converter struct {
	registry *blocks.Registry
	parser   *Parser
	renderer *Renderer
}

// New creates a converter over r, or over the default registry when r is nil
func New(r *blocks.Registry) *Converter {
	if r == nil {
		r = blocks.DefaultRegistry(nil)
	}
	return &Converter{
		registry: r,
		parser:   NewParser(r),
		renderer: NewRenderer(r),
	}
}

// NewWithResolver creates a converter over the default registry whose
// mentions resolve names and IDs through res
func NewWithResolver(res richtext.Resolver) *Converter {
	return New(blocks.DefaultRegistry(richtext.NewFormatter(res)))
}

func (c *Converter) Registry() *blocks.Registry {
	return c.registry
}

// MarkdownToBlocks parses a Markdown document into creation payloads
func (c *Converter) MarkdownToBlocks(markdown string) ([]blocks.Block, error) {
	return c.parser.Parse(markdown)
}

// BlocksToMarkdown renders a fetched block tree
func (c *Converter) BlocksToMarkdown(bs []blocks.Block) string {
	return c.renderer.Render(bs)
}

// MarkdownToBlocks parses markdown with the default registry and no
// mention resolution
func MarkdownToBlocks(markdown string) ([]blocks.Block, error) {
	return New(nil).MarkdownToBlocks(markdown)
}

// BlocksToMarkdown renders bs with the default registry
func BlocksToMarkdown(bs []blocks.Block) string {
	return New(nil).BlocksToMarkdown(bs)
}
