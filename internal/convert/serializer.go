package convert

import (
	"strings"

	"github.com/gerunddev/notionbridge/internal/blocks"
)

// Renderer turns fetched Notion blocks back into Markdown
type Renderer struct {
	registry *blocks.Registry
}

func NewRenderer(r *blocks.Registry) *Renderer {
	return &Renderer{registry: r}
}

// Render walks the block tree depth-first. Top-level blocks are separated
// by a blank line; nested siblings by a single newline.
func (r *Renderer) Render(bs []blocks.Block) string {
	return strings.Join(r.renderSiblings(bs), "\n\n")
}

func (r *Renderer) renderSiblings(bs []blocks.Block) []string {
	var out []string
	for i := range bs {
		if s := r.renderBlock(&bs[i]); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// renderChildren joins nested siblings. Two multi-line blocks of the same
// kind in a row get a blank line so they do not merge on the next parse.
func (r *Renderer) renderChildren(children []blocks.Block) string {
	var sb strings.Builder
	var prev blocks.Element
	for i := range children {
		s := r.renderBlock(&children[i])
		if s == "" {
			continue
		}
		e, _ := r.registry.ElementForBlock(&children[i])
		if sb.Len() > 0 {
			sb.WriteString("\n")
			if e != nil && prev != nil && e.IsMultiline() && e.Name() == prev.Name() {
				sb.WriteString("\n")
			}
		}
		sb.WriteString(s)
		prev = e
	}
	return sb.String()
}

func (r *Renderer) renderBlock(b *blocks.Block) string {
	var header string
	syntax := blocks.ChildrenNone
	if e, ok := r.registry.ElementForBlock(b); ok {
		if md, ok := e.BlockToMarkdown(b); ok {
			header = md
		}
		syntax = e.ChildSyntax()
	}

	switch syntax {
	case blocks.ChildrenInline:
		return header
	case blocks.ChildrenPiped:
		parts := []string{header}
		if body := r.renderChildren(b.ChildBlocks()); body != "" {
			parts = append(parts, prefixLines(body, "| ", "|"))
		}
		return strings.Join(append(parts, toggleClose), "\n")
	case blocks.ChildrenFenced:
		parts := []string{header}
		if body := r.renderChildren(b.ChildBlocks()); body != "" {
			parts = append(parts, body)
		}
		return strings.Join(append(parts, ":::"), "\n")
	}

	body := r.renderChildren(b.ChildBlocks())
	if body == "" {
		return header
	}
	if header == "" {
		return body
	}
	return header + "\n" + prefixLines(body, indentStep, "")
}

// prefixLines prefixes every line of s; empty lines get blank instead
func prefixLines(s, prefix, blank string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l == "" {
			lines[i] = blank
		} else {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}
