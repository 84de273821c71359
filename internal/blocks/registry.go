package blocks

import (
	"github.com/gerunddev/notionbridge/internal/richtext"
)

// Registry is an ordered set of elements. The paragraph element is always
// last and catches every non-empty line. There is no matching fallback for
// blocks: an unknown block type has no element.
type Registry struct {
	elements []Element
	byName   map[string]Element
	format   *richtext.Formatter
}

// ElementForMarkdownLine returns the first element whose syntax matches line
func (r *Registry) ElementForMarkdownLine(line string) (Element, bool) {
	for _, e := range r.elements {
		if e.MatchesMarkdownLine(line) {
			return e, true
		}
	}
	return nil, false
}

// BlocksForMarkdownLine converts line with the first element that both
// matches it and accepts it
func (r *Registry) BlocksForMarkdownLine(line string) (Element, []Block) {
	for _, e := range r.elements {
		if !e.MatchesMarkdownLine(line) {
			continue
		}
		if out := e.MarkdownToBlock(line); out != nil {
			return e, out
		}
	}
	return nil, nil
}

// ElementForBlock returns the first element that can render b
func (r *Registry) ElementForBlock(b *Block) (Element, bool) {
	if b == nil {
		return nil, false
	}
	for _, e := range r.elements {
		if e.MatchesBlock(b) {
			return e, true
		}
	}
	return nil, false
}

// Element looks an element up by name
func (r *Registry) Element(name string) (Element, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// Elements returns the elements in priority order
func (r *Registry) Elements() []Element {
	out := make([]Element, len(r.elements))
	copy(out, r.elements)
	return out
}

// Formatter returns the inline formatter the elements share
func (r *Registry) Formatter() *richtext.Formatter {
	return r.format
}

// Builder assembles a Registry with explicit ordering
type Builder struct {
	format   *richtext.Formatter
	elements []Element
}

// NewBuilder starts an empty registry; f is shared by all default elements
func NewBuilder(f *richtext.Formatter) *Builder {
	if f == nil {
		f = richtext.NewFormatter(nil)
	}
	return &Builder{format: f}
}

// WithDefaults adds every built-in element in priority order. Multi-symbol
// prefixes come before the single-symbol ones they overlap with.
func (b *Builder) WithDefaults() *Builder {
	f := b.format
	return b.Add(
		NewToggleableHeading(f),
		NewToggle(f),
		NewHeading(f),
		NewCode(f),
		NewTable(f),
		NewColumnList(f),
		NewColumn(f),
		NewCallout(f),
		NewBookmark(f),
		NewEmbed(f),
		NewImage(f),
		NewVideo(f),
		NewAudio(f),
		NewFile(f),
		NewPDF(f),
		NewEquation(f),
		NewTableOfContents(f),
		NewBreadcrumb(f),
		NewSyncedBlock(f),
		NewDivider(f),
		NewToDo(f),
		NewBulletedList(f),
		NewNumberedList(f),
		NewQuote(f),
		NewTableRow(f),
		NewChildPage(f),
	)
}

// Add appends elements. Paragraph elements are ignored; Build adds one.
func (b *Builder) Add(elements ...Element) *Builder {
	for _, e := range elements {
		if _, ok := e.(*Paragraph); ok {
			continue
		}
		b.elements = append(b.elements, e)
	}
	return b
}

// Before inserts e ahead of the element named name, or appends it when no
// such element exists
func (b *Builder) Before(name string, e Element) *Builder {
	for i, existing := range b.elements {
		if existing.Name() == name {
			b.elements = append(b.elements[:i], append([]Element{e}, b.elements[i:]...)...)
			return b
		}
	}
	return b.Add(e)
}

// Remove drops the element named name
func (b *Builder) Remove(name string) *Builder {
	out := b.elements[:0]
	for _, e := range b.elements {
		if e.Name() != name {
			out = append(out, e)
		}
	}
	b.elements = out
	return b
}

// Build returns the registry with the paragraph element appended last
func (b *Builder) Build() *Registry {
	elements := make([]Element, 0, len(b.elements)+1)
	elements = append(elements, b.elements...)
	elements = append(elements, NewParagraph(b.format))

	byName := make(map[string]Element, len(elements))
	for _, e := range elements {
		if _, exists := byName[e.Name()]; !exists {
			byName[e.Name()] = e
		}
	}
	return &Registry{elements: elements, byName: byName, format: b.format}
}

// DefaultRegistry builds a registry with every built-in element
func DefaultRegistry(f *richtext.Formatter) *Registry {
	return NewBuilder(f).WithDefaults().Build()
}
