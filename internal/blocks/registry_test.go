package blocks

import (
	"testing"

	"github.com/gerunddev/notionbridge/internal/richtext"
)

type stubElement struct {
	base
	prefix string
}

func (e *stubElement) MatchesMarkdownLine(line string) bool {
	return len(line) >= len(e.prefix) && line[:len(e.prefix)] == e.prefix
}

func (e *stubElement) MarkdownToBlock(string) []Block { return []Block{EmptyParagraph()} }

func (e *stubElement) MatchesBlock(*Block) bool { return false }

func (e *stubElement) BlockToMarkdown(*Block) (string, bool) { return "", false }

func TestParagraphIsAlwaysLast(t *testing.T) {
	f := richtext.NewFormatter(nil)
	r := NewBuilder(f).
		Add(NewParagraph(f)).
		WithDefaults().
		Add(&stubElement{base: base{name: "late"}, prefix: "!!"}).
		Build()

	elements := r.Elements()
	if last := elements[len(elements)-1]; last.Name() != "paragraph" {
		t.Errorf("last element = %s, want paragraph", last.Name())
	}
	count := 0
	for _, e := range elements {
		if e.Name() == "paragraph" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("registry has %d paragraph elements, want 1", count)
	}

	e, _ := r.ElementForMarkdownLine("!! shout")
	if e.Name() != "late" {
		t.Errorf("ElementForMarkdownLine(!! shout) = %s, want late", e.Name())
	}
}

func TestBuilderBeforeAndRemove(t *testing.T) {
	f := richtext.NewFormatter(nil)
	stub := &stubElement{base: base{name: "hash-stub"}, prefix: "#"}

	r := NewBuilder(f).WithDefaults().Before("heading", stub).Build()
	if e, _ := r.ElementForMarkdownLine("# Title"); e.Name() != "hash-stub" {
		t.Errorf("ElementForMarkdownLine(# Title) = %s, want hash-stub", e.Name())
	}

	r = NewBuilder(f).WithDefaults().Remove("heading").Build()
	if e, _ := r.ElementForMarkdownLine("# Title"); e.Name() != "paragraph" {
		t.Errorf("ElementForMarkdownLine(# Title) without heading = %s, want paragraph", e.Name())
	}
	if _, ok := r.Element("heading"); ok {
		t.Error("removed element still registered by name")
	}
}

func TestElementForBlockHasNoFallback(t *testing.T) {
	r := testRegistry()
	b := Block{Type: "some_future_type"}
	if e, ok := r.ElementForBlock(&b); ok {
		t.Errorf("ElementForBlock(some_future_type) = %s, want none", e.Name())
	}
}

func TestEmptyLineMatchesNothing(t *testing.T) {
	r := testRegistry()
	for _, line := range []string{"", "   ", "\t"} {
		if e, ok := r.ElementForMarkdownLine(line); ok {
			t.Errorf("ElementForMarkdownLine(%q) = %s, want none", line, e.Name())
		}
	}
}
