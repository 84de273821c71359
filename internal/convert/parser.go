package convert

import (
	"math"
	"regexp"
	"strings"

	"github.com/gerunddev/notionbridge/internal/blocks"
)

var pipeLinePattern = regexp.MustCompile(`^\|\s?(.*)$`)

// toggleClose ends the innermost toggle or toggleable heading
const toggleClose = "+++"

const indentStep = "    "

// Parser turns Markdown into Notion block creation payloads. It holds no
// state between calls and is safe for concurrent use.
type Parser struct {
	registry *blocks.Registry
}

func NewParser(r *blocks.Registry) *Parser {
	return &Parser{registry: r}
}

type line struct {
	num  int
	text string
}

// frame is one open container. The root frame has no block.
type frame struct {
	block    *blocks.Block
	syntax   blocks.ChildSyntax
	children []blocks.Block
	pending  []line
	opened   int
}

type parseState struct {
	p     *Parser
	stack []*frame
}

// Parse converts a Markdown document. Containers left open at the end of
// input are closed. Text runs longer than MaxTextLength are split. Only
// column validation fails; every other construct degrades to paragraphs or
// is skipped.
func (p *Parser) Parse(markdown string) ([]blocks.Block, error) {
	markdown = strings.ReplaceAll(markdown, "\r\n", "\n")
	raw := strings.Split(markdown, "\n")
	lines := make([]line, len(raw))
	for i, text := range raw {
		lines[i] = line{num: i + 1, text: text}
	}
	bs, err := p.parseLines(lines)
	if err != nil {
		return nil, err
	}
	limitTextLength(bs, MaxTextLength)
	return bs, nil
}

func (p *Parser) parseLines(lines []line) ([]blocks.Block, error) {
	s := &parseState{p: p, stack: []*frame{{}}}
	for i := 0; i < len(lines); {
		n, err := s.step(lines, i)
		if err != nil {
			return nil, err
		}
		i += n
	}
	for len(s.stack) > 1 {
		if err := s.closeTop(); err != nil {
			return nil, err
		}
	}
	root := s.stack[0]
	if root.children == nil {
		return []blocks.Block{}, nil
	}
	return root.children, nil
}

func (s *parseState) top() *frame {
	return s.stack[len(s.stack)-1]
}

// step handles lines[i] and returns how many lines it consumed
func (s *parseState) step(lines []line, i int) (int, error) {
	l := lines[i]
	top := s.top()
	trimmed := strings.TrimSpace(l.text)

	if top.syntax == blocks.ChildrenPiped {
		if m := pipeLinePattern.FindStringSubmatch(l.text); m != nil {
			top.pending = append(top.pending, line{num: l.num, text: m[1]})
			return 1, nil
		}
	}
	if trimmed == "" {
		return 1, nil
	}
	if err := s.flush(top); err != nil {
		return 0, err
	}

	if isIndented(l.text) {
		if n, ok, err := s.captureIndented(lines, i); ok || err != nil {
			return n, err
		}
	}

	switch {
	case trimmed == blocks.EquationDelimiter:
		if n, ok := s.equationBlock(lines, i); ok {
			return n, nil
		}
	case trimmed == toggleClose:
		if top.syntax == blocks.ChildrenPiped {
			return 1, s.closeTop()
		}
		return 1, nil
	case blocks.IsFenceClose(trimmed):
		return 1, s.closeFenced()
	}

	e, ok := s.p.registry.ElementForMarkdownLine(l.text)
	if !ok {
		return 1, nil
	}

	if e.IsMultiline() {
		n, text := gather(e, lines, i)
		if out := e.MarkdownToBlock(text); out != nil {
			top.children = append(top.children, out...)
			return n, nil
		}
	}

	switch e.ChildSyntax() {
	case blocks.ChildrenPiped, blocks.ChildrenFenced:
		if out := e.MarkdownToBlock(l.text); len(out) > 0 {
			s.push(out[0], e.ChildSyntax(), l.num)
			return 1, nil
		}
	}

	if _, out := s.p.registry.BlocksForMarkdownLine(l.text); out != nil {
		top.children = append(top.children, out...)
	}
	return 1, nil
}

func (s *parseState) push(b blocks.Block, syntax blocks.ChildSyntax, num int) {
	s.stack = append(s.stack, &frame{block: &b, syntax: syntax, opened: num})
}

// flush parses the pipe lines collected so far into children of f
func (s *parseState) flush(f *frame) error {
	if len(f.pending) == 0 {
		return nil
	}
	pending := f.pending
	f.pending = nil
	children, err := s.p.parseLines(pending)
	if err != nil {
		return err
	}
	f.children = append(f.children, children...)
	return nil
}

// closeTop pops the innermost frame, attaches its children and appends its
// block to the parent
func (s *parseState) closeTop() error {
	f := s.top()
	if err := s.flush(f); err != nil {
		return err
	}
	if f.block.Type == blocks.TypeColumnList {
		if err := validateColumns(f); err != nil {
			return err
		}
	}
	if len(f.children) > 0 {
		f.block.SetChildren(f.children)
	}
	s.stack = s.stack[:len(s.stack)-1]
	parent := s.top()
	parent.children = append(parent.children, *f.block)
	return nil
}

// closeFenced closes the innermost column or column list along with any
// toggles still open inside it. A stray ::: is ignored.
func (s *parseState) closeFenced() error {
	idx := -1
	for i := len(s.stack) - 1; i > 0; i-- {
		if s.stack[i].syntax == blocks.ChildrenFenced {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	for len(s.stack) > idx {
		if err := s.closeTop(); err != nil {
			return err
		}
	}
	return nil
}

func validateColumns(f *frame) error {
	var ratios []float64
	columns := 0
	for _, c := range f.children {
		if c.Type != blocks.TypeColumn {
			continue
		}
		columns++
		if c.Column != nil && c.Column.WidthRatio != nil {
			ratios = append(ratios, *c.Column.WidthRatio)
		}
	}
	if columns < 2 {
		return &ColumnError{Kind: ErrInsufficientColumns, Line: f.opened, Columns: columns}
	}
	if len(ratios) == 0 {
		return nil
	}
	if len(ratios) != columns {
		return &ColumnError{Kind: ErrPartialRatios, Line: f.opened, Columns: columns, Ratios: ratios}
	}
	sum := 0.0
	for _, r := range ratios {
		sum += r
	}
	if math.Abs(sum-1) > ratioTolerance {
		return &ColumnError{Kind: ErrRatioSum, Line: f.opened, Columns: columns, Ratios: ratios}
	}
	return nil
}

func isIndented(text string) bool {
	return strings.HasPrefix(text, indentStep) || strings.HasPrefix(text, "\t")
}

func dedent(text string) string {
	if strings.HasPrefix(text, "\t") {
		return text[1:]
	}
	return strings.TrimPrefix(text, indentStep)
}

// captureIndented parses the indented run starting at lines[i] as children
// of the previous block, when that block takes indented children
func (s *parseState) captureIndented(lines []line, i int) (int, bool, error) {
	top := s.top()
	if len(top.children) == 0 {
		return 0, false, nil
	}
	parent := &top.children[len(top.children)-1]
	e, ok := s.p.registry.ElementForBlock(parent)
	if !ok || e.ChildSyntax() != blocks.ChildrenIndented {
		return 0, false, nil
	}

	var group []line
	j := i
	for j < len(lines) {
		text := lines[j].text
		if strings.TrimSpace(text) == "" {
			k := j + 1
			for k < len(lines) && strings.TrimSpace(lines[k].text) == "" {
				k++
			}
			if k == len(lines) || !isIndented(lines[k].text) {
				break
			}
			for ; j < k; j++ {
				group = append(group, line{num: lines[j].num})
			}
			continue
		}
		if !isIndented(text) {
			break
		}
		group = append(group, line{num: lines[j].num, text: dedent(text)})
		j++
	}

	children, err := s.p.parseLines(group)
	if err != nil {
		return 0, true, err
	}
	existing := parent.ChildBlocks()
	if !parent.SetChildren(append(existing[:len(existing):len(existing)], children...)) {
		top.children = append(top.children, children...)
	}
	return j - i, true, nil
}

// equationBlock handles a $$ line opening a multi-line equation
func (s *parseState) equationBlock(lines []line, i int) (int, bool) {
	e, ok := s.p.registry.Element("equation")
	if !ok {
		return 0, false
	}
	for j := i + 1; j < len(lines); j++ {
		if strings.TrimSpace(lines[j].text) != blocks.EquationDelimiter {
			continue
		}
		texts := make([]string, 0, j-i+1)
		for _, l := range lines[i : j+1] {
			texts = append(texts, l.text)
		}
		out := e.MarkdownToBlock(strings.Join(texts, "\n"))
		if out == nil {
			return 0, false
		}
		top := s.top()
		top.children = append(top.children, out...)
		return j - i + 1, true
	}
	return 0, false
}

// gather collects the lines of a multi-line element starting at lines[i].
// Code fences run to the closing fence and an optional caption line; other
// elements run while their syntax keeps matching.
func gather(e blocks.Element, lines []line, i int) (int, string) {
	texts := []string{strings.TrimSpace(lines[i].text)}
	j := i + 1
	if blocks.IsCodeFence(lines[i].text) {
		for ; j < len(lines); j++ {
			texts = append(texts, lines[j].text)
			if strings.TrimSpace(lines[j].text) != blocks.CodeFence {
				continue
			}
			j++
			if j < len(lines) {
				if _, ok := blocks.CaptionOf(lines[j].text); ok {
					texts = append(texts, lines[j].text)
					j++
				}
			}
			break
		}
		return j - i, strings.Join(texts, "\n")
	}
	for ; j < len(lines) && e.MatchesMarkdownLine(lines[j].text); j++ {
		texts = append(texts, lines[j].text)
	}
	return j - i, strings.Join(texts, "\n")
}
