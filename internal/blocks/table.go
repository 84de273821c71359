package blocks

import (
	"regexp"
	"strings"

	"github.com/gerunddev/notionbridge/internal/richtext"
)

var (
	tableRowPattern       = regexp.MustCompile(`^\s*\|(.+)\|\s*$`)
	tableSeparatorPattern = regexp.MustCompile(`^\s*\|([\s\-:|]+)\|\s*$`)
)

// IsTableRow reports whether line is a | cell | cell | row
func IsTableRow(line string) bool {
	return tableRowPattern.MatchString(line)
}

// IsTableSeparator reports whether line is a |---|---| header separator
func IsTableSeparator(line string) bool {
	return tableSeparatorPattern.MatchString(line) && strings.Contains(line, "-")
}

// splitCells splits a table row on unescaped pipes
func splitCells(line string) []string {
	m := tableRowPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	var cells []string
	var cur strings.Builder
	inner := m[1]
	for i := 0; i < len(inner); i++ {
		switch {
		case inner[i] == '\\' && i+1 < len(inner) && inner[i+1] == '|':
			cur.WriteByte('|')
			i++
		case inner[i] == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(inner[i])
		}
	}
	return append(cells, strings.TrimSpace(cur.String()))
}

// TableElement handles pipe tables. Rows become table_row children.
type TableElement struct{ base }

func NewTable(f *richtext.Formatter) *TableElement {
	return &TableElement{base{name: "table", format: f}}
}

func (e *TableElement) IsMultiline() bool { return true }

func (e *TableElement) ChildSyntax() ChildSyntax { return ChildrenInline }

func (e *TableElement) MatchesMarkdownLine(line string) bool {
	return IsTableRow(line)
}

// MarkdownToBlock takes all lines of one table. The first row sets the
// width; a separator right after it marks that row as the column header.
func (e *TableElement) MarkdownToBlock(text string) []Block {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) == 0 || !IsTableRow(lines[0]) {
		return nil
	}

	header := splitCells(lines[0])
	width := len(header)
	hasHeader := len(lines) > 1 && IsTableSeparator(lines[1])

	rows := []Block{e.row(header, width)}
	for i, l := range lines[1:] {
		if i == 0 && hasHeader {
			continue
		}
		if !IsTableRow(l) || IsTableSeparator(l) {
			continue
		}
		rows = append(rows, e.row(splitCells(l), width))
	}

	b := New(TypeTable)
	b.Table = &Table{
		TableWidth:      width,
		HasColumnHeader: hasHeader,
		Children:        rows,
	}
	return []Block{b, EmptyParagraph()}
}

func (e *TableElement) row(cells []string, width int) Block {
	out := make([][]richtext.RichText, width)
	for i := range out {
		if i < len(cells) {
			out[i] = e.format.Parse(cells[i])
		} else {
			out[i] = []richtext.RichText{}
		}
	}
	b := New(TypeTableRow)
	b.TableRow = &TableRow{Cells: out}
	return b
}

func (e *TableElement) MatchesBlock(b *Block) bool {
	return b.Type == TypeTable && b.Table != nil
}

func (e *TableElement) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	var lines []string
	for i, child := range b.ChildBlocks() {
		if child.Type != TypeTableRow || child.TableRow == nil {
			continue
		}
		cells := make([]string, len(child.TableRow.Cells))
		for j, c := range child.TableRow.Cells {
			cells[j] = strings.ReplaceAll(e.format.Render(c), "|", `\|`)
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
		if i == 0 && b.Table.HasColumnHeader {
			width := b.Table.TableWidth
			if width == 0 {
				width = len(cells)
			}
			sep := make([]string, width)
			for j := range sep {
				sep[j] = "---"
			}
			lines = append(lines, "| "+strings.Join(sep, " | ")+" |")
		}
	}
	if len(lines) == 0 {
		return "", false
	}
	return strings.Join(lines, "\n"), true
}

// TableRowElement renders a lone table_row outside its table
type TableRowElement struct{ base }

func NewTableRow(f *richtext.Formatter) *TableRowElement {
	return &TableRowElement{base{name: "table_row", format: f}}
}

func (e *TableRowElement) MatchesMarkdownLine(string) bool { return false }

func (e *TableRowElement) MarkdownToBlock(string) []Block { return nil }

func (e *TableRowElement) MatchesBlock(b *Block) bool {
	return b.Type == TypeTableRow && b.TableRow != nil
}

func (e *TableRowElement) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	cells := make([]string, len(b.TableRow.Cells))
	for i, c := range b.TableRow.Cells {
		cells[i] = strings.ReplaceAll(e.format.Render(c), "|", `\|`)
	}
	return "| " + strings.Join(cells, " | ") + " |", true
}
