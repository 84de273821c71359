package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gerunddev/notionbridge/internal/blocks"
	"github.com/gerunddev/notionbridge/internal/richtext"
	"github.com/gerunddev/notionbridge/internal/styles"
	"github.com/mattn/go-runewidth"
)

// BlockRow is one block of a flattened tree
type BlockRow struct {
	Depth    int
	Type     blocks.Type
	Summary  string
	Children int
	Block    blocks.Block
}

// Flatten lists a block tree depth first
func Flatten(bs []blocks.Block) []BlockRow {
	var rows []BlockRow
	var walk func([]blocks.Block, int)
	walk = func(level []blocks.Block, depth int) {
		for i := range level {
			b := level[i]
			children := b.ChildBlocks()
			rows = append(rows, BlockRow{
				Depth:    depth,
				Type:     b.Type,
				Summary:  Summary(b),
				Children: len(children),
				Block:    b,
			})
			walk(children, depth+1)
		}
	}
	walk(bs, 0)
	return rows
}

// Summary returns a single line describing the block's content
func Summary(b blocks.Block) string {
	var s string
	switch {
	case b.Code != nil:
		s = richtext.PlainText(b.Code.RichText)
	case b.Equation != nil:
		s = b.Equation.Expression
	case b.Bookmark != nil:
		s = b.Bookmark.URL
	case b.Embed != nil:
		s = b.Embed.URL
	case b.FilePayload() != nil:
		s = b.FilePayload().URL()
	case b.TableRow != nil:
		cells := make([]string, len(b.TableRow.Cells))
		for i, c := range b.TableRow.Cells {
			cells[i] = richtext.PlainText(c)
		}
		s = strings.Join(cells, " | ")
	case b.Table != nil:
		s = strconv.Itoa(b.Table.TableWidth) + " columns"
	case b.Column != nil && b.Column.WidthRatio != nil:
		s = "ratio " + strconv.FormatFloat(*b.Column.WidthRatio, 'f', -1, 64)
	case b.ChildPage != nil:
		s = b.ChildPage.Title
	default:
		s = richtext.PlainText(b.RichText())
	}
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to width terminal cells, marking the cut with an ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// RenderFunc renders a block subtree as Markdown for the detail view
type RenderFunc func([]blocks.Block) string

const (
	typeWidth     = 24
	childrenWidth = 8
	minSummary    = 20
)

type browseModel struct {
	table       table.Model
	viewport    viewport.Model
	rows        []BlockRow
	render      RenderFunc
	title       string
	showingView bool
	selected    *BlockRow
	width       int
	height      int
}

// InitBrowseModel creates a block tree browser. render produces the
// detail view of the selected block.
func InitBrowseModel(title string, bs []blocks.Block, render RenderFunc) browseModel {
	t := table.New(
		table.WithColumns(browseColumns(80)),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(styles.Border)).
		BorderBottom(true).
		Bold(false)
	ts.Selected = styles.SelectedStyle
	t.SetStyles(ts)

	vp := viewport.New(100, 20)
	vp.Style = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(styles.Border)).
		Padding(1)

	m := browseModel{
		table:    t,
		viewport: vp,
		rows:     Flatten(bs),
		render:   render,
		title:    title,
		width:    80,
	}
	m.table.SetRows(m.tableRows())
	return m
}

func browseColumns(width int) []table.Column {
	summary := width - typeWidth - childrenWidth - 8
	if summary < minSummary {
		summary = minSummary
	}
	return []table.Column{
		{Title: "Type", Width: typeWidth},
		{Title: "Content", Width: summary},
		{Title: "Children", Width: childrenWidth},
	}
}

func (m browseModel) tableRows() []table.Row {
	cols := browseColumns(m.width)
	rows := make([]table.Row, 0, len(m.rows))
	for _, r := range m.rows {
		children := ""
		if r.Children > 0 {
			children = strconv.Itoa(r.Children)
		}
		rows = append(rows, table.Row{
			Truncate(strings.Repeat("  ", r.Depth)+string(r.Type), cols[0].Width),
			Truncate(r.Summary, cols[1].Width),
			children,
		})
	}
	return rows
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetColumns(browseColumns(msg.Width))
		m.table.SetRows(m.tableRows())
		m.table.SetHeight(max(msg.Height-8, 3))
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = max(msg.Height-6, 3)

	case tea.KeyMsg:
		if m.showingView {
			switch msg.String() {
			case "q", "esc":
				m.showingView = false
				return m, nil
			case "up", "k", "down", "j", "pgup", "pgdown":
				m.viewport, cmd = m.viewport.Update(msg)
				return m, cmd
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k", "down", "j", "pgup", "pgdown", "home", "end":
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		case "enter":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.rows) {
				m.selected = &m.rows[idx]
				m.showingView = true
				content := ""
				if m.render != nil {
					content = m.render([]blocks.Block{m.selected.Block})
				}
				m.viewport.SetContent(content)
				m.viewport.GotoTop()
			}
			return m, nil
		}
	}

	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(m.title))
	b.WriteString("\n\n")

	if m.showingView && m.selected != nil {
		b.WriteString(styles.BlockTypeStyle.Render(string(m.selected.Type)))
		b.WriteString("\n\n")
		b.WriteString(m.viewport.View())
		b.WriteString("\n\n")
		b.WriteString(styles.HelpStyle.Render("↑/k up • ↓/j down • esc/q back"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(styles.DimStyle.Render(fmt.Sprintf("Blocks: %d", len(m.rows))))
	b.WriteString("\n\n")
	b.WriteString(styles.TableStyle.Render(m.table.View()))
	b.WriteString("\n\n")
	b.WriteString(styles.HelpStyle.Render("↑/k up • ↓/j down • enter markdown • q quit"))
	b.WriteString("\n")

	return b.String()
}

// Browse runs the block browser until the user quits
func Browse(title string, bs []blocks.Block, render RenderFunc) error {
	_, err := tea.NewProgram(InitBrowseModel(title, bs, render), tea.WithAltScreen()).Run()
	return err
}
