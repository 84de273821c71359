package styles

import "github.com/charmbracelet/lipgloss"

// Monokai Pro color palette
const (
	Background = "#2D2A2E"
	Foreground = "#FCFCFA"

	Red     = "#FF6188" // Errors, removed lines
	Orange  = "#FC9867" // Warnings
	Yellow  = "#FFD866" // Selection
	Green   = "#A9DC76" // Success, added lines
	Cyan    = "#78DCE8" // Block types
	Purple  = "#AB9DF2" // Containers
	Magenta = "#FF6188" // Titles

	Comment = "#727072" // Dim text, help
	Border  = "#5B595C"
)

// Command output
var (
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Green))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Red))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Orange))
	DimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(Comment))
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(Magenta))
	SpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Magenta))
	HelpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(Comment))
)

// Block browser
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(Magenta)).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(Border)).
			BorderBottom(true)

	TableStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(Border))

	SelectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Background)).
			Background(lipgloss.Color(Yellow))

	NormalTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Foreground))

	BlockTypeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Cyan))
	ContainerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Purple)).Bold(true)
)

// Diff summary counts
var (
	AddedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Green))
	RemovedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Red))
)
