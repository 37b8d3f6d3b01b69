package tui

import "github.com/charmbracelet/lipgloss"

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))

	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).MarginTop(1)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(1, 2)
	summaryLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	dimStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
