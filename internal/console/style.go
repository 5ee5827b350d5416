package console

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nerrad567/smartcity-core/internal/controller"
)

var (
	promptStyle = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	headerStyle = lipgloss.NewStyle().Bold(true)
	panelStyle  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1)
)

var severityColor = map[controller.Severity]lipgloss.Color{
	controller.SeverityLow:      lipgloss.Color("6"),
	controller.SeverityMedium:   lipgloss.Color("3"),
	controller.SeverityHigh:     lipgloss.Color("208"),
	controller.SeverityCritical: lipgloss.Color("1"),
}

func severityLabel(s controller.Severity) string {
	return lipgloss.NewStyle().Foreground(severityColor[s]).Render(controller.Marker(s) + " " + string(s))
}
