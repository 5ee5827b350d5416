package controller

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 1)

var titleStyle = lipgloss.NewStyle().Bold(true)

// SystemStatus renders the control center summary box.
func (c *Controller) SystemStatus() string {
	c.mu.RLock()
	running := c.running
	city := "Not configured"
	if c.config != nil {
		city = c.config.CityName
	}
	count := len(c.order)
	c.mu.RUnlock()
	active := len(c.ActiveAlerts())

	status := "Stopped"
	if running {
		status = "Running"
	}

	body := strings.Join([]string{
		titleStyle.Render("SMART CITY CONTROL CENTER"),
		"Status: " + status,
		"City: " + city,
		fmt.Sprintf("Subsystems: %d", count),
		fmt.Sprintf("Active Alerts: %d", active),
	}, "\n")
	return boxStyle.Render(body)
}

// SubsystemsReport lists each subsystem's status and device count in
// registration order. Protected subsystems report what the current
// session is allowed to see.
func (c *Controller) SubsystemsReport() string {
	var sb strings.Builder
	sb.WriteString("SUBSYSTEMS REPORT\n")
	for _, s := range c.Subsystems() {
		fmt.Fprintf(&sb, "\n%s\n  Name: %s\n  Status: %s\n  Devices: %d\n",
			strings.ToUpper(string(s.Category())), s.Name(), s.Status(), len(s.Devices()))
	}
	return sb.String()
}
