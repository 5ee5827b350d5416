package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/nerrad567/smartcity-core/internal/controller"
	"github.com/nerrad567/smartcity-core/internal/device"
)

// defaultSector is the traffic feed sector queried when none is given.
const defaultSector = "downtown"

func commandTable() map[string]command {
	return map[string]command{
		"login":     {"login <category> <username> <password>", "open a session on a protected subsystem", cmdLogin},
		"logout":    {"logout <category>", "close the session on a protected subsystem", cmdLogout},
		"status":    {"status", "control center summary", cmdStatus},
		"report":    {"report [module]", "subsystem or module report", cmdReport},
		"start":     {"start [category]", "start the system or one subsystem", cmdStart},
		"stop":      {"stop [category]", "stop the system or one subsystem", cmdStop},
		"alerts":    {"alerts [all]", "list active (or all) alerts", cmdAlerts},
		"ack":       {"ack <alert-id>", "acknowledge an alert", cmdAck},
		"events":    {"events [n]", "show the last n events", cmdEvents},
		"devices":   {"devices <category>", "list a subsystem's devices", cmdDevices},
		"add":       {"add <category> <sensor|controller|actuator> <id> <name> [location]", "create and add a device", cmdAdd},
		"remove":    {"remove <category> <id>", "remove a device", cmdRemove},
		"logs":      {"logs <category> [clear]", "show or clear the call log", cmdLogs},
		"cache":     {"cache <category> [clear [key...]]", "show or invalidate the cache", cmdCache},
		"access":    {"access <category>", "show the access log", cmdAccess},
		"weather":   {"weather", "check temperature and forecast", cmdWeather},
		"traffic":   {"traffic [sector]", "query the traffic feed", cmdTraffic},
		"emergency": {"emergency <level> <message...>", "forward an alert to dispatch", cmdEmergency},
		"monitor":   {"monitor", "run one monitoring pass over every module", cmdMonitor},
	}
}

func cmdLogin(_ context.Context, c *Console, args []string) error {
	if len(args) != 3 {
		return ErrUsage
	}
	sec, err := c.chainArg(args)
	if err != nil {
		return err
	}
	if sec.Protection == nil {
		return fmt.Errorf("%s is not access controlled", sec.Category())
	}
	if !sec.Protection.Login(args[1], args[2]) {
		return fmt.Errorf("login failed for %s", args[1])
	}
	u, _ := sec.Protection.CurrentUser()
	c.ok("Logged in to %s as %s (%s)", sec.Base.Name(), u.Username, u.Role)
	return nil
}

func cmdLogout(_ context.Context, c *Console, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	sec, err := c.chainArg(args)
	if err != nil {
		return err
	}
	if sec.Protection == nil {
		return fmt.Errorf("%s is not access controlled", sec.Category())
	}
	sec.Protection.Logout()
	c.ok("Logged out of %s", sec.Base.Name())
	return nil
}

func cmdStatus(_ context.Context, c *Console, _ []string) error {
	c.println(c.deps.Controller.SystemStatus())
	return nil
}

func cmdReport(_ context.Context, c *Console, args []string) error {
	if len(args) == 0 {
		c.println(panelStyle.Render(strings.TrimRight(c.deps.Controller.SubsystemsReport(), "\n")))
		return nil
	}
	reporters := map[string]interface{ Report() string }{}
	if c.deps.Transport != nil {
		reporters["transport"] = c.deps.Transport
	}
	if c.deps.Lighting != nil {
		reporters["lighting"] = c.deps.Lighting
	}
	if c.deps.Security != nil {
		reporters["security"] = c.deps.Security
	}
	if c.deps.Energy != nil {
		reporters["energy"] = c.deps.Energy
	}
	r, ok := reporters[strings.ToLower(args[0])]
	if !ok {
		return fmt.Errorf("no %s module", args[0])
	}
	c.println(r.Report())
	return nil
}

func cmdStart(_ context.Context, c *Console, args []string) error {
	if len(args) == 0 {
		c.deps.Controller.StartSystem()
		c.ok("System running: %t", c.deps.Controller.IsRunning())
		return nil
	}
	sub, err := c.subsystemArg(args)
	if err != nil {
		return err
	}
	if err := sub.Start(); err != nil {
		return err
	}
	c.ok("%s started", sub.Name())
	return nil
}

func cmdStop(_ context.Context, c *Console, args []string) error {
	if len(args) == 0 {
		c.deps.Controller.StopSystem()
		c.ok("System running: %t", c.deps.Controller.IsRunning())
		return nil
	}
	sub, err := c.subsystemArg(args)
	if err != nil {
		return err
	}
	if err := sub.Stop(); err != nil {
		return err
	}
	c.ok("%s stopped", sub.Name())
	return nil
}

func cmdAlerts(_ context.Context, c *Console, args []string) error {
	alerts := c.deps.Controller.ActiveAlerts()
	title := "Active alerts"
	if len(args) > 0 && args[0] == "all" {
		alerts = c.deps.Controller.Alerts()
		title = "All alerts"
	}
	if len(alerts) == 0 {
		c.println(dimStyle.Render("No alerts."))
		return nil
	}
	c.println(headerStyle.Render(fmt.Sprintf("%s (%d)", title, len(alerts))))
	for _, a := range alerts {
		ack := ""
		if a.Acknowledged {
			ack = dimStyle.Render(" (acknowledged)")
		}
		c.printf("  %s  %s  %s: %s%s\n", a.ID, severityLabel(a.Severity), a.Source, a.Message, ack)
	}
	return nil
}

func cmdAck(_ context.Context, c *Console, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	if !c.deps.Controller.AcknowledgeAlert(args[0]) {
		return fmt.Errorf("alert %s not found", args[0])
	}
	c.ok("Alert %s acknowledged", args[0])
	return nil
}

func cmdEvents(_ context.Context, c *Console, args []string) error {
	n := 10
	if len(args) > 0 {
		if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil || n < 0 {
			return ErrUsage
		}
	}
	events := c.deps.Controller.Events()
	if n < len(events) {
		events = events[len(events)-n:]
	}
	for _, e := range events {
		c.printf("  %s  %-22s %s\n", dimStyle.Render(e.Timestamp.Format("15:04:05")), e.Type, e.Source)
	}
	return nil
}

func cmdDevices(_ context.Context, c *Console, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	sub, err := c.subsystemArg(args)
	if err != nil {
		return err
	}
	devices := sub.Devices()
	c.println(headerStyle.Render(fmt.Sprintf("%s: %d devices", sub.Name(), len(devices))))
	for _, d := range devices {
		c.println("  " + d.Info())
	}
	return nil
}

func cmdAdd(_ context.Context, c *Console, args []string) error {
	if len(args) < 4 {
		return ErrUsage
	}
	sub, err := c.subsystemArg(args)
	if err != nil {
		return err
	}
	f, err := device.FactoryFor(string(sub.Category()))
	if err != nil {
		return err
	}

	id, name, location := args[2], args[3], "Unassigned"
	if len(args) > 4 {
		location = strings.Join(args[4:], " ")
	}

	var d device.Device
	switch strings.ToLower(args[1]) {
	case "sensor":
		d = f.Sensor(id, name, location)
	case "controller":
		d = f.Controller(id, name, location)
	case "actuator":
		d = f.Actuator(id, name, location)
	default:
		return ErrUsage
	}

	if err := sub.AddDevice(d); err != nil {
		return err
	}
	c.ok("Added %s to %s", d.ID(), sub.Name())
	return nil
}

func cmdRemove(_ context.Context, c *Console, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	sub, err := c.subsystemArg(args)
	if err != nil {
		return err
	}
	removed, err := sub.RemoveDevice(args[1])
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("device %s not found in %s", args[1], sub.Name())
	}
	c.ok("Removed %s from %s", args[1], sub.Name())
	return nil
}

func cmdLogs(_ context.Context, c *Console, args []string) error {
	sec, err := c.chainArg(args)
	if err != nil {
		return err
	}
	if sec.Logging == nil {
		return fmt.Errorf("%s has no logging layer", sec.Category())
	}
	if len(args) > 1 && args[1] == "clear" {
		sec.Logging.ClearLogs()
		c.ok("Call log cleared")
		return nil
	}
	c.println(panelStyle.Render(strings.TrimRight(sec.Logging.Dump(), "\n")))
	return nil
}

func cmdCache(_ context.Context, c *Console, args []string) error {
	sec, err := c.chainArg(args)
	if err != nil {
		return err
	}
	if sec.Caching == nil {
		return fmt.Errorf("%s has no caching layer", sec.Category())
	}
	if len(args) > 1 && args[1] == "clear" {
		sec.Caching.InvalidateCache(args[2:]...)
		c.ok("Cache invalidated")
		return nil
	}
	st := sec.Caching.Stats()
	c.printf("Cache entries: %d (hits %d, misses %d)\n", st.Entries, st.Hits, st.Misses)
	for _, k := range st.Keys {
		c.println("  " + k)
	}
	return nil
}

func cmdAccess(_ context.Context, c *Console, args []string) error {
	sec, err := c.chainArg(args)
	if err != nil {
		return err
	}
	if sec.Protection == nil {
		return fmt.Errorf("%s is not access controlled", sec.Category())
	}
	entries := sec.Protection.AccessLog()
	c.println(headerStyle.Render(fmt.Sprintf("Access log: %d entries", len(entries))))
	for _, e := range entries {
		outcome := okStyle.Render("allowed")
		if !e.Allowed {
			outcome = errStyle.Render("denied")
		}
		c.printf("  %s  %-10s %-9s %s\n", dimStyle.Render(e.Timestamp.Format("15:04:05")), e.Username, e.Action, outcome)
	}
	return nil
}

func cmdWeather(ctx context.Context, c *Console, _ []string) error {
	if c.deps.Climate == nil {
		return fmt.Errorf("no weather feed configured")
	}
	temp, err := c.deps.Climate.CheckTemperature(ctx)
	if err != nil {
		return err
	}
	c.printf("Temperature: %.1f°C\n", temp)
	return nil
}

func cmdTraffic(ctx context.Context, c *Console, args []string) error {
	if c.deps.Traffic == nil {
		return fmt.Errorf("no traffic feed configured")
	}
	sector := defaultSector
	if len(args) > 0 {
		sector = args[0]
	}
	count, err := c.deps.Traffic.VehicleCount(ctx, sector)
	if err != nil {
		return err
	}
	speed, err := c.deps.Traffic.AverageSpeed(ctx, sector)
	if err != nil {
		return err
	}
	congestion, err := c.deps.Traffic.CongestionPercent(ctx, sector)
	if err != nil {
		return err
	}
	c.printf("Sector %s: %d vehicles, %.0f km/h, %.0f%% congestion\n", sector, count, speed, congestion)
	return nil
}

func cmdEmergency(ctx context.Context, c *Console, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	if c.deps.Emergency == nil {
		return fmt.Errorf("no emergency dispatch configured")
	}
	level := strings.ToLower(args[0])
	if _, err := controller.ParseSeverity(level); err != nil {
		return err
	}
	accepted, err := c.deps.Emergency.SendAlert(ctx, level, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if !accepted {
		return fmt.Errorf("dispatch rejected the alert")
	}
	c.ok("Dispatch accepted %s alert", level)
	return nil
}

// cmdMonitor runs each configured module's monitoring operation once.
// Alerts raised along the way reach the controller's sinks.
func cmdMonitor(ctx context.Context, c *Console, _ []string) error {
	before := len(c.deps.Controller.Alerts())

	if t := c.deps.Transport; t != nil {
		snap := t.MonitorTraffic()
		c.printf("Transport: %d sensors, congestion %.0f%%\n", len(snap.Readings), snap.Congestion)
	}
	if l := c.deps.Lighting; l != nil {
		if lux, target, ok := l.AutoAdjust(); ok {
			c.printf("Lighting: ambient %.0f lux, target brightness %.0f%%\n", lux, target)
		}
	}
	if s := c.deps.Security; s != nil {
		incidents := s.ScanForMotion()
		triggered := s.CheckAlarms()
		c.printf("Security: %d motion incidents, %d alarms triggered\n", len(incidents), triggered)
	}
	if e := c.deps.Energy; e != nil {
		readings, total := e.MonitorConsumption()
		c.printf("Energy: %d meters, %.0f kWh\n", len(readings), total)
	}
	if cl := c.deps.Climate; cl != nil {
		if temp, err := cl.CheckTemperature(ctx); err != nil {
			c.logger.Warn("weather check failed", "error", err)
			c.printf("Weather: %s\n", dimStyle.Render("unavailable"))
		} else {
			c.printf("Weather: %.1f°C\n", temp)
		}
	}

	c.printf("New alerts: %d\n", len(c.deps.Controller.Alerts())-before)
	return nil
}
