package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/nerrad567/smartcity-core/internal/controller"
	"github.com/nerrad567/smartcity-core/internal/external"
	"github.com/nerrad567/smartcity-core/internal/modules"
	"github.com/nerrad567/smartcity-core/internal/proxy"
	"github.com/nerrad567/smartcity-core/internal/subsystem"
)

// ErrUsage is returned when a command gets the wrong arguments.
var ErrUsage = errors.New("console: usage")

// Logger defines the logging interface used by the console.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Deps holds what the console drives. Everything except Controller is
// optional; commands needing a missing collaborator report it.
type Deps struct {
	Controller *controller.Controller
	// Chains are the composed proxy chains by category. They must be the
	// same values registered with Controller.
	Chains map[subsystem.Category]*proxy.Secured

	Transport *modules.Transport
	Lighting  *modules.Lighting
	Security  *modules.Security
	Energy    *modules.Energy
	Climate   *modules.Climate
	Traffic   external.Traffic
	Emergency external.Emergency

	Logger Logger
}

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, c *Console, args []string) error
}

// Console dispatches operator commands read from in and writes results to
// out. It is not safe for concurrent use; Run is the single control loop.
type Console struct {
	deps     Deps
	in       io.Reader
	out      io.Writer
	logger   Logger
	commands map[string]command
}

// New returns a console over in and out.
func New(deps Deps, in io.Reader, out io.Writer) (*Console, error) {
	if deps.Controller == nil {
		return nil, fmt.Errorf("controller is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	c := &Console{deps: deps, in: in, out: out, logger: logger}
	c.commands = commandTable()
	return c, nil
}

// Run reads commands until quit, end of input or ctx cancellation. It
// returns nil in all three cases and the read error otherwise.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(c.out, headerStyle.Render("SMART CITY CONTROL CENTER")+dimStyle.Render("  (type help)"))

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		fmt.Fprint(c.out, promptStyle.Render("> "))
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(c.out)
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("reading console input: %w", err)
					}
				default:
				}
				return nil
			}
			if c.Exec(ctx, line) {
				return nil
			}
		}
	}
}

// Exec runs a single command line and reports whether it was quit.
func (c *Console) Exec(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "quit", "exit":
		fmt.Fprintln(c.out, okStyle.Render("Goodbye!"))
		return true
	case "help":
		c.printHelp()
		return false
	}

	cmd, ok := c.commands[name]
	if !ok {
		c.fail(fmt.Errorf("unknown command %q (type help)", name))
		return false
	}

	c.logger.Debug("console command", "command", name, "args", len(args))
	if err := cmd.run(ctx, c, args); err != nil {
		if errors.Is(err, ErrUsage) {
			err = fmt.Errorf("usage: %s", cmd.usage)
		}
		c.fail(err)
	}
	return false
}

func (c *Console) printHelp() {
	names := make([]string, 0, len(c.commands))
	for n := range c.commands {
		names = append(names, n)
	}
	slices.Sort(names)

	var b strings.Builder
	b.WriteString(headerStyle.Render("Commands") + "\n")
	for _, n := range names {
		cmd := c.commands[n]
		fmt.Fprintf(&b, "  %-42s %s\n", cmd.usage, dimStyle.Render(cmd.help))
	}
	fmt.Fprintf(&b, "  %-42s %s\n", "quit", dimStyle.Render("leave the console"))
	fmt.Fprint(c.out, b.String())
}

func (c *Console) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

func (c *Console) ok(format string, a ...any) {
	c.println(okStyle.Render(fmt.Sprintf(format, a...)))
}

func (c *Console) fail(err error) {
	c.println(errStyle.Render("error: " + err.Error()))
}

// subsystemArg resolves the category in args[0] to the registered
// subsystem, which is the outermost proxy when a chain was composed.
func (c *Console) subsystemArg(args []string) (subsystem.Subsystem, error) {
	if len(args) == 0 {
		return nil, ErrUsage
	}
	cat, err := subsystem.ParseCategory(strings.ToLower(args[0]))
	if err != nil {
		return nil, err
	}
	sub, ok := c.deps.Controller.Subsystem(cat)
	if !ok {
		return nil, fmt.Errorf("%s is not registered", cat)
	}
	return sub, nil
}

func (c *Console) chainArg(args []string) (*proxy.Secured, error) {
	if len(args) == 0 {
		return nil, ErrUsage
	}
	cat, err := subsystem.ParseCategory(strings.ToLower(args[0]))
	if err != nil {
		return nil, err
	}
	sec, ok := c.deps.Chains[cat]
	if !ok {
		return nil, fmt.Errorf("%s has no proxy chain", cat)
	}
	return sec, nil
}
