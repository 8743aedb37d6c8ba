package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrymomot/husca/internal/router"
	"github.com/dmitrymomot/husca/internal/slot"
	"github.com/dmitrymomot/husca/pkg/logger"
)

// Process exit codes returned by Console.Exec.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitNotFound = 127
)

// ConsoleContext is the dispatch context of a console invocation.
type ConsoleContext interface {
	context.Context
	router.CommandRequest

	// Argv returns the positional arguments after the command.
	Argv() []string

	// Arg returns the i-th positional argument, or "" if there is none.
	Arg(i int) string

	// Options returns a copy of the parsed options.
	Options() map[string]string

	// Option returns the value of the named option, or "" if absent.
	// Flags without a value read as "true".
	Option(name string) string

	// HasOption reports whether the option was given.
	HasOption(name string) bool

	// CommandMatched reports whether a commander recognized the command.
	CommandMatched() bool

	// Stdout returns the writer for regular output.
	Stdout() io.Writer

	// Stderr returns the writer for diagnostics.
	Stderr() io.Writer

	// Printf writes formatted output to Stdout.
	Printf(format string, args ...any)

	// Set stores an invocation-scoped value.
	Set(key, value any)

	// Get returns a value stored with Set or present in the parent context.
	Get(key any) any

	// Logger returns the console logger.
	Logger() *slog.Logger
}

// Console is the command-line application shell.
// It mirrors App for commanders: a global command slot set plus a parser,
// composed once and dispatched per invocation.
type Console struct {
	slots      *slot.Manager
	parser     *router.Parser[*router.Commander]
	chain      slot.Composed
	logger     *slog.Logger
	loader     router.Loader
	stdout     io.Writer
	stderr     io.Writer
	middleware []slot.Loadable
	commanders []any
	paths      []string
	mu         sync.Mutex
	once       sync.Once
	composed   bool
}

// ConsoleOption configures the console.
type ConsoleOption func(*Console)

// WithCommandMiddleware adds units to the global command slot set.
func WithCommandMiddleware(items ...slot.Loadable) ConsoleOption {
	return func(c *Console) {
		c.middleware = append(c.middleware, items...)
	}
}

// WithCommanders mounts commanders. Other values are ignored.
func WithCommanders(values ...any) ConsoleOption {
	return func(c *Console) {
		c.commanders = append(c.commanders, values...)
	}
}

// WithCommanderPaths discovers commanders in the files matching the glob patterns.
func WithCommanderPaths(patterns ...string) ConsoleOption {
	return func(c *Console) {
		c.paths = append(c.paths, patterns...)
	}
}

// WithConsoleLoader sets the loader used for commander discovery.
func WithConsoleLoader(l router.Loader) ConsoleOption {
	return func(c *Console) {
		c.loader = l
	}
}

// WithConsoleLogger sets the console logger.
func WithConsoleLogger(l *slog.Logger) ConsoleOption {
	return func(c *Console) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOutput sets the writer for regular output. Defaults to os.Stdout.
func WithOutput(w io.Writer) ConsoleOption {
	return func(c *Console) {
		if w != nil {
			c.stdout = w
		}
	}
}

// WithErrorOutput sets the writer for diagnostics. Defaults to os.Stderr.
func WithErrorOutput(w io.Writer) ConsoleOption {
	return func(c *Console) {
		if w != nil {
			c.stderr = w
		}
	}
}

// NewConsole creates a console application.
// Discovery errors panic, like any other configuration error.
func NewConsole(opts ...ConsoleOption) *Console {
	c := &Console{
		slots:  slot.NewManager(slot.TargetCommand),
		logger: logger.NewNope(),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}

	parserOpts := []router.ParserOption{router.WithParserLogger(c.logger)}
	if c.loader != nil {
		parserOpts = append(parserOpts, router.WithLoader(c.loader))
	}
	c.parser = router.NewParser[*router.Commander](c.CutPoint, parserOpts...)

	c.slots = c.slots.Load(c.middleware...)
	c.parser.ParseRouter(c.commanders...)
	if len(c.paths) > 0 {
		if err := c.parser.ParsePath(context.Background(), c.paths...); err != nil {
			panic(fmt.Sprintf("husca: discover commanders: %v", err))
		}
	}

	c.middleware, c.commanders, c.paths = nil, nil, nil
	return c
}

// Use appends units to the global command slot set.
// Panics once the console has run.
func (c *Console) Use(items ...slot.Loadable) *Console {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.composed {
		panic(ErrAlreadyServing)
	}
	c.slots = c.slots.Load(items...)
	return c
}

// Mount registers commanders and returns how many were new.
// Panics with ErrAlreadyServing once the console has run.
func (c *Console) Mount(values ...any) int {
	n, err := c.parser.TryParseRouter(values...)
	if err != nil {
		panic(ErrAlreadyServing)
	}
	return n
}

// Discover mounts the commanders exported by the files matching the patterns.
// Returns ErrAlreadyServing once the console has run.
func (c *Console) Discover(ctx context.Context, patterns ...string) error {
	err := c.parser.ParsePath(ctx, patterns...)
	if errors.Is(err, router.ErrParserFrozen) {
		return errors.Join(ErrAlreadyServing, err)
	}
	return err
}

// Slots returns the global command slot set.
func (c *Console) Slots() *slot.Manager {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slots
}

// CutPoint returns the ID of the last global command slot, or zero.
func (c *Console) CutPoint() slot.ID {
	c.mu.Lock()
	last := c.slots.Last()
	c.mu.Unlock()
	if last == nil {
		return 0
	}
	return last.CreateID()
}

// Commands lists the commands of every mounted commander, sorted.
func (c *Console) Commands() []string {
	var out []string
	for _, cmd := range c.parser.Mounted() {
		out = append(out, cmd.Commands()...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Run dispatches one invocation. argv excludes the program name: the first
// element is the command, the rest are arguments and options.
// A non-nil chain result is printed to Stdout.
func (c *Console) Run(ctx context.Context, argv []string) error {
	c.once.Do(c.compose)

	cc := newConsoleContext(ctx, c, argv)
	res, err := c.chain(cc, nil)
	if err != nil {
		return err
	}
	if !cc.matched {
		return fmt.Errorf("%w: %q", ErrCommandNotFound, cc.command)
	}
	if res != nil {
		_, err = fmt.Fprintln(c.stdout, res)
	}
	return err
}

// Exec runs argv and maps the outcome to a process exit code.
// Errors are reported on Stderr.
//
// Example:
//
//	func main() {
//	    os.Exit(console.Exec(context.Background(), os.Args[1:]))
//	}
func (c *Console) Exec(ctx context.Context, argv []string) int {
	if ctx == nil {
		ctx = context.Background()
	}
	err := c.Run(ctx, argv)
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrCommandNotFound):
		fmt.Fprintln(c.stderr, err)
		if cmds := c.Commands(); len(cmds) > 0 {
			fmt.Fprintf(c.stderr, "available commands: %s\n", strings.Join(cmds, ", "))
		}
		return ExitNotFound
	default:
		fmt.Fprintln(c.stderr, "error:", err)
		c.logger.ErrorContext(ctx, "command failed", slog.Any("error", err))
		return ExitError
	}
}

func (c *Console) compose() {
	<-c.parser.Settled()

	c.mu.Lock()
	c.composed = true
	chain := slices.Clone(c.slots.Slots())
	c.mu.Unlock()
	chain = append(chain, c.parser.Freeze()...)

	c.chain = slot.Compose(chain)
}

// consoleContext implements ConsoleContext.
type consoleContext struct {
	context.Context
	console *Console
	command string
	argv    []string
	options map[string]string
	matched bool
}

func newConsoleContext(ctx context.Context, c *Console, argv []string) *consoleContext {
	if ctx == nil {
		ctx = context.Background()
	}
	cc := &consoleContext{
		Context: ctx,
		console: c,
		options: make(map[string]string),
	}
	if len(argv) > 0 {
		cc.command = argv[0]
		cc.argv, cc.options = parseArgs(argv[1:])
	}
	return cc
}

// parseArgs splits arguments into positionals and options.
// Recognized forms: --name=value, --name, -n=value, -abc (three flags);
// everything after a bare "--" is positional.
func parseArgs(args []string) ([]string, map[string]string) {
	var (
		positional []string
		options    = make(map[string]string)
	)
	for i, arg := range args {
		switch {
		case arg == "--":
			return append(positional, args[i+1:]...), options
		case strings.HasPrefix(arg, "--") && len(arg) > 2:
			name, value, ok := strings.Cut(arg[2:], "=")
			if !ok {
				value = "true"
			}
			options[name] = value
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			name, value, ok := strings.Cut(arg[1:], "=")
			if ok {
				options[name] = value
				continue
			}
			for _, r := range name {
				options[string(r)] = "true"
			}
		default:
			positional = append(positional, arg)
		}
	}
	return positional, options
}

func (c *consoleContext) Command() string            { return c.command }
func (c *consoleContext) SetCommandMatched()         { c.matched = true }
func (c *consoleContext) CommandMatched() bool       { return c.matched }
func (c *consoleContext) Argv() []string             { return slices.Clone(c.argv) }
func (c *consoleContext) Options() map[string]string { return maps.Clone(c.options) }
func (c *consoleContext) Stdout() io.Writer          { return c.console.stdout }
func (c *consoleContext) Stderr() io.Writer          { return c.console.stderr }
func (c *consoleContext) Logger() *slog.Logger       { return c.console.logger }

func (c *consoleContext) Arg(i int) string {
	if i < 0 || i >= len(c.argv) {
		return ""
	}
	return c.argv[i]
}

func (c *consoleContext) Option(name string) string {
	return c.options[name]
}

func (c *consoleContext) HasOption(name string) bool {
	_, ok := c.options[name]
	return ok
}

func (c *consoleContext) Printf(format string, args ...any) {
	fmt.Fprintf(c.console.stdout, format, args...)
}

func (c *consoleContext) Set(key, value any) {
	c.Context = context.WithValue(c.Context, key, value)
}

func (c *consoleContext) Get(key any) any {
	return c.Context.Value(key)
}
