package router

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrymomot/husca/internal/slot"
)

// CommandRoute is the matcher for one group of command names plus the chain
// that handles them.
type CommandRoute struct {
	slots *slot.Manager
	names []string
}

// NewCommandRoute precomputes prefix+command for every command.
func NewCommandRoute(prefix string, commands []string, slots *slot.Manager) *CommandRoute {
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, prefix+c)
	}
	return &CommandRoute{slots: slots, names: names}
}

// Match reports whether command is one of the route's names.
func (r *CommandRoute) Match(command string) bool {
	return slices.Contains(r.names, command)
}

// Names returns the full command names.
func (r *CommandRoute) Names() []string {
	return slices.Clone(r.names)
}

// Commander is a group of console commands sharing a prefix and group slots.
type Commander struct {
	slots  *slot.Manager
	prefix string
	routes []*CommandRoute
}

// CommanderOption configures a Commander.
type CommanderOption func(*Commander)

// WithCommandPrefix sets the prefix prepended to every command name.
func WithCommandPrefix(prefix string) CommanderOption {
	return func(c *Commander) {
		c.prefix = prefix
	}
}

// WithCommandSlots sets the group slots run before every command.
// It panics on a web set.
func WithCommandSlots(set *slot.Manager) CommanderOption {
	return func(c *Commander) {
		if set == nil {
			return
		}
		c.slots = slot.NewManager(slot.TargetCommand).Load(set)
	}
}

// NewCommander creates a console commander.
//
// Example:
//
//	db := router.NewCommander(router.WithCommandPrefix("db:")).
//	    Create("migrate", router.Config{Action: migrate}).
//	    Create("seed", router.Config{Action: seed})
func NewCommander(opts ...CommanderOption) *Commander {
	c := &Commander{slots: slot.NewManager(slot.TargetCommand)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create registers cfg for a single command.
func (c *Commander) Create(command string, cfg Config) *Commander {
	return c.CreateMany([]string{command}, cfg)
}

// CreateMany registers cfg under several command names.
func (c *Commander) CreateMany(commands []string, cfg Config) *Commander {
	chain := slot.NewManager(slot.TargetCommand).Load(cfg.Slots)
	if cfg.Action != nil {
		chain = chain.Load(slot.Command(cfg.Action))
	}
	c.routes = append(c.routes, NewCommandRoute(c.prefix, commands, chain))
	return c
}

// Commands lists every full command name in registration order.
func (c *Commander) Commands() []string {
	var out []string
	for _, r := range c.routes {
		out = append(out, r.names...)
	}
	return out
}

// GenerateSlot compiles the commander into one command slot.
// See Router.GenerateSlot for the meaning of cut.
func (c *Commander) GenerateSlot(cut slot.ID) *slot.Slot {
	group := CutGlobalSlots(c.slots, cut)

	type compiledCommand struct {
		route *CommandRoute
		run   slot.Composed
	}
	compiled := make([]compiledCommand, len(c.routes))
	for i, route := range c.routes {
		chain := make([]*slot.Slot, 0, len(group)+route.slots.Len())
		chain = append(chain, group...)
		chain = append(chain, route.slots.Slots()...)
		compiled[i] = compiledCommand{route: route, run: slot.Compose(chain)}
	}

	return slot.Command(func(ctx context.Context, next slot.Next) (any, error) {
		req, ok := ctx.(CommandRequest)
		if !ok {
			return nil, fmt.Errorf("%w: %T does not implement router.CommandRequest", ErrUnsupportedContext, ctx)
		}

		command := req.Command()
		for _, cc := range compiled {
			if cc.route.Match(command) {
				req.SetCommandMatched()
				return cc.run(ctx, next)
			}
		}
		return next()
	})
}
