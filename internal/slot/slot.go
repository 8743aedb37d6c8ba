package slot

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Next runs the rest of the chain and returns its result.
type Next func() (any, error)

// Func is the body of a slot.
type Func func(ctx context.Context, next Next) (any, error)

// ID identifies a slot instance. The zero value means "no ID".
type ID uint64

// lastID is shared by every slot in the process.
var lastID atomic.Uint64

// Slot is a single unit of a handler chain.
type Slot struct {
	body   Func
	fn     Func
	target Target
	id     atomic.Uint64
}

// New creates a slot for the given target.
// It panics if fn is nil or target is unknown.
func New(target Target, fn Func) *Slot {
	if fn == nil {
		panic(ErrNilBody)
	}
	if !target.valid() {
		panic(fmt.Errorf("%w: %d", ErrInvalidTarget, target))
	}
	return &Slot{body: fn, fn: fn, target: target}
}

// Web creates a web slot.
func Web(fn Func) *Slot { return New(TargetWeb, fn) }

// Command creates a console command slot.
func Command(fn Func) *Slot { return New(TargetCommand, fn) }

// Either creates a slot usable in both web and command chains.
func Either(fn Func) *Slot { return New(TargetEither, fn) }

// Target returns the execution domain of the slot.
func (s *Slot) Target() Target {
	return s.target
}

// Fn returns the effective body: the original one, or the skip-wrapped one
// if Unless was called.
func (s *Slot) Fn() Func {
	return s.fn
}

// CreateID returns the slot's ID, assigning one on first call.
func (s *Slot) CreateID() ID {
	if id := s.id.Load(); id != 0 {
		return ID(id)
	}
	s.id.CompareAndSwap(0, lastID.Add(1))
	return ID(s.id.Load())
}

// Validate reports whether id is the ID previously created for this slot.
func (s *Slot) Validate(id ID) bool {
	return id != 0 && uint64(id) == s.id.Load()
}

// Unless makes the slot call next directly when cond matches the current context.
// It returns the same slot. Unless must be called before the slot is composed.
// It panics with ErrUnsupportedCondition when a web-only condition is set on
// a command or either slot.
func (s *Slot) Unless(cond Condition) *Slot {
	if s.target != TargetWeb && cond.webOnly() {
		panic(fmt.Errorf("%w: %s slot", ErrUnsupportedCondition, s.target))
	}

	skip := cond.predicate()
	if skip == nil {
		s.fn = s.body
		return s
	}

	body := s.body
	s.fn = func(ctx context.Context, next Next) (any, error) {
		if skip(ctx) {
			return next()
		}
		return body(ctx, next)
	}
	return s
}

func (s *Slot) slots() []*Slot {
	if s == nil {
		return nil
	}
	return []*Slot{s}
}
