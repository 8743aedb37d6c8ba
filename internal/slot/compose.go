package slot

import (
	"context"
	"errors"
	"runtime/debug"
	"sync/atomic"
)

// Composed is a chain of slots ready to run. terminal runs after the last
// slot calls next; it may be nil.
type Composed func(ctx context.Context, terminal Next) (any, error)

// Compose turns slots into a single onion-model callable.
// The effective body of every slot is read once, here.
func Compose(slots []*Slot) Composed {
	fns := make([]Func, len(slots))
	for i, s := range slots {
		fns[i] = s.Fn()
	}

	return func(ctx context.Context, terminal Next) (any, error) {
		d := &dispatch{ctx: ctx, fns: fns, terminal: terminal}
		d.last.Store(-1)

		res, err := d.call(0)
		if d.misused.Load() && !errors.Is(err, ErrNextCalledMultipleTimes) {
			if err == nil {
				return nil, ErrNextCalledMultipleTimes
			}
			return nil, errors.Join(ErrNextCalledMultipleTimes, err)
		}
		return res, err
	}
}

// ComposeToSlot composes slots and wraps the chain as an either slot that
// continues with its own next once the chain completes.
func ComposeToSlot(slots []*Slot) *Slot {
	run := Compose(slots)
	return Either(func(ctx context.Context, next Next) (any, error) {
		return run(ctx, next)
	})
}

// dispatch holds the state of one run of a composed chain.
type dispatch struct {
	ctx      context.Context
	terminal Next
	fns      []Func
	last     atomic.Int64
	misused  atomic.Bool
}

func (d *dispatch) call(i int) (any, error) {
	for {
		last := d.last.Load()
		if int64(i) <= last {
			d.misused.Store(true)
			return nil, ErrNextCalledMultipleTimes
		}
		if d.last.CompareAndSwap(last, int64(i)) {
			break
		}
	}

	if i == len(d.fns) {
		if d.terminal == nil {
			return nil, nil
		}
		return guard(d.terminal)
	}

	fn := d.fns[i]
	return guard(func() (any, error) {
		return fn(d.ctx, func() (any, error) {
			return d.call(i + 1)
		})
	})
}

// guard runs fn and turns a panic into a *PanicError.
func guard(fn Next) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}
