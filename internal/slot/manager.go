package slot

import (
	"fmt"
	"slices"
)

// Loadable is anything a Manager can load: a *Slot or a *Manager.
// A nil value loads nothing.
type Loadable interface {
	slots() []*Slot
}

// Manager is an ordered set of slots for one target.
// Load never mutates the receiver, so a base set can be extended many times.
type Manager struct {
	list   []*Slot
	target Target
}

// NewManager creates an empty set for the given target.
func NewManager(target Target) *Manager {
	if !target.valid() {
		panic(fmt.Errorf("%w: %d", ErrInvalidTarget, target))
	}
	return &Manager{target: target}
}

// Target returns the set's target.
func (m *Manager) Target() Target {
	return m.target
}

// Len returns the number of slots in the set.
func (m *Manager) Len() int {
	if m == nil {
		return 0
	}
	return len(m.list)
}

// Last returns the last slot in the set, or nil when it is empty.
func (m *Manager) Last() *Slot {
	if m.Len() == 0 {
		return nil
	}
	return m.list[len(m.list)-1]
}

// Slots returns a copy of the set's slots in order.
func (m *Manager) Slots() []*Slot {
	return Flatten(m)
}

// Load returns a new set with the slots of items appended.
// It panics when a slot's target is not accepted by the set.
func (m *Manager) Load(items ...Loadable) *Manager {
	next, err := m.TryLoad(items...)
	if err != nil {
		panic(err)
	}
	return next
}

// TryLoad is like Load but returns the target mismatch error instead of panicking.
func (m *Manager) TryLoad(items ...Loadable) (*Manager, error) {
	out := slices.Clip(slices.Clone(m.list))
	for _, item := range items {
		if item == nil {
			continue
		}
		for _, s := range item.slots() {
			if !m.target.Accepts(s.target) {
				return nil, fmt.Errorf("%w: %s set cannot load %s slot", ErrTargetMismatch, m.target, s.target)
			}
			out = append(out, s)
		}
	}
	return &Manager{target: m.target, list: out}, nil
}

func (m *Manager) slots() []*Slot {
	if m == nil {
		return nil
	}
	return m.list
}

// Flatten returns the slots x holds, in order.
// nil gives an empty list, a Manager gives a copy of its list and a Slot
// gives a single-element list.
func Flatten(x Loadable) []*Slot {
	if x == nil {
		return []*Slot{}
	}
	s := x.slots()
	out := make([]*Slot, len(s))
	copy(out, s)
	return out
}
