package router

import "github.com/dmitrymomot/husca/internal/slot"

// CutGlobalSlots returns the part of group that was added on top of the
// global chain whose last slot has the id cut.
//
// A zero cut returns the whole group. So does a cut that is not found in
// group: such a group was built independently of the global chain.
func CutGlobalSlots(group slot.Loadable, cut slot.ID) []*slot.Slot {
	slots := slot.Flatten(group)
	if cut == 0 {
		return slots
	}
	for i, s := range slots {
		if s.Validate(cut) {
			return slots[i+1:]
		}
	}
	return slots
}
