// Package slot implements the composable handler unit used by both the web
// and the console side of husca.
//
// A [Slot] wraps a body of the form:
//
//	func(ctx context.Context, next slot.Next) (any, error)
//
// and carries a [Target] tag (web, command or either). Slots are collected in
// a [Manager], an append-only set that returns a new instance on every Load,
// and turned into a single callable by [Compose]:
//
//	set := slot.NewManager(slot.TargetWeb).
//	    Load(logging).
//	    Load(auth)
//
//	run := slot.Compose(set.Slots())
//	res, err := run(ctx, func() (any, error) { return "done", nil })
//
// # Onion model
//
// Code before next() runs in registration order, code after next() runs in
// reverse order. A body that never calls next() stops the chain. Calling
// next() a second time fails the whole dispatch with
// [ErrNextCalledMultipleTimes].
//
// # Targets
//
// Web sets accept web and either slots, command sets accept command and
// either slots, either sets accept only either slots. Load panics on a
// mismatch; TryLoad returns the error instead.
//
// # Skip conditions
//
// [Slot.Unless] installs a predicate that makes the slot a pass-through:
//
//	logger.Unless(slot.Condition{Path: []string{"/health"}})
//	static.Unless(slot.Condition{Method: []string{"POST", "PUT"}})
//
// Only one kind of condition is evaluated, in the order path, extension,
// method, custom.
package slot
