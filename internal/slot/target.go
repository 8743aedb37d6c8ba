package slot

// Target is the execution domain a slot or a slot set is written for.
type Target uint8

const (
	// TargetWeb slots expect an HTTP request context.
	TargetWeb Target = iota + 1
	// TargetCommand slots expect a console command context.
	TargetCommand
	// TargetEither slots run in both domains.
	TargetEither
)

func (t Target) String() string {
	switch t {
	case TargetWeb:
		return "web"
	case TargetCommand:
		return "command"
	case TargetEither:
		return "either"
	default:
		return "unknown"
	}
}

// Accepts reports whether a set tagged with t may hold a slot tagged with other.
func (t Target) Accepts(other Target) bool {
	switch t {
	case TargetWeb:
		return other == TargetWeb || other == TargetEither
	case TargetCommand:
		return other == TargetCommand || other == TargetEither
	case TargetEither:
		return other == TargetEither
	default:
		return false
	}
}

func (t Target) valid() bool {
	return t >= TargetWeb && t <= TargetEither
}
