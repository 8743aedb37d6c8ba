package router

import "github.com/dmitrymomot/husca/internal/slot"

// Request is what a web router needs from the dispatch context.
type Request interface {
	slot.Request

	// SetParams stores the parameters of the matched route.
	SetParams(params map[string]string)

	// Throw builds the error for a definite HTTP condition, such as 405.
	Throw(code int, message string) error
}

// CommandRequest is what a commander needs from the dispatch context.
type CommandRequest interface {
	Command() string

	// SetCommandMatched records that a commander recognized the command.
	SetCommandMatched()
}

// headerSetter is implemented by contexts that can set response headers.
type headerSetter interface {
	SetHeader(name, value string)
}
