package valuation

import "fmt"

// InputError signals any contract violation in the inputs to the valuation
// computations. It is raised before or during computation and is never
// recovered internally; retrying with the same inputs would produce the same
// failure, so callers should treat it as terminal for that input set.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string {
	return e.Msg
}

func inputErrorf(format string, args ...interface{}) *InputError {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}
