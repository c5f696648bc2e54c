package gitremote

import "fmt"

// GitFailure wraps any error surfaced while inspecting the local checkout:
// no origin remote, an unsupported remote URL form, a failed HEAD
// resolution. Op names the operation that failed.
type GitFailure struct {
	Op    string
	Cause error
}

func (e GitFailure) Error() string {
	return fmt.Sprintf("git %s: %v", e.Op, e.Cause)
}

func (e GitFailure) Unwrap() error { return e.Cause }
