package orchestrator

import "fmt"

// UnknownJob is returned when the requested job name isn't in the
// definition.
type UnknownJob struct {
	Name string
}

func (e UnknownJob) Error() string {
	return fmt.Sprintf("unknown job %q", e.Name)
}

// ExecutionFailure wraps any error surfaced by the Executor while running
// a job, keeping the stage it happened in for a clearer message.
type ExecutionFailure struct {
	Stage string
	Cause error
}

func (e ExecutionFailure) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Cause)
}

func (e ExecutionFailure) Unwrap() error { return e.Cause }
