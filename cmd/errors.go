package main

// UserAbort is returned when an interactive confirmation (prune) is
// declined; the command still exits non-zero, but without an underlying
// cause to chain.
type UserAbort struct {
	Action string
}

func (e UserAbort) Error() string {
	return e.Action + " aborted"
}
