package session

import "fmt"

// PreconditionError reports an orchestrator call made out of state-machine
// order. Fatal: the operation does no work.
type PreconditionError struct {
	Op    string
	State State
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("session: %s not allowed in state %s", e.Op, e.State)
}

// HostOperationError reports a single host entity operation rejected by
// the host. Collected per entity; remaining entities proceed.
type HostOperationError struct {
	Op     string
	Handle string
	Err    error
}

func (e *HostOperationError) Error() string {
	return fmt.Sprintf("session: host %s %q: %v", e.Op, e.Handle, e.Err)
}

func (e *HostOperationError) Unwrap() error { return e.Err }

// RenderError reports a single failed render. Recorded in the manifest;
// the batch continues.
type RenderError struct {
	Index int
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("session: render pose %d: %v", e.Index, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
