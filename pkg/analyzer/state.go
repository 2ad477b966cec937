package analyzer

import "fmt"

// WorkerState is the lifecycle state of an engine's worker.
type WorkerState int32

// Worker states.
const (
	// StateIdle: no submission yet, worker not started.
	StateIdle WorkerState = iota
	// StateRunning: a pass is executing.
	StateRunning
	// StateRestartRequested: newer content arrived during the running pass.
	StateRestartRequested
	// StateParked: waiting for the next submission.
	StateParked
	// StateTerminated: shut down, never restarts.
	StateTerminated
)

func (s WorkerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateRestartRequested:
		return "restart-requested"
	case StateParked:
		return "parked"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("WorkerState(%d)", int32(s))
	}
}
