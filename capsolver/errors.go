package capsolver

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceUnreachable - createTask or getTaskResult call did not reach the service
	ErrServiceUnreachable = errors.New("capsolver: service unreachable")

	// ErrNoTaskHandle - createTask response carries no taskId
	ErrNoTaskHandle = errors.New("capsolver: no taskId in createTask response")

	// ErrTaskFailed - service reported the task as failed
	ErrTaskFailed = errors.New("capsolver: task failed")

	// ErrEmptySolution - task is ready but the solution payload is empty.
	// Treated as a failure, never as success
	ErrEmptySolution = errors.New("capsolver: task ready without solution token")

	// ErrPollTimeout - poll attempts budget exhausted before a terminal status
	ErrPollTimeout = errors.New("capsolver: poll attempts exhausted")

	// ErrNotReady - task is still processing. Internal retry signal
	ErrNotReady = errors.New("capsolver: task not ready")
)

// Error reported by the service itself via errorId/errorCode
func serviceError(code, description string) error {
	if description == "" {
		return fmt.Errorf("capsolver: service error %s", code)
	}
	return fmt.Errorf("capsolver: service error %s: %s", code, description)
}
