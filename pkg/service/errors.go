package service

import "fmt"

// The graph integrity errors below are logic/data errors: they are
// surfaced to the caller as typed values and never retried, since the
// same call would fail the same way. The caller picks a different edge
// or abandons the mutation.

// SelfDependencyError rejects an edge whose two endpoints are the same
// task.
type SelfDependencyError struct {
	TaskID string
}

func (e *SelfDependencyError) Error() string {
	return fmt.Sprintf("task %s cannot depend on itself", e.TaskID)
}

// DuplicateEdgeError rejects an edge whose ordered endpoint pair
// already exists, regardless of the dependency type.
type DuplicateEdgeError struct {
	PrerequisiteID string
	DependentID    string
}

func (e *DuplicateEdgeError) Error() string {
	return fmt.Sprintf("dependency %s -> %s already exists", e.PrerequisiteID, e.DependentID)
}

// CycleError rejects an edge that would make the workspace graph
// cyclic.
type CycleError struct {
	PrerequisiteID string
	DependentID    string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency %s -> %s would create a cycle", e.PrerequisiteID, e.DependentID)
}

// TaskNotFoundError reports a task id that does not resolve in the
// workspace.
type TaskNotFoundError struct {
	TaskID string
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("task %s not found", e.TaskID)
}

// EdgeNotFoundError reports a deletion selector that matches no edge.
// Either EdgeID or the endpoint pair is set, depending on how the edge
// was addressed.
type EdgeNotFoundError struct {
	EdgeID         string
	PrerequisiteID string
	DependentID    string
}

func (e *EdgeNotFoundError) Error() string {
	if e.EdgeID != "" {
		return fmt.Sprintf("dependency %s not found", e.EdgeID)
	}
	return fmt.Sprintf("dependency %s -> %s not found", e.PrerequisiteID, e.DependentID)
}
