package models

import "time"

// DependencyType describes how a prerequisite gates its dependent.
// The graph integrity rules do not depend on the type; it informs
// rendering and interpretation only.
type DependencyType string

const (
	FinishToStart  DependencyType = "finish_to_start"
	StartToStart   DependencyType = "start_to_start"
	FinishToFinish DependencyType = "finish_to_finish"
	StartToFinish  DependencyType = "start_to_finish"
)

// IsValid reports whether the dependency type is a known value.
func (dt DependencyType) IsValid() bool {
	switch dt {
	case FinishToStart, StartToStart, FinishToFinish, StartToFinish:
		return true
	default:
		return false
	}
}

// DependencyEdge is a directed edge in the workspace's task graph:
// the dependent task waits for the prerequisite task.
type DependencyEdge struct {
	ID             string         `json:"id" db:"id"`                           // Unique identifier (UUID)
	WorkspaceID    int64          `json:"workspace_id" db:"workspace_id"`       // Workspace the edge belongs to
	PrerequisiteID string         `json:"prerequisite_id" db:"prerequisite_id"` // Task that must be satisfied first
	DependentID    string         `json:"dependent_id" db:"dependent_id"`       // Task that waits
	Type           DependencyType `json:"type" db:"dep_type"`                   // How the prerequisite gates the dependent
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`           // Creation timestamp
}
