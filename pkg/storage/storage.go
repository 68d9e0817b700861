package storage

import (
	"github.com/pkg/errors"

	"github.com/beckyeh8888/free-crm-sub001/pkg/models"
)

// ErrNotFound is returned when a task or dependency edge does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when inserting a dependency edge whose
// (workspace, prerequisite, dependent) triple already exists.
var ErrDuplicate = errors.New("already exists")

// Store defines the persistence operations the scheduling core relies
// on. Tasks are owned by the surrounding task-management feature; the
// dependency edge table is owned here. Implementations must keep the
// ListDependencies* orderings stable in insertion order.
type Store interface {
	// Begin returns a transactional view of the store. Commit and
	// Rollback only make sense on the value Begin returns.
	Begin() (Store, error)
	Commit() error
	Rollback() error
	Close() error

	// Task operations
	SaveTask(t models.Task) error
	GetTask(id string, workspaceID int64) (models.Task, error)
	ListTasks(workspaceID int64) ([]models.Task, error)

	// Dependency edge operations
	SaveDependency(e models.DependencyEdge) error
	GetDependency(workspaceID int64, prerequisiteID, dependentID string) (models.DependencyEdge, error)
	GetDependencyByID(workspaceID int64, id string) (models.DependencyEdge, error)
	DeleteDependency(workspaceID int64, id string) error
	ListDependencies(workspaceID int64) ([]models.DependencyEdge, error)
	ListDependenciesByDependent(workspaceID int64, taskID string) ([]models.DependencyEdge, error)
	ListDependenciesByPrerequisite(workspaceID int64, taskID string) ([]models.DependencyEdge, error)
}
