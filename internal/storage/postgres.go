package storage

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/beckyeh8888/free-crm-sub001/pkg/models"
	"github.com/beckyeh8888/free-crm-sub001/pkg/storage"
)

// Column lists for explicit selects; both tables carry an extra seq
// column that only exists to keep insertion order.
const (
	taskColumns = "id, workspace_id, title, start_date, end_date, completed, color, created_at"
	edgeColumns = "id, workspace_id, prerequisite_id, dependent_id, dep_type, created_at"
)

type DBInterface interface {
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
	QueryRowx(query string, args ...interface{}) *sqlx.Row
	Exec(query string, args ...interface{}) (sql.Result, error)
}

type PostgresStore struct {
	db DBInterface
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Begin() (storage.Store, error) {
	if db, ok := s.db.(*sqlx.DB); ok {
		tx, err := db.Beginx()
		if err != nil {
			return nil, err
		}
		return &PostgresStore{db: tx}, nil
	}
	return nil, fmt.Errorf("cannot begin transaction on unknown type")
}

func (s *PostgresStore) Commit() error {
	if tx, ok := s.db.(*sqlx.Tx); ok {
		return tx.Commit()
	}
	return fmt.Errorf("cannot commit: not a transaction")
}

func (s *PostgresStore) Rollback() error {
	if tx, ok := s.db.(*sqlx.Tx); ok {
		return tx.Rollback()
	}
	return fmt.Errorf("cannot rollback: not a transaction")
}

func (s *PostgresStore) Close() error {
	if db, ok := s.db.(*sqlx.DB); ok {
		return db.Close()
	}
	return nil // No-op for *sqlx.Tx
}

// SaveTask inserts a task row. Task rows are normally written by the
// surrounding task feature; this path serves seeding and tests.
func (s *PostgresStore) SaveTask(t models.Task) error {
	_, err := s.db.Exec(
		"INSERT INTO tasks (id, workspace_id, title, start_date, end_date, completed, color, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		t.ID, t.WorkspaceID, t.Title, t.StartDate, t.EndDate, t.Completed, t.Color, t.CreatedAt)
	if isUniqueViolation(err) {
		return storage.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("save task %s: %w", t.ID, err)
	}
	return nil
}

// GetTask retrieves a task by ID within a workspace
func (s *PostgresStore) GetTask(id string, workspaceID int64) (models.Task, error) {
	var task models.Task
	err := s.db.Get(&task, "SELECT "+taskColumns+" FROM tasks WHERE id = $1 AND workspace_id = $2", id, workspaceID)
	if err == sql.ErrNoRows {
		return models.Task{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// ListTasks returns a workspace's tasks in insertion order.
func (s *PostgresStore) ListTasks(workspaceID int64) ([]models.Task, error) {
	tasks := []models.Task{}
	err := s.db.Select(&tasks, "SELECT "+taskColumns+" FROM tasks WHERE workspace_id = $1 ORDER BY seq", workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list tasks for workspace %d: %w", workspaceID, err)
	}
	return tasks, nil
}

// SaveDependency inserts an edge row. The unique index on the ordered
// endpoint pair backstops the service-level duplicate check, so a
// concurrent insert of the same pair surfaces as ErrDuplicate.
func (s *PostgresStore) SaveDependency(e models.DependencyEdge) error {
	_, err := s.db.Exec(
		"INSERT INTO task_dependencies (id, workspace_id, prerequisite_id, dependent_id, dep_type, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		e.ID, e.WorkspaceID, e.PrerequisiteID, e.DependentID, e.Type, e.CreatedAt)
	if isUniqueViolation(err) {
		return storage.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("save dependency %s -> %s: %w", e.PrerequisiteID, e.DependentID, err)
	}
	return nil
}

// GetDependency retrieves an edge by its ordered endpoint pair
func (s *PostgresStore) GetDependency(workspaceID int64, prerequisiteID, dependentID string) (models.DependencyEdge, error) {
	var edge models.DependencyEdge
	err := s.db.Get(&edge,
		"SELECT "+edgeColumns+" FROM task_dependencies WHERE workspace_id = $1 AND prerequisite_id = $2 AND dependent_id = $3",
		workspaceID, prerequisiteID, dependentID)
	if err == sql.ErrNoRows {
		return models.DependencyEdge{}, storage.ErrNotFound
	}
	if err != nil {
		return models.DependencyEdge{}, err
	}
	return edge, nil
}

// GetDependencyByID retrieves an edge by its id
func (s *PostgresStore) GetDependencyByID(workspaceID int64, id string) (models.DependencyEdge, error) {
	var edge models.DependencyEdge
	err := s.db.Get(&edge,
		"SELECT "+edgeColumns+" FROM task_dependencies WHERE workspace_id = $1 AND id = $2",
		workspaceID, id)
	if err == sql.ErrNoRows {
		return models.DependencyEdge{}, storage.ErrNotFound
	}
	if err != nil {
		return models.DependencyEdge{}, err
	}
	return edge, nil
}

// DeleteDependency removes an edge by id.
func (s *PostgresStore) DeleteDependency(workspaceID int64, id string) error {
	res, err := s.db.Exec("DELETE FROM task_dependencies WHERE workspace_id = $1 AND id = $2", workspaceID, id)
	if err != nil {
		return fmt.Errorf("delete dependency %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListDependencies returns all edges of a workspace in insertion order.
func (s *PostgresStore) ListDependencies(workspaceID int64) ([]models.DependencyEdge, error) {
	edges := []models.DependencyEdge{}
	err := s.db.Select(&edges,
		"SELECT "+edgeColumns+" FROM task_dependencies WHERE workspace_id = $1 ORDER BY seq", workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list dependencies for workspace %d: %w", workspaceID, err)
	}
	return edges, nil
}

// ListDependenciesByDependent returns the edges where the task waits,
// in insertion order.
func (s *PostgresStore) ListDependenciesByDependent(workspaceID int64, taskID string) ([]models.DependencyEdge, error) {
	edges := []models.DependencyEdge{}
	err := s.db.Select(&edges,
		"SELECT "+edgeColumns+" FROM task_dependencies WHERE workspace_id = $1 AND dependent_id = $2 ORDER BY seq",
		workspaceID, taskID)
	if err != nil {
		return nil, err
	}
	return edges, nil
}

// ListDependenciesByPrerequisite returns the edges where the task is
// waited on, in insertion order.
func (s *PostgresStore) ListDependenciesByPrerequisite(workspaceID int64, taskID string) ([]models.DependencyEdge, error) {
	edges := []models.DependencyEdge{}
	err := s.db.Select(&edges,
		"SELECT "+edgeColumns+" FROM task_dependencies WHERE workspace_id = $1 AND prerequisite_id = $2 ORDER BY seq",
		workspaceID, taskID)
	if err != nil {
		return nil, err
	}
	return edges, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
