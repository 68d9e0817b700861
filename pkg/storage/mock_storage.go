package storage

import (
	"sync"

	"github.com/beckyeh8888/free-crm-sub001/pkg/models"
)

// mockStore implements Store with in-memory slices. Slice order doubles
// as insertion order, which keeps the ListDependencies* contracts. The
// mutex makes individual calls safe under concurrency; multi-call
// sequences (check then insert) still rely on the service layer's
// workspace locks.
type mockStore struct {
	mu           sync.RWMutex
	tasks        []models.Task
	dependencies []models.DependencyEdge
}

// NewMockStore returns an empty in-memory Store.
func NewMockStore() Store {
	return &mockStore{}
}

func (m *mockStore) Begin() (Store, error) {
	// The mock has no transaction isolation; Begin hands back the same
	// instance so service-level commit/rollback sequencing still runs.
	return m, nil
}

func (m *mockStore) Commit() error   { return nil }
func (m *mockStore) Rollback() error { return nil }
func (m *mockStore) Close() error    { return nil }

func (m *mockStore) SaveTask(t models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tasks {
		if existing.ID == t.ID && existing.WorkspaceID == t.WorkspaceID {
			return ErrDuplicate
		}
	}
	m.tasks = append(m.tasks, t)
	return nil
}

func (m *mockStore) GetTask(id string, workspaceID int64) (models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tasks {
		if t.ID == id && t.WorkspaceID == workspaceID {
			return t, nil
		}
	}
	return models.Task{}, ErrNotFound
}

func (m *mockStore) ListTasks(workspaceID int64) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var tasks []models.Task
	for _, t := range m.tasks {
		if t.WorkspaceID == workspaceID {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (m *mockStore) SaveDependency(e models.DependencyEdge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.dependencies {
		if existing.WorkspaceID == e.WorkspaceID &&
			existing.PrerequisiteID == e.PrerequisiteID &&
			existing.DependentID == e.DependentID {
			return ErrDuplicate
		}
	}
	m.dependencies = append(m.dependencies, e)
	return nil
}

func (m *mockStore) GetDependency(workspaceID int64, prerequisiteID, dependentID string) (models.DependencyEdge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.dependencies {
		if e.WorkspaceID == workspaceID && e.PrerequisiteID == prerequisiteID && e.DependentID == dependentID {
			return e, nil
		}
	}
	return models.DependencyEdge{}, ErrNotFound
}

func (m *mockStore) GetDependencyByID(workspaceID int64, id string) (models.DependencyEdge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.dependencies {
		if e.WorkspaceID == workspaceID && e.ID == id {
			return e, nil
		}
	}
	return models.DependencyEdge{}, ErrNotFound
}

func (m *mockStore) DeleteDependency(workspaceID int64, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.dependencies {
		if e.WorkspaceID == workspaceID && e.ID == id {
			m.dependencies = append(m.dependencies[:i], m.dependencies[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockStore) ListDependencies(workspaceID int64) ([]models.DependencyEdge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var edges []models.DependencyEdge
	for _, e := range m.dependencies {
		if e.WorkspaceID == workspaceID {
			edges = append(edges, e)
		}
	}
	return edges, nil
}

func (m *mockStore) ListDependenciesByDependent(workspaceID int64, taskID string) ([]models.DependencyEdge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var edges []models.DependencyEdge
	for _, e := range m.dependencies {
		if e.WorkspaceID == workspaceID && e.DependentID == taskID {
			edges = append(edges, e)
		}
	}
	return edges, nil
}

func (m *mockStore) ListDependenciesByPrerequisite(workspaceID int64, taskID string) ([]models.DependencyEdge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var edges []models.DependencyEdge
	for _, e := range m.dependencies {
		if e.WorkspaceID == workspaceID && e.PrerequisiteID == taskID {
			edges = append(edges, e)
		}
	}
	return edges, nil
}
