package storage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	internal_storage "github.com/beckyeh8888/free-crm-sub001/internal/storage"
	"github.com/beckyeh8888/free-crm-sub001/internal/testutil"
	"github.com/beckyeh8888/free-crm-sub001/pkg/models"
	"github.com/beckyeh8888/free-crm-sub001/pkg/storage"
)

func TestPostgresStore(t *testing.T) {
	testDB := testutil.SetupTestDB(t)
	defer testDB.Teardown(t)

	// Helper to create a transactional store; each subtest works in its
	// own transaction which is rolled back on cleanup.
	newTxStore := func(t *testing.T) storage.Store {
		store, err := internal_storage.NewPostgresStore(testDB.ConnStr)
		assert.NoError(t, err)
		txStore, err := store.Begin()
		assert.NoError(t, err)
		t.Cleanup(func() {
			_ = txStore.Rollback()
		})
		return txStore
	}

	date := func(year int, month time.Month, day int) *time.Time {
		d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		return &d
	}

	newTask := func(id string, workspaceID int64) models.Task {
		return models.Task{
			ID:          id,
			WorkspaceID: workspaceID,
			Title:       "task " + id,
			StartDate:   date(2026, time.February, 2),
			EndDate:     date(2026, time.February, 6),
			Color:       "#4f46e5",
			CreatedAt:   time.Now().UTC(),
		}
	}

	newEdge := func(id string, workspaceID int64, from, to string) models.DependencyEdge {
		return models.DependencyEdge{
			ID:             id,
			WorkspaceID:    workspaceID,
			PrerequisiteID: from,
			DependentID:    to,
			Type:           models.FinishToStart,
			CreatedAt:      time.Now().UTC(),
		}
	}

	t.Run("SaveAndGetTask", func(t *testing.T) {
		store := newTxStore(t)
		task := newTask("t1", 1)

		assert.NoError(t, store.SaveTask(task))

		saved, err := store.GetTask("t1", 1)
		assert.NoError(t, err)
		assert.Equal(t, task.Title, saved.Title)
		assert.Equal(t, task.Color, saved.Color)
		assert.False(t, saved.Completed)
		assert.NotNil(t, saved.StartDate)
		assert.WithinDuration(t, *task.StartDate, *saved.StartDate, time.Second)
	})

	t.Run("GetMissingTask", func(t *testing.T) {
		store := newTxStore(t)
		_, err := store.GetTask("missing", 1)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("TaskInvisibleFromOtherWorkspace", func(t *testing.T) {
		store := newTxStore(t)
		assert.NoError(t, store.SaveTask(newTask("t1", 1)))

		_, err := store.GetTask("t1", 2)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("DuplicateTask", func(t *testing.T) {
		store := newTxStore(t)
		assert.NoError(t, store.SaveTask(newTask("t1", 1)))
		assert.ErrorIs(t, store.SaveTask(newTask("t1", 1)), storage.ErrDuplicate)
	})

	t.Run("ListTasksKeepsInsertionOrder", func(t *testing.T) {
		store := newTxStore(t)
		for _, id := range []string{"z", "a", "m"} {
			assert.NoError(t, store.SaveTask(newTask(id, 1)))
		}

		tasks, err := store.ListTasks(1)
		assert.NoError(t, err)
		assert.Len(t, tasks, 3)
		assert.Equal(t, "z", tasks[0].ID)
		assert.Equal(t, "a", tasks[1].ID)
		assert.Equal(t, "m", tasks[2].ID)
	})

	t.Run("SaveAndGetDependency", func(t *testing.T) {
		store := newTxStore(t)
		assert.NoError(t, store.SaveTask(newTask("a", 1)))
		assert.NoError(t, store.SaveTask(newTask("b", 1)))
		assert.NoError(t, store.SaveDependency(newEdge("e1", 1, "a", "b")))

		byPair, err := store.GetDependency(1, "a", "b")
		assert.NoError(t, err)
		assert.Equal(t, "e1", byPair.ID)
		assert.Equal(t, models.FinishToStart, byPair.Type)

		byID, err := store.GetDependencyByID(1, "e1")
		assert.NoError(t, err)
		assert.Equal(t, "a", byID.PrerequisiteID)
		assert.Equal(t, "b", byID.DependentID)

		_, err = store.GetDependency(1, "b", "a")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("DuplicatePairHitsUniqueIndex", func(t *testing.T) {
		store := newTxStore(t)
		assert.NoError(t, store.SaveTask(newTask("a", 1)))
		assert.NoError(t, store.SaveTask(newTask("b", 1)))
		assert.NoError(t, store.SaveDependency(newEdge("e1", 1, "a", "b")))

		dup := newEdge("e2", 1, "a", "b")
		dup.Type = models.StartToStart
		assert.ErrorIs(t, store.SaveDependency(dup), storage.ErrDuplicate)
	})

	t.Run("DeleteDependency", func(t *testing.T) {
		store := newTxStore(t)
		assert.NoError(t, store.SaveTask(newTask("a", 1)))
		assert.NoError(t, store.SaveTask(newTask("b", 1)))
		assert.NoError(t, store.SaveDependency(newEdge("e1", 1, "a", "b")))

		assert.NoError(t, store.DeleteDependency(1, "e1"))
		assert.ErrorIs(t, store.DeleteDependency(1, "e1"), storage.ErrNotFound)

		_, err := store.GetDependencyByID(1, "e1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ListDependenciesDirectional", func(t *testing.T) {
		store := newTxStore(t)
		for _, id := range []string{"a", "b", "c", "d"} {
			assert.NoError(t, store.SaveTask(newTask(id, 1)))
		}
		assert.NoError(t, store.SaveDependency(newEdge("e1", 1, "a", "c")))
		assert.NoError(t, store.SaveDependency(newEdge("e2", 1, "b", "c")))
		assert.NoError(t, store.SaveDependency(newEdge("e3", 1, "c", "d")))

		all, err := store.ListDependencies(1)
		assert.NoError(t, err)
		assert.Len(t, all, 3)
		assert.Equal(t, "e1", all[0].ID)
		assert.Equal(t, "e3", all[2].ID)

		incoming, err := store.ListDependenciesByDependent(1, "c")
		assert.NoError(t, err)
		assert.Len(t, incoming, 2)
		assert.Equal(t, "a", incoming[0].PrerequisiteID)
		assert.Equal(t, "b", incoming[1].PrerequisiteID)

		outgoing, err := store.ListDependenciesByPrerequisite(1, "c")
		assert.NoError(t, err)
		assert.Len(t, outgoing, 1)
		assert.Equal(t, "d", outgoing[0].DependentID)
	})

	t.Run("DeletingTaskCascadesEdges", func(t *testing.T) {
		// Committed data on its own workspace: the cascade fires at the
		// table level, outside any test transaction.
		store, err := internal_storage.NewPostgresStore(testDB.ConnStr)
		assert.NoError(t, err)

		const ws = int64(99)
		assert.NoError(t, store.SaveTask(newTask("a", ws)))
		assert.NoError(t, store.SaveTask(newTask("b", ws)))
		assert.NoError(t, store.SaveDependency(newEdge("e1", ws, "a", "b")))

		_, err = testDB.DB.Exec("DELETE FROM tasks WHERE workspace_id = $1 AND id = $2", ws, "a")
		assert.NoError(t, err)

		edges, err := store.ListDependencies(ws)
		assert.NoError(t, err)
		assert.Empty(t, edges)
	})
}
