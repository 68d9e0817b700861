package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/beckyeh8888/free-crm-sub001/pkg/models"
	"github.com/beckyeh8888/free-crm-sub001/pkg/storage"
)

type noopLogger struct{}

func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Errorf(format string, args ...interface{}) {}

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const pipelineFixture = `
workspace: 7
tasks:
  - id: discovery
    title: Discovery call
    start: 2026-02-02
    end: 2026-02-06
    color: "#4f8df0"
  - id: proposal
    title: Send proposal
    start: 2026-02-09
    end: 2026-02-13
    completed: true
  - id: someday
    title: Follow-up ideas
dependencies:
  - prerequisite: discovery
    dependent: proposal
    type: finish_to_start
`

func TestLoadFixture(t *testing.T) {
	t.Run("ParsesTasksAndDependencies", func(t *testing.T) {
		fixture, err := loadFixture(writeFixture(t, pipelineFixture))
		assert.NoError(t, err)
		assert.Equal(t, int64(7), fixture.Workspace)
		assert.Len(t, fixture.Tasks, 3)
		assert.Equal(t, "discovery", fixture.Tasks[0].ID)
		assert.Equal(t, "2026-02-02", fixture.Tasks[0].Start)
		assert.Equal(t, "#4f8df0", fixture.Tasks[0].Color)
		assert.True(t, fixture.Tasks[1].Completed)
		assert.Len(t, fixture.Dependencies, 1)
		assert.Equal(t, "finish_to_start", fixture.Dependencies[0].Type)
	})

	t.Run("MissingWorkspaceRejected", func(t *testing.T) {
		_, err := loadFixture(writeFixture(t, "tasks:\n  - id: a\n"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "workspace")
	})

	t.Run("MalformedYAMLRejected", func(t *testing.T) {
		_, err := loadFixture(writeFixture(t, "workspace: [unclosed"))
		assert.Error(t, err)
	})

	t.Run("MissingFileRejected", func(t *testing.T) {
		_, err := loadFixture(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestSeedWorkspace(t *testing.T) {
	t.Run("PopulatesStoreThroughValidation", func(t *testing.T) {
		fixture, err := loadFixture(writeFixture(t, pipelineFixture))
		assert.NoError(t, err)

		store := storage.NewMockStore()
		assert.NoError(t, seedWorkspace(store, noopLogger{}, fixture))

		task, err := store.GetTask("discovery", 7)
		assert.NoError(t, err)
		assert.Equal(t, "Discovery call", task.Title)
		assert.NotNil(t, task.StartDate)
		assert.Equal(t, time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC), *task.StartDate)

		dateless, err := store.GetTask("someday", 7)
		assert.NoError(t, err)
		assert.False(t, dateless.HasDates())

		edge, err := store.GetDependency(7, "discovery", "proposal")
		assert.NoError(t, err)
		assert.Equal(t, models.FinishToStart, edge.Type)
	})

	t.Run("CyclicFixtureRejected", func(t *testing.T) {
		fixture := seedFixture{
			Workspace: 1,
			Tasks:     []seedTask{{ID: "a"}, {ID: "b"}},
			Dependencies: []seedDependency{
				{Prerequisite: "a", Dependent: "b"},
				{Prerequisite: "b", Dependent: "a"},
			},
		}
		err := seedWorkspace(storage.NewMockStore(), noopLogger{}, fixture)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cycle")
	})

	t.Run("InvalidDateRejected", func(t *testing.T) {
		fixture := seedFixture{
			Workspace: 1,
			Tasks:     []seedTask{{ID: "a", Start: "02/02/2026"}},
		}
		err := seedWorkspace(storage.NewMockStore(), noopLogger{}, fixture)
		assert.Error(t, err)
	})

	t.Run("TaskWithoutIDRejected", func(t *testing.T) {
		fixture := seedFixture{
			Workspace: 1,
			Tasks:     []seedTask{{Title: "nameless"}},
		}
		err := seedWorkspace(storage.NewMockStore(), noopLogger{}, fixture)
		assert.Error(t, err)
	})
}

func TestArgMap(t *testing.T) {
	kv := argMap([]string{"workspace=1", "tasks=a,b", "title=Call=supplier", "bare"})
	assert.Equal(t, "1", kv["workspace"])
	assert.Equal(t, "a,b", kv["tasks"])
	assert.Equal(t, "Call=supplier", kv["title"])
	assert.NotContains(t, kv, "bare")
}
