package graph

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/beckyeh8888/free-crm-sub001/pkg/models"
)

func prereqsFrom(m map[string][]string) NeighborFunc {
	return func(taskID string) ([]string, error) {
		return m[taskID], nil
	}
}

func TestReachable(t *testing.T) {
	t.Run("direct edge", func(t *testing.T) {
		next := prereqsFrom(map[string][]string{"b": {"a"}})

		ok, err := Reachable("b", "a", next)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("transitive chain", func(t *testing.T) {
		next := prereqsFrom(map[string][]string{
			"d": {"c"},
			"c": {"b"},
			"b": {"a"},
		})

		ok, err := Reachable("d", "a", next)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unconnected nodes", func(t *testing.T) {
		next := prereqsFrom(map[string][]string{
			"b": {"a"},
			"d": {"c"},
		})

		ok, err := Reachable("b", "d", next)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("start equals target", func(t *testing.T) {
		ok, err := Reachable("a", "a", prereqsFrom(nil))
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("revisit keeps searching", func(t *testing.T) {
		// Diamond into s: both a and b lead there, so s is enqueued
		// twice. The target sits beyond s and must still be found
		// after the second visit is skipped.
		next := prereqsFrom(map[string][]string{
			"x": {"a", "b"},
			"a": {"s"},
			"b": {"s"},
			"s": {"t"},
		})

		ok, err := Reachable("x", "t", next)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("neighbor error propagates", func(t *testing.T) {
		boom := errors.New("lookup failed")
		next := func(taskID string) ([]string, error) {
			return nil, boom
		}

		ok, err := Reachable("a", "b", next)
		assert.False(t, ok)
		assert.Equal(t, boom, err)
	})
}

func TestWouldCreateCycle(t *testing.T) {
	// Diamond: a before b and c, both before d.
	diamond := map[string][]string{
		"b": {"a"},
		"c": {"a"},
		"d": {"b", "c"},
	}

	t.Run("closing the diamond is a cycle", func(t *testing.T) {
		ok, err := WouldCreateCycle("d", "a", prereqsFrom(diamond))
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("parallel edge is not a cycle", func(t *testing.T) {
		ok, err := WouldCreateCycle("a", "d", prereqsFrom(diamond))
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("fresh edge between islands", func(t *testing.T) {
		ok, err := WouldCreateCycle("a", "z", prereqsFrom(diamond))
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestAdjacency(t *testing.T) {
	edges := []models.DependencyEdge{
		{PrerequisiteID: "a", DependentID: "b"},
		{PrerequisiteID: "a", DependentID: "c"},
		{PrerequisiteID: "b", DependentID: "d"},
		{PrerequisiteID: "c", DependentID: "d"},
		{PrerequisiteID: "a", DependentID: "b"}, // duplicate, collapsed
	}
	adj := BuildAdjacency(edges)

	t.Run("prerequisites", func(t *testing.T) {
		assert.Equal(t, []string{"b", "c"}, adj.PrerequisitesOf("d"))
		assert.Equal(t, []string{"a"}, adj.PrerequisitesOf("b"))
		assert.Empty(t, adj.PrerequisitesOf("a"))
	})

	t.Run("dependents", func(t *testing.T) {
		assert.Equal(t, []string{"b", "c"}, adj.DependentsOf("a"))
		assert.Empty(t, adj.DependentsOf("d"))
	})

	t.Run("neighbor func adapter", func(t *testing.T) {
		ok, err := WouldCreateCycle("d", "a", adj.Prereqs())
		assert.NoError(t, err)
		assert.True(t, ok)
	})
}
