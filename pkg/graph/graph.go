package graph

import (
	"github.com/beckyeh8888/free-crm-sub001/pkg/models"
)

// NeighborFunc supplies the prerequisite ids of a task, i.e. the tasks
// it directly depends on. Implementations may read from storage or from
// an already-materialized edge list; the traversal below is the same
// either way.
type NeighborFunc func(taskID string) ([]string, error)

// Reachable reports whether target can be reached from start by
// following next edges transitively. The walk is breadth-first with a
// visited set: a node seen before is not expanded again, but the rest
// of the frontier keeps being searched, so a revisit alone never
// concludes the walk. Work is bounded by the edges reachable from
// start, not the whole graph.
func Reachable(start, target string, next NeighborFunc) (bool, error) {
	visited := make(map[string]bool)
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == target {
			return true, nil
		}
		if visited[current] {
			continue
		}
		visited[current] = true

		neighbors, err := next(current)
		if err != nil {
			return false, err
		}
		queue = append(queue, neighbors...)
	}
	return false, nil
}

// WouldCreateCycle reports whether inserting the edge
// prerequisite -> dependent would close a loop. The new edge makes the
// dependent wait on the prerequisite, so a loop exists exactly when the
// prerequisite already depends, transitively, on the dependent.
// prereqsOf must yield what a task itself depends on.
func WouldCreateCycle(prerequisiteID, dependentID string, prereqsOf NeighborFunc) (bool, error) {
	return Reachable(prerequisiteID, dependentID, prereqsOf)
}

// Adjacency is an in-memory index over a materialized edge list, keyed
// both ways. It backs the cycle check when the caller already holds the
// full edge set (e.g. a fetched task list) and avoids per-step storage
// reads.
type Adjacency struct {
	prereqs    map[string][]string // dependent -> its prerequisites
	dependents map[string][]string // prerequisite -> tasks waiting on it
}

// BuildAdjacency indexes the given edges. Duplicate ordered pairs are
// collapsed; edge order within a task's list follows input order.
func BuildAdjacency(edges []models.DependencyEdge) *Adjacency {
	a := &Adjacency{
		prereqs:    make(map[string][]string),
		dependents: make(map[string][]string),
	}
	seen := make(map[[2]string]bool, len(edges))
	for _, e := range edges {
		key := [2]string{e.PrerequisiteID, e.DependentID}
		if seen[key] {
			continue
		}
		seen[key] = true
		a.prereqs[e.DependentID] = append(a.prereqs[e.DependentID], e.PrerequisiteID)
		a.dependents[e.PrerequisiteID] = append(a.dependents[e.PrerequisiteID], e.DependentID)
	}
	return a
}

// PrerequisitesOf returns the task ids the given task directly depends on.
func (a *Adjacency) PrerequisitesOf(taskID string) []string {
	return a.prereqs[taskID]
}

// DependentsOf returns the task ids directly waiting on the given task.
func (a *Adjacency) DependentsOf(taskID string) []string {
	return a.dependents[taskID]
}

// Prereqs adapts the index to a NeighborFunc for the traversal helpers.
func (a *Adjacency) Prereqs() NeighborFunc {
	return func(taskID string) ([]string, error) {
		return a.prereqs[taskID], nil
	}
}
