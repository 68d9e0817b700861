package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/beckyeh8888/free-crm-sub001/pkg/graph"
	"github.com/beckyeh8888/free-crm-sub001/pkg/models"
	"github.com/beckyeh8888/free-crm-sub001/pkg/storage"
)

// DependencySelector addresses the edge to delete, either by edge id or
// by its ordered endpoint pair.
type DependencySelector struct {
	EdgeID         string
	PrerequisiteID string
	DependentID    string
}

// DependencyService owns the workspace task graphs. Every proposed edge
// is validated against the graph invariants (no self-loop, no duplicate
// ordered pair, no cycle) inside a per-workspace critical section, so an
// edge is either fully committed or not committed at all.
type DependencyService struct {
	store  storage.Store
	logger Logger
	locks  *workspaceLocks
}

func NewDependencyService(store storage.Store, logger Logger) *DependencyService {
	return &DependencyService{
		store:  store,
		logger: logger,
		locks:  newWorkspaceLocks(),
	}
}

// CreateDependency validates and inserts the edge prerequisite ->
// dependent. Two concurrent calls that each pass the cycle check but
// would jointly close a loop cannot both succeed: the workspace lock
// serializes the reachability check with the insert.
func (s *DependencyService) CreateDependency(workspaceID int64, prerequisiteID, dependentID string, depType models.DependencyType) (edge models.DependencyEdge, err error) {
	if prerequisiteID == dependentID {
		return models.DependencyEdge{}, &SelfDependencyError{TaskID: prerequisiteID}
	}
	if depType == "" {
		depType = models.FinishToStart
	}
	if !depType.IsValid() {
		return models.DependencyEdge{}, errors.Errorf("unknown dependency type %q", string(depType))
	}

	lock := s.locks.get(workspaceID)
	lock.Lock()
	defer lock.Unlock()

	txStore, err := s.store.Begin()
	if err != nil {
		return models.DependencyEdge{}, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				s.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			s.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()

	for _, taskID := range []string{prerequisiteID, dependentID} {
		if _, err = txStore.GetTask(taskID, workspaceID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				err = &TaskNotFoundError{TaskID: taskID}
			}
			return models.DependencyEdge{}, err
		}
	}

	_, err = txStore.GetDependency(workspaceID, prerequisiteID, dependentID)
	if err == nil {
		err = &DuplicateEdgeError{PrerequisiteID: prerequisiteID, DependentID: dependentID}
		return models.DependencyEdge{}, err
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.DependencyEdge{}, errors.Wrap(err, "failed to check for existing dependency")
	}
	err = nil

	// The new edge makes the dependent wait on the prerequisite, so it
	// closes a loop exactly when the prerequisite already depends,
	// transitively, on the dependent.
	cyclic, err := graph.WouldCreateCycle(prerequisiteID, dependentID, prereqsOf(txStore, workspaceID))
	if err != nil {
		return models.DependencyEdge{}, errors.Wrap(err, "cycle check failed")
	}
	if cyclic {
		err = &CycleError{PrerequisiteID: prerequisiteID, DependentID: dependentID}
		return models.DependencyEdge{}, err
	}

	edge = models.DependencyEdge{
		ID:             uuid.New().String(),
		WorkspaceID:    workspaceID,
		PrerequisiteID: prerequisiteID,
		DependentID:    dependentID,
		Type:           depType,
		CreatedAt:      time.Now(),
	}
	if err = txStore.SaveDependency(edge); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			err = &DuplicateEdgeError{PrerequisiteID: prerequisiteID, DependentID: dependentID}
		}
		return models.DependencyEdge{}, err
	}

	s.logger.Infof("Added dependency %s -> %s (%s) in workspace %d", prerequisiteID, dependentID, depType, workspaceID)
	return edge, nil
}

// DeleteDependency removes the edge addressed by the selector. A
// selector matching nothing yields EdgeNotFoundError and the graph is
// left untouched.
func (s *DependencyService) DeleteDependency(workspaceID int64, sel DependencySelector) (err error) {
	if sel.EdgeID == "" && (sel.PrerequisiteID == "" || sel.DependentID == "") {
		return errors.New("selector needs an edge id or both endpoint ids")
	}

	lock := s.locks.get(workspaceID)
	lock.Lock()
	defer lock.Unlock()

	txStore, err := s.store.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				s.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			s.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()

	var edge models.DependencyEdge
	if sel.EdgeID != "" {
		edge, err = txStore.GetDependencyByID(workspaceID, sel.EdgeID)
	} else {
		edge, err = txStore.GetDependency(workspaceID, sel.PrerequisiteID, sel.DependentID)
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = &EdgeNotFoundError{EdgeID: sel.EdgeID, PrerequisiteID: sel.PrerequisiteID, DependentID: sel.DependentID}
		}
		return err
	}

	if err = txStore.DeleteDependency(workspaceID, edge.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = &EdgeNotFoundError{EdgeID: edge.ID}
		}
		return err
	}

	s.logger.Infof("Removed dependency %s -> %s in workspace %d", edge.PrerequisiteID, edge.DependentID, workspaceID)
	return nil
}

// ListDependencies returns the edges around one task as two disjoint
// sequences: the edges where the task is the dependent (its
// prerequisites) and the edges where it is the prerequisite (tasks
// waiting on it). Both keep insertion order.
func (s *DependencyService) ListDependencies(workspaceID int64, taskID string) (prerequisites, dependents []models.DependencyEdge, err error) {
	lock := s.locks.get(workspaceID)
	lock.RLock()
	defer lock.RUnlock()

	if _, err = s.store.GetTask(taskID, workspaceID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = &TaskNotFoundError{TaskID: taskID}
		}
		return nil, nil, err
	}

	prerequisites, err = s.store.ListDependenciesByDependent(workspaceID, taskID)
	if err != nil {
		return nil, nil, err
	}
	dependents, err = s.store.ListDependenciesByPrerequisite(workspaceID, taskID)
	if err != nil {
		return nil, nil, err
	}
	return prerequisites, dependents, nil
}

// prereqsOf adapts the store to the traversal's neighbor callback: the
// tasks a given task itself depends on.
func prereqsOf(store storage.Store, workspaceID int64) graph.NeighborFunc {
	return func(taskID string) ([]string, error) {
		edges, err := store.ListDependenciesByDependent(workspaceID, taskID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(edges))
		for _, e := range edges {
			ids = append(ids, e.PrerequisiteID)
		}
		return ids, nil
	}
}
