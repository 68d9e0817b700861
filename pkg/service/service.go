package service

import "sync"

// Logger defines the logging interface the services write through.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// workspaceLocks hands out one lock per workspace. Edge mutations take
// the write side so the check-then-insert sequence is serialized within
// a workspace; edge reads share the read side and never block each
// other. Workspaces never contend with one another.
type workspaceLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.RWMutex
}

func newWorkspaceLocks() *workspaceLocks {
	return &workspaceLocks{locks: make(map[int64]*sync.RWMutex)}
}

func (w *workspaceLocks) get(workspaceID int64) *sync.RWMutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	lock, ok := w.locks[workspaceID]
	if !ok {
		lock = &sync.RWMutex{}
		w.locks[workspaceID] = lock
	}
	return lock
}
