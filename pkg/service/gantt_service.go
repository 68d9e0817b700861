package service

import (
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/beckyeh8888/free-crm-sub001/pkg/gantt"
	"github.com/beckyeh8888/free-crm-sub001/pkg/models"
	"github.com/beckyeh8888/free-crm-sub001/pkg/storage"
)

// GanttOption tunes a GanttService.
type GanttOption func(*GanttService)

// WithRowHeight sets the row pitch, in pixels, used for connector
// geometry.
func WithRowHeight(px float64) GanttOption {
	return func(s *GanttService) {
		if px > 0 {
			s.rowHeight = px
		}
	}
}

// WithProjectionWorkers caps the goroutines projecting bars per view.
func WithProjectionWorkers(n int) GanttOption {
	return func(s *GanttService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// GanttService derives the render payload for one workspace and window:
// the window itself, its columns, a bar per task and a connector per
// drawable dependency edge. The per-task math is pure, so bars are
// projected in parallel across a bounded worker set.
type GanttService struct {
	store     storage.Store
	logger    Logger
	rowHeight float64
	workers   int
}

func NewGanttService(store storage.Store, logger Logger, opts ...GanttOption) *GanttService {
	s := &GanttService{
		store:     store,
		logger:    logger,
		rowHeight: gantt.DefaultRowHeight,
		workers:   runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GanttView builds the combined payload for one render pass. An empty
// taskIDs slice means every task in the workspace, in insertion order;
// explicit ids keep their given order and must all resolve. Bars holds
// nil for tasks outside the window (an expected outcome, not an error);
// Edges holds only connectors whose endpoints are both visible.
func (s *GanttService) GanttView(workspaceID int64, scale models.Scale, ref time.Time, taskIDs []string) (models.GanttView, error) {
	window, err := gantt.WindowFor(scale, ref)
	if err != nil {
		return models.GanttView{}, err
	}
	columns, err := gantt.ColumnsFor(scale, window.Start, window.End)
	if err != nil {
		return models.GanttView{}, err
	}

	tasks, err := s.resolveTasks(workspaceID, taskIDs)
	if err != nil {
		return models.GanttView{}, err
	}

	bars := s.projectBars(tasks, window)

	rows := make(map[string]int, len(tasks))
	for i, task := range tasks {
		rows[task.ID] = i
	}

	edges, err := s.store.ListDependencies(workspaceID)
	if err != nil {
		return models.GanttView{}, errors.Wrap(err, "failed to list dependencies")
	}
	var connectors []models.EdgePath
	for _, edge := range edges {
		fromRow, fromOK := rows[edge.PrerequisiteID]
		toRow, toOK := rows[edge.DependentID]
		if !fromOK || !toOK {
			continue
		}
		path := gantt.PathFor(bars[edge.PrerequisiteID], bars[edge.DependentID], fromRow, toRow, s.rowHeight)
		if path == nil {
			continue
		}
		connectors = append(connectors, models.EdgePath{
			From: edge.PrerequisiteID,
			To:   edge.DependentID,
			Path: path,
		})
	}

	s.logger.Infof("Projected gantt view for workspace %d: scale %s, %d tasks, %d connectors",
		workspaceID, scale, len(tasks), len(connectors))
	return models.GanttView{
		Window:  window,
		Columns: columns,
		Bars:    bars,
		Edges:   connectors,
	}, nil
}

func (s *GanttService) resolveTasks(workspaceID int64, taskIDs []string) ([]models.Task, error) {
	if len(taskIDs) == 0 {
		tasks, err := s.store.ListTasks(workspaceID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to list tasks")
		}
		return tasks, nil
	}

	tasks := make([]models.Task, 0, len(taskIDs))
	for _, id := range taskIDs {
		task, err := s.store.GetTask(id, workspaceID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, &TaskNotFoundError{TaskID: id}
			}
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// projectBars fans the per-task projection out over the worker set.
// Each task lands in the result map, with nil marking one that does not
// intersect the window.
func (s *GanttService) projectBars(tasks []models.Task, window models.Window) map[string]*models.BarPosition {
	bars := make(map[string]*models.BarPosition, len(tasks))
	if len(tasks) == 0 {
		return bars
	}

	workers := s.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	taskChan := make(chan models.Task, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskChan {
				bar := gantt.ProjectBar(task, window.Start, window.End)
				mu.Lock()
				bars[task.ID] = bar
				mu.Unlock()
			}
		}()
	}
	for _, task := range tasks {
		taskChan <- task
	}
	close(taskChan)
	wg.Wait()
	return bars
}
