package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/beckyeh8888/free-crm-sub001/internal/log"
	"github.com/beckyeh8888/free-crm-sub001/pkg/gantt"
	"github.com/beckyeh8888/free-crm-sub001/pkg/models"
	"github.com/beckyeh8888/free-crm-sub001/pkg/service"
	"github.com/beckyeh8888/free-crm-sub001/pkg/storage"
)

// ServerConfig carries the settings the HTTP layer needs.
type ServerConfig struct {
	Port         string
	DefaultScale models.Scale
	RowHeight    float64
	Workers      int
}

// StartServer wires the services over the store and serves the
// scheduling API.
func StartServer(cfg ServerConfig, store storage.Store) error {
	depSvc := service.NewDependencyService(store, log.GetLogger())
	ganttSvc := service.NewGanttService(store, log.GetLogger(),
		service.WithRowHeight(cfg.RowHeight),
		service.WithProjectionWorkers(cfg.Workers))

	mux := NewMux(depSvc, ganttSvc, cfg.DefaultScale)
	log.GetLogger().Infof("Starting gantt server on :%s", cfg.Port)
	return http.ListenAndServe(":"+cfg.Port, mux)
}

// NewMux assembles the routes; exported so tests serve the exact same
// wiring through httptest.
func NewMux(deps *service.DependencyService, views *service.GanttService, defaultScale models.Scale) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", HealthHandler)
	mux.HandleFunc("/gantt", GanttHandler(views, defaultScale))
	mux.HandleFunc("/dependencies", DependenciesHandler(deps))
	mux.HandleFunc("/dependencies/", DependencyByIDHandler(deps))
	mux.HandleFunc("/tasks/", TaskDependenciesHandler(deps))
	return mux
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "gantt server is running")
}

// GanttHandler serves GET /gantt?workspace=N&scale=week&ref=2026-02-11
// with an optional tasks=<id,id,...> filter. The response is the
// combined render payload for one window.
func GanttHandler(svc *service.GanttService, defaultScale models.Scale) http.HandlerFunc {
	if defaultScale == "" {
		defaultScale = models.ScaleMonth
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		workspaceID, err := workspaceFrom(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		scale := defaultScale
		if raw := r.URL.Query().Get("scale"); raw != "" {
			scale = models.Scale(raw)
		}

		ref := time.Now()
		if raw := r.URL.Query().Get("ref"); raw != "" {
			ref, err = time.Parse("2006-01-02", raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, errors.Errorf("invalid 'ref' date %q, want YYYY-MM-DD", raw))
				return
			}
		}

		var taskIDs []string
		if raw := r.URL.Query().Get("tasks"); raw != "" {
			taskIDs = strings.Split(raw, ",")
		}

		view, err := svc.GanttView(workspaceID, scale, ref, taskIDs)
		if err != nil {
			log.GetLogger().Errorf("Failed to project gantt view: %v", err)
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

type createDependencyRequest struct {
	WorkspaceID    int64  `json:"workspace_id"`
	PrerequisiteID string `json:"prerequisite_id"`
	DependentID    string `json:"dependent_id"`
	Type           string `json:"type"`
}

// DependenciesHandler serves the edge collection: POST creates a
// validated edge, DELETE removes one by its ordered endpoint pair.
func DependenciesHandler(svc *service.DependencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			createDependencyHTTP(w, r, svc)
		case http.MethodDelete:
			deleteDependencyByPairHTTP(w, r, svc)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func createDependencyHTTP(w http.ResponseWriter, r *http.Request, svc *service.DependencyService) {
	var req createDependencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid request body"))
		return
	}
	if req.WorkspaceID <= 0 || req.PrerequisiteID == "" || req.DependentID == "" {
		writeError(w, http.StatusBadRequest, errors.New("workspace_id, prerequisite_id and dependent_id are required"))
		return
	}
	depType := models.DependencyType(req.Type)
	if req.Type != "" && !depType.IsValid() {
		writeError(w, http.StatusBadRequest, errors.Errorf("unknown dependency type %q", req.Type))
		return
	}

	edge, err := svc.CreateDependency(req.WorkspaceID, req.PrerequisiteID, req.DependentID, depType)
	if err != nil {
		log.GetLogger().Errorf("Failed to create dependency: %v", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, edge)
}

func deleteDependencyByPairHTTP(w http.ResponseWriter, r *http.Request, svc *service.DependencyService) {
	workspaceID, err := workspaceFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	prerequisiteID := r.URL.Query().Get("prerequisite")
	dependentID := r.URL.Query().Get("dependent")
	if prerequisiteID == "" || dependentID == "" {
		writeError(w, http.StatusBadRequest, errors.New("'prerequisite' and 'dependent' parameters are required"))
		return
	}

	err = svc.DeleteDependency(workspaceID, service.DependencySelector{
		PrerequisiteID: prerequisiteID,
		DependentID:    dependentID,
	})
	if err != nil {
		log.GetLogger().Errorf("Failed to delete dependency: %v", err)
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DependencyByIDHandler serves DELETE /dependencies/{id}?workspace=N.
func DependencyByIDHandler(svc *service.DependencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		edgeID := strings.TrimPrefix(r.URL.Path, "/dependencies/")
		if edgeID == "" || strings.Contains(edgeID, "/") {
			http.NotFound(w, r)
			return
		}
		workspaceID, err := workspaceFrom(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		if err := svc.DeleteDependency(workspaceID, service.DependencySelector{EdgeID: edgeID}); err != nil {
			log.GetLogger().Errorf("Failed to delete dependency %s: %v", edgeID, err)
			writeError(w, statusFor(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type taskDependenciesResponse struct {
	Prerequisites []models.DependencyEdge `json:"prerequisites"`
	Dependents    []models.DependencyEdge `json:"dependents"`
}

// TaskDependenciesHandler serves GET /tasks/{id}/dependencies?workspace=N,
// returning the edges around one task as two disjoint lists.
func TaskDependenciesHandler(svc *service.DependencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/tasks/")
		parts := strings.Split(rest, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] != "dependencies" {
			http.NotFound(w, r)
			return
		}
		workspaceID, err := workspaceFrom(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		prerequisites, dependents, err := svc.ListDependencies(workspaceID, parts[0])
		if err != nil {
			log.GetLogger().Errorf("Failed to list dependencies for task %s: %v", parts[0], err)
			writeError(w, statusFor(err), err)
			return
		}
		if prerequisites == nil {
			prerequisites = []models.DependencyEdge{}
		}
		if dependents == nil {
			dependents = []models.DependencyEdge{}
		}
		writeJSON(w, http.StatusOK, taskDependenciesResponse{
			Prerequisites: prerequisites,
			Dependents:    dependents,
		})
	}
}

func workspaceFrom(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("workspace")
	if raw == "" {
		return 0, errors.New("missing 'workspace' parameter")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid 'workspace' parameter %q", raw)
	}
	return id, nil
}

// statusFor maps service errors onto the API's status codes: bad input
// is 400, missing entities 404, graph integrity conflicts 409.
func statusFor(err error) int {
	var (
		selfErr   *service.SelfDependencyError
		dupErr    *service.DuplicateEdgeError
		cycleErr  *service.CycleError
		taskErr   *service.TaskNotFoundError
		edgeErr   *service.EdgeNotFoundError
		windowErr *gantt.InvalidWindowError
	)
	switch {
	case errors.As(err, &selfErr), errors.As(err, &windowErr):
		return http.StatusBadRequest
	case errors.As(err, &taskErr), errors.As(err, &edgeErr):
		return http.StatusNotFound
	case errors.As(err, &dupErr), errors.As(err, &cycleErr):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.GetLogger().Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
