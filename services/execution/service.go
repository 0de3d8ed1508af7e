package execution

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"halo-platform/api/services/workflow"
)

// WorkflowGetter loads workflow definitions for execution.
type WorkflowGetter interface {
	Get(ctx context.Context, id string) (*workflow.Workflow, error)
}

// ExecutionReader serves execution records and logs to observers.
type ExecutionReader interface {
	GetExecution(ctx context.Context, id string) (*Execution, error)
	ListLogs(ctx context.Context, executionID string) ([]LogEntry, error)
}

// Service exposes workflow execution and run-inspection endpoints.
type Service struct {
	workflows WorkflowGetter
	reader    ExecutionReader
	engine    *Engine
}

// NewService wires the engine and stores into an HTTP service.
func NewService(workflows WorkflowGetter, reader ExecutionReader, engine *Engine) *Service {
	return &Service{workflows: workflows, reader: reader, engine: engine}
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// LoadRoutes registers execution HTTP handlers on the given router.
func (s *Service) LoadRoutes(parentRouter *mux.Router) {
	wfRouter := parentRouter.PathPrefix("/workflows").Subrouter()
	wfRouter.Use(jsonMiddleware)
	wfRouter.HandleFunc("/{id}/execute", s.HandleExecuteWorkflow).Methods("POST")

	execRouter := parentRouter.PathPrefix("/executions").Subrouter()
	execRouter.Use(jsonMiddleware)
	execRouter.HandleFunc("/{id}", s.HandleGetExecution).Methods("GET")
	execRouter.HandleFunc("/{id}/logs", s.HandleGetExecutionLogs).Methods("GET")
}

// HandleExecuteWorkflow runs a workflow with the request body as trigger
// input and returns the terminal execution record.
func (s *Service) HandleExecuteWorkflow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	tenantID := r.Header.Get("X-Tenant-ID")
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "missing tenant id")
		return
	}
	slog.Debug("Executing workflow", "id", id, "tenant", tenantID)

	trigger := map[string]any{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&trigger); err != nil {
			writeError(w, http.StatusBadRequest, "invalid trigger payload")
			return
		}
	}

	wf, err := s.workflows.Get(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get workflow for execution", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if wf == nil {
		writeError(w, http.StatusNotFound, "workflow not found")
		return
	}

	exec, err := s.engine.Run(r.Context(), wf, tenantID, trigger)
	if err != nil {
		slog.Error("Workflow execution failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(exec)
}

// HandleGetExecution returns one execution record.
func (s *Service) HandleGetExecution(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	exec, err := s.reader.GetExecution(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get execution", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if exec == nil {
		writeError(w, http.StatusNotFound, "execution not found")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(exec)
}

// HandleGetExecutionLogs returns an execution's log stream in append order.
func (s *Service) HandleGetExecutionLogs(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	logs, err := s.reader.ListLogs(r.Context(), id)
	if err != nil {
		slog.Error("Failed to list execution logs", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if logs == nil {
		logs = []LogEntry{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(logs)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
