package workflow

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"halo-platform/api/services/node"
)

// WorkflowStore abstracts workflow persistence for testability.
type WorkflowStore interface {
	Get(ctx context.Context, id string) (*Workflow, error)
	Create(ctx context.Context, wf *Workflow) error
}

// Service exposes workflow definition and node catalog endpoints.
type Service struct {
	store    WorkflowStore
	registry *node.Registry
	catalog  *node.Catalog
}

// NewService creates a Service with a PostgreSQL store.
func NewService(pool *pgxpool.Pool, registry *node.Registry, catalog *node.Catalog) *Service {
	return &Service{store: NewStore(pool), registry: registry, catalog: catalog}
}

// jsonMiddleware sets the Content-Type header to application/json.
func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// LoadRoutes registers workflow HTTP handlers on the given router.
func (s *Service) LoadRoutes(parentRouter *mux.Router) {
	router := parentRouter.PathPrefix("/workflows").Subrouter()
	router.StrictSlash(false)
	router.Use(jsonMiddleware)

	router.HandleFunc("/import", s.HandleImportWorkflow).Methods("POST")
	router.HandleFunc("/{id}", s.HandleGetWorkflow).Methods("GET")
	router.HandleFunc("/{id}/export", s.HandleExportWorkflow).Methods("GET")

	nodesRouter := parentRouter.PathPrefix("/nodes").Subrouter()
	nodesRouter.Use(jsonMiddleware)
	nodesRouter.HandleFunc("", s.HandleListNodes).Methods("GET")
}

// HandleGetWorkflow loads a workflow definition and returns it as JSON.
func (s *Service) HandleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	slog.Debug("Getting workflow", "id", id)

	wf, err := s.store.Get(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get workflow", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if wf == nil {
		writeError(w, http.StatusNotFound, "workflow not found")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(wf)
}

// HandleImportWorkflow validates a portable workflow document and creates a
// workflow record from it. A malformed document is rejected whole.
func (s *Service) HandleImportWorkflow(w http.ResponseWriter, r *http.Request) {
	tenantID := r.Header.Get("X-Tenant-ID")
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "missing tenant id")
		return
	}

	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := ParseDocument(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	wf := &Workflow{
		TenantID:    tenantID,
		Name:        doc.Name,
		Description: doc.Description,
		Steps:       doc.Steps,
	}
	if err := s.store.Create(r.Context(), wf); err != nil {
		slog.Error("Failed to import workflow", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	slog.Info("Imported workflow", "id", wf.ID, "tenant", tenantID, "steps", len(wf.Steps))
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(wf)
}

// HandleExportWorkflow returns a workflow as a portable document.
func (s *Service) HandleExportWorkflow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	wf, err := s.store.Get(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get workflow for export", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if wf == nil {
		writeError(w, http.StatusNotFound, "workflow not found")
		return
	}

	doc := Document{Name: wf.Name, Description: wf.Description, Steps: wf.Steps}
	if doc.Steps == nil {
		doc.Steps = []Step{}
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(doc)
}

// HandleListNodes returns the node registry plus the service-style catalog
// for the editor's node palette.
func (s *Service) HandleListNodes(w http.ResponseWriter, r *http.Request) {
	type catalogNode struct {
		Name        string          `json:"name"`
		DisplayName string          `json:"displayName"`
		Description string          `json:"description,omitempty"`
		Properties  []node.Property `json:"properties"`
	}

	payload := struct {
		Nodes    []*node.Entry `json:"nodes"`
		Services []catalogNode `json:"services"`
	}{Nodes: s.registry.List()}

	for _, entry := range s.catalog.List() {
		payload.Services = append(payload.Services, catalogNode{
			Name:        entry.Service.ID,
			DisplayName: entry.Service.Name,
			Description: entry.Service.Description,
			Properties:  entry.Properties,
		})
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
