package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"halo-platform/api/pkg/config"
	"halo-platform/api/pkg/db"
	"halo-platform/api/services/credential"
	"halo-platform/api/services/execution"
	"halo-platform/api/services/node"
	"halo-platform/api/services/node/nodes"
	"halo-platform/api/services/workflow"
)

func main() {
	ctx := context.Background()
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	slog.SetDefault(slog.New(logHandler))

	// Optional .env for local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		return
	}
	defer pool.Close()

	workflowStore := workflow.NewStore(pool)
	executionStore := execution.NewStore(pool)
	credentialStore := credential.NewStore(pool)

	for name, initSchema := range map[string]func(context.Context) error{
		"workflows":   workflowStore.InitSchema,
		"executions":  executionStore.InitSchema,
		"credentials": credentialStore.InitSchema,
	} {
		if err := initSchema(ctx); err != nil {
			slog.Error("Failed to initialize database", "schema", name, "error", err)
			return
		}
	}
	if err := workflowStore.Seed(ctx); err != nil {
		slog.Error("Failed to seed sample workflow", "error", err)
		return
	}
	if cfg.SeedFile != "" {
		if err := seedFromFile(ctx, workflowStore, cfg.SeedFile); err != nil {
			slog.Error("Failed to import seed workflow", "file", cfg.SeedFile, "error", err)
			return
		}
	}

	registry := node.NewRegistry(nodes.All(), nodes.Icons())
	catalog, err := node.NewCatalog(node.BuiltinServices)
	if err != nil {
		slog.Error("Failed to build integration catalog", "error", err)
		return
	}
	slog.Info("Node registry built", "nodes", registry.Len(), "services", len(catalog.List()))

	var remote execution.Invoker
	if cfg.InvokerURL != "" {
		remote = execution.NewRemoteInvoker(cfg.InvokerURL, catalog)
	}
	invoker := execution.NewLocalInvoker(registry, node.NewHTTPHelpers(nil), remote)
	engine := execution.NewEngine(executionStore, credential.NewResolver(credentialStore), invoker)

	// setup router
	mainRouter := mux.NewRouter()

	apiRouter := mainRouter.PathPrefix("/api/v1").Subrouter()

	workflowService := workflow.NewService(pool, registry, catalog)
	workflowService.LoadRoutes(apiRouter)

	executionService := execution.NewService(workflowStore, executionStore, engine)
	executionService.LoadRoutes(apiRouter)

	mainRouter.PathPrefix("/assets/nodes/").Handler(
		http.StripPrefix("/assets/nodes/", http.FileServer(http.FS(nodes.Icons()))),
	)

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{cfg.CORSOrigin}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Tenant-ID"}),
		handlers.AllowCredentials(),
	)(mainRouter)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: corsHandler,
	}

	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("Starting server", "addr", cfg.ListenAddr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		slog.Error("Server error", "error", err)

	case sig := <-shutdown:
		slog.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Could not stop server gracefully", "error", err)
			srv.Close()
		}
	}
}

// seedFromFile imports a portable workflow document from disk under the demo
// tenant, for deployments that ship a custom starter workflow.
func seedFromFile(ctx context.Context, store *workflow.Store, path string) error {
	doc, err := workflow.ImportFile(afero.NewOsFs(), path)
	if err != nil {
		return err
	}
	wf := &workflow.Workflow{
		TenantID:    "tenant-demo",
		Name:        doc.Name,
		Description: doc.Description,
		Steps:       doc.Steps,
	}
	if err := store.Create(ctx, wf); err != nil {
		return err
	}
	slog.Info("Imported seed workflow", "id", wf.ID, "name", wf.Name)
	return nil
}
