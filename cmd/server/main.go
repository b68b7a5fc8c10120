package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"trl-backend/internal/analysis"
	"trl-backend/internal/config"
	"trl-backend/internal/database"
	"trl-backend/internal/handlers"
	"trl-backend/internal/middleware"
	"trl-backend/internal/reports"
	"trl-backend/internal/services"
	"trl-backend/internal/supabase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Database client
	dbClient, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database client: %v", err)
	}
	defer dbClient.Close()

	// Run migrations
	migrator, err := database.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize migrator: %v", err)
	}
	if err := migrator.Run(); err != nil {
		migrator.Close()
		log.Fatalf("Migration failed: %v", err)
	}
	migrator.Close()
	log.Println("Migrations completed successfully")

	// Supabase clients are optional; without them evidence uploads and
	// lifecycle events are disabled.
	var storageClient *supabase.StorageClient
	var realtimeClient *supabase.RealtimeClient
	if cfg.SupabaseURL != "" && cfg.SupabaseKey != "" {
		supabaseClient, err := supabase.NewClient(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize Supabase client: %v", err)
		}
		realtimeClient = supabase.NewRealtimeClient(supabaseClient.Supabase)

		storageClient, err = supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseStorageBucket)
		if err != nil {
			log.Fatalf("Failed to initialize storage client: %v", err)
		}
	} else {
		log.Println("Warning: SUPABASE_URL/SUPABASE_KEY not set. Evidence uploads will not work.")
	}

	// Analysis pipeline
	runner := analysis.NewPythonRunner(cfg.PythonExecutable, cfg.ScriptsDir, cfg.AnalysisTimeout)
	archiver := reports.NewArchiver(dbClient, dbClient)

	var events analysis.EventPublisher
	if realtimeClient != nil {
		events = realtimeClient
	}
	orchestrator := analysis.NewOrchestrator(runner, dbClient, archiver, events, cfg.ReportsDir)

	ingestService := services.NewIngestionService(dbClient, orchestrator, cfg.UploadDir)

	// Handlers
	authHandler := handlers.NewAuthHandler(dbClient, cfg)
	documentsHandler := handlers.NewDocumentsHandler(dbClient, ingestService)
	projectsHandler := handlers.NewProjectsHandler(dbClient, orchestrator)
	reportsHandler := handlers.NewReportsHandler(dbClient)
	evidencesHandler := handlers.NewEvidencesHandler(dbClient, storageClient)

	// Setup router
	router := gin.Default()

	// Health check and auth (no token required)
	router.GET("/health", handlers.HealthHandler)
	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	// Document analysis
	api.POST("/trl/analyze", documentsHandler.Analyze)
	api.GET("/trl/documents", documentsHandler.ListDocuments)
	api.GET("/trl/documents/:document_id", documentsHandler.GetDocument)

	// Projects
	api.POST("/projects", projectsHandler.CreateProject)
	api.GET("/projects", projectsHandler.ListProjects)
	api.GET("/projects/:project_id", projectsHandler.GetProject)
	api.PUT("/projects/:project_id", projectsHandler.UpdateProject)
	api.DELETE("/projects/:project_id", projectsHandler.DeleteProject)
	api.POST("/projects/:project_id/analyze", projectsHandler.AnalyzeProject)
	api.GET("/projects/:project_id/analysis", projectsHandler.GetAnalysisState)

	// Evidences
	api.POST("/projects/:project_id/evidences", evidencesHandler.Upload)
	api.GET("/projects/:project_id/evidences", evidencesHandler.List)
	api.DELETE("/projects/:project_id/evidences/:evidence_id", evidencesHandler.Delete)

	// Reports
	api.GET("/reports/project/:project_id", reportsHandler.ListProjectReports)
	api.GET("/reports/:report_id/download", reportsHandler.DownloadReport)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
