package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"paperforge-server/analytics"
	"paperforge-server/config"
	"paperforge-server/db"
	"paperforge-server/generation"
	"paperforge-server/handlers"
	"paperforge-server/history"
	"paperforge-server/middleware"
	"paperforge-server/paper"
	"paperforge-server/render"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Initialize database connection pool
	pool, err := db.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	// Ensure database schema is set up (simple creation for demo)
	if err := db.CreateSchema(pool); err != nil {
		log.Fatalf("Error creating database schema: %v", err)
	}

	ctx := context.Background()

	// Generation backend: Gemini when a key is configured, otherwise the
	// offline question bank.
	var gen paper.GenerationService
	var summarizer analytics.Summarizer
	if cfg.Gemini.APIKey != "" {
		gemini, err := generation.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Fatalf("Error initializing Gemini client: %v", err)
		}
		gen = gemini
		summarizer = gemini
	} else if cfg.Bank.Path != "" {
		bank, err := generation.LoadBank(cfg.Bank.Path)
		if err != nil {
			log.Fatalf("Error loading question bank: %v", err)
		}
		gen = bank
		log.Println("No Gemini API key configured, generating from the question bank")
	} else {
		log.Fatal("Either PAPERFORGE_GEMINI_API_KEY or PAPERFORGE_BANK_PATH must be set")
	}

	artifacts := render.NewPostgresStore(pool)
	renderer := render.NewPDF(artifacts, cfg.Institution)
	ledger := history.NewLedger(history.NewPostgresStore(pool))
	ctrl := paper.NewController(paper.NewPostgresStore(pool), ledger, gen, renderer)
	engine := analytics.NewEngine(summarizer)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)
	router := gin.Default()
	router.Use(middleware.Logger())

	authMiddleware := middleware.AuthMiddleware(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer)

	// API Routes (version 1)
	apiV1 := router.Group("/api/v1")
	apiV1.Use(authMiddleware)
	apiV1.Use(middleware.RoleCheckMiddleware([]string{"teacher", "admin"}))
	{
		apiV1.POST("/papers", handlers.CreatePaper(ctrl))
		apiV1.GET("/papers", handlers.ListPapers(ctrl))
		apiV1.GET("/papers/:paper_id", handlers.GetPaper(ctrl))
		apiV1.PATCH("/papers/:paper_id/metadata", handlers.UpdatePaperMetadata(ctrl))
		apiV1.POST("/papers/:paper_id/regenerate", handlers.RegeneratePaper(ctrl))
		apiV1.POST("/papers/:paper_id/approve", handlers.ApprovePaper(ctrl))
		apiV1.DELETE("/papers/:paper_id", handlers.DeletePaper(ctrl))
		apiV1.GET("/papers/:paper_id/suggestions", handlers.PaperSuggestions(ctrl, engine))

		apiV1.GET("/approved-papers", handlers.SearchApprovedPapers(ctrl))
		apiV1.GET("/approved-papers/summary", handlers.ApprovedPapersSummary(ctrl, engine))
		apiV1.POST("/approved-papers/:paper_id/copy-for-edit", handlers.CopyPaperForEdit(ctrl))

		apiV1.GET("/dashboard-summary", handlers.DashboardSummary(ctrl, engine))

		apiV1.GET("/history", handlers.ListHistory(ledger))
		apiV1.DELETE("/history/:history_id", handlers.DeleteHistoryEntry(ledger))
		apiV1.DELETE("/history", handlers.ClearHistory(ledger))

		apiV1.GET("/downloads/:artifact_id", handlers.DownloadArtifact(ctrl, artifacts))
	}

	// Start the server
	srv := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: router,
	}

	// Goroutine to gracefully shut down the server
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("Paperforge Server starting on %s", cfg.ServerPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server startup error: %v", err)
	}
	log.Println("Server exited gracefully.")
}
