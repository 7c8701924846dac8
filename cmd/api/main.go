package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/megauravmahendra-png/expense-intelligence/internal/api/handlers"
	"github.com/megauravmahendra-png/expense-intelligence/internal/api/middleware"
	"github.com/megauravmahendra-png/expense-intelligence/internal/config"
	"github.com/megauravmahendra-png/expense-intelligence/internal/extractor"
	"github.com/megauravmahendra-png/expense-intelligence/internal/gcsstore"
	infra "github.com/megauravmahendra-png/expense-intelligence/internal/infra/bigquery"
	"github.com/megauravmahendra-png/expense-intelligence/internal/jobs"
	"github.com/megauravmahendra-png/expense-intelligence/internal/jobs/inmemory"
	"github.com/megauravmahendra-png/expense-intelligence/internal/logger"
	"github.com/megauravmahendra-png/expense-intelligence/internal/pdftext"
	"github.com/megauravmahendra-png/expense-intelligence/internal/pipeline"
	"github.com/megauravmahendra-png/expense-intelligence/internal/rules"
)

func main() {
	useGemini := flag.Bool("gemini", false, "recover statement text via Gemini instead of the local PDF extractor")
	flag.Parse()

	cfg := config.Load()
	log := logger.New()

	if cfg.Bucket == "" {
		log.Warn().Msg("No GCS bucket configured - statement uploads will fail")
	}

	infra.Configure(cfg.ProjectID, cfg.Dataset)

	ctx := logger.WithContext(context.Background(), log)

	repo, err := infra.NewRepository(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
	}
	defer repo.Close()

	store, err := gcsstore.New(ctx, cfg.Bucket)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GCS store")
	}
	defer store.Close()

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueSize, cfg.WorkerCount, jobStore)

	var acquirer pipeline.TextAcquirer = pdftext.LocalAcquirer{}
	extractorType := pipeline.ExtractorTypeLocal
	if *useGemini {
		acquirer = pdftext.GeminiAcquirer{Model: cfg.GeminiModel}
		extractorType = pipeline.ExtractorTypeGemini
	}

	ingestion := pipeline.NewStatementIngestionPipeline(pipeline.Deps{
		Repo:          repo,
		Storage:       store,
		Acquirer:      acquirer,
		Rules:         rules.RepositorySource{Lister: repo},
		ExtractorType: extractorType,
		UserID:        cfg.UserID,
		Opts: extractor.Options{
			Config: extractor.CategorizerConfig{
				MatchThreshold: cfg.MatchThreshold,
				FareMin:        cfg.FareMin,
				FareMax:        cfg.FareMax,
			},
			Parallelism: cfg.Parallelism,
		},
	})

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		parseJob, ok := job.(*jobs.ParseStatementJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", parseJob.JobID).
			Str("document_id", parseJob.DocumentID).
			Str("gcs_uri", parseJob.GCSURI).
			Msg("Processing parse job")

		state := &pipeline.PipelineState{
			GCSURI:         parseJob.GCSURI,
			SourceFilename: parseJob.SourceFilename,
			DocumentID:     parseJob.DocumentID,
		}
		if err := ingestion.Execute(logger.WithContext(ctx, log), state); err != nil {
			return err
		}

		parseJob.ParsingRunID = state.ParsingRunID
		return nil
	}

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	var sheet pipeline.RuleSource
	if cfg.RulesSheetID != "" {
		sheetSource, err := rules.NewSheetsSource(ctx, cfg.RulesSheetID, cfg.RulesSheetRange)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create rules sheet source")
		}
		sheet = sheetSource
	}

	statementsHandler := handlers.NewStatementsHandler(repo, store, jobQueue, cfg.StatementPrefix, cfg.UserID, log)
	transactionsHandler := handlers.NewTransactionsHandler(repo, log)
	rulesHandler := handlers.NewRulesHandler(repo, sheet, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/statements", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			statementsHandler.ListStatements(w, r)
		case http.MethodPost:
			statementsHandler.UploadStatement(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/statements/parse", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			statementsHandler.EnqueueParsing(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.ListTransactions(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/rules", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			rulesHandler.ListRules(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/rules/sync", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			rulesHandler.SyncRules(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
