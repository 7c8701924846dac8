package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

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

// Standalone parse worker. It drains its own in-memory queue, seeded from
// the statement folder in GCS, so a whole backlog can be reprocessed without
// going through the API.
func main() {
	useGemini := flag.Bool("gemini", false, "recover statement text via Gemini instead of the local PDF extractor")
	backfill := flag.Bool("backfill", false, "enqueue every statement under the configured GCS prefix on startup")
	flag.Parse()

	cfg := config.Load()
	log := logger.New()

	infra.Configure(cfg.ProjectID, cfg.Dataset)

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

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

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueSize, cfg.WorkerCount, jobStore)

	handler := func(ctx context.Context, job jobs.Job) error {
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
		return ingestion.Execute(logger.WithContext(ctx, log), state)
	}

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	if *backfill {
		uris, err := store.ListStatements(ctx, cfg.StatementPrefix)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list statements for backfill")
		}
		log.Info().Int("count", len(uris)).Msg("Enqueueing backfill statements")
		for _, uri := range uris {
			job := &jobs.ParseStatementJob{
				GCSURI:         uri,
				SourceFilename: gcsstore.FilenameFromURI(uri),
				MaxRetries:     cfg.MaxRetries,
			}
			if err := jobQueue.PublishParseStatement(ctx, job); err != nil {
				log.Error().Err(err).Str("gcs_uri", uri).Msg("Failed to enqueue statement")
			}
		}
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}
