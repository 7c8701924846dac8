package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/megauravmahendra-png/expense-intelligence/internal/config"
	"github.com/megauravmahendra-png/expense-intelligence/internal/gcsstore"
	infra "github.com/megauravmahendra-png/expense-intelligence/internal/infra/bigquery"
	"github.com/megauravmahendra-png/expense-intelligence/internal/logger"
	"github.com/megauravmahendra-png/expense-intelligence/internal/pipeline"
)

func main() {
	log := logger.New()

	var (
		filePath   string
		objectName string
		register   bool
	)

	flag.StringVar(&filePath, "file", "", "Path to local statement PDF (required)")
	flag.StringVar(&objectName, "object", "", "GCS object name (optional; defaults to prefix + file name)")
	flag.BoolVar(&register, "register", true, "Insert a document row in BigQuery after uploading")
	flag.Parse()

	if filePath == "" {
		log.Fatal().Msg("Usage: upload-pdf -file /path/to/statement.pdf [-object OBJECT_NAME] [-register=false]")
	}

	cfg := config.Load()
	if cfg.Bucket == "" {
		log.Fatal().Msg("GCS_BUCKET is not configured")
	}
	if objectName == "" {
		objectName = cfg.StatementPrefix + filepath.Base(filePath)
	}

	ctx := logger.WithContext(context.Background(), log)

	data, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", filePath).Msg("Failed to read file")
	}

	store, err := gcsstore.New(ctx, cfg.Bucket)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GCS store")
	}
	defer store.Close()

	log.Info().
		Str("bucket", cfg.Bucket).
		Str("object", objectName).
		Str("file", filePath).
		Msg("Uploading statement to GCS")

	gcsURI, err := store.UploadStatement(ctx, objectName, bytes.NewReader(data))
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", filePath, gcsURI)

	if !register {
		return
	}

	infra.Configure(cfg.ProjectID, cfg.Dataset)

	repo, err := infra.NewRepository(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
	}
	defer repo.Close()

	checksum := pipeline.ChecksumSHA256(data)
	if existing, err := repo.FindDocumentByChecksum(ctx, checksum); err != nil {
		log.Fatal().Err(err).Msg("Checksum lookup failed")
	} else if existing != nil {
		fmt.Printf("Document already registered as %s; skipping insert\n", existing.DocumentID)
		return
	}

	doc := &infra.DocumentRow{
		DocumentID:     uuid.NewString(),
		UserID:         cfg.UserID,
		GCSURI:         gcsURI,
		SourceFilename: filepath.Base(filePath),
		FileMimeType:   "application/pdf",
		UploadTS:       time.Now().UTC(),
		ParsingStatus:  pipeline.DocumentStatusPending,
		ChecksumSHA256: checksum,
	}
	if err := repo.InsertDocument(ctx, doc); err != nil {
		log.Fatal().Err(err).Msg("Failed to insert document row")
	}

	fmt.Printf("Registered document %s\n", doc.DocumentID)
}
