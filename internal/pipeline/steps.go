package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/megauravmahendra-png/expense-intelligence/internal/extractor"
	"github.com/megauravmahendra-png/expense-intelligence/internal/gcsstore"
	infra "github.com/megauravmahendra-png/expense-intelligence/internal/infra/bigquery"
)

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	GCSURI         string
	SourceFilename string

	// DocumentID may be pre-set when the upload handler already created the
	// document row; CreateDocumentStep then skips insertion.
	DocumentID   string
	ParsingRunID string

	PDFBytes []byte
	Text     string

	Table *extractor.Table
	Rows  []*infra.TransactionRow
}

// CreateDocumentStep records the statement in the documents table.
type CreateDocumentStep struct {
	Repo   Repository
	UserID string
}

func (s *CreateDocumentStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.DocumentID != "" {
		return nil
	}

	if state.SourceFilename == "" {
		state.SourceFilename = gcsstore.FilenameFromURI(state.GCSURI)
	}

	documentID := uuid.NewString()
	row := &infra.DocumentRow{
		DocumentID:     documentID,
		UserID:         s.UserID,
		GCSURI:         state.GCSURI,
		SourceFilename: state.SourceFilename,
		FileMimeType:   statementMimeType,
		UploadTS:       time.Now(),
		ParsingStatus:  DocumentStatusPending,
	}
	if err := s.Repo.InsertDocument(ctx, row); err != nil {
		return fmt.Errorf("CreateDocumentStep: %w", err)
	}

	state.DocumentID = documentID
	return nil
}

// StartParsingRunStep opens a parsing run with status=RUNNING.
type StartParsingRunStep struct {
	Repo          Repository
	ExtractorType string
}

func (s *StartParsingRunStep) Execute(ctx context.Context, state *PipelineState) error {
	parsingRunID, err := s.Repo.StartParsingRun(ctx, state.DocumentID, s.ExtractorType)
	if err != nil {
		return fmt.Errorf("StartParsingRunStep: %w", err)
	}
	state.ParsingRunID = parsingRunID
	return nil
}

// FetchPDFStep downloads the statement bytes from GCS.
type FetchPDFStep struct {
	Repo    Repository
	Storage StorageService
}

func (s *FetchPDFStep) Execute(ctx context.Context, state *PipelineState) error {
	pdfBytes, err := s.Storage.Fetch(ctx, state.GCSURI)
	if err != nil {
		failRun(ctx, s.Repo, state, err)
		return fmt.Errorf("FetchPDFStep: %w", err)
	}
	state.PDFBytes = pdfBytes
	return nil
}

// failRun records a failed parsing run and flips the document to FAILED.
func failRun(ctx context.Context, repo Repository, state *PipelineState, err error) {
	repo.MarkParsingRunFailed(ctx, state.ParsingRunID, err)
	_ = repo.MarkDocumentProcessed(ctx, state.DocumentID, DocumentStatusFailed)
}

// AcquireTextStep turns PDF bytes into plain text.
type AcquireTextStep struct {
	Repo     Repository
	Acquirer TextAcquirer
}

func (s *AcquireTextStep) Execute(ctx context.Context, state *PipelineState) error {
	text, err := s.Acquirer.AcquireText(ctx, state.SourceFilename, state.PDFBytes)
	if err != nil {
		failRun(ctx, s.Repo, state, err)
		return fmt.Errorf("AcquireTextStep: %w", err)
	}
	state.Text = text
	return nil
}

// ExtractTransactionsStep runs segmentation, parsing, filtering, dedup and
// categorization over the acquired text.
type ExtractTransactionsStep struct {
	Repo  Repository
	Rules RuleSource

	// Opts carries categorizer tuning; Rules on it is overwritten by the
	// RuleSource load.
	Opts extractor.Options
}

func (s *ExtractTransactionsStep) Execute(ctx context.Context, state *PipelineState) error {
	opts := s.Opts
	if s.Rules != nil {
		rules, err := s.Rules.Load(ctx)
		if err != nil {
			failRun(ctx, s.Repo, state, err)
			return fmt.Errorf("ExtractTransactionsStep: loading rules: %w", err)
		}
		opts.Rules = rules
	}

	docs := []extractor.Document{{Name: state.SourceFilename, Text: state.Text}}
	table, err := extractor.Run(ctx, docs, opts)
	if err != nil {
		failRun(ctx, s.Repo, state, err)
		return fmt.Errorf("ExtractTransactionsStep: %w", err)
	}

	state.Table = table
	return nil
}

// InsertTransactionsStep writes the extracted transactions to storage.
type InsertTransactionsStep struct {
	Repo   Repository
	UserID string
}

func (s *InsertTransactionsStep) Execute(ctx context.Context, state *PipelineState) error {
	rows := make([]*infra.TransactionRow, 0, state.Table.Len())
	for _, tx := range state.Table.Rows() {
		rows = append(rows, infra.NewTransactionRow(tx, s.UserID, state.DocumentID, state.ParsingRunID))
	}

	if err := s.Repo.InsertTransactions(ctx, rows); err != nil {
		failRun(ctx, s.Repo, state, err)
		return fmt.Errorf("InsertTransactionsStep: %w", err)
	}

	state.Rows = rows
	return nil
}

// MarkSuccessStep closes the parsing run and flips the document to PARSED.
type MarkSuccessStep struct {
	Repo Repository
}

func (s *MarkSuccessStep) Execute(ctx context.Context, state *PipelineState) error {
	if err := s.Repo.MarkParsingRunSucceeded(ctx, state.ParsingRunID, len(state.Rows)); err != nil {
		return fmt.Errorf("MarkSuccessStep: %w", err)
	}
	if err := s.Repo.MarkDocumentProcessed(ctx, state.DocumentID, DocumentStatusParsed); err != nil {
		return fmt.Errorf("MarkSuccessStep: %w", err)
	}
	return nil
}

// ChecksumSHA256 returns the hex SHA-256 of the given bytes; used by the
// upload path to detect duplicate statements.
func ChecksumSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
