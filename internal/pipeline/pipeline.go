// Package pipeline runs an uploaded statement end to end: document record,
// parsing run, PDF fetch, text acquisition, transaction extraction and
// persistence. Each stage is a step over shared state so the sequence stays
// testable piece by piece.
package pipeline

import (
	"context"
	"fmt"

	"github.com/megauravmahendra-png/expense-intelligence/internal/extractor"
	"github.com/megauravmahendra-png/expense-intelligence/internal/logger"
)

const (
	// DefaultUserID is used when no user is associated with a statement.
	DefaultUserID = "default"

	// MIME type recorded on uploaded statement documents.
	statementMimeType = "application/pdf"

	// Extractor type values recorded on parsing runs.
	ExtractorTypeLocal  = "LOCAL_PDF"
	ExtractorTypeGemini = "GEMINI_TEXT"

	// Document parsing_status values.
	DocumentStatusPending = "PENDING"
	DocumentStatusParsed  = "PARSED"
	DocumentStatusFailed  = "FAILED"
)

// PipelineStep represents a single step in the ingestion pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially, stopping at the first failure.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)

	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			log.Error().
				Err(err).
				Int("step", i+1).
				Str("document_id", state.DocumentID).
				Str("parsing_run_id", state.ParsingRunID).
				Msg("pipeline step failed")
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}

	log.Info().
		Str("document_id", state.DocumentID).
		Str("parsing_run_id", state.ParsingRunID).
		Int("transactions", len(state.Rows)).
		Msg("statement ingested")
	return nil
}

// Deps bundles the external services the standard pipeline needs.
type Deps struct {
	Repo     Repository
	Storage  StorageService
	Acquirer TextAcquirer

	// Rules supplies the merchant categorization table, loaded per run so
	// edits take effect without a restart.
	Rules RuleSource

	// Opts carries extractor tuning (match threshold, fare band,
	// parallelism); Rules on it is ignored in favor of the RuleSource.
	Opts extractor.Options

	// ExtractorType is recorded on the parsing run; use ExtractorTypeLocal
	// or ExtractorTypeGemini to match the acquirer.
	ExtractorType string

	UserID string
}

// NewStatementIngestionPipeline assembles the standard ingestion sequence.
func NewStatementIngestionPipeline(deps Deps) *Pipeline {
	if deps.UserID == "" {
		deps.UserID = DefaultUserID
	}
	if deps.ExtractorType == "" {
		deps.ExtractorType = ExtractorTypeLocal
	}
	return NewPipeline(
		&CreateDocumentStep{Repo: deps.Repo, UserID: deps.UserID},
		&StartParsingRunStep{Repo: deps.Repo, ExtractorType: deps.ExtractorType},
		&FetchPDFStep{Repo: deps.Repo, Storage: deps.Storage},
		&AcquireTextStep{Repo: deps.Repo, Acquirer: deps.Acquirer},
		&ExtractTransactionsStep{Repo: deps.Repo, Rules: deps.Rules, Opts: deps.Opts},
		&InsertTransactionsStep{Repo: deps.Repo, UserID: deps.UserID},
		&MarkSuccessStep{Repo: deps.Repo},
	)
}
