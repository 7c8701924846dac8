package pipeline

import (
	"context"

	"github.com/megauravmahendra-png/expense-intelligence/internal/extractor"
	infra "github.com/megauravmahendra-png/expense-intelligence/internal/infra/bigquery"
)

// Repository is the persistence surface the pipeline needs. Satisfied by the
// BigQuery repository; tests substitute fakes.
type Repository interface {
	InsertDocument(ctx context.Context, row *infra.DocumentRow) error
	MarkDocumentProcessed(ctx context.Context, documentID, status string) error
	StartParsingRun(ctx context.Context, documentID, extractorType string) (string, error)
	MarkParsingRunFailed(ctx context.Context, parsingRunID string, parseErr error)
	MarkParsingRunSucceeded(ctx context.Context, parsingRunID string, transactionCount int) error
	InsertTransactions(ctx context.Context, rows []*infra.TransactionRow) error
}

// StorageService fetches statement bytes by gs:// URI.
type StorageService interface {
	Fetch(ctx context.Context, gcsURI string) ([]byte, error)
}

// TextAcquirer extracts plain text from PDF bytes.
type TextAcquirer interface {
	AcquireText(ctx context.Context, name string, data []byte) (string, error)
}

// RuleSource loads the merchant categorization table.
type RuleSource interface {
	Load(ctx context.Context) ([]extractor.MerchantRule, error)
}
