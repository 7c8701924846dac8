package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/megauravmahendra-png/expense-intelligence/internal/extractor"
)

// Repository is the persistence surface the pipeline and API depend on.
// Implemented by BigQueryRepository; tests substitute in-memory fakes.
type Repository interface {
	InsertDocument(ctx context.Context, row *DocumentRow) error
	MarkDocumentProcessed(ctx context.Context, documentID, status string) error
	FindDocumentByChecksum(ctx context.Context, checksum string) (*DocumentRow, error)
	ListDocuments(ctx context.Context) ([]*DocumentRow, error)

	StartParsingRun(ctx context.Context, documentID, extractorType string) (string, error)
	MarkParsingRunFailed(ctx context.Context, parsingRunID string, parseErr error)
	MarkParsingRunSucceeded(ctx context.Context, parsingRunID string, transactionCount int) error

	InsertTransactions(ctx context.Context, rows []*TransactionRow) error
	QueryTransactionsByDateRange(ctx context.Context, start, end civil.Date) ([]*TransactionRow, error)

	ListMerchantRules(ctx context.Context) ([]extractor.MerchantRule, error)
	ReplaceMerchantRules(ctx context.Context, rules []extractor.MerchantRule) error
}

// BigQueryRepository holds a shared BigQuery client so each operation does
// not open its own connection.
type BigQueryRepository struct {
	client *bigquery.Client
}

var _ Repository = (*BigQueryRepository)(nil)

func NewRepository(ctx context.Context) (*BigQueryRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("bigquery.NewRepository: creating client: %w", err)
	}
	return &BigQueryRepository{client: client}, nil
}

func (r *BigQueryRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

func (r *BigQueryRepository) InsertDocument(ctx context.Context, row *DocumentRow) error {
	return InsertDocumentWithClient(ctx, r.client, row)
}

func (r *BigQueryRepository) MarkDocumentProcessed(ctx context.Context, documentID, status string) error {
	return MarkDocumentProcessedWithClient(ctx, r.client, documentID, status)
}

func (r *BigQueryRepository) FindDocumentByChecksum(ctx context.Context, checksum string) (*DocumentRow, error) {
	return FindDocumentByChecksumWithClient(ctx, r.client, checksum)
}

func (r *BigQueryRepository) ListDocuments(ctx context.Context) ([]*DocumentRow, error) {
	return ListDocumentsWithClient(ctx, r.client)
}

func (r *BigQueryRepository) StartParsingRun(ctx context.Context, documentID, extractorType string) (string, error) {
	return StartParsingRunWithClient(ctx, r.client, documentID, extractorType)
}

func (r *BigQueryRepository) MarkParsingRunFailed(ctx context.Context, parsingRunID string, parseErr error) {
	MarkParsingRunFailedWithClient(ctx, r.client, parsingRunID, parseErr)
}

func (r *BigQueryRepository) MarkParsingRunSucceeded(ctx context.Context, parsingRunID string, transactionCount int) error {
	return MarkParsingRunSucceededWithClient(ctx, r.client, parsingRunID, transactionCount)
}

func (r *BigQueryRepository) InsertTransactions(ctx context.Context, rows []*TransactionRow) error {
	return InsertTransactionsWithClient(ctx, r.client, rows)
}

func (r *BigQueryRepository) QueryTransactionsByDateRange(ctx context.Context, start, end civil.Date) ([]*TransactionRow, error) {
	return QueryTransactionsByDateRangeWithClient(ctx, r.client, start, end)
}

func (r *BigQueryRepository) ListMerchantRules(ctx context.Context) ([]extractor.MerchantRule, error) {
	return ListMerchantRulesWithClient(ctx, r.client)
}

func (r *BigQueryRepository) ReplaceMerchantRules(ctx context.Context, rules []extractor.MerchantRule) error {
	return ReplaceMerchantRulesWithClient(ctx, r.client, rules)
}
