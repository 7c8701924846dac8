package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	"github.com/megauravmahendra-png/expense-intelligence/internal/logger"
)

const (
	parsingRunsTable = "parsing_runs"

	extractorVersion = "v1"
)

// StartParsingRunWithClient inserts a new row into expenses.parsing_runs with
// status=RUNNING and returns the generated parsing_run_id.
func StartParsingRunWithClient(ctx context.Context, client *bigquery.Client, documentID, extractorType string) (string, error) {
	parsingRunID := uuid.NewString()
	started := time.Now()

	q := client.Query(fmt.Sprintf(`
		INSERT %s.%s (
			parsing_run_id,
			document_id,
			started_ts,
			extractor_type,
			extractor_version,
			status
		)
		VALUES (
			@parsing_run_id,
			@document_id,
			@started_ts,
			@extractor_type,
			@extractor_version,
			@status
		)
	`, datasetID, parsingRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "parsing_run_id", Value: parsingRunID},
		{Name: "document_id", Value: documentID},
		{Name: "started_ts", Value: started},
		{Name: "extractor_type", Value: extractorType},
		{Name: "extractor_version", Value: extractorVersion},
		{Name: "status", Value: "RUNNING"},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return "", fmt.Errorf("StartParsingRun: running insert query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return "", fmt.Errorf("StartParsingRun: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return "", fmt.Errorf("StartParsingRun: job error: %w", err)
	}

	return parsingRunID, nil
}

// MarkParsingRunFailedWithClient sets status=FAILED, finished_ts and
// error_message. Failures here are logged, not returned; the original parse
// error is what the caller needs to surface.
func MarkParsingRunFailedWithClient(ctx context.Context, client *bigquery.Client, parsingRunID string, parseErr error) {
	log := logger.FromContext(ctx)

	errMsg := ""
	if parseErr != nil {
		errMsg = parseErr.Error()
		const maxLen = 2000
		if len(errMsg) > maxLen {
			errMsg = errMsg[:maxLen]
		}
	}

	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE parsing_run_id = @parsing_run_id
	`, datasetID, parsingRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "FAILED"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "parsing_run_id", Value: parsingRunID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		log.Error().
			Err(err).
			Str("parsing_run_id", parsingRunID).
			Msg("MarkParsingRunFailed: running update query")
		return
	}

	status, err := job.Wait(ctx)
	if err != nil {
		log.Error().
			Err(err).
			Str("parsing_run_id", parsingRunID).
			Msg("MarkParsingRunFailed: waiting for job")
		return
	}
	if err := status.Err(); err != nil {
		log.Error().
			Err(err).
			Str("parsing_run_id", parsingRunID).
			Msg("MarkParsingRunFailed: job completed with error")
	}
}

// MarkParsingRunSucceededWithClient sets status=SUCCESS, finished_ts and the
// number of transactions the run produced, and clears error_message.
func MarkParsingRunSucceededWithClient(ctx context.Context, client *bigquery.Client, parsingRunID string, transactionCount int) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    transaction_count = @transaction_count,
		    error_message = ""
		WHERE parsing_run_id = @parsing_run_id
	`, datasetID, parsingRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "SUCCESS"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "transaction_count", Value: transactionCount},
		{Name: "parsing_run_id", Value: parsingRunID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("MarkParsingRunSucceeded: running update query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("MarkParsingRunSucceeded: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("MarkParsingRunSucceeded: job error: %w", err)
	}

	return nil
}
