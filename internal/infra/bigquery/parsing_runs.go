package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
)

type ParsingRunRow struct {
	ParsingRunID string `bigquery:"parsing_run_id"` // REQUIRED
	DocumentID   string `bigquery:"document_id"`    // REQUIRED

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE

	// ExtractorType records which text backend produced this run,
	// LOCAL_PDF or GEMINI_TEXT.
	ExtractorType    string `bigquery:"extractor_type"`    // NULLABLE
	ExtractorVersion string `bigquery:"extractor_version"` // NULLABLE

	Status       string `bigquery:"status"`        // NULLABLE
	ErrorMessage string `bigquery:"error_message"` // NULLABLE

	TransactionCount bigquery.NullInt64 `bigquery:"transaction_count"` // NULLABLE
}
