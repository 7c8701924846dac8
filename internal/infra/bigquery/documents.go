package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
)

type DocumentRow struct {
	DocumentID string `bigquery:"document_id"` // REQUIRED
	UserID     string `bigquery:"user_id"`     // NULLABLE
	GCSURI     string `bigquery:"gcs_uri"`     // REQUIRED

	SourceFilename string `bigquery:"source_filename"` // NULLABLE
	FileMimeType   string `bigquery:"file_mime_type"`  // NULLABLE

	UploadTS    time.Time              `bigquery:"upload_ts"`    // REQUIRED
	ProcessedTS bigquery.NullTimestamp `bigquery:"processed_ts"` // NULLABLE

	ParsingStatus string `bigquery:"parsing_status"` // NULLABLE

	ChecksumSHA256 string `bigquery:"checksum_sha256"` // NULLABLE
}
