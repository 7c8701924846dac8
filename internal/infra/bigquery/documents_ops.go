package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const documentsTable = "documents"

// InsertDocument inserts a single DocumentRow into expenses.documents.
func InsertDocument(ctx context.Context, row *DocumentRow) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("InsertDocument: bigquery client: %w", err)
	}
	defer client.Close()

	return InsertDocumentWithClient(ctx, client, row)
}

// InsertDocumentWithClient inserts a single DocumentRow using the provided
// BigQuery client.
func InsertDocumentWithClient(ctx context.Context, client *bigquery.Client, row *DocumentRow) error {
	inserter := client.Dataset(datasetID).Table(documentsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("InsertDocument: inserting row: %w", err)
	}
	return nil
}

// MarkDocumentProcessedWithClient sets parsing_status and processed_ts on a
// document once its parsing run has finished.
func MarkDocumentProcessedWithClient(ctx context.Context, client *bigquery.Client, documentID, status string) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET parsing_status = @parsing_status,
		    processed_ts = @processed_ts
		WHERE document_id = @document_id
	`, datasetID, documentsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "parsing_status", Value: status},
		{Name: "processed_ts", Value: time.Now()},
		{Name: "document_id", Value: documentID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("MarkDocumentProcessed: running update query: %w", err)
	}

	jobStatus, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("MarkDocumentProcessed: waiting for job: %w", err)
	}
	if err := jobStatus.Err(); err != nil {
		return fmt.Errorf("MarkDocumentProcessed: job error: %w", err)
	}
	return nil
}

// FindDocumentByChecksumWithClient returns the document with the given
// SHA-256 checksum, or nil when none exists. Used to skip re-uploading a
// statement that is already stored.
func FindDocumentByChecksumWithClient(ctx context.Context, client *bigquery.Client, checksum string) (*DocumentRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT *
		FROM %s.%s
		WHERE checksum_sha256 = @checksum
		ORDER BY upload_ts DESC
		LIMIT 1
	`, datasetID, documentsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "checksum", Value: checksum},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindDocumentByChecksum: query read: %w", err)
	}

	var row DocumentRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindDocumentByChecksum: iter next: %w", err)
	}
	return &row, nil
}

// ListDocumentsWithClient returns all documents, newest upload first.
func ListDocumentsWithClient(ctx context.Context, client *bigquery.Client) ([]*DocumentRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT *
		FROM %s.%s
		ORDER BY upload_ts DESC
	`, datasetID, documentsTable))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListDocuments: query read: %w", err)
	}

	var rows []*DocumentRow
	for {
		var r DocumentRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListDocuments: iter next: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}
