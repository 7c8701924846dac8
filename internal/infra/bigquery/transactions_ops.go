package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"
)

const transactionsTable = "transactions"

// InsertTransactions inserts a batch of TransactionRow into
// expenses.transactions.
func InsertTransactions(ctx context.Context, rows []*TransactionRow) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("InsertTransactions: bigquery client: %w", err)
	}
	defer client.Close()

	return InsertTransactionsWithClient(ctx, client, rows)
}

// InsertTransactionsWithClient inserts a batch of TransactionRow using the
// provided BigQuery client.
func InsertTransactionsWithClient(ctx context.Context, client *bigquery.Client, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := client.Dataset(datasetID).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

// QueryTransactionsByDateRangeWithClient returns transactions in the
// inclusive date range, for successful parsing runs only, ordered by
// transaction date then insertion time.
func QueryTransactionsByDateRangeWithClient(ctx context.Context, client *bigquery.Client, start, end civil.Date) ([]*TransactionRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			t.transaction_id,
			t.user_id,
			t.document_id,
			t.parsing_run_id,
			t.transaction_date,
			t.transaction_time,
			t.direction,
			t.counterparty,
			t.amount,
			t.currency,
			t.category_name,
			t.subcategory_name,
			t.upi_reference,
			t.bank_tag,
			t.created_ts
		FROM %[1]s.%[2]s t
		INNER JOIN %[1]s.%[3]s pr
		  ON t.parsing_run_id = pr.parsing_run_id
		WHERE t.transaction_date >= @start_date
		  AND t.transaction_date <= @end_date
		  AND pr.status = 'SUCCESS'
		ORDER BY t.transaction_date, t.created_ts
	`, datasetID, transactionsTable, parsingRunsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: start.String()},
		{Name: "end_date", Value: end.String()},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryTransactionsByDateRange: query read: %w", err)
	}

	var rows []*TransactionRow
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryTransactionsByDateRange: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}
