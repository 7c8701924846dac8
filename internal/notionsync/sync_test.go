package notionsync

import (
	"context"
	"math/big"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/jomei/notionapi"

	infra "github.com/megauravmahendra-png/expense-intelligence/internal/infra/bigquery"
)

type fakeQuerier struct {
	rows []*infra.TransactionRow
}

func (f *fakeQuerier) QueryTransactionsByDateRange(ctx context.Context, start, end civil.Date) ([]*infra.TransactionRow, error) {
	return f.rows, nil
}

type fakeNotion struct {
	pages    []notionapi.Page
	created  []notionapi.Properties
	archived []string
}

func (f *fakeNotion) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	f.created = append(f.created, properties)
	return &notionapi.Page{ID: notionapi.ObjectID("new-page")}, nil
}

func (f *fakeNotion) QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{Results: f.pages, HasMore: false}, nil
}

func (f *fakeNotion) DeletePage(ctx context.Context, pageID string) error {
	f.archived = append(f.archived, pageID)
	return nil
}

func pageWithTransactionID(pageID, txID string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(pageID),
		Properties: notionapi.Properties{
			"Transaction ID": &notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{PlainText: txID}},
			},
		},
	}
}

func txRow(id, counterparty string) *infra.TransactionRow {
	return &infra.TransactionRow{
		TransactionID:   id,
		Counterparty:    counterparty,
		TransactionDate: civil.Date{Year: 2025, Month: 10, Day: 1},
		TransactionTime: civil.Time{Hour: 12},
		Direction:       "SENT",
		Amount:          big.NewRat(26, 1),
		CategoryName:    bigquery.NullString{StringVal: "Misc", Valid: true},
		CreatedTS:       time.Now(),
	}
}

func TestSyncCreatesMissingAndArchivesStale(t *testing.T) {
	repo := &fakeQuerier{rows: []*infra.TransactionRow{
		txRow("tx-1", "Sudama Supane"),
		txRow("tx-2", "Ramesh Kumar"),
	}}
	notion := &fakeNotion{pages: []notionapi.Page{
		pageWithTransactionID("page-1", "tx-1"),
		pageWithTransactionID("page-stale", "tx-gone"),
	}}

	start := civil.Date{Year: 2025, Month: 10, Day: 1}
	end := civil.Date{Year: 2025, Month: 10, Day: 31}
	if err := SyncTransactions(context.Background(), repo, notion, "db", start, end, false); err != nil {
		t.Fatalf("SyncTransactions() error = %v", err)
	}

	// tx-1 exists already, tx-2 is new.
	if len(notion.created) != 1 {
		t.Fatalf("created = %d, want 1", len(notion.created))
	}
	title := notion.created[0]["Counterparty"].(notionapi.TitleProperty)
	if title.Title[0].Text.Content != "Ramesh Kumar" {
		t.Errorf("created page for %q, want Ramesh Kumar", title.Title[0].Text.Content)
	}

	if len(notion.archived) != 1 || notion.archived[0] != "page-stale" {
		t.Errorf("archived = %v, want [page-stale]", notion.archived)
	}
}

func TestSyncDryRunTouchesNothing(t *testing.T) {
	repo := &fakeQuerier{rows: []*infra.TransactionRow{txRow("tx-1", "Sudama Supane")}}
	notion := &fakeNotion{pages: []notionapi.Page{
		pageWithTransactionID("page-stale", "tx-gone"),
	}}

	start := civil.Date{Year: 2025, Month: 10, Day: 1}
	end := civil.Date{Year: 2025, Month: 10, Day: 31}
	if err := SyncTransactions(context.Background(), repo, notion, "db", start, end, true); err != nil {
		t.Fatalf("SyncTransactions() error = %v", err)
	}

	if len(notion.created) != 0 || len(notion.archived) != 0 {
		t.Errorf("dry run should not write: created=%d archived=%d", len(notion.created), len(notion.archived))
	}
}

func TestTransactionToNotionProperties(t *testing.T) {
	row := txRow("tx-1", "Sudama Supane")
	row.BankTag = bigquery.NullString{StringVal: "Canara Bank 7191", Valid: true}

	props := TransactionToNotionProperties(row)

	amount := props["Amount"].(notionapi.NumberProperty)
	if amount.Number != 26 {
		t.Errorf("Amount = %v, want 26", amount.Number)
	}
	direction := props["Direction"].(notionapi.SelectProperty)
	if direction.Select.Name != "SENT" {
		t.Errorf("Direction = %q", direction.Select.Name)
	}
	if _, ok := props["Bank"]; !ok {
		t.Error("Bank property missing")
	}
	if _, ok := props["Subcategory"]; ok {
		t.Error("empty Subcategory should be omitted")
	}
}
