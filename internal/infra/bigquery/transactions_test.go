package bigquery

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/megauravmahendra-png/expense-intelligence/internal/extractor"
)

func TestNewTransactionRow(t *testing.T) {
	tx := extractor.CategorizedTransaction{
		Transaction: extractor.Transaction{
			Date:          civil.Date{Year: 2025, Month: 10, Day: 1},
			Time:          civil.Time{Hour: 10, Minute: 1},
			Direction:     extractor.DirectionSent,
			Counterparty:  "Sudama Supane",
			Amount:        decimal.RequireFromString("26"),
			TransactionID: "564069511552",
			BankTag:       "Canara Bank 7191",
		},
		Category:    "Misc",
		Subcategory: "Yet to Name",
	}

	row := NewTransactionRow(tx, "user-1", "doc-1", "run-1")

	if row.TransactionID != "564069511552" {
		t.Errorf("TransactionID = %q, want statement reference", row.TransactionID)
	}
	if row.UserID != "user-1" || row.DocumentID != "doc-1" || row.ParsingRunID != "run-1" {
		t.Errorf("lineage fields wrong: %+v", row)
	}
	if row.Direction != "SENT" {
		t.Errorf("Direction = %q, want SENT", row.Direction)
	}
	if got := row.Amount.RatString(); got != "26" {
		t.Errorf("Amount = %s, want 26", got)
	}
	if row.Currency != "INR" {
		t.Errorf("Currency = %q, want INR", row.Currency)
	}
	if !row.UPIReference.Valid || row.UPIReference.StringVal != "564069511552" {
		t.Errorf("UPIReference = %+v", row.UPIReference)
	}
	if !row.BankTag.Valid || row.BankTag.StringVal != "Canara Bank 7191" {
		t.Errorf("BankTag = %+v", row.BankTag)
	}
	if row.CreatedTS.IsZero() {
		t.Error("CreatedTS not set")
	}
}

func TestNewTransactionRowGeneratesIDWhenMissing(t *testing.T) {
	tx := extractor.CategorizedTransaction{
		Transaction: extractor.Transaction{
			Date:         civil.Date{Year: 2025, Month: 10, Day: 2},
			Direction:    extractor.DirectionReceived,
			Counterparty: "Ramesh Kumar",
			Amount:       decimal.RequireFromString("500"),
		},
		Category:    "Income",
		Subcategory: "Received",
	}

	row := NewTransactionRow(tx, "user-1", "doc-1", "run-1")

	if row.TransactionID == "" {
		t.Fatal("TransactionID should be generated")
	}
	if row.UPIReference.Valid {
		t.Errorf("UPIReference should be null, got %+v", row.UPIReference)
	}
	if row.Direction != "RECEIVED" {
		t.Errorf("Direction = %q, want RECEIVED", row.Direction)
	}
}
