package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/megauravmahendra-png/expense-intelligence/internal/extractor"
)

type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	UserID string `bigquery:"user_id"` // NULLABLE

	DocumentID   string `bigquery:"document_id"`    // NULLABLE
	ParsingRunID string `bigquery:"parsing_run_id"` // NULLABLE

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED
	TransactionTime civil.Time `bigquery:"transaction_time"` // REQUIRED

	Direction    string `bigquery:"direction"`    // REQUIRED
	Counterparty string `bigquery:"counterparty"` // REQUIRED

	Amount   *big.Rat `bigquery:"amount"`   // REQUIRED NUMERIC
	Currency string   `bigquery:"currency"` // REQUIRED

	CategoryName    bigquery.NullString `bigquery:"category_name"`    // NULLABLE
	SubcategoryName bigquery.NullString `bigquery:"subcategory_name"` // NULLABLE

	UPIReference bigquery.NullString `bigquery:"upi_reference"` // NULLABLE
	BankTag      bigquery.NullString `bigquery:"bank_tag"`      // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

// NewTransactionRow maps an extracted transaction to its storage row. The
// transaction_id column is the UPI reference when the statement carried one;
// otherwise a fresh UUID, since the table key must always be populated.
func NewTransactionRow(tx extractor.CategorizedTransaction, userID, documentID, parsingRunID string) *TransactionRow {
	rowID := tx.TransactionID
	if rowID == "" {
		rowID = uuid.NewString()
	}

	return &TransactionRow{
		TransactionID:   rowID,
		UserID:          userID,
		DocumentID:      documentID,
		ParsingRunID:    parsingRunID,
		TransactionDate: tx.Date,
		TransactionTime: tx.Time,
		Direction:       string(tx.Direction),
		Counterparty:    tx.Counterparty,
		Amount:          tx.Amount.Rat(),
		Currency:        "INR",
		CategoryName:    bigquery.NullString{StringVal: tx.Category, Valid: tx.Category != ""},
		SubcategoryName: bigquery.NullString{StringVal: tx.Subcategory, Valid: tx.Subcategory != ""},
		UPIReference:    bigquery.NullString{StringVal: tx.TransactionID, Valid: tx.TransactionID != ""},
		BankTag:         bigquery.NullString{StringVal: tx.BankTag, Valid: tx.BankTag != ""},
		CreatedTS:       time.Now(),
	}
}
