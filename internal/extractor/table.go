package extractor

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Columns is the stable column set of the final table, in output order.
// This is the only surface downstream consumers (charts, export, insights)
// are allowed to see.
var Columns = []string{
	"date",
	"time",
	"direction",
	"counterparty",
	"amount",
	"category",
	"sub_category",
	"transaction_id",
	"bank_tag",
}

// Table is the final ordered collection of categorized transactions for one
// extraction run. It is built once, never mutated afterwards, and hands out
// copies so no pipeline state leaks across documents or runs.
type Table struct {
	rows []CategorizedTransaction
}

// NewTable copies rows into a fresh table ordered by date ascending.
func NewTable(rows []CategorizedTransaction) *Table {
	owned := make([]CategorizedTransaction, len(rows))
	copy(owned, rows)
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].Date.Before(owned[j].Date)
	})
	return &Table{rows: owned}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the rows; callers own the result.
func (t *Table) Rows() []CategorizedTransaction {
	out := make([]CategorizedTransaction, len(t.rows))
	copy(out, t.rows)
	return out
}

// Records renders the table with the Columns layout, one string slice per
// row, ready for CSV output.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.rows))
	for _, r := range t.rows {
		records = append(records, []string{
			r.Date.String(),
			r.Time.String(),
			string(r.Direction),
			r.Counterparty,
			r.Amount.String(),
			r.Category,
			r.Subcategory,
			r.TransactionID,
			r.BankTag,
		})
	}
	return records
}

// Summary aggregates the send/receive totals off the final table.
type Summary struct {
	TotalSent     decimal.Decimal
	TotalReceived decimal.Decimal
	SentCount     int
	ReceivedCount int
}

// Net is received minus sent.
func (s Summary) Net() decimal.Decimal {
	return s.TotalReceived.Sub(s.TotalSent)
}

// Summary computes the run's KPIs.
func (t *Table) Summary() Summary {
	var s Summary
	for _, r := range t.rows {
		switch r.Direction {
		case DirectionSent:
			s.TotalSent = s.TotalSent.Add(r.Amount)
			s.SentCount++
		case DirectionReceived:
			s.TotalReceived = s.TotalReceived.Add(r.Amount)
			s.ReceivedCount++
		}
	}
	return s
}
