package extractor

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Direction classifies which way money moved in a statement entry.
type Direction string

const (
	DirectionSent         Direction = "SENT"
	DirectionReceived     Direction = "RECEIVED"
	DirectionSelfTransfer Direction = "SELF_TRANSFER"
)

// Sentinel category values. Every expense row ends up with a non-empty
// category; these are the fallbacks when nothing better is known.
const (
	CategoryIncome      = "Income"
	CategoryTransport   = "Transport"
	CategoryMisc        = "Misc"
	SubcategoryReceived = "Received"
	SubcategoryMetro    = "Metro"
	SubcategoryTrain    = "Train"
	SubcategoryAuto     = "Auto"
	SubcategoryUnnamed  = "Yet to Name"
)

// Candidate is one text span believed to contain a single transaction:
// the date token that anchored it plus everything up to the next date token.
// Candidates carry no guarantees beyond "DateToken looks like a date";
// ParseCandidate decides whether the span is a real transaction.
type Candidate struct {
	DateToken string
	Body      string
}

// Transaction is one parsed statement entry. Amount is always non-negative;
// Direction carries the sign semantics.
type Transaction struct {
	Date         civil.Date
	Time         civil.Time // defaults to noon when the statement carries no time
	Direction    Direction
	Counterparty string
	Amount       decimal.Decimal

	// TransactionID is the UPI transaction identifier when present. It is
	// globally unique per real-world transaction and is the preferred
	// dedup key.
	TransactionID string

	// BankTag is the paying/receiving bank label, e.g. "Canara Bank 7191".
	BankTag string
}

// CategorizedTransaction is a Transaction with its assigned category pair.
// This is the final row shape handed to downstream consumers.
type CategorizedTransaction struct {
	Transaction

	Category    string
	Subcategory string
}

// MerchantRule maps a merchant pattern to a category pair. Rules are loaded
// once per run from an external source and are read-only here.
type MerchantRule struct {
	Merchant    string
	Category    string
	Subcategory string
}
