package extractor

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func acceptedTx() Transaction {
	return Transaction{
		Date:         civil.Date{Year: 2025, Month: 10, Day: 1},
		Time:         noon,
		Direction:    DirectionSent,
		Counterparty: "Corner Store",
		Amount:       decimal.NewFromInt(120),
	}
}

func TestKeep(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Transaction)
		want   bool
	}{
		{"clean expense", func(tx *Transaction) {}, true},
		{"received income", func(tx *Transaction) { tx.Direction = DirectionReceived }, true},
		{"self transfer", func(tx *Transaction) { tx.Direction = DirectionSelfTransfer }, false},
		{"reward sentinel", func(tx *Transaction) { tx.Counterparty = "Google Pay Rewards" }, false},
		{"reward sentinel concatenated", func(tx *Transaction) { tx.Counterparty = "GooglePayRewards" }, false},
		{"better luck next time", func(tx *Transaction) { tx.Counterparty = "Better Luck Next Time" }, false},
		{"zero amount", func(tx *Transaction) { tx.Amount = decimal.Zero }, false},
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-5) }, false},
		{"absent date", func(tx *Transaction) { tx.Date = civil.Date{} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := acceptedTx()
			tt.mutate(&tx)
			if got := Keep(tx); got != tt.want {
				t.Errorf("Keep() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeepIsIdempotent(t *testing.T) {
	tx := acceptedTx()
	first := Keep(tx)
	second := Keep(tx)
	if first != second {
		t.Errorf("Keep() changed its answer on identical input: %v then %v", first, second)
	}
}
