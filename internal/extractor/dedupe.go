package extractor

import (
	"sort"
	"strings"
)

// dedupKey picks the strongest available identity for a transaction: the UPI
// transaction id when the statement carries one, else the composite of
// date, counterparty and amount. The composite is what lets overlapping
// statement uploads collapse even without identifiers.
func dedupKey(tx Transaction) string {
	if tx.TransactionID != "" {
		return "id:" + tx.TransactionID
	}
	return "ck:" + tx.Date.String() + "|" + strings.ToLower(tx.Counterparty) + "|" + tx.Amount.String()
}

// Dedupe removes duplicate transactions across one or more documents,
// first-seen wins, and returns the survivors stable-sorted by date ascending.
// Callers must concatenate per-document results in a stable order before
// calling so that first-seen ties resolve deterministically.
func Dedupe(txs []Transaction) []Transaction {
	seen := make(map[string]struct{}, len(txs))
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		key := dedupKey(tx)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tx)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
