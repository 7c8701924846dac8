package extractor

import "strings"

// rewardSentinels are marketing phrases that show up as counterparties on
// promotional entries. Compared with case and whitespace folded away, since
// the extraction may run the words together.
var rewardSentinels = []string{
	"googlepayrewards",
	"betterlucknexttime",
}

// Keep decides whether a parsed transaction is a real expense/income entry.
// It only accepts or rejects; nothing is repaired here, which keeps the
// filter idempotent.
func Keep(tx Transaction) bool {
	if tx.Direction == DirectionSelfTransfer {
		return false
	}

	folded := strings.ReplaceAll(strings.ToLower(tx.Counterparty), " ", "")
	for _, sentinel := range rewardSentinels {
		if strings.Contains(folded, sentinel) {
			return false
		}
	}

	if !tx.Amount.IsPositive() {
		return false
	}

	// Upstream already rejects unparseable dates; re-check as the
	// canonical gate.
	if !tx.Date.IsValid() {
		return false
	}

	return true
}
