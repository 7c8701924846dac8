package extractor

import (
	"testing"

	"github.com/shopspring/decimal"
)

func expense(name string, amount int64) Transaction {
	tx := txOn(1, name, amount, "")
	tx.Direction = DirectionSent
	return tx
}

func TestCategorizeWithRules(t *testing.T) {
	rules := []MerchantRule{
		{Merchant: "Swiggy", Category: "Food Delivery", Subcategory: "Restaurant"},
		{Merchant: "Big Bazaar", Category: "Groceries", Subcategory: "Supermarket"},
	}
	c := NewCategorizer(rules, nil, DefaultCategorizerConfig())

	tests := []struct {
		name     string
		tx       Transaction
		wantCat  string
		wantSub  string
	}{
		{"fuzzy merchant match", expense("SWIGGY BANGALORE", 340), "Food Delivery", "Restaurant"},
		{"exact match", expense("Big Bazaar", 900), "Groceries", "Supermarket"},
		{"unrelated merchant falls through", expense("Sudama Supane", 260), CategoryMisc, SubcategoryUnnamed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, sub := c.Categorize(tt.tx)
			if cat != tt.wantCat || sub != tt.wantSub {
				t.Errorf("Categorize() = (%q, %q), want (%q, %q)", cat, sub, tt.wantCat, tt.wantSub)
			}
		})
	}
}

func TestCategorizeIncomeShortCircuit(t *testing.T) {
	// Income wins no matter what the rules table says about the name.
	rules := []MerchantRule{{Merchant: "Ramesh Kumar", Category: "Food Delivery", Subcategory: "Restaurant"}}
	c := NewCategorizer(rules, nil, DefaultCategorizerConfig())

	tx := expense("Ramesh Kumar", 500)
	tx.Direction = DirectionReceived

	cat, sub := c.Categorize(tx)
	if cat != CategoryIncome || sub != SubcategoryReceived {
		t.Errorf("Categorize() = (%q, %q), want (%q, %q)", cat, sub, CategoryIncome, SubcategoryReceived)
	}
}

func TestCategorizeTransportFallback(t *testing.T) {
	c := NewCategorizer(nil, nil, DefaultCategorizerConfig())

	tests := []struct {
		name    string
		tx      Transaction
		wantCat string
		wantSub string
	}{
		{"ride hailing keyword", expense("Rapido Bangalore", 35), CategoryTransport, SubcategoryAuto},
		{"metro keyword", expense("Mumbai Metro Rail", 60), CategoryTransport, SubcategoryMetro},
		{"rail authority keyword", expense("MMRDA", 45), CategoryTransport, SubcategoryMetro},
		{"railway keyword", expense("IRCTC Booking", 450), CategoryTransport, SubcategoryTrain},
		{"small fare no keyword", expense("Sudama Supane", 26), CategoryTransport, SubcategoryAuto},
		{"large amount no keyword", expense("Sudama Supane", 260), CategoryMisc, SubcategoryUnnamed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, sub := c.Categorize(tt.tx)
			if cat != tt.wantCat || sub != tt.wantSub {
				t.Errorf("Categorize() = (%q, %q), want (%q, %q)", cat, sub, tt.wantCat, tt.wantSub)
			}
		})
	}
}

func TestCategorizeEmptyRuleFields(t *testing.T) {
	rules := []MerchantRule{{Merchant: "Swiggy"}}
	c := NewCategorizer(rules, nil, DefaultCategorizerConfig())

	cat, sub := c.Categorize(expense("Swiggy", 340))
	if cat != CategoryMisc || sub != SubcategoryUnnamed {
		t.Errorf("Categorize() = (%q, %q), want sentinel fallbacks", cat, sub)
	}
}

func TestCategorizeTotality(t *testing.T) {
	// Category is never empty, even with no rules at all.
	c := NewCategorizer(nil, nil, DefaultCategorizerConfig())
	for _, tx := range []Transaction{
		expense("Anything At All", 999),
		expense("zz", 1),
	} {
		cat, _ := c.Categorize(tx)
		if cat == "" {
			t.Errorf("Categorize(%q) returned empty category", tx.Counterparty)
		}
	}
}

// fixedScorer always returns the same score; used to pin threshold behavior
// without depending on the metric.
type fixedScorer struct{ score int }

func (f fixedScorer) Score(a, b string) int { return f.score }

func TestCategorizeThresholdBoundary(t *testing.T) {
	rules := []MerchantRule{{Merchant: "Swiggy", Category: "Food Delivery", Subcategory: "Restaurant"}}

	cfg := DefaultCategorizerConfig()

	atThreshold := NewCategorizer(rules, fixedScorer{score: cfg.MatchThreshold}, cfg)
	if cat, _ := atThreshold.Categorize(expense("whatever name", 900)); cat != "Food Delivery" {
		t.Errorf("score == threshold should match, got category %q", cat)
	}

	belowThreshold := NewCategorizer(rules, fixedScorer{score: cfg.MatchThreshold - 1}, cfg)
	if cat, _ := belowThreshold.Categorize(expense("whatever name", 900)); cat != CategoryMisc {
		t.Errorf("score below threshold should fall through, got category %q", cat)
	}
}

func TestCategorizeFareBandConfigurable(t *testing.T) {
	cfg := DefaultCategorizerConfig()
	cfg.FareMin = decimal.NewFromInt(100)
	cfg.FareMax = decimal.NewFromInt(200)
	c := NewCategorizer(nil, nil, cfg)

	if cat, _ := c.Categorize(expense("Sudama Supane", 150)); cat != CategoryTransport {
		t.Errorf("amount inside custom fare band: category = %q, want %q", cat, CategoryTransport)
	}
	if cat, _ := c.Categorize(expense("Sudama Supane", 26)); cat != CategoryMisc {
		t.Errorf("amount outside custom fare band: category = %q, want %q", cat, CategoryMisc)
	}
}
