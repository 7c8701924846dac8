package extractor

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"github.com/shopspring/decimal"
)

// Scorer computes a 0-100 similarity between a counterparty string and a
// merchant rule pattern. The categorizer only depends on this interface so
// the threshold logic is decoupled from any specific string metric.
type Scorer interface {
	Score(a, b string) int
}

// TokenSetScorer is the default Scorer: order- and duplicate-insensitive
// token overlap, which tolerates the word reshuffling and noise typical of
// statement counterparty strings ("SWIGGY BANGALORE" vs "Swiggy").
type TokenSetScorer struct{}

func (TokenSetScorer) Score(a, b string) int {
	return fuzzy.TokenSetRatio(a, b)
}

// CategorizerConfig carries the tunable constants of the fallback logic.
// The defaults are empirical; treat them as configuration, not invariants.
type CategorizerConfig struct {
	// MatchThreshold is the minimum fuzzy score for a merchant rule to
	// apply. 70 tolerates minor spelling and spacing differences while
	// rejecting unrelated merchants.
	MatchThreshold int

	// FareMin/FareMax bound the small-fare heuristic: amounts in this band
	// with no rule match are assumed to be local transport.
	FareMin decimal.Decimal
	FareMax decimal.Decimal
}

// DefaultCategorizerConfig returns the empirical defaults.
func DefaultCategorizerConfig() CategorizerConfig {
	return CategorizerConfig{
		MatchThreshold: 70,
		FareMin:        decimal.NewFromInt(15),
		FareMax:        decimal.NewFromInt(50),
	}
}

var (
	transportKeywords = []string{"rapido", "auto", "ola", "uber", "metro", "mmrda", "railway", "irctc", "train", "bus"}
	metroKeywords     = []string{"metro", "mmrda"}
	trainKeywords     = []string{"railway", "irctc", "train"}
)

// Categorizer assigns a (category, subcategory) pair to each surviving
// transaction. It is a pure function of its inputs: the rule table is
// read-only and no state is mutated between calls.
type Categorizer struct {
	rules  []MerchantRule
	scorer Scorer
	cfg    CategorizerConfig
}

// NewCategorizer builds a categorizer over a rules table, which may be empty.
// A nil scorer falls back to TokenSetScorer.
func NewCategorizer(rules []MerchantRule, scorer Scorer, cfg CategorizerConfig) *Categorizer {
	if scorer == nil {
		scorer = TokenSetScorer{}
	}
	if cfg.MatchThreshold == 0 {
		cfg = DefaultCategorizerConfig()
	}
	return &Categorizer{rules: rules, scorer: scorer, cfg: cfg}
}

// Categorize returns the category pair for one accepted, non-self-transfer
// transaction. Income is never merchant-categorized; everything else tries
// the rules table first and falls back to keyword/amount heuristics, ending
// at the Misc sentinel. The result is always non-empty.
func (c *Categorizer) Categorize(tx Transaction) (category, subcategory string) {
	if tx.Direction == DirectionReceived {
		return CategoryIncome, SubcategoryReceived
	}

	name := strings.ToLower(tx.Counterparty)

	if rule, ok := c.bestRule(name); ok {
		sub := rule.Subcategory
		if sub == "" {
			sub = SubcategoryUnnamed
		}
		cat := rule.Category
		if cat == "" {
			cat = CategoryMisc
		}
		return cat, sub
	}

	if c.looksLikeTransport(name, tx.Amount) {
		switch {
		case containsAny(name, metroKeywords):
			return CategoryTransport, SubcategoryMetro
		case containsAny(name, trainKeywords):
			return CategoryTransport, SubcategoryTrain
		default:
			return CategoryTransport, SubcategoryAuto
		}
	}

	return CategoryMisc, SubcategoryUnnamed
}

// bestRule scans the rules table for the highest-scoring merchant pattern.
// Only a score at or above the threshold counts as a match.
func (c *Categorizer) bestRule(name string) (MerchantRule, bool) {
	bestScore := 0
	var best MerchantRule
	found := false
	for _, rule := range c.rules {
		merchant := strings.ToLower(strings.TrimSpace(rule.Merchant))
		if merchant == "" {
			continue
		}
		score := c.scorer.Score(name, merchant)
		if score > bestScore {
			bestScore = score
			best = rule
			found = true
		}
	}
	if !found || bestScore < c.cfg.MatchThreshold {
		return MerchantRule{}, false
	}
	return best, true
}

func (c *Categorizer) looksLikeTransport(name string, amount decimal.Decimal) bool {
	inFareBand := amount.GreaterThanOrEqual(c.cfg.FareMin) && amount.LessThanOrEqual(c.cfg.FareMax)
	return inFareBand || containsAny(name, transportKeywords)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
