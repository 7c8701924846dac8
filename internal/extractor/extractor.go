package extractor

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Document is one statement's worth of raw text, as handed over by a text
// acquirer. Name is used for stable ordering across a batch; it is usually
// the source filename or object path.
type Document struct {
	Name string
	Text string
}

// Options configures a batch run.
type Options struct {
	// Rules is the merchant rules table, possibly empty.
	Rules []MerchantRule

	// Scorer overrides the similarity metric; nil means TokenSetScorer.
	Scorer Scorer

	// Config overrides the categorizer tunables; the zero value means
	// defaults.
	Config CategorizerConfig

	// Parallelism bounds concurrent per-document parsing; values < 1 mean
	// sequential.
	Parallelism int
}

// ExtractDocument runs the per-document linear pass: segment, parse fields,
// filter noise. It is a pure function of the text; malformed candidates are
// dropped silently.
func ExtractDocument(text string) []Transaction {
	var out []Transaction
	for _, candidate := range Segment(text) {
		tx, err := ParseCandidate(candidate)
		if err != nil {
			continue
		}
		if !Keep(tx) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// Run processes a batch of documents into the final categorized table.
// Documents are parsed independently (concurrently when Parallelism allows)
// but always concatenated in name order before the single cross-document
// dedup pass, so first-seen ties resolve the same way on every run.
func Run(ctx context.Context, docs []Document, opts Options) (*Table, error) {
	ordered := make([]Document, len(docs))
	copy(ordered, docs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Name < ordered[j].Name
	})

	perDoc := make([][]Transaction, len(ordered))
	g, ctx := errgroup.WithContext(ctx)
	if opts.Parallelism > 1 {
		g.SetLimit(opts.Parallelism)
	} else {
		g.SetLimit(1)
	}
	for i, doc := range ordered {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			perDoc[i] = ExtractDocument(doc.Text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Transaction
	for _, txs := range perDoc {
		all = append(all, txs...)
	}

	deduped := Dedupe(all)

	categorizer := NewCategorizer(opts.Rules, opts.Scorer, opts.Config)
	rows := make([]CategorizedTransaction, 0, len(deduped))
	for _, tx := range deduped {
		category, subcategory := categorizer.Categorize(tx)
		rows = append(rows, CategorizedTransaction{
			Transaction: tx,
			Category:    category,
			Subcategory: subcategory,
		})
	}

	return NewTable(rows), nil
}
