// Package rules loads the merchant categorization table from external
// sources and normalizes it into extractor.MerchantRule records. Rule tables
// are maintained by hand in spreadsheets, so column headers vary ("Name" vs
// "Merchant", "Sub Category" vs "Subcategory"); all of that is resolved here
// so the categorizer only ever sees the three logical fields.
package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/megauravmahendra-png/expense-intelligence/internal/extractor"
)

// Source loads the merchant rules table. Implementations load once per run;
// the result is read-only afterwards.
type Source interface {
	Load(ctx context.Context) ([]extractor.MerchantRule, error)
}

// ErrNoHeader means the grid had no usable header row.
var ErrNoHeader = errors.New("rules: no header row")

// ErrNoMerchantColumn means no column could be identified as the merchant
// pattern.
var ErrNoMerchantColumn = errors.New("rules: no merchant column in header")

var headerAliases = map[string]string{
	"merchant":       "merchant",
	"name":           "merchant",
	"payee":          "merchant",
	"payeepayername": "merchant",
	"category":       "category",
	"subcategory":    "subcategory",
	"subcat":         "subcategory",
}

func foldHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	for _, cut := range []string{" ", "_", "-", "/"} {
		h = strings.ReplaceAll(h, cut, "")
	}
	return h
}

// FromRecords converts a header-plus-rows grid into merchant rules. Rows
// with an empty merchant cell are skipped; a missing subcategory cell leaves
// the field empty and the categorizer substitutes its sentinel.
func FromRecords(records [][]string) ([]extractor.MerchantRule, error) {
	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	cols := map[string]int{}
	for i, h := range records[0] {
		if logical, ok := headerAliases[foldHeader(h)]; ok {
			if _, taken := cols[logical]; !taken {
				cols[logical] = i
			}
		}
	}
	if _, ok := cols["merchant"]; !ok {
		return nil, fmt.Errorf("%w: %v", ErrNoMerchantColumn, records[0])
	}

	cell := func(row []string, logical string) string {
		idx, ok := cols[logical]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	out := make([]extractor.MerchantRule, 0, len(records)-1)
	for _, row := range records[1:] {
		merchant := cell(row, "merchant")
		if merchant == "" {
			continue
		}
		out = append(out, extractor.MerchantRule{
			Merchant:    merchant,
			Category:    cell(row, "category"),
			Subcategory: cell(row, "subcategory"),
		})
	}
	return out, nil
}

// Static is a fixed in-memory rules table; used by tests and by callers that
// already hold the rules.
type Static []extractor.MerchantRule

func (s Static) Load(ctx context.Context) ([]extractor.MerchantRule, error) {
	out := make([]extractor.MerchantRule, len(s))
	copy(out, s)
	return out, nil
}
