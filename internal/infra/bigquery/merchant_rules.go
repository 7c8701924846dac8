package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/megauravmahendra-png/expense-intelligence/internal/extractor"
)

const merchantRulesTable = "merchant_rules"

type MerchantRuleRow struct {
	Merchant    string `bigquery:"merchant"`    // REQUIRED
	Category    string `bigquery:"category"`    // NULLABLE
	Subcategory string `bigquery:"subcategory"` // NULLABLE

	UpdatedTS time.Time `bigquery:"updated_ts"` // REQUIRED
}

// ListMerchantRulesWithClient returns the full rules table. The table is
// small, at most a few hundred rows, so no pagination.
func ListMerchantRulesWithClient(ctx context.Context, client *bigquery.Client) ([]extractor.MerchantRule, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT merchant, category, subcategory
		FROM %s.%s
		ORDER BY merchant
	`, datasetID, merchantRulesTable))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListMerchantRules: query read: %w", err)
	}

	var rules []extractor.MerchantRule
	for {
		var r MerchantRuleRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListMerchantRules: iter next: %w", err)
		}
		rules = append(rules, extractor.MerchantRule{
			Merchant:    r.Merchant,
			Category:    r.Category,
			Subcategory: r.Subcategory,
		})
	}

	return rules, nil
}

// ReplaceMerchantRulesWithClient overwrites the rules table with the given
// set, used when syncing rules down from the editing sheet.
func ReplaceMerchantRulesWithClient(ctx context.Context, client *bigquery.Client, rules []extractor.MerchantRule) error {
	q := client.Query(fmt.Sprintf(`DELETE FROM %s.%s WHERE TRUE`, datasetID, merchantRulesTable))
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("ReplaceMerchantRules: running delete query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("ReplaceMerchantRules: waiting for delete: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("ReplaceMerchantRules: delete job error: %w", err)
	}

	if len(rules) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]*MerchantRuleRow, 0, len(rules))
	for _, rule := range rules {
		rows = append(rows, &MerchantRuleRow{
			Merchant:    rule.Merchant,
			Category:    rule.Category,
			Subcategory: rule.Subcategory,
			UpdatedTS:   now,
		})
	}

	inserter := client.Dataset(datasetID).Table(merchantRulesTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("ReplaceMerchantRules: inserting rows: %w", err)
	}
	return nil
}
