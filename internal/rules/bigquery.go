package rules

import (
	"context"
	"fmt"

	"github.com/megauravmahendra-png/expense-intelligence/internal/extractor"
)

// RuleLister is the slice of the persistence layer this package needs.
// Satisfied by the BigQuery repository.
type RuleLister interface {
	ListMerchantRules(ctx context.Context) ([]extractor.MerchantRule, error)
}

// RepositorySource serves rules from the merchant_rules table. It is the
// source the worker uses so parsing does not depend on the sheet being
// reachable.
type RepositorySource struct {
	Lister RuleLister
}

func (s RepositorySource) Load(ctx context.Context) ([]extractor.MerchantRule, error) {
	rules, err := s.Lister.ListMerchantRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("RepositorySource.Load: %w", err)
	}
	return rules, nil
}
