package notionsync

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/jomei/notionapi"

	infra "github.com/megauravmahendra-png/expense-intelligence/internal/infra/bigquery"
	"github.com/megauravmahendra-png/expense-intelligence/internal/logger"
)

// TransactionQuerier is the slice of the repository the sync reads from.
type TransactionQuerier interface {
	QueryTransactionsByDateRange(ctx context.Context, start, end civil.Date) ([]*infra.TransactionRow, error)
}

// SyncTransactions mirrors the active transactions in the given date range
// into the Notion database. Pages whose Transaction ID is no longer in the
// active set are archived; missing transactions get new pages. Existing
// pages are left untouched, transactions do not change after extraction.
func SyncTransactions(ctx context.Context, repo TransactionQuerier, notionClient NotionService, notionDBID string, start, end civil.Date, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Str("start_date", start.String()).
		Str("end_date", end.String()).
		Bool("dry_run", dryRun).
		Msg("Starting transaction sync to Notion")

	transactions, err := repo.QueryTransactionsByDateRange(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to query transactions: %w", err)
	}

	validIDs := make(map[string]bool, len(transactions))
	for _, tx := range transactions {
		validIDs[tx.TransactionID] = true
	}

	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("failed to query Notion pages: %w", err)
	}

	log.Info().
		Int("transaction_count", len(transactions)).
		Int("notion_page_count", len(notionPages)).
		Msg("Loaded both sides of the sync")

	existingIDs := make(map[string]bool)
	var deleted int
	for _, page := range notionPages {
		txID := extractTransactionID(page)
		if txID != "" && validIDs[txID] {
			existingIDs[txID] = true
			continue
		}

		// Stale page: no Transaction ID or no longer in the active set.
		if dryRun {
			log.Info().
				Str("transaction_id", txID).
				Str("page_id", string(page.ID)).
				Msg("[DRY RUN] Would archive stale Notion page")
			deleted++
			continue
		}
		if err := notionClient.DeletePage(ctx, string(page.ID)); err != nil {
			log.Warn().
				Err(err).
				Str("transaction_id", txID).
				Str("page_id", string(page.ID)).
				Msg("Failed to archive stale Notion page")
			continue
		}
		deleted++
	}

	var created, skipped int
	for _, tx := range transactions {
		if existingIDs[tx.TransactionID] {
			skipped++
			continue
		}

		if dryRun {
			log.Info().
				Str("transaction_id", tx.TransactionID).
				Msg("[DRY RUN] Would create Notion page")
			created++
			continue
		}

		props := TransactionToNotionProperties(tx)
		page, err := notionClient.CreatePage(ctx, notionDBID, props)
		if err != nil {
			log.Warn().
				Err(err).
				Str("transaction_id", tx.TransactionID).
				Msg("Failed to create Notion page")
			continue
		}
		log.Debug().
			Str("transaction_id", tx.TransactionID).
			Str("page_id", string(page.ID)).
			Msg("Created Notion page")
		created++
	}

	log.Info().
		Int("created", created).
		Int("skipped", skipped).
		Int("archived", deleted).
		Int("total", len(transactions)).
		Msg("Transaction sync completed")

	return nil
}

// queryAllNotionPages pages through the whole database.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}

// extractTransactionID reads the Transaction ID rich text property from a
// Notion page, or "" when absent.
func extractTransactionID(page notionapi.Page) string {
	if prop, ok := page.Properties["Transaction ID"]; ok {
		if richText, ok := prop.(*notionapi.RichTextProperty); ok {
			if len(richText.RichText) > 0 {
				return richText.RichText[0].PlainText
			}
		}
	}
	return ""
}
