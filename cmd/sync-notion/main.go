package main

import (
	"context"
	"flag"
	"time"

	"cloud.google.com/go/civil"

	"github.com/megauravmahendra-png/expense-intelligence/internal/config"
	infra "github.com/megauravmahendra-png/expense-intelligence/internal/infra/bigquery"
	"github.com/megauravmahendra-png/expense-intelligence/internal/logger"
	"github.com/megauravmahendra-png/expense-intelligence/internal/notionsync"
)

// Mirrors a date range of parsed transactions into the Notion expenses
// database. BigQuery stays the source of truth: pages are created for
// missing transactions and archived for ones no longer present.
func main() {
	startFlag := flag.String("start", "", "range start date, YYYY-MM-DD (default: 30 days ago)")
	endFlag := flag.String("end", "", "range end date, YYYY-MM-DD (default: today)")
	dryRun := flag.Bool("dry-run", false, "log what would change without touching Notion")
	flag.Parse()

	cfg := config.Load()
	log := logger.New()

	if cfg.NotionToken == "" || cfg.NotionDatabaseID == "" {
		log.Fatal().Msg("NOTION_TOKEN and NOTION_DATABASE_ID must be configured")
	}

	now := time.Now().UTC()
	start := civil.DateOf(now.AddDate(0, 0, -30))
	end := civil.DateOf(now)
	if *startFlag != "" {
		parsed, err := civil.ParseDate(*startFlag)
		if err != nil {
			log.Fatal().Err(err).Str("start", *startFlag).Msg("Invalid start date")
		}
		start = parsed
	}
	if *endFlag != "" {
		parsed, err := civil.ParseDate(*endFlag)
		if err != nil {
			log.Fatal().Err(err).Str("end", *endFlag).Msg("Invalid end date")
		}
		end = parsed
	}
	if end.Before(start) {
		log.Fatal().
			Str("start", start.String()).
			Str("end", end.String()).
			Msg("End date is before start date")
	}

	infra.Configure(cfg.ProjectID, cfg.Dataset)

	ctx := logger.WithContext(context.Background(), log)

	repo, err := infra.NewRepository(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
	}
	defer repo.Close()

	notionClient := notionsync.NewNotionClient(cfg.NotionToken)

	if err := notionsync.SyncTransactions(ctx, repo, notionClient, cfg.NotionDatabaseID, start, end, *dryRun); err != nil {
		log.Fatal().Err(err).Msg("Notion sync failed")
	}
}
