package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/megauravmahendra-png/expense-intelligence/internal/config"
	"github.com/megauravmahendra-png/expense-intelligence/internal/extractor"
	"github.com/megauravmahendra-png/expense-intelligence/internal/logger"
	"github.com/megauravmahendra-png/expense-intelligence/internal/pdftext"
	"github.com/megauravmahendra-png/expense-intelligence/internal/rules"
)

// Batch extractor: parse a folder of statement PDFs offline and write the
// categorized table to CSV. No GCS, no BigQuery; merchant rules come from
// the configured sheet when one is set.
func main() {
	inputDir := flag.String("in", ".", "directory containing statement PDFs")
	outputCSV := flag.String("out", "transactions.csv", "path of the CSV file to write")
	useSheet := flag.Bool("sheet", false, "load merchant rules from the configured Google Sheet")
	flag.Parse()

	cfg := config.Load()
	log := logger.New()
	ctx := logger.WithContext(context.Background(), log)

	entries, err := os.ReadDir(*inputDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", *inputDir).Msg("Failed to read input directory")
	}

	var docs []extractor.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		path := filepath.Join(*inputDir, entry.Name())
		text, err := pdftext.ReadFile(path)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("Skipping unreadable PDF")
			continue
		}
		docs = append(docs, extractor.Document{Name: entry.Name(), Text: text})
	}
	if len(docs) == 0 {
		log.Fatal().Str("dir", *inputDir).Msg("No readable PDFs found")
	}
	log.Info().Int("documents", len(docs)).Msg("Read statement PDFs")

	opts := extractor.Options{
		Config: extractor.CategorizerConfig{
			MatchThreshold: cfg.MatchThreshold,
			FareMin:        cfg.FareMin,
			FareMax:        cfg.FareMax,
		},
		Parallelism: cfg.Parallelism,
	}
	if *useSheet {
		if cfg.RulesSheetID == "" {
			log.Fatal().Msg("RULES_SHEET_ID is not configured")
		}
		source, err := rules.NewSheetsSource(ctx, cfg.RulesSheetID, cfg.RulesSheetRange)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create sheet rules source")
		}
		loaded, err := source.Load(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load merchant rules")
		}
		log.Info().Int("rules", len(loaded)).Msg("Loaded merchant rules from sheet")
		opts.Rules = loaded
	}

	table, err := extractor.Run(ctx, docs, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}

	f, err := os.Create(*outputCSV)
	if err != nil {
		log.Fatal().Err(err).Str("path", *outputCSV).Msg("Failed to create output file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(extractor.Columns); err != nil {
		log.Fatal().Err(err).Msg("Failed to write CSV header")
	}
	if err := w.WriteAll(table.Records()); err != nil {
		log.Fatal().Err(err).Msg("Failed to write CSV rows")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatal().Err(err).Msg("Failed to flush CSV")
	}

	summary := table.Summary()
	fmt.Printf("Wrote %d transactions to %s\n", table.Len(), *outputCSV)
	fmt.Printf("  sent:     %s (%d transactions)\n", summary.TotalSent.StringFixed(2), summary.SentCount)
	fmt.Printf("  received: %s (%d transactions)\n", summary.TotalReceived.StringFixed(2), summary.ReceivedCount)
	fmt.Printf("  net:      %s\n", summary.Net().StringFixed(2))
}
