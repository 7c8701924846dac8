package rules

import (
	"context"
	"fmt"

	"google.golang.org/api/sheets/v4"

	"github.com/megauravmahendra-png/expense-intelligence/internal/extractor"
)

// SheetsSource reads the merchant rules from a Google Sheets range. The
// sheet is the operator-facing editing surface; the first row of the range
// must be the header row.
type SheetsSource struct {
	svc           *sheets.Service
	spreadsheetID string
	readRange     string
}

// NewSheetsSource builds a source for the given spreadsheet and A1 range,
// e.g. "Rules!A:C". Credentials come from the ambient environment.
func NewSheetsSource(ctx context.Context, spreadsheetID, readRange string) (*SheetsSource, error) {
	svc, err := sheets.NewService(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewSheetsSource: %w", err)
	}
	return &SheetsSource{svc: svc, spreadsheetID: spreadsheetID, readRange: readRange}, nil
}

func (s *SheetsSource) Load(ctx context.Context) ([]extractor.MerchantRule, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("SheetsSource.Load: %w", err)
	}

	records := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, v := range row {
			cells = append(cells, fmt.Sprint(v))
		}
		records = append(records, cells)
	}

	rules, err := FromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("SheetsSource.Load: %w", err)
	}
	return rules, nil
}
