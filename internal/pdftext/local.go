package pdftext

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dslipak/pdf"
)

// LocalAcquirer extracts text from the PDF's own text layer. It is fast and
// offline, but returns whatever the PDF encoder wrote, which for payment-app
// statements usually means words run together without spaces.
type LocalAcquirer struct{}

func (LocalAcquirer) AcquireText(ctx context.Context, name string, data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("LocalAcquirer.AcquireText: open %s: %w", name, err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("LocalAcquirer.AcquireText: extract %s: %w", name, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("LocalAcquirer.AcquireText: read %s: %w", name, err)
	}
	return buf.String(), nil
}

// ReadFile extracts text straight from a PDF on disk; used by the batch CLI.
func ReadFile(path string) (string, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("pdftext.ReadFile: open %s: %w", path, err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdftext.ReadFile: extract %s: %w", path, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("pdftext.ReadFile: read %s: %w", path, err)
	}
	return buf.String(), nil
}
