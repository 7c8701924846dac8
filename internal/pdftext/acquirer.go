// Package pdftext turns statement PDFs into plain text. Two backends exist:
// a local extractor that walks the PDF content streams directly, and a
// Gemini-backed one for statements whose embedded text layer is broken or
// missing. Downstream parsing only needs the text; it tolerates the mangled
// whitespace both backends produce.
package pdftext

import "context"

// TextAcquirer extracts plain text from raw PDF bytes. Name is the source
// filename, used only for diagnostics.
type TextAcquirer interface {
	AcquireText(ctx context.Context, name string, data []byte) (string, error)
}
