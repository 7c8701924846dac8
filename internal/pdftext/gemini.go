package pdftext

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModelName is used when the acquirer is built with an empty model.
const DefaultModelName = "gemini-2.5-flash"

const recoveryPrompt = `You are given a payment app transaction statement as a PDF.
Transcribe its full text content as plain text, page by page, in reading order.
Do not summarize, reformat, or add commentary. Do not wrap the output in
Markdown fences. Output only the transcribed text.`

// GeminiAcquirer recovers statement text via the Gemini API. It is the
// fallback for PDFs whose text layer the local extractor cannot read, such
// as scanned or image-only statements.
type GeminiAcquirer struct {
	Model string
}

func (g GeminiAcquirer) AcquireText(ctx context.Context, name string, data []byte) (string, error) {
	// Vertex vs Gemini Dev is controlled via env vars:
	//  - GOOGLE_GENAI_USE_VERTEXAI=True  -> Vertex AI
	//  - GOOGLE_CLOUD_PROJECT
	//  - GOOGLE_CLOUD_LOCATION
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("GeminiAcquirer.AcquireText: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: recoveryPrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: "application/pdf",
						Data:     data,
					},
				},
			},
		},
	}

	model := g.Model
	if model == "" {
		model = DefaultModelName
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("GeminiAcquirer.AcquireText: generate content for %s: %w", name, err)
	}

	text := cleanModelText(resp.Text())
	if text == "" {
		return "", fmt.Errorf("GeminiAcquirer.AcquireText: empty response from model for %s", name)
	}
	return text, nil
}

// cleanModelText strips Markdown fences the model sometimes adds despite
// being told not to.
func cleanModelText(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```text).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
