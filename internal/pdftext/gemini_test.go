package pdftext

import "testing"

func TestCleanModelText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "01Oct,2025 PaidtoShop", "01Oct,2025 PaidtoShop"},
		{"padded", "  hello\n", "hello"},
		{"fenced", "```\n01Oct,2025 PaidtoShop\n```", "01Oct,2025 PaidtoShop"},
		{"fenced with language", "```text\nline one\nline two\n```", "line one\nline two"},
		{"missing closing fence", "```\npartial output", "partial output"},
		{"single line fence", "```weird", "```weird"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelText(tt.raw); got != tt.want {
				t.Errorf("cleanModelText(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
