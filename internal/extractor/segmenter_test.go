package extractor

import "testing"

func TestSegment(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantCount  int
		wantTokens []string
	}{
		{
			name:      "no date tokens",
			text:      "Google Pay activity statement page 1 of 3",
			wantCount: 0,
		},
		{
			name:       "single concatenated candidate",
			text:       "01Oct,2025 PaidtoSudamaSupane ₹26",
			wantCount:  1,
			wantTokens: []string{"01Oct,2025"},
		},
		{
			name:       "two candidates without line breaks",
			text:       "01Oct,2025 PaidtoShopA ₹26 02 Oct, 2025 Received from Shop B ₹100",
			wantCount:  2,
			wantTokens: []string{"01Oct,2025", "02 Oct, 2025"},
		},
		{
			name:       "full month name",
			text:       "3 October, 2025 Paid to Someone ₹40",
			wantCount:  1,
			wantTokens: []string{"3 October, 2025"},
		},
		{
			name:      "empty text",
			text:      "",
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segment(tt.text)
			if len(got) != tt.wantCount {
				t.Fatalf("Segment() returned %d candidates, want %d", len(got), tt.wantCount)
			}
			for i, token := range tt.wantTokens {
				if got[i].DateToken != token {
					t.Errorf("candidate %d date token = %q, want %q", i, got[i].DateToken, token)
				}
			}
		})
	}
}

func TestSegmentBodySpans(t *testing.T) {
	text := "01Oct,2025 first body 02Nov,2025 second body"
	got := Segment(text)
	if len(got) != 2 {
		t.Fatalf("Segment() returned %d candidates, want 2", len(got))
	}
	if got[0].Body != " first body " {
		t.Errorf("first body = %q, want %q", got[0].Body, " first body ")
	}
	if got[1].Body != " second body" {
		t.Errorf("second body = %q, want %q", got[1].Body, " second body")
	}
}
