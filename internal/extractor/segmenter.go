package extractor

import "regexp"

// dateTokenRe anchors transaction boundaries. Payment-app PDF text comes out
// with unreliable whitespace, so both "01Oct,2025" and "01 Oct, 2025" (and
// full month names like "October") must match.
var dateTokenRe = regexp.MustCompile(
	`(?i)\d{1,2}\s*(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s*,\s*\d{4}`,
)

// Segment splits raw statement text into candidates using date tokens as
// delimiters. Each candidate's body runs from just after its date token up to
// the next date token, or end of text for the last one. Text with no date
// tokens yields no candidates; that is "no transactions found", not an error.
func Segment(text string) []Candidate {
	locs := dateTokenRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	candidates := make([]Candidate, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		candidates = append(candidates, Candidate{
			DateToken: text[loc[0]:loc[1]],
			Body:      text[loc[1]:end],
		})
	}
	return candidates
}
