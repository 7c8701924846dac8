package extractor

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Rejection reasons. Rejects are expected on real statements (headers,
// footers, page furniture all look like candidates) and are recovered by the
// caller, never surfaced as run failures.
var (
	errBadDate           = errors.New("unparseable date token")
	errNoDirection       = errors.New("no direction marker")
	errShortCounterparty = errors.New("counterparty too short")
	errNoAmount          = errors.New("no currency-marked amount")
)

var (
	// Direction markers, tolerant of the extraction collapsing their
	// internal whitespace ("Paidto", "Self transferto", ...).
	paidToRe       = regexp.MustCompile(`(?i)paid\s*to`)
	receivedFromRe = regexp.MustCompile(`(?i)received\s*from`)
	selfTransferRe = regexp.MustCompile(`(?i)self\s*transfer\s*to`)

	dateDigitsRe = regexp.MustCompile(`(?i)^(\d{1,2})([a-z]{3})[a-z]*,?(\d{4})$`)
	dateJunkRe   = regexp.MustCompile(`[^0-9A-Za-z,]`)

	amountRe = regexp.MustCompile(`[₹$€£]\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	timeRe   = regexp.MustCompile(`(\d{1,2}):(\d{2})(?::(\d{2}))?\s*([AaPp][Mm])?`)
	upiIDRe  = regexp.MustCompile(`(?i)upi\s*transaction\s*id\s*:?\s*(\d+)`)
	paidTailRe = regexp.MustCompile(`(?i)paid\s*(?:by|to)`)
	bankTagRe  = regexp.MustCompile(`(?i)((?:canara|hdfc|icici|sbi|axis|kotak|union|punjab|yes|idbi|indian)\s*bank)\s*(\d+)`)

	upiTokenRe = regexp.MustCompile(`(?i)upi`)

	// De-concatenation of names the extraction ran together
	// ("SudamaSupane" -> "Sudama Supane").
	lowerUpperRe  = regexp.MustCompile(`([a-z])([A-Z])`)
	acronymRe     = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
	letterDigitRe = regexp.MustCompile(`([A-Za-z])([0-9])`)
	spaceRunRe    = regexp.MustCompile(`\s+`)
)

// ParseCandidate turns one segmenter candidate into a Transaction, or rejects
// it. There are no partial records: any missing mandatory field rejects the
// whole candidate.
func ParseCandidate(c Candidate) (Transaction, error) {
	var tx Transaction

	date, err := parseDateToken(c.DateToken)
	if err != nil {
		return tx, err
	}
	tx.Date = date

	direction, markerEnd, err := findDirection(c.Body)
	if err != nil {
		return tx, err
	}
	tx.Direction = direction

	tail := c.Body[markerEnd:]

	counterparty, err := extractCounterparty(tail)
	if err != nil {
		return tx, err
	}
	tx.Counterparty = counterparty

	amount, err := extractAmount(tail)
	if err != nil {
		return tx, err
	}
	tx.Amount = amount

	tx.Time = extractTime(c.Body)

	if m := upiIDRe.FindStringSubmatch(c.Body); m != nil {
		tx.TransactionID = m[1]
	}
	tx.BankTag = extractBankTag(tail)

	return tx, nil
}

// parseDateToken normalizes and parses a segmenter date token. The extraction
// may have dropped or duplicated whitespace, so everything except digits,
// letters and commas is stripped before matching.
func parseDateToken(token string) (civil.Date, error) {
	cleaned := dateJunkRe.ReplaceAllString(token, "")
	m := dateDigitsRe.FindStringSubmatch(cleaned)
	if m == nil {
		return civil.Date{}, fmt.Errorf("%w: %q", errBadDate, token)
	}

	month := strings.ToUpper(m[2][:1]) + strings.ToLower(m[2][1:])
	t, err := time.Parse("2 Jan 2006", m[1]+" "+month+" "+m[3])
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: %q", errBadDate, token)
	}
	return civil.DateOf(t), nil
}

// findDirection locates the leftmost direction marker. A candidate with no
// marker is not a transaction line.
func findDirection(body string) (Direction, int, error) {
	type match struct {
		direction Direction
		loc       []int
	}
	best := match{}
	for _, probe := range []match{
		{DirectionSent, paidToRe.FindStringIndex(body)},
		{DirectionReceived, receivedFromRe.FindStringIndex(body)},
		{DirectionSelfTransfer, selfTransferRe.FindStringIndex(body)},
	} {
		if probe.loc == nil {
			continue
		}
		if best.loc == nil || probe.loc[0] < best.loc[0] {
			best = probe
		}
	}
	if best.loc == nil {
		return "", 0, errNoDirection
	}
	return best.direction, best.loc[1], nil
}

// extractCounterparty takes the name span: everything after the direction
// marker up to the first currency symbol or "UPI" token.
func extractCounterparty(tail string) (string, error) {
	end := len(tail)
	if idx := indexCurrency(tail); idx >= 0 && idx < end {
		end = idx
	}
	if loc := upiTokenRe.FindStringIndex(tail); loc != nil && loc[0] < end {
		end = loc[0]
	}

	name := tail[:end]
	name = lowerUpperRe.ReplaceAllString(name, "$1 $2")
	name = acronymRe.ReplaceAllString(name, "$1 $2")
	name = spaceRunRe.ReplaceAllString(name, " ")
	name = strings.Trim(name, " \t\n.,:;-_*")

	if utf8.RuneCountInString(name) < 2 {
		return "", fmt.Errorf("%w: %q", errShortCounterparty, name)
	}
	return name, nil
}

func indexCurrency(s string) int {
	return strings.IndexAny(s, "₹$€£")
}

// extractAmount finds the first currency-marked numeric token after the
// direction marker and parses it with thousands separators stripped.
func extractAmount(tail string) (decimal.Decimal, error) {
	m := amountRe.FindStringSubmatch(tail)
	if m == nil {
		return decimal.Decimal{}, errNoAmount
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", errNoAmount, m[1])
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: non-positive %s", errNoAmount, amount)
	}
	return amount, nil
}

// noon is the neutral default when a candidate carries no usable time.
// Downstream time-of-day bucketing needs some value.
var noon = civil.Time{Hour: 12}

// extractTime parses an H:MM[:SS] token with an optional meridiem marker.
// With AM/PM the hour is normalized to 24h; without, the hour is taken as
// already 24h and accepted only in 0-23.
func extractTime(body string) civil.Time {
	m := timeRe.FindStringSubmatch(body)
	if m == nil {
		return noon
	}

	hour := atoiOrNeg(m[1])
	minute := atoiOrNeg(m[2])
	second := 0
	if m[3] != "" {
		second = atoiOrNeg(m[3])
	}
	if minute < 0 || minute > 59 || second < 0 || second > 59 {
		return noon
	}

	switch strings.ToUpper(m[4]) {
	case "AM":
		if hour < 1 || hour > 12 {
			return noon
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return noon
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour < 0 || hour > 23 {
			return noon
		}
	}

	return civil.Time{Hour: hour, Minute: minute, Second: second}
}

func atoiOrNeg(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// extractBankTag looks for a known bank token followed by digits after the
// last "Paid by"/"Paid to" in the tail, and normalizes it to human-readable
// form, e.g. "CanaraBank7191" -> "Canara Bank 7191".
func extractBankTag(tail string) string {
	locs := paidTailRe.FindAllStringIndex(tail, -1)
	if len(locs) == 0 {
		return ""
	}
	after := tail[locs[len(locs)-1][1]:]

	m := bankTagRe.FindStringSubmatch(after)
	if m == nil {
		return ""
	}

	name := lowerUpperRe.ReplaceAllString(m[1], "$1 $2")
	name = acronymRe.ReplaceAllString(name, "$1 $2")
	name = spaceRunRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name) + " " + m[2]
}
