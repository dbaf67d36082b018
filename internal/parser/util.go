package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/eod-ledger-converter/internal/models"
)

// ErrMalformedAmount is returned when a numeral token is not a valid decimal.
var ErrMalformedAmount = errors.New("malformed amount")

// Date layouts accepted by the normalizer. Day and month use the
// non-padded verbs so both "02-09-2025" and "2-9-2025" parse.
var (
	// CompactLayouts covers tokens like "02Sep2025".
	CompactLayouts = []string{"2Jan2006"}

	// AllLayouts is tried in order by the heuristic parser.
	AllLayouts = []string{
		"2-1-2006",
		"2/1/2006",
		"2 Jan 2006",
		"2Jan2006",
		"2 January 2006",
		"2-1-06",
		"2/1/06",
	}
)

var (
	// DD-MM-YYYY, DD/MM/YY, DD Mon YYYY, DD September YYYY, DDMonYYYY
	datePattern = regexp.MustCompile(`\d{2}[/-]\d{2}[/-]\d{2,4}|\d{2}\s+[A-Za-z]{3,9}\s+\d{4}|\d{2}[A-Za-z]{3}\d{4}`)

	// Signed numeral with optional comma grouping and fraction: "-1,234.50", "+200", "9500.00"
	amountPattern = regexp.MustCompile(`[-+]?(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?`)
)

// NormalizeAmount converts text like " 1,234.50 " to a whole-unit integer.
// Empty input yields 0. The fraction is truncated toward zero, not rounded.
func NormalizeAmount(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	return d.IntPart(), nil
}

// NormalizeDate tries each layout in order and returns the first match as
// a UTC calendar date. The bool is false when no layout matches.
func NormalizeDate(token string, layouts []string) (time.Time, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, token)
		if err == nil {
			return models.CivilDate(t), true
		}
	}
	return time.Time{}, false
}

// stripSign removes every leading '+' and '-', so "--500" is 500.
func stripSign(s string) string {
	return strings.TrimLeft(s, "+-")
}
