package models

import (
	"strings"
	"time"
)

// DateLayout is the ISO 8601 calendar date format used in ledger output.
const DateLayout = "2006-01-02"

// Transaction is a single statement line recognised by a line parser.
// Amounts are whole currency units; at most one of Debit and Credit is nonzero.
type Transaction struct {
	Date    time.Time `json:"date"`
	Debit   int64     `json:"debit"`
	Credit  int64     `json:"credit"`
	Balance int64     `json:"balance"` // statement balance after this transaction
}

// LedgerRow is one calendar day of the reconstructed end-of-day ledger.
type LedgerRow struct {
	Date    time.Time `json:"date"`
	Debit   int64     `json:"debit"`
	Credit  int64     `json:"credit"`
	Balance int64     `json:"balance"`
	EOD     int64     `json:"eod"`
}

// BankFormat selects the line parser used for a statement.
type BankFormat string

const (
	BankKotak BankFormat = "kotak" // fixed tokenization, default
	BankAxis  BankFormat = "axis"  // heuristic regex
)

// DefaultBankFormat is used for empty and unrecognised formats.
const DefaultBankFormat = BankKotak

// ParseBankFormat normalises a free-form bank name. Unknown names fall back
// to DefaultBankFormat.
func ParseBankFormat(s string) BankFormat {
	switch BankFormat(strings.ToLower(strings.TrimSpace(s))) {
	case BankAxis:
		return BankAxis
	case BankKotak:
		return BankKotak
	default:
		return DefaultBankFormat
	}
}

// LineResult captures what the converter did with each input line.
type LineResult struct {
	Page    int    `json:"page"`
	LineNum int    `json:"lineNum"`
	Text    string `json:"text"`
	Parsed  bool   `json:"parsed"`
}

// CivilDate truncates t to midnight UTC of its calendar day.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
