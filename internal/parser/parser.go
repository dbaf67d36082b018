package parser

import (
	"github.com/insightdelivered/eod-ledger-converter/internal/models"
)

// LineParser extracts a transaction from one line of statement text.
// The bool is false when the line is not a transaction; implementations
// never return errors for individual lines.
type LineParser interface {
	Parse(line string) (models.Transaction, bool)
	// Format returns the bank format this parser handles.
	Format() models.BankFormat
}

var registry = map[models.BankFormat]LineParser{
	models.BankKotak: FixedParser{},
	models.BankAxis:  HeuristicParser{},
}

// ForFormat returns the parser for a free-form bank name. Matching is
// case-insensitive; unknown names get the fixed-format parser.
func ForFormat(bank string) LineParser {
	if p, ok := registry[models.ParseBankFormat(bank)]; ok {
		return p
	}
	return registry[models.DefaultBankFormat]
}

// ParseLine is a convenience wrapper around ForFormat(bank).Parse(line).
func ParseLine(line, bank string) (models.Transaction, bool) {
	return ForFormat(bank).Parse(line)
}

// SupportedFormats lists the bank formats with a dedicated parser.
func SupportedFormats() []models.BankFormat {
	return []models.BankFormat{models.BankKotak, models.BankAxis}
}
