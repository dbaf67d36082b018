package parser

import (
	"strings"

	"github.com/insightdelivered/eod-ledger-converter/internal/models"
)

// FixedParser handles Kotak-style statement lines.
//
// Layout (whitespace separated, at least six tokens):
//
//	SNO DD Mon YYYY DESCRIPTION... ±AMOUNT BALANCE
//
// Example line: "1 02 Sep 2025 UPI/PAYTM -500.00 9,500.00"
type FixedParser struct{}

const minFixedTokens = 6

func (FixedParser) Format() models.BankFormat {
	return models.BankKotak
}

func (FixedParser) Parse(line string) (models.Transaction, bool) {
	parts := strings.Fields(line)
	if len(parts) < minFixedTokens {
		return models.Transaction{}, false
	}

	var txn models.Transaction

	signed := parts[len(parts)-2]
	if signed[0] != '+' && signed[0] != '-' {
		return models.Transaction{}, false
	}
	amt, err := NormalizeAmount(stripSign(signed))
	if err != nil {
		return models.Transaction{}, false
	}
	if signed[0] == '+' {
		txn.Credit = amt
	} else {
		txn.Debit = amt
	}

	// day + month + year, e.g. "02" "Sep" "2025" -> "02Sep2025"
	date, ok := NormalizeDate(parts[1]+parts[2]+parts[3], CompactLayouts)
	if !ok {
		return models.Transaction{}, false
	}
	txn.Date = date

	txn.Balance, err = NormalizeAmount(parts[len(parts)-1])
	if err != nil {
		return models.Transaction{}, false
	}

	return txn, true
}
