package ledger

import (
	"time"

	"github.com/insightdelivered/eod-ledger-converter/internal/models"
)

// Summary describes a built ledger.
type Summary struct {
	StartDate        time.Time `json:"startDate"`
	EndDate          time.Time `json:"endDate"`
	Days             int       `json:"days"`
	CarryForwardDays int       `json:"carryForwardDays"`
	TotalDebit       int64     `json:"totalDebit"`
	TotalCredit      int64     `json:"totalCredit"`
	ClosingBalance   int64     `json:"closingBalance"`
}

// Summarize totals the rows produced by Build. Totals only include the
// debit and credit that made it into the ledger, i.e. the last transaction
// of each day. A day counts as carry-forward when it has no debit and no
// credit.
func Summarize(rows []models.LedgerRow) Summary {
	if len(rows) == 0 {
		return Summary{}
	}

	s := Summary{
		StartDate:      rows[0].Date,
		EndDate:        rows[len(rows)-1].Date,
		Days:           len(rows),
		ClosingBalance: rows[len(rows)-1].EOD,
	}
	for _, r := range rows {
		s.TotalDebit += r.Debit
		s.TotalCredit += r.Credit
		if r.Debit == 0 && r.Credit == 0 {
			s.CarryForwardDays++
		}
	}
	return s
}
