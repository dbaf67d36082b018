// Package ledger reconstructs a dense day-by-day end-of-day balance ledger
// from the sparse transactions found in a statement.
package ledger

import (
	"errors"
	"time"

	"github.com/insightdelivered/eod-ledger-converter/internal/models"
)

// ErrNoTransactions is returned when there is nothing to build a ledger from.
var ErrNoTransactions = errors.New("no transactions parsed from statement")

// Build returns one row per calendar day from the earliest to the latest
// transaction date inclusive.
//
// When a date has several transactions only the last one in input order is
// used: its debit, credit and balance become the row, and its balance
// becomes the day's EOD. Earlier same-day transactions are dropped, not
// summed. Days without transactions carry the previous EOD forward with
// zero debit and credit.
func Build(txns []models.Transaction) ([]models.LedgerRow, error) {
	if len(txns) == 0 {
		return nil, ErrNoTransactions
	}

	byDate, start, end := groupByDate(txns)

	rows := make([]models.LedgerRow, 0, daysBetween(start, end)+1)
	var prevEOD int64
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		var row models.LedgerRow
		row, prevEOD = dayRow(day, byDate[day], prevEOD)
		rows = append(rows, row)
	}
	return rows, nil
}

// groupByDate buckets txns by calendar day, keeping input order inside each
// bucket, and reports the first and last day seen.
func groupByDate(txns []models.Transaction) (byDate map[time.Time][]models.Transaction, start, end time.Time) {
	byDate = make(map[time.Time][]models.Transaction)
	start = models.CivilDate(txns[0].Date)
	end = start
	for _, txn := range txns {
		day := models.CivilDate(txn.Date)
		byDate[day] = append(byDate[day], txn)
		if day.Before(start) {
			start = day
		}
		if day.After(end) {
			end = day
		}
	}
	return byDate, start, end
}

// dayRow emits the row for day and returns the EOD to carry into the next day.
func dayRow(day time.Time, txns []models.Transaction, prevEOD int64) (models.LedgerRow, int64) {
	if len(txns) == 0 {
		return models.LedgerRow{Date: day, Balance: prevEOD, EOD: prevEOD}, prevEOD
	}
	txn := txns[len(txns)-1]
	return models.LedgerRow{
		Date:    day,
		Debit:   txn.Debit,
		Credit:  txn.Credit,
		Balance: txn.Balance,
		EOD:     txn.Balance,
	}, txn.Balance
}

// daysBetween counts whole calendar days from a to b. Both must be UTC midnights.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
