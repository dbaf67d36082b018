package writer

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/insightdelivered/eod-ledger-converter/internal/models"
)

// Filename is the suggested download name for a ledger CSV.
const Filename = "eod.csv"

// csvRow is the output schema, in column order.
type csvRow struct {
	Date    string `csv:"Date"`
	Debit   int64  `csv:"Debit"`
	Credit  int64  `csv:"Credit"`
	Balance int64  `csv:"Balance"`
	EOD     int64  `csv:"EOD"`
}

// CSVWriter writes ledger rows to CSV format.
type CSVWriter struct {
	// IncludeHeader writes the Date,Debit,Credit,Balance,EOD column row.
	IncludeHeader bool
}

// WriteToFile writes rows to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, rows []models.LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if err := w.Write(f, rows); err != nil {
		return err
	}
	return f.Close()
}

// Write writes rows in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, rows []models.LedgerRow) error {
	records := make([]csvRow, 0, len(rows))
	for _, r := range rows {
		records = append(records, csvRow{
			Date:    r.Date.Format(models.DateLayout),
			Debit:   r.Debit,
			Credit:  r.Credit,
			Balance: r.Balance,
			EOD:     r.EOD,
		})
	}

	var err error
	if w.IncludeHeader {
		err = gocsv.Marshal(&records, out)
	} else {
		err = gocsv.MarshalWithoutHeaders(&records, out)
	}
	if err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
