package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/insightdelivered/eod-ledger-converter/internal/api"
	"github.com/insightdelivered/eod-ledger-converter/internal/config"
	"github.com/insightdelivered/eod-ledger-converter/internal/converter"
	"github.com/insightdelivered/eod-ledger-converter/internal/extractor"
	"github.com/insightdelivered/eod-ledger-converter/internal/ledger"
	"github.com/insightdelivered/eod-ledger-converter/internal/logger"
	"github.com/insightdelivered/eod-ledger-converter/internal/models"
	"github.com/insightdelivered/eod-ledger-converter/internal/writer"
)

type convertOptions struct {
	bank     string
	password string
	output   string
	noHeader bool
	json     bool
}

func newConvertCommand() *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert <statement.pdf|statement.txt> [more...]",
		Short: "Convert statements into EOD ledger CSV files",
		Example: `  # Kotak statement (default format)
  eod-ledger convert statement.pdf

  # Axis statement with a password
  eod-ledger convert --bank=axis --password=XXXX1234 statement.pdf

  # Pre-extracted text, pages separated by form feeds, JSON to stdout
  eod-ledger convert --bank=axis --json statement.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.bank == "" {
				opts.bank = cfg.Converter.DefaultBank
			}
			if opts.output != "" && len(args) > 1 {
				return fmt.Errorf("--output can only be used with a single input file")
			}

			log := logger.Get()
			svc := converter.New(cfg.Converter.DefaultBank, log, nil)
			ext := extractor.New(cfg.Converter.PdftotextFallback, log)

			for _, inputPath := range args {
				if err := runConvert(cmd.Context(), cmd.OutOrStdout(), svc, ext, inputPath, opts); err != nil {
					return fmt.Errorf("processing %s: %w", inputPath, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.bank, "bank", "", "Bank format: kotak or axis (unknown values use kotak)")
	cmd.Flags().StringVar(&opts.password, "password", "", "PDF password")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output CSV path (defaults to input name with .csv extension)")
	cmd.Flags().BoolVar(&opts.noHeader, "no-header", false, "Omit the CSV column header row")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Write the ledger and summary as JSON to stdout instead of a CSV file")

	return cmd
}

func runConvert(ctx context.Context, out io.Writer, svc *converter.Service, ext *extractor.Extractor, inputPath string, opts *convertOptions) error {
	pages, err := readPages(ext, inputPath, opts.password)
	if err != nil {
		return err
	}

	res, err := svc.Convert(ctx, converter.Request{Pages: pages, BankFormat: opts.bank})
	if err != nil {
		if errors.Is(err, ledger.ErrNoTransactions) {
			return fmt.Errorf("no transactions found; check that --bank=%s matches the statement layout", models.ParseBankFormat(opts.bank))
		}
		return err
	}

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Bank    models.BankFormat `json:"bank"`
			Summary ledger.Summary    `json:"summary"`
			Rows    []api.RowJSON     `json:"rows"`
		}{res.Bank, res.Summary, api.ToRowJSON(res.Rows)})
	}

	outPath := opts.output
	if outPath == "" {
		outPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".csv"
	}
	w := &writer.CSVWriter{IncludeHeader: !opts.noHeader}
	if err := w.WriteToFile(outPath, res.Rows); err != nil {
		return fmt.Errorf("CSV write failed: %w", err)
	}

	logger.Get().Info("ledger written",
		zap.String("input", inputPath),
		zap.String("output", outPath),
		zap.String("bank", string(res.Bank)),
	)
	s := res.Summary
	fmt.Fprintf(out, "%s: %d transaction(s), %d day(s) %s..%s, closing balance %d -> %s\n",
		inputPath, res.TransactionCount, s.Days,
		s.StartDate.Format(models.DateLayout), s.EndDate.Format(models.DateLayout),
		s.ClosingBalance, outPath)
	return nil
}

// readPages returns page text for a PDF, or for a .txt file of pre-extracted
// text with pages separated by form feeds.
func readPages(ext *extractor.Extractor, inputPath, password string) ([]string, error) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("input file not found: %s", inputPath)
	}

	switch strings.ToLower(filepath.Ext(inputPath)) {
	case ".pdf":
		return ext.ExtractFile(inputPath, password)
	case ".txt":
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, err
		}
		return strings.Split(string(data), "\f"), nil
	default:
		return nil, fmt.Errorf("expected .pdf or .txt file, got %q", filepath.Ext(inputPath))
	}
}
