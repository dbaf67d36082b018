// Package converter turns extracted statement page text into an EOD ledger.
package converter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/insightdelivered/eod-ledger-converter/internal/ledger"
	"github.com/insightdelivered/eod-ledger-converter/internal/metrics"
	"github.com/insightdelivered/eod-ledger-converter/internal/models"
	"github.com/insightdelivered/eod-ledger-converter/internal/parser"
)

// Request is one conversion. An empty page stands for a page the extractor
// produced no text for and is skipped.
type Request struct {
	Pages      []string
	BankFormat string
	// Debug records a LineResult for every non-empty line.
	Debug bool
}

// Result is a finished conversion.
type Result struct {
	ID               string
	Bank             models.BankFormat
	Rows             []models.LedgerRow
	Summary          ledger.Summary
	TransactionCount int
	LinesSeen        int
	DebugLines       []models.LineResult
}

// Service runs conversions. The zero value is not usable; use New.
type Service struct {
	defaultBank string
	logger      *zap.Logger
	metrics     *metrics.Recorder
}

// New returns a Service. defaultBank is used when a request names no bank.
// logger and rec may be nil.
func New(defaultBank string, logger *zap.Logger, rec *metrics.Recorder) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{defaultBank: defaultBank, logger: logger, metrics: rec}
}

// Convert parses every line of every page with the parser for the request's
// bank format and builds the ledger. It fails with ledger.ErrNoTransactions
// when no line yields a transaction.
func (s *Service) Convert(ctx context.Context, req Request) (*Result, error) {
	bank := req.BankFormat
	if strings.TrimSpace(bank) == "" {
		bank = s.defaultBank
	}
	p := parser.ForFormat(bank)

	res := &Result{
		ID:   uuid.NewString(),
		Bank: p.Format(),
	}
	log := s.logger.With(zap.String("conversion_id", res.ID), zap.String("bank", string(res.Bank)))

	var txns []models.Transaction
	for pageIdx, page := range req.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if page == "" {
			continue
		}
		for lineIdx, line := range splitLines(page) {
			if strings.TrimSpace(line) == "" {
				continue
			}
			res.LinesSeen++
			txn, ok := p.Parse(line)
			if ok {
				txns = append(txns, txn)
			}
			if req.Debug {
				res.DebugLines = append(res.DebugLines, models.LineResult{
					Page:    pageIdx + 1,
					LineNum: lineIdx + 1,
					Text:    line,
					Parsed:  ok,
				})
			}
		}
	}
	res.TransactionCount = len(txns)
	s.metrics.LinesSeen(string(res.Bank), len(txns), res.LinesSeen-len(txns))

	rows, err := ledger.Build(txns)
	if err != nil {
		if errors.Is(err, ledger.ErrNoTransactions) {
			s.metrics.Conversion(string(res.Bank), metrics.OutcomeNoTransactions)
			log.Info("no transactions recognised", zap.Int("pages", len(req.Pages)), zap.Int("lines", res.LinesSeen))
		}
		return nil, fmt.Errorf("building ledger: %w", err)
	}

	res.Rows = rows
	res.Summary = ledger.Summarize(rows)
	s.metrics.Conversion(string(res.Bank), metrics.OutcomeOK)
	s.metrics.Ledger(len(rows))

	log.Info("statement converted",
		zap.Int("pages", len(req.Pages)),
		zap.Int("lines", res.LinesSeen),
		zap.Int("transactions", res.TransactionCount),
		zap.Int("days", len(rows)),
	)
	return res, nil
}

// splitLines splits page text on newlines, tolerating CRLF and form feeds.
func splitLines(page string) []string {
	page = strings.ReplaceAll(page, "\r\n", "\n")
	page = strings.ReplaceAll(page, "\r", "\n")
	page = strings.ReplaceAll(page, "\f", "\n")
	return strings.Split(page, "\n")
}
