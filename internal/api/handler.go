package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/insightdelivered/eod-ledger-converter/internal/converter"
	"github.com/insightdelivered/eod-ledger-converter/internal/ledger"
	"github.com/insightdelivered/eod-ledger-converter/internal/metrics"
	"github.com/insightdelivered/eod-ledger-converter/internal/models"
	"github.com/insightdelivered/eod-ledger-converter/internal/writer"
)

// Version is reported by the health endpoint and the CLI.
const Version = "2.0.0"

// pageBreak separates pages in client-side extracted text.
const pageBreak = "\n---PAGE_BREAK---\n"

// ConvertResponse is the JSON body of /convert when JSON is requested, and of
// every error response.
type ConvertResponse struct {
	Success          bool                `json:"success"`
	Error            string              `json:"error,omitempty"`
	ID               string              `json:"id,omitempty"`
	Bank             string              `json:"bank,omitempty"`
	Filename         string              `json:"filename,omitempty"`
	CSV              string              `json:"csv,omitempty"`
	Rows             []RowJSON           `json:"rows,omitempty"`
	Summary          *ledger.Summary     `json:"summary,omitempty"`
	TransactionCount int                 `json:"transactionCount,omitempty"`
	DebugLines       []models.LineResult `json:"debugLines,omitempty"`
}

// RowJSON is a ledger row with its date in ISO form.
type RowJSON struct {
	Date    string `json:"date"`
	Debit   int64  `json:"debit"`
	Credit  int64  `json:"credit"`
	Balance int64  `json:"balance"`
	EOD     int64  `json:"eod"`
}

// Converter is the conversion core used by the handler.
type Converter interface {
	Convert(ctx context.Context, req converter.Request) (*converter.Result, error)
}

// Extractor turns an uploaded PDF into page text.
type Extractor interface {
	Extract(data []byte, password string) ([]string, error)
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Converter Converter
	Extractor Extractor
	Metrics   *metrics.Recorder
	Logger    *zap.Logger
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": Version,
		"engine":  "fiber",
	})
}

// HandleConvert accepts a multipart form with "bank", and either a "pdf"
// file (optionally "password") or pre-extracted "extractedText". It
// responds with the EOD ledger as a CSV attachment, or as JSON when the
// client asks for it.
func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	bank := strings.TrimSpace(c.FormValue("bank"))
	if bank == "" {
		return writeError(c, fiber.StatusBadRequest, "Missing form field 'bank'.")
	}

	pages, status, msg := h.pages(c)
	if status != 0 {
		return writeError(c, status, msg)
	}

	res, err := h.Converter.Convert(c.UserContext(), converter.Request{
		Pages:      pages,
		BankFormat: bank,
		Debug:      c.FormValue("debug") == "true",
	})
	if err != nil {
		if errors.Is(err, ledger.ErrNoTransactions) {
			return writeError(c, fiber.StatusBadRequest, "No transactions parsed from PDF")
		}
		h.logger().Error("conversion failed", zap.Error(err))
		return writeError(c, fiber.StatusInternalServerError, "Conversion failed.")
	}

	var csvBuf bytes.Buffer
	csvWriter := &writer.CSVWriter{IncludeHeader: true}
	if err := csvWriter.Write(&csvBuf, res.Rows); err != nil {
		h.logger().Error("csv generation failed", zap.Error(err), zap.String("conversion_id", res.ID))
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}

	if wantsJSON(c) {
		summary := res.Summary
		return c.JSON(ConvertResponse{
			Success:          true,
			ID:               res.ID,
			Bank:             string(res.Bank),
			Filename:         writer.Filename,
			CSV:              csvBuf.String(),
			Rows:             ToRowJSON(res.Rows),
			Summary:          &summary,
			TransactionCount: res.TransactionCount,
			DebugLines:       res.DebugLines,
		})
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", writer.Filename))
	return c.Send(csvBuf.Bytes())
}

// pages returns the statement page text for the request. A nonzero status
// means the request should fail with msg.
func (h *Handler) pages(c *fiber.Ctx) ([]string, int, string) {
	if text := c.FormValue("extractedText"); strings.TrimSpace(text) != "" {
		return strings.Split(text, pageBreak), 0, ""
	}

	fh, err := c.FormFile("pdf")
	if err != nil {
		// older clients upload under "file"
		fh, err = c.FormFile("file")
	}
	if err != nil {
		return nil, fiber.StatusBadRequest, "No file uploaded. Use form field 'pdf'."
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		return nil, fiber.StatusBadRequest, "Only PDF files are supported."
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fiber.StatusBadRequest, "Failed to open uploaded file."
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fiber.StatusBadRequest, "Failed to read uploaded file."
	}

	pages, err := h.Extractor.Extract(data, c.FormValue("password"))
	if err != nil {
		h.Metrics.Conversion(string(models.ParseBankFormat(c.FormValue("bank"))), metrics.OutcomeExtractionFailed)
		h.logger().Info("pdf extraction failed", zap.String("filename", fh.Filename), zap.Error(err))
		return nil, fiber.StatusBadRequest, fmt.Sprintf("Failed to read PDF: %v", err)
	}
	return pages, 0, ""
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func wantsJSON(c *fiber.Ctx) bool {
	if c.FormValue("format") == "json" || c.Query("format") == "json" {
		return true
	}
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}

// ToRowJSON converts ledger rows to their JSON form with ISO dates.
func ToRowJSON(rows []models.LedgerRow) []RowJSON {
	out := make([]RowJSON, 0, len(rows))
	for _, r := range rows {
		out = append(out, RowJSON{
			Date:    r.Date.Format(models.DateLayout),
			Debit:   r.Debit,
			Credit:  r.Credit,
			Balance: r.Balance,
			EOD:     r.EOD,
		})
	}
	return out
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success: false,
		Error:   msg,
	})
}
