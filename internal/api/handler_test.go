package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/eod-ledger-converter/internal/converter"
	"github.com/insightdelivered/eod-ledger-converter/internal/extractor"
	"github.com/insightdelivered/eod-ledger-converter/internal/metrics"
)

type fakeExtractor struct {
	pages    []string
	err      error
	password string
}

func (f *fakeExtractor) Extract(data []byte, password string) ([]string, error) {
	f.password = password
	return f.pages, f.err
}

const axisText = "02-09-2025 SALARY CR 1,000.00 5,000.00\n04-09-2025 RENT DR 200.00 4,800.00"

func setupTestApp(ext Extractor) *fiber.App {
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)
	h := &Handler{
		Converter: converter.New("kotak", nil, rec),
		Extractor: ext,
		Metrics:   rec,
	}
	return NewApp(h, Options{Gatherer: reg, AllowOrigins: []string{"http://localhost:5173"}})
}

type formFile struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, file *formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile(file.field, file.name)
		require.NoError(t, err)
		_, err = fw.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeResponse(t *testing.T, resp *http.Response) ConvertResponse {
	t.Helper()
	var out ConvertResponse
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &out), "body: %s", body)
	return out
}

func TestHealthEndpoint(t *testing.T) {
	app := setupTestApp(&fakeExtractor{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]string
	body, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "ok", result["status"])
	assert.Equal(t, "fiber", result["engine"])
	assert.Equal(t, Version, result["version"])
}

func TestConvert_ExtractedTextCSV(t *testing.T) {
	app := setupTestApp(&fakeExtractor{})

	req := multipartRequest(t, "/convert", map[string]string{
		"bank":          "Axis",
		"extractedText": axisText,
	}, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="eod.csv"`, resp.Header.Get("Content-Disposition"))

	body, _ := io.ReadAll(resp.Body)
	want := "Date,Debit,Credit,Balance,EOD\n" +
		"2025-09-02,0,1000,5000,5000\n" +
		"2025-09-03,0,0,5000,5000\n" +
		"2025-09-04,200,0,4800,4800\n"
	assert.Equal(t, want, string(body))
}

func TestConvert_PDFUploadJSON(t *testing.T) {
	ext := &fakeExtractor{pages: []string{"1 02 Sep 2025 DESC -500.00 9500.00", ""}}
	app := setupTestApp(ext)

	req := multipartRequest(t, "/convert", map[string]string{
		"bank":     "kotak",
		"password": "s3cret",
		"format":   "json",
	}, &formFile{field: "pdf", name: "statement.PDF", data: []byte("%PDF-1.4")})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decodeResponse(t, resp)
	assert.True(t, out.Success)
	assert.Equal(t, "kotak", out.Bank)
	assert.Equal(t, "eod.csv", out.Filename)
	assert.Equal(t, 1, out.TransactionCount)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, RowJSON{Date: "2025-09-02", Debit: 500, Balance: 9500, EOD: 9500}, out.Rows[0])
	assert.True(t, strings.HasPrefix(out.CSV, "Date,Debit,Credit,Balance,EOD\n"))
	require.NotNil(t, out.Summary)
	assert.Equal(t, 1, out.Summary.Days)
	assert.Equal(t, "s3cret", ext.password)
}

func TestConvert_AcceptJSON(t *testing.T) {
	app := setupTestApp(&fakeExtractor{})

	req := multipartRequest(t, "/api/convert", map[string]string{
		"bank":          "axis",
		"extractedText": axisText,
		"debug":         "true",
	}, nil)
	req.Header.Set("Accept", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decodeResponse(t, resp)
	assert.Len(t, out.Rows, 3)
	assert.Len(t, out.DebugLines, 2)
}

func TestConvert_MultiplePages(t *testing.T) {
	app := setupTestApp(&fakeExtractor{})

	text := "02-09-2025 SALARY CR 1,000.00 5,000.00" + pageBreak + "03-09-2025 RENT DR 200.00 4,800.00"
	req := multipartRequest(t, "/convert", map[string]string{"bank": "axis", "extractedText": text, "format": "json"}, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decodeResponse(t, resp)
	assert.Equal(t, 2, out.TransactionCount)
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name    string
		ext     *fakeExtractor
		fields  map[string]string
		file    *formFile
		status  int
		message string
	}{
		{
			name:    "missing bank",
			ext:     &fakeExtractor{},
			fields:  map[string]string{"extractedText": axisText},
			status:  fiber.StatusBadRequest,
			message: "Missing form field 'bank'.",
		},
		{
			name:    "missing file",
			ext:     &fakeExtractor{},
			fields:  map[string]string{"bank": "axis"},
			status:  fiber.StatusBadRequest,
			message: "No file uploaded. Use form field 'pdf'.",
		},
		{
			name:    "not a pdf",
			ext:     &fakeExtractor{},
			fields:  map[string]string{"bank": "axis"},
			file:    &formFile{field: "pdf", name: "statement.txt", data: []byte("x")},
			status:  fiber.StatusBadRequest,
			message: "Only PDF files are supported.",
		},
		{
			name:    "extraction failure",
			ext:     &fakeExtractor{err: fmt.Errorf("%w: incorrect password", extractor.ErrExtraction)},
			fields:  map[string]string{"bank": "axis", "password": "wrong"},
			file:    &formFile{field: "pdf", name: "statement.pdf", data: []byte("%PDF-1.4")},
			status:  fiber.StatusBadRequest,
			message: "Failed to read PDF: pdf extraction failed: incorrect password",
		},
		{
			name:    "no transactions",
			ext:     &fakeExtractor{pages: []string{"Axis Bank\nStatement of account"}},
			fields:  map[string]string{"bank": "axis"},
			file:    &formFile{field: "file", name: "statement.pdf", data: []byte("%PDF-1.4")},
			status:  fiber.StatusBadRequest,
			message: "No transactions parsed from PDF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupTestApp(tt.ext)
			resp, err := app.Test(multipartRequest(t, "/convert", tt.fields, tt.file))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			out := decodeResponse(t, resp)
			assert.False(t, out.Success)
			assert.Equal(t, tt.message, out.Error)
		})
	}
}

func TestConvert_ExtractionFailureIsDistinct(t *testing.T) {
	// Extraction failures and empty statements both answer 400 but with
	// different messages.
	extErr := errors.New("boom")
	app := setupTestApp(&fakeExtractor{err: extErr})
	resp, err := app.Test(multipartRequest(t, "/convert", map[string]string{"bank": "kotak"},
		&formFile{field: "pdf", name: "a.pdf", data: []byte("x")}))
	require.NoError(t, err)
	out := decodeResponse(t, resp)
	assert.Contains(t, out.Error, "Failed to read PDF")
	assert.NotContains(t, out.Error, "No transactions")
}

func TestMetricsEndpoint(t *testing.T) {
	app := setupTestApp(&fakeExtractor{})

	req := multipartRequest(t, "/convert", map[string]string{"bank": "axis", "extractedText": axisText}, nil)
	_, err := app.Test(req)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `eod_conversions_total{bank="axis",outcome="ok"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	app := setupTestApp(&fakeExtractor{})

	req := httptest.NewRequest(http.MethodOptions, "/convert", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}
