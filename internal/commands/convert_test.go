package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/eod-ledger-converter/internal/api"
)

const kotakStatement = "Kotak Mahindra Bank\n" +
	"1 01 Sep 2025 NEFT SALARY +1,000.00 5,000.00\n" +
	"\f" +
	"2 03 Sep 2025 UPI RENT -200.00 4,800.00\n"

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeStatement(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConvertCommand_CSV(t *testing.T) {
	input := writeStatement(t, "sept.txt", kotakStatement)

	out, err := runRoot(t, "convert", "--bank=kotak", input)
	require.NoError(t, err)
	assert.Contains(t, out, "2 transaction(s), 3 day(s) 2025-09-01..2025-09-03, closing balance 4800")

	data, err := os.ReadFile(filepath.Join(filepath.Dir(input), "sept.csv"))
	require.NoError(t, err)
	want := "Date,Debit,Credit,Balance,EOD\n" +
		"2025-09-01,0,1000,5000,5000\n" +
		"2025-09-02,0,0,5000,5000\n" +
		"2025-09-03,200,0,4800,4800\n"
	assert.Equal(t, want, string(data))
}

func TestConvertCommand_OutputNoHeader(t *testing.T) {
	input := writeStatement(t, "sept.txt", kotakStatement)
	output := filepath.Join(t.TempDir(), "ledger.csv")

	_, err := runRoot(t, "convert", "--bank=kotak", "--no-header", "-o", output, input)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Date,Debit")
	assert.Contains(t, string(data), "2025-09-02,0,0,5000,5000")
}

func TestConvertCommand_JSON(t *testing.T) {
	input := writeStatement(t, "axis.txt", "02-09-2025 SALARY CR 1,000.00 5,000.00\n04-09-2025 RENT DR 200.00 4,800.00\n")

	out, err := runRoot(t, "convert", "--bank=AXIS", "--json", input)
	require.NoError(t, err)

	var got struct {
		Bank    string `json:"bank"`
		Summary struct {
			Days           int   `json:"days"`
			ClosingBalance int64 `json:"closingBalance"`
		} `json:"summary"`
		Rows []struct {
			Date string `json:"date"`
			EOD  int64  `json:"eod"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, "axis", got.Bank)
	assert.Equal(t, 3, got.Summary.Days)
	assert.Equal(t, int64(4800), got.Summary.ClosingBalance)
	require.Len(t, got.Rows, 3)
	assert.Equal(t, int64(5000), got.Rows[1].EOD)
	assert.Equal(t, "2025-09-02", got.Rows[0].Date)
	assert.Equal(t, "2025-09-03", got.Rows[1].Date)
}

func TestConvertCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := writeStatement(t, "empty.txt", "no transactions here\n")
	other := writeStatement(t, "statement.csv", "a,b\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file", []string{"convert", filepath.Join(dir, "nope.pdf")}, "input file not found"},
		{"wrong extension", []string{"convert", other}, "expected .pdf or .txt file"},
		{"no transactions", []string{"convert", "--bank=axis", empty}, "no transactions found"},
		{"output with many inputs", []string{"convert", "-o", "x.csv", empty, other}, "--output can only be used"},
		{"no args", []string{"convert"}, "requires at least 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runRoot(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRootCommand_Version(t *testing.T) {
	out, err := runRoot(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, api.Version)
}
