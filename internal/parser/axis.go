package parser

import (
	"strings"

	"github.com/insightdelivered/eod-ledger-converter/internal/models"
)

// HeuristicParser handles Axis-style statement lines. It has no fixed
// column layout: it looks for the first date in the line and treats the
// last two numerals as the transaction amount and the running balance.
//
// Example line: "02-09-2025 NEFT/ACME PAYROLL 12,000.00 CR 21,500.00"
type HeuristicParser struct{}

// classifyWindow is how many characters either side of the amount are
// searched for DR/CR keywords.
const classifyWindow = 6

func (HeuristicParser) Format() models.BankFormat {
	return models.BankAxis
}

func (HeuristicParser) Parse(line string) (models.Transaction, bool) {
	loc := datePattern.FindStringIndex(line)
	if loc == nil {
		return models.Transaction{}, false
	}
	// "02\tSep  2025" -> "02 Sep 2025"; layouts only match single spaces
	token := strings.Join(strings.Fields(line[loc[0]:loc[1]]), " ")
	date, ok := NormalizeDate(token, AllLayouts)
	if !ok {
		return models.Transaction{}, false
	}

	// Blank the date so its digits are not picked up as numerals; offsets
	// into line stay valid.
	masked := line[:loc[0]] + strings.Repeat(" ", loc[1]-loc[0]) + line[loc[1]:]
	matches := amountPattern.FindAllStringIndex(masked, -1)
	if len(matches) < 2 {
		return models.Transaction{}, false
	}

	amtLoc := matches[len(matches)-2]
	balLoc := matches[len(matches)-1]
	amtText := line[amtLoc[0]:amtLoc[1]]

	amt, err := NormalizeAmount(stripSign(amtText))
	if err != nil {
		return models.Transaction{}, false
	}
	balance, err := NormalizeAmount(line[balLoc[0]:balLoc[1]])
	if err != nil {
		return models.Transaction{}, false
	}

	txn := models.Transaction{Date: date, Balance: balance}
	if isDebit(line, amtLoc[0], amtLoc[1], amtText) {
		txn.Debit = amt
	} else {
		txn.Credit = amt
	}
	return txn, true
}

// isDebit classifies the amount at line[start:end]. Keywords near the
// amount win over its sign; DR is checked before CR. With neither a
// keyword nor a sign the amount is a credit.
func isDebit(line string, start, end int, amtText string) bool {
	before := []rune(line[:start])
	after := []rune(line[end:])
	pre := strings.ToUpper(string(before[max(0, len(before)-classifyWindow):]))
	post := strings.ToUpper(string(after[:min(len(after), classifyWindow)]))

	switch {
	case containsAny(pre, post, "DR", "DEBIT"):
		return true
	case containsAny(pre, post, "CR", "CREDIT"):
		return false
	case strings.HasPrefix(amtText, "-"):
		return true
	default:
		return false
	}
}

func containsAny(pre, post string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(pre, w) || strings.Contains(post, w) {
			return true
		}
	}
	return false
}
