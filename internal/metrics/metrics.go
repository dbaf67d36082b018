// Package metrics holds the prometheus collectors for conversions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values for Conversions.
const (
	OutcomeOK               = "ok"
	OutcomeExtractionFailed = "extraction_failed"
	OutcomeNoTransactions   = "no_transactions"
)

// Recorder is the set of collectors the converter updates. A nil *Recorder
// records nothing.
type Recorder struct {
	Conversions *prometheus.CounterVec
	Lines       *prometheus.CounterVec
	LedgerDays  prometheus.Histogram
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		Conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eod_conversions_total",
			Help: "Statement conversions by bank format and outcome.",
		}, []string{"bank", "outcome"}),
		Lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eod_lines_total",
			Help: "Statement lines seen by bank format and parse result.",
		}, []string{"bank", "result"}),
		LedgerDays: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "eod_ledger_days",
			Help:    "Number of calendar days in produced ledgers.",
			Buckets: []float64{1, 7, 31, 92, 183, 366, 731},
		}),
	}
	if reg != nil {
		reg.MustRegister(r.Conversions, r.Lines, r.LedgerDays)
	}
	return r
}

// Conversion counts one finished conversion.
func (r *Recorder) Conversion(bank, outcome string) {
	if r == nil {
		return
	}
	r.Conversions.WithLabelValues(bank, outcome).Inc()
}

// LinesSeen adds parsed and skipped line counts for one conversion.
func (r *Recorder) LinesSeen(bank string, parsed, skipped int) {
	if r == nil {
		return
	}
	r.Lines.WithLabelValues(bank, "parsed").Add(float64(parsed))
	r.Lines.WithLabelValues(bank, "skipped").Add(float64(skipped))
}

// Ledger observes the length of a produced ledger.
func (r *Recorder) Ledger(days int) {
	if r == nil {
		return
	}
	r.LedgerDays.Observe(float64(days))
}
