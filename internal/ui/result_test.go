package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/five82/stockpulse/internal/recommend"
	"github.com/five82/stockpulse/internal/scoring"
	"github.com/five82/stockpulse/internal/state"
)

func sampleResult() *scoring.AnalysisResult {
	return &scoring.AnalysisResult{
		Symbol:            "AAPL",
		CompanyName:       "Apple Inc.",
		Recommendation:    "buy",
		Confidence:        82,
		Summary:           "Services growth offsets hardware softness.",
		SupportingFactors: []string{"Record services revenue"},
		RiskFactors:       []string{"China demand"},
		News:              []scoring.NewsItem{{Title: "Apple beats estimates", Source: "Reuters"}},
		Metrics: scoring.Metrics{
			CurrentPrice: decimal.NewNullDecimal(decimal.RequireFromString("180")),
			TargetPrice:  decimal.NewNullDecimal(decimal.RequireFromString("198")),
			MarketCap:    decimal.NewNullDecimal(decimal.RequireFromString("2850000000000")),
		},
	}
}

func TestRenderAnalysis_Succeeded(t *testing.T) {
	result := sampleResult()
	started := time.Now().Add(-2 * time.Second)
	a := state.SucceededAnalysis("AAPL", started, result, recommend.Classify(result.Confidence, result.Recommendation))

	out := renderAnalysis(a, GetTheme("Dracula").Styles(), 200)
	for _, want := range []string{
		"AAPL",
		"Apple Inc.",
		"Strong",
		"BUY",
		"confidence 82/100",
		"Supporting factors",
		"Record services revenue",
		"Risk factors",
		"$180.00",
		"+10.00%",
		"$2.85T",
		"Apple beats estimates",
		"Reuters",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered result missing %q:\n%s", want, out)
		}
	}
}

func TestRenderAnalysis_FailedShowsAdvice(t *testing.T) {
	info := state.ErrorInfo{Kind: state.ErrRateLimited, Message: "Too many requests"}
	a := state.FailedAnalysis("TSLA", time.Now(), info)

	out := renderAnalysis(a, GetTheme("Slate").Styles(), 200)
	if !strings.Contains(out, "Analysis failed for TSLA") {
		t.Fatalf("missing failure title:\n%s", out)
	}
	if !strings.Contains(out, "Too many requests") {
		t.Fatalf("missing failure message:\n%s", out)
	}
	if !strings.Contains(out, "Wait for the cooldown") {
		t.Fatalf("missing rate-limit advice:\n%s", out)
	}
}

func TestRenderAnalysis_Idle(t *testing.T) {
	out := renderAnalysis(state.IdleAnalysis(), GetTheme("Dracula").Styles(), 80)
	if !strings.Contains(out, "Enter a ticker") {
		t.Fatalf("idle hint missing: %q", out)
	}
}

func TestMetricRows_SkipsMissing(t *testing.T) {
	rows := metricRows(scoring.Metrics{
		PERatio: decimal.NewNullDecimal(decimal.RequireFromString("28.456")),
	})
	if len(rows) != 1 || rows[0][0] != "P/E" || rows[0][1] != "28.46" {
		t.Fatalf("metricRows = %v, want single P/E row", rows)
	}
}
