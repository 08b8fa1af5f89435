package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const serviceTimestampLayout = "2006-01-02 15:04:05"

// HealthResponse mirrors the payload returned by /health.
type HealthResponse struct {
	Status           string `json:"status"`
	APIKeyConfigured *bool  `json:"api_key_configured,omitempty"`
}

// Healthy reports whether the service declared itself healthy.
func (h HealthResponse) Healthy() bool {
	return strings.EqualFold(strings.TrimSpace(h.Status), "healthy")
}

// RateLimitResponse mirrors /rate-limit.
type RateLimitResponse struct {
	IsLimited        bool   `json:"is_limited"`
	Message          string `json:"message,omitempty"`
	SecondsRemaining *int   `json:"seconds_remaining,omitempty"`
}

// AnalyzeRequest is the body posted to /analyze.
type AnalyzeRequest struct {
	StockName string `json:"stock_name"`
}

// ErrorBody mirrors the {detail} payload returned on non-2xx responses. Code is
// optional and only sent by services that expose structured error codes.
type ErrorBody struct {
	Detail json.RawMessage `json:"detail"`
	Code   string          `json:"code,omitempty"`
}

// DetailText flattens the detail field. FastAPI-style services send either a
// plain string or a list of validation objects.
func (b ErrorBody) DetailText() string {
	raw := bytes.TrimSpace(b.Detail)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if m := strings.TrimSpace(item.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return string(raw)
}

// AnalysisResult is the structured analysis payload returned by /analyze.
// Fields the client does not model are kept in Extra.
type AnalysisResult struct {
	Symbol            string     `json:"stock_symbol"`
	CompanyName       string     `json:"company_name"`
	Recommendation    string     `json:"recommendation"`
	Confidence        int        `json:"confidence"`
	Summary           string     `json:"summary"`
	SupportingFactors []string   `json:"supporting_factors"`
	RiskFactors       []string   `json:"risk_factors"`
	News              []NewsItem `json:"news"`
	Metrics           Metrics    `json:"metrics"`
	AnalyzedAt        string     `json:"analyzed_at"`

	Extra map[string]json.RawMessage `json:"-"`
}

// NewsItem is a single headline backing the analysis.
type NewsItem struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
	Sentiment   string `json:"sentiment"`
}

// ParsedPublishedAt returns the parsed PublishedAt timestamp.
func (n NewsItem) ParsedPublishedAt() time.Time {
	return parseTime(n.PublishedAt)
}

// Metrics carries the optional market figures attached to an analysis.
type Metrics struct {
	CurrentPrice  decimal.NullDecimal `json:"current_price"`
	TargetPrice   decimal.NullDecimal `json:"target_price"`
	ChangePercent decimal.NullDecimal `json:"change_percent"`
	PERatio       decimal.NullDecimal `json:"pe_ratio"`
	MarketCap     decimal.NullDecimal `json:"market_cap"`
	Volume        decimal.NullDecimal `json:"volume"`
}

// Upside returns the percentage distance from the current to the target price.
func (m Metrics) Upside() (decimal.Decimal, bool) {
	if !m.CurrentPrice.Valid || !m.TargetPrice.Valid || m.CurrentPrice.Decimal.IsZero() {
		return decimal.Zero, false
	}
	diff := m.TargetPrice.Decimal.Sub(m.CurrentPrice.Decimal)
	return diff.Div(m.CurrentPrice.Decimal).Mul(decimal.NewFromInt(100)).Round(2), true
}

var knownResultFields = map[string]struct{}{
	"stock_symbol":       {},
	"company_name":       {},
	"recommendation":     {},
	"confidence":         {},
	"confidence_score":   {},
	"summary":            {},
	"supporting_factors": {},
	"risk_factors":       {},
	"news":               {},
	"metrics":            {},
	"analyzed_at":        {},
}

// UnmarshalJSON accepts integer or fractional confidence values (rounded and
// clamped to 0..100), the legacy confidence_score key, and keeps unknown fields.
func (r *AnalysisResult) UnmarshalJSON(data []byte) error {
	type plain AnalysisResult
	var aux struct {
		plain
		Confidence      *float64 `json:"confidence"`
		ConfidenceScore *float64 `json:"confidence_score"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = AnalysisResult(aux.plain)

	switch {
	case aux.Confidence != nil:
		r.Confidence = clampConfidence(*aux.Confidence)
	case aux.ConfidenceScore != nil:
		r.Confidence = clampConfidence(*aux.ConfidenceScore)
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return fmt.Errorf("analysis payload is not an object: %w", err)
	}
	for key, value := range all {
		if _, ok := knownResultFields[key]; ok {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]json.RawMessage)
		}
		r.Extra[key] = value
	}
	return nil
}

// ParsedAnalyzedAt returns the parsed AnalyzedAt timestamp.
func (r AnalysisResult) ParsedAnalyzedAt() time.Time {
	return parseTime(r.AnalyzedAt)
}

func clampConfidence(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	rounded := int(math.Round(v))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(serviceTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
