// Package recommend turns a confidence score and a recommendation label into
// a strength tier, a polarity and user-facing guidance.
package recommend

import "strings"

// Tier is a discrete confidence bucket.
type Tier string

const (
	TierStrong         Tier = "STRONG"
	TierModerateStrong Tier = "MODERATE_STRONG"
	TierModerate       Tier = "MODERATE"
	TierWeak           Tier = "WEAK"
	TierStrongCaution  Tier = "STRONG_CAUTION"
)

// Label returns a short display name for the tier.
func (t Tier) Label() string {
	switch t {
	case TierStrong:
		return "Strong"
	case TierModerateStrong:
		return "Moderately strong"
	case TierModerate:
		return "Moderate"
	case TierWeak:
		return "Weak"
	case TierStrongCaution:
		return "Strong caution"
	default:
		return string(t)
	}
}

// Polarity is the positive/negative classification of a recommendation label.
type Polarity int

const (
	Negative Polarity = iota
	Positive
)

func (p Polarity) String() string {
	if p == Positive {
		return "positive"
	}
	return "negative"
}

// Recommendation labels sent by the scoring service.
const (
	Buy  = "BUY"
	Sell = "SELL"
	Hold = "HOLD"
)

// Verdict is the classifier output shown next to the raw analysis.
type Verdict struct {
	Tier     Tier
	Polarity Polarity
	Guidance []string
}

// Tier lower bounds, inclusive.
const (
	strongFloor         = 75
	moderateStrongFloor = 60
	moderateFloor       = 45
	weakFloor           = 30
)

// Classify maps confidence (clamped to 0..100) and a recommendation label to a
// Verdict. Polarity comes from the label alone and wording intensity from the
// score alone, so a low-confidence BUY is positive but cautiously worded.
func Classify(confidence int, recommendation string) Verdict {
	label := normalizeLabel(recommendation)
	tier := TierFor(confidence)
	return Verdict{
		Tier:     tier,
		Polarity: PolarityFor(label),
		Guidance: guidance(tier, label),
	}
}

// TierFor returns the tier for a confidence score.
func TierFor(confidence int) Tier {
	c := clamp(confidence)
	switch {
	case c >= strongFloor:
		return TierStrong
	case c >= moderateStrongFloor:
		return TierModerateStrong
	case c >= moderateFloor:
		return TierModerate
	case c >= weakFloor:
		return TierWeak
	default:
		return TierStrongCaution
	}
}

// PolarityFor reports Positive for BUY and HOLD, Negative for anything else.
func PolarityFor(recommendation string) Polarity {
	switch normalizeLabel(recommendation) {
	case Buy, Hold:
		return Positive
	default:
		return Negative
	}
}

func guidance(tier Tier, label string) []string {
	switch tier {
	case TierStrong:
		if label == Buy {
			return []string{
				"Signals support opening or adding to a position.",
				"Consider scaling in over several sessions rather than all at once.",
				"Set a stop level before entering.",
			}
		}
		return []string{
			"The analysis carries high conviction for a " + displayLabel(label) + " stance.",
			"Act on the recommendation in line with your own risk limits.",
			"Review the risk factors before changing your position.",
		}
	case TierModerateStrong:
		return []string{
			"Holding an existing position is reasonable.",
			"Add only on pullbacks and keep position size moderate.",
			"Recheck after the next earnings report.",
		}
	case TierModerate:
		return []string{
			"Hold and monitor; the signals are mixed.",
			"Avoid adding until the picture clears.",
			"Watch the listed risk factors closely.",
		}
	case TierWeak:
		return []string{
			"Consider trimming part of the position.",
			"Tighten stop levels on what remains.",
			"Avoid new entries for now.",
		}
	default:
		return []string{
			"Consider exiting the position.",
			"Do not open new positions on this analysis.",
			"Wait for a materially stronger signal before re-entering.",
		}
	}
}

func normalizeLabel(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}

func displayLabel(label string) string {
	if label == "" {
		return "neutral"
	}
	return label
}

func clamp(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
