// Package classify decides whether a block of OCR text came from a wine
// label or a purchase receipt. It scores the text against two indicator
// vocabularies plus a fixed bonus table and never fails: the worst case is
// an unknown result with zero confidence.
package classify

import (
	"log/slog"
	"math"
	"strings"

	"github.com/cellarscan/cellarscan/constants"
)

// Result is the outcome of a single classification call.
type Result struct {
	Type       constants.DocumentType `json:"type"`
	Confidence float64                `json:"confidence"`
	Indicators []string               `json:"indicators"`
}

// Classifier scores text under an injected policy table. It holds no
// mutable state and is safe for concurrent use.
type Classifier struct {
	policy Policy
	logger *slog.Logger
}

func New(policy Policy, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{policy: policy, logger: logger}
}

// Classify scores text as label vs. receipt. Empty or whitespace-only
// input short-circuits to unknown with zero confidence.
func (c *Classifier) Classify(text string) Result {
	norm := strings.ToLower(strings.TrimSpace(text))
	if norm == "" {
		return Result{Type: constants.DocTypeUnknown, Confidence: 0, Indicators: []string{}}
	}

	labelMatches := matchedTokens(norm, labelIndicators)
	receiptMatches := matchedTokens(norm, receiptIndicators)

	labelScore := c.labelScore(norm, len(labelMatches))
	receiptScore := c.receiptScore(norm, len(receiptMatches))
	gap := math.Abs(labelScore - receiptScore)

	var res Result
	switch {
	case labelScore > receiptScore && labelScore > c.policy.DecisionThreshold:
		res = Result{
			Type:       constants.DocTypeLabel,
			Confidence: math.Min(labelScore+c.policy.GapBoost*gap, c.policy.MaxConfidence),
			Indicators: nonNil(labelMatches),
		}
	case receiptScore > labelScore && receiptScore > c.policy.DecisionThreshold:
		res = Result{
			Type:       constants.DocTypeReceipt,
			Confidence: math.Min(receiptScore+c.policy.GapBoost*gap, c.policy.MaxConfidence),
			Indicators: nonNil(receiptMatches),
		}
	default:
		res = Result{
			Type:       constants.DocTypeUnknown,
			Confidence: math.Max(labelScore, receiptScore),
			Indicators: union(labelMatches, receiptMatches),
		}
	}

	c.logger.Debug("classify.result",
		"type", string(res.Type),
		"confidence", res.Confidence,
		"label_score", labelScore,
		"receipt_score", receiptScore,
		"indicators", len(res.Indicators),
		"policy", c.policy.Version,
	)
	return res
}

func (c *Classifier) labelScore(norm string, matched int) float64 {
	score := c.policy.BaseWeight * float64(matched)
	if anyMatch(norm, estateTokens) {
		score += c.policy.EstateBonus
	}
	if anyMatch(norm, appellationTokens) {
		score += c.policy.AppellationBonus
	}
	if anyMatch(norm, regulatoryTokens) {
		score += c.policy.RegulatoryBonus
	}
	if reYear.MatchString(norm) {
		score += c.policy.YearBonus
	}
	if reAlcohol.MatchString(norm) {
		score += c.policy.AlcoholBonus
	}
	if reVolume.MatchString(norm) {
		score += c.policy.VolumeBonus
	}
	return clamp01(score)
}

func (c *Classifier) receiptScore(norm string, matched int) float64 {
	score := c.policy.BaseWeight * float64(matched)
	if anyMatch(norm, totalTokens) {
		score += c.policy.TotalBonus
	}
	if anyMatch(norm, subtotalTokens) {
		score += c.policy.SubtotalBonus
	}
	if anyMatch(norm, paymentTokens) {
		score += c.policy.PaymentBonus
	}
	if anyMatch(norm, currencySymbols) {
		score += c.policy.CurrencyBonus
	}
	if reDate.MatchString(norm) {
		score += c.policy.DateBonus
	}
	if reTime.MatchString(norm) {
		score += c.policy.TimeBonus
	}
	if rePrice.MatchString(norm) {
		score += c.policy.PriceBonus
	}
	if anyMatch(norm, storeTokens) {
		score += c.policy.StoreBonus
	}
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
