package scorer

import (
	"math"

	"github.com/retainhq/retain-backend/internal/feature"
	"github.com/retainhq/retain-backend/internal/model"
)

// FallbackSentinel is the bare model identity recorded when a fallback
// prediction was made without any model having been attempted.
const FallbackSentinel = "fallback"

// fallbackSuffix marks a fallback made after a named model was attempted.
const fallbackSuffix = "_fallback"

// FallbackPrediction is the output of the rule-based estimator.
type FallbackPrediction struct {
	Result       model.RiskLevel
	Confidence   float64
	ModelVersion string
	Metadata     map[string]any
}

// EstimateFallback computes a deterministic rule-based risk estimate from an
// already-normalized feature vector. It re-derives nothing from the student
// record and holds no hidden state: the same vector always yields the same
// classification and confidence.
//
// Additive rule table:
//
//	attendance_rate < 70        +3
//	gpa < 2.0                   +3
//	previous_failures > 2       +2
//	mental_health_score < 4     +2
//	internet_access false/absent +1
//	study_hours_per_week < 10   +1
func EstimateFallback(vec *feature.Vector, attemptedModel string) *FallbackPrediction {
	score := 0

	if attendance, ok := vec.Float("attendance_rate"); ok && attendance < 70 {
		score += 3
	}
	if gpa, ok := vec.Float("gpa"); ok && gpa < 2.0 {
		score += 3
	}
	if failures, ok := vec.Float("previous_failures"); ok && failures > 2 {
		score += 2
	}
	if mental, ok := vec.Float("mental_health_score"); ok && mental < 4 {
		score += 2
	}
	if internet, ok := vec.Bool("internet_access"); !ok || !internet {
		score++
	}
	if hours, ok := vec.Float("study_hours_per_week"); ok && hours < 10 {
		score++
	}

	result := model.RiskSafe
	switch {
	case score >= 6:
		result = model.RiskDropout
	case score >= 3:
		result = model.RiskAtRisk
	}

	// Monotonically increasing with score, bounded below genuine model
	// confidence at the top and kept visibly uncertain at the bottom.
	confidence := 0.55 + 0.05*float64(score)
	confidence = math.Min(0.95, math.Max(0.5, confidence))
	confidence = math.Round(confidence*10000) / 10000

	metadata := map[string]any{"fallback": true}
	if attemptedModel != "" {
		metadata["attempted_model"] = attemptedModel
	} else {
		metadata["attempted_model"] = nil
	}

	return &FallbackPrediction{
		Result:       result,
		Confidence:   confidence,
		ModelVersion: FallbackVersion(attemptedModel),
		Metadata:     metadata,
	}
}

// FallbackVersion derives the recorded model identity for a fallback
// prediction: the attempted model's name with a fallback marker, or the bare
// sentinel when no model was attempted.
func FallbackVersion(attemptedModel string) string {
	if attemptedModel == "" {
		return FallbackSentinel
	}
	return attemptedModel + fallbackSuffix
}
