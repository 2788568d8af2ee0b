package scorer

import (
	"reflect"
	"testing"

	"github.com/retainhq/retain-backend/internal/feature"
	"github.com/retainhq/retain-backend/internal/model"
)

func vectorFrom(t *testing.T, entries map[string]any) *feature.Vector {
	t.Helper()
	vec := feature.NewVector(len(entries))
	for _, name := range []string{
		"attendance_rate", "gpa", "previous_failures",
		"mental_health_score", "internet_access", "study_hours_per_week",
	} {
		if v, ok := entries[name]; ok {
			vec.Set(name, v)
		}
	}
	return vec
}

func healthyVector(t *testing.T) *feature.Vector {
	return vectorFrom(t, map[string]any{
		"attendance_rate":      92.0,
		"gpa":                  3.4,
		"previous_failures":    0.0,
		"mental_health_score":  8.0,
		"internet_access":      true,
		"study_hours_per_week": 20.0,
	})
}

func TestEstimateFallbackSafe(t *testing.T) {
	p := EstimateFallback(healthyVector(t), "")

	if p.Result != model.RiskSafe {
		t.Errorf("result = %s, want safe", p.Result)
	}
	if p.Confidence != 0.55 {
		t.Errorf("confidence = %v, want 0.55 for score 0", p.Confidence)
	}
	if p.ModelVersion != FallbackSentinel {
		t.Errorf("model version = %s, want %s", p.ModelVersion, FallbackSentinel)
	}
}

func TestEstimateFallbackAtRisk(t *testing.T) {
	// Only the attendance rule fires: score 3, just over the at_risk line.
	vec := healthyVector(t)
	vec.Set("attendance_rate", 60.0)

	p := EstimateFallback(vec, "")

	if p.Result != model.RiskAtRisk {
		t.Errorf("result = %s, want at_risk", p.Result)
	}
	if p.Confidence != 0.70 {
		t.Errorf("confidence = %v, want 0.70 for score 3", p.Confidence)
	}
}

func TestEstimateFallbackDropout(t *testing.T) {
	// Attendance, GPA, and failures together reach the dropout threshold.
	vec := healthyVector(t)
	vec.Set("attendance_rate", 55.0)
	vec.Set("gpa", 1.4)
	vec.Set("previous_failures", 3.0)

	p := EstimateFallback(vec, "")

	if p.Result != model.RiskDropout {
		t.Errorf("result = %s, want dropout", p.Result)
	}
	if p.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95 for score 8", p.Confidence)
	}
}

func TestEstimateFallbackConfidenceClamped(t *testing.T) {
	// Every rule fires: raw 0.55 + 0.05*12 would exceed the 0.95 cap.
	vec := vectorFrom(t, map[string]any{
		"attendance_rate":      10.0,
		"gpa":                  0.5,
		"previous_failures":    5.0,
		"mental_health_score":  1.0,
		"internet_access":      false,
		"study_hours_per_week": 2.0,
	})

	p := EstimateFallback(vec, "")

	if p.Result != model.RiskDropout {
		t.Errorf("result = %s, want dropout", p.Result)
	}
	if p.Confidence != 0.95 {
		t.Errorf("confidence = %v, want clamp at 0.95", p.Confidence)
	}
}

func TestEstimateFallbackMissingInternetCounts(t *testing.T) {
	// An absent internet_access entry is treated the same as false.
	vec := healthyVector(t)
	vec.Set("attendance_rate", 60.0) // +3

	missing := vectorFrom(t, map[string]any{
		"attendance_rate":      60.0,
		"gpa":                  3.4,
		"previous_failures":    0.0,
		"mental_health_score":  8.0,
		"study_hours_per_week": 20.0,
	})

	withFalse := EstimateFallback(missing, "")
	if withFalse.Confidence != 0.75 {
		t.Errorf("confidence = %v, want 0.75 for score 4", withFalse.Confidence)
	}

	present := EstimateFallback(vec, "")
	if present.Confidence != 0.70 {
		t.Errorf("confidence = %v, want 0.70 when internet access is known", present.Confidence)
	}
}

func TestEstimateFallbackDeterministic(t *testing.T) {
	vec := healthyVector(t)
	vec.Set("gpa", 1.9)

	first := EstimateFallback(vec, "random_forest.joblib")
	second := EstimateFallback(vec, "random_forest.joblib")

	if first.Result != second.Result || first.Confidence != second.Confidence {
		t.Errorf("estimates differ: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(first.Metadata, second.Metadata) {
		t.Errorf("metadata differs: %v vs %v", first.Metadata, second.Metadata)
	}
}

func TestEstimateFallbackMetadata(t *testing.T) {
	withModel := EstimateFallback(healthyVector(t), "random_forest.joblib")
	if withModel.Metadata["fallback"] != true {
		t.Error("metadata missing fallback marker")
	}
	if withModel.Metadata["attempted_model"] != "random_forest.joblib" {
		t.Errorf("attempted_model = %v", withModel.Metadata["attempted_model"])
	}
	if withModel.ModelVersion != "random_forest.joblib_fallback" {
		t.Errorf("model version = %s", withModel.ModelVersion)
	}

	bare := EstimateFallback(healthyVector(t), "")
	if bare.Metadata["attempted_model"] != nil {
		t.Errorf("attempted_model = %v, want nil", bare.Metadata["attempted_model"])
	}
}

func TestFallbackVersion(t *testing.T) {
	if got := FallbackVersion(""); got != "fallback" {
		t.Errorf("FallbackVersion(\"\") = %s", got)
	}
	if got := FallbackVersion("logistic_regression.joblib"); got != "logistic_regression.joblib_fallback" {
		t.Errorf("FallbackVersion = %s", got)
	}
}
