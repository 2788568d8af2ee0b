package model

import (
	"encoding/json"
	"time"
)

// RiskLevel is the closed set of classification labels a prediction can carry.
type RiskLevel string

const (
	RiskDropout RiskLevel = "dropout"
	RiskAtRisk  RiskLevel = "at_risk"
	RiskSafe    RiskLevel = "safe"
)

// ModelProvenance records which path produced a prediction. It replaces the
// old habit of encoding provenance into the model_version display string with
// sentinel substrings.
type ModelProvenance string

const (
	ProvenanceRemote   ModelProvenance = "remote"
	ProvenanceFallback ModelProvenance = "fallback"
	ProvenanceSeeded   ModelProvenance = "seeded"
)

// FeatureImportance is one entry of the scorer's per-feature weight list.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Prediction is the immutable audit record of one scoring attempt.
// InputData holds the exact normalized feature vector that was scored,
// preserving schema order.
type Prediction struct {
	ID                int                 `json:"id"`
	StudentID         int                 `json:"student_id"`
	CollegeAdminID    int                 `json:"college_admin_id"`
	Result            RiskLevel           `json:"prediction_result"`
	ConfidenceScore   float64             `json:"confidence_score"`
	FeatureImportance []FeatureImportance `json:"feature_importance,omitempty"`
	ModelMetadata     map[string]any      `json:"model_metadata,omitempty"`
	ModelVersion      string              `json:"model_version"`
	ModelProvenance   ModelProvenance     `json:"model_provenance"`
	InputData         json.RawMessage     `json:"input_data"`
	PredictedAt       time.Time           `json:"predicted_at"`
	CreatedAt         time.Time           `json:"created_at"`
}

// RiskColor maps a risk label to its display color.
func (p *Prediction) RiskColor() string {
	switch p.Result {
	case RiskDropout:
		return "red"
	case RiskAtRisk:
		return "orange"
	case RiskSafe:
		return "green"
	default:
		return "gray"
	}
}

// ConfidencePercentage returns the confidence score as a 0-100 percentage.
func (p *Prediction) ConfidencePercentage() float64 {
	return p.ConfidenceScore * 100
}
