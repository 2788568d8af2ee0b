package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/retainhq/retain-backend/internal/feature"
	"github.com/retainhq/retain-backend/internal/model"
	"github.com/retainhq/retain-backend/internal/scorer"
)

// ─── Fakes ──────────────────────────────────────────────────────────

type fakeScorer struct {
	result    *scorer.Result
	err       error
	models    []scorer.ModelInfo
	lastModel string
	calls     int
}

func (f *fakeScorer) Predict(ctx context.Context, vec *feature.Vector, modelName string) (*scorer.Result, error) {
	f.calls++
	f.lastModel = modelName
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeScorer) ListModels(ctx context.Context) []scorer.ModelInfo {
	if f.models != nil {
		return f.models
	}
	return scorer.DefaultModels()
}

type fakeStore struct {
	created   []*model.Prediction
	latest    *model.Prediction
	createErr error
}

func (f *fakeStore) Create(ctx context.Context, p *model.Prediction) error {
	if f.createErr != nil {
		return f.createErr
	}
	p.ID = len(f.created) + 1
	f.created = append(f.created, p)
	return nil
}

func (f *fakeStore) LatestByStudent(ctx context.Context, studentID int) (*model.Prediction, error) {
	if f.latest == nil {
		return nil, errors.New("no prediction")
	}
	return f.latest, nil
}

func (f *fakeStore) ListByStudent(ctx context.Context, adminID, studentID int) ([]model.Prediction, error) {
	out := make([]model.Prediction, 0, len(f.created))
	for i := len(f.created) - 1; i >= 0; i-- {
		out = append(out, *f.created[i])
	}
	return out, nil
}

func testTransformer(t *testing.T) *feature.Transformer {
	t.Helper()
	schema, err := feature.NewSchema("test", []feature.Definition{
		{Name: "gpa", Default: 2.5},
		{Name: "attendance_rate", Default: 75},
		{Name: "previous_failures", Default: 0},
		{Name: "mental_health_score", Default: 5},
		{Name: "internet_access", Default: true},
		{Name: "study_hours_per_week", Default: 15},
	})
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return feature.NewTransformer(schema)
}

func newTestPredictionService(t *testing.T, sc *fakeScorer, store *fakeStore) *PredictionService {
	t.Helper()
	return NewPredictionService(testTransformer(t), sc, store, nil, "", zerolog.Nop())
}

func testStudent() *model.Student {
	return &model.Student{ID: 7, CollegeAdminID: 3, FullName: "Test Student", AttendanceRate: 90}
}

// ─── Tests ──────────────────────────────────────────────────────────

func TestPredictRemoteSuccess(t *testing.T) {
	sc := &fakeScorer{result: &scorer.Result{
		Prediction:    "at_risk",
		Confidence:    0.81234567,
		Probabilities: map[string]float64{"at_risk": 0.81, "safe": 0.15, "dropout": 0.04},
		FeatureImportance: []model.FeatureImportance{
			{Feature: "gpa", Importance: 0.4},
		},
		ModelMetadata: map[string]any{"model_path": "models/random_forest.joblib"},
	}}
	store := &fakeStore{}
	svc := newTestPredictionService(t, sc, store)

	p, err := svc.Predict(context.Background(), testStudent(), "random_forest.joblib")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	if p.Result != model.RiskAtRisk {
		t.Errorf("result = %s", p.Result)
	}
	if p.ConfidenceScore != 0.8123 {
		t.Errorf("confidence = %v, want rounded 0.8123", p.ConfidenceScore)
	}
	if p.ModelProvenance != model.ProvenanceRemote {
		t.Errorf("provenance = %s", p.ModelProvenance)
	}
	if p.ModelVersion != "random_forest" {
		t.Errorf("model version = %s, want basename without extension", p.ModelVersion)
	}
	if _, ok := p.ModelMetadata["probabilities"]; !ok {
		t.Error("probabilities not folded into metadata")
	}
	if len(p.FeatureImportance) != 1 {
		t.Errorf("feature importance = %v", p.FeatureImportance)
	}
	if len(store.created) != 1 {
		t.Fatalf("stored %d predictions, want 1", len(store.created))
	}

	var input map[string]any
	if err := json.Unmarshal(p.InputData, &input); err != nil {
		t.Fatalf("input data not valid JSON: %v", err)
	}
	if input["attendance_rate"] != 90.0 {
		t.Errorf("input attendance_rate = %v", input["attendance_rate"])
	}
}

func TestPredictFallsBackOnScorerError(t *testing.T) {
	sc := &fakeScorer{err: fmt.Errorf("%w: connection refused", scorer.ErrScoringFailed)}
	store := &fakeStore{}
	svc := newTestPredictionService(t, sc, store)

	p, err := svc.Predict(context.Background(), testStudent(), "random_forest.joblib")
	if err != nil {
		t.Fatalf("Predict should absorb scoring failures, got %v", err)
	}

	if p.ModelProvenance != model.ProvenanceFallback {
		t.Errorf("provenance = %s, want fallback", p.ModelProvenance)
	}
	if p.ModelVersion != "random_forest.joblib_fallback" {
		t.Errorf("model version = %s", p.ModelVersion)
	}
	if p.ModelMetadata["attempted_model"] != "random_forest.joblib" {
		t.Errorf("attempted_model = %v", p.ModelMetadata["attempted_model"])
	}
	if len(store.created) != 1 {
		t.Fatalf("stored %d predictions, want 1", len(store.created))
	}
}

func TestPredictFallsBackOnUnknownLabel(t *testing.T) {
	sc := &fakeScorer{result: &scorer.Result{Prediction: "catastrophic", Confidence: 0.99}}
	store := &fakeStore{}
	svc := newTestPredictionService(t, sc, store)

	p, err := svc.Predict(context.Background(), testStudent(), "")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	if p.ModelProvenance != model.ProvenanceFallback {
		t.Errorf("provenance = %s, want fallback for unrecognized label", p.ModelProvenance)
	}
	switch p.Result {
	case model.RiskDropout, model.RiskAtRisk, model.RiskSafe:
	default:
		t.Errorf("result = %s, not a known risk level", p.Result)
	}
}

func TestPredictPersistFailurePropagates(t *testing.T) {
	sc := &fakeScorer{result: &scorer.Result{Prediction: "safe", Confidence: 0.9}}
	store := &fakeStore{createErr: errors.New("connection reset")}
	svc := newTestPredictionService(t, sc, store)

	if _, err := svc.Predict(context.Background(), testStudent(), ""); err == nil {
		t.Fatal("expected persistence error to propagate")
	}
}

func TestPredictDefaultsModelWhenUnspecified(t *testing.T) {
	sc := &fakeScorer{result: &scorer.Result{Prediction: "safe", Confidence: 0.9}}
	store := &fakeStore{}
	svc := newTestPredictionService(t, sc, store)

	if _, err := svc.Predict(context.Background(), testStudent(), ""); err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if sc.lastModel != scorer.DefaultModelName {
		t.Errorf("attempted model = %s, want default", sc.lastModel)
	}
}

func TestPredictStickyModelFromPriorRemote(t *testing.T) {
	sc := &fakeScorer{result: &scorer.Result{Prediction: "safe", Confidence: 0.9}}
	store := &fakeStore{latest: &model.Prediction{
		ModelProvenance: model.ProvenanceRemote,
		ModelVersion:    "logistic_regression",
	}}
	svc := newTestPredictionService(t, sc, store)

	if _, err := svc.Predict(context.Background(), testStudent(), ""); err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if sc.lastModel != "logistic_regression.joblib" {
		t.Errorf("attempted model = %s, want servable name from inventory", sc.lastModel)
	}
}

func TestPredictStickyModelFromPriorFallback(t *testing.T) {
	sc := &fakeScorer{result: &scorer.Result{Prediction: "safe", Confidence: 0.9}}
	store := &fakeStore{latest: &model.Prediction{
		ModelProvenance: model.ProvenanceFallback,
		ModelVersion:    "logistic_regression.joblib_fallback",
		ModelMetadata:   map[string]any{"fallback": true, "attempted_model": "logistic_regression.joblib"},
	}}
	svc := newTestPredictionService(t, sc, store)

	if _, err := svc.Predict(context.Background(), testStudent(), ""); err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if sc.lastModel != "logistic_regression.joblib" {
		t.Errorf("attempted model = %s", sc.lastModel)
	}
}

func TestPredictStickyModelNoLongerServed(t *testing.T) {
	sc := &fakeScorer{
		result: &scorer.Result{Prediction: "safe", Confidence: 0.9},
		models: []scorer.ModelInfo{{Name: "random_forest.joblib"}},
	}
	store := &fakeStore{latest: &model.Prediction{
		ModelProvenance: model.ProvenanceRemote,
		ModelVersion:    "retired_model",
	}}
	svc := newTestPredictionService(t, sc, store)

	if _, err := svc.Predict(context.Background(), testStudent(), ""); err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if sc.lastModel != scorer.DefaultModelName {
		t.Errorf("attempted model = %s, want default for retired model", sc.lastModel)
	}
}

func TestPredictExplicitModelWins(t *testing.T) {
	sc := &fakeScorer{result: &scorer.Result{Prediction: "safe", Confidence: 0.9}}
	store := &fakeStore{latest: &model.Prediction{
		ModelProvenance: model.ProvenanceRemote,
		ModelVersion:    "logistic_regression",
	}}
	svc := newTestPredictionService(t, sc, store)

	if _, err := svc.Predict(context.Background(), testStudent(), "gradient_boost.joblib"); err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if sc.lastModel != "gradient_boost.joblib" {
		t.Errorf("attempted model = %s, want explicit request honored", sc.lastModel)
	}
}

func TestPredictModelVersionWithoutMetadataPath(t *testing.T) {
	sc := &fakeScorer{result: &scorer.Result{Prediction: "safe", Confidence: 0.9}}
	store := &fakeStore{}
	svc := newTestPredictionService(t, sc, store)

	p, err := svc.Predict(context.Background(), testStudent(), "random_forest.joblib")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if p.ModelVersion != "random_forest" {
		t.Errorf("model version = %s, want cleaned requested name", p.ModelVersion)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	sc := &fakeScorer{result: &scorer.Result{Prediction: "safe", Confidence: 0.9}}
	store := &fakeStore{}
	svc := newTestPredictionService(t, sc, store)

	student := testStudent()
	for i := 0; i < 3; i++ {
		if _, err := svc.Predict(context.Background(), student, "random_forest.joblib"); err != nil {
			t.Fatalf("Predict %d: %v", i, err)
		}
	}

	history, err := svc.History(context.Background(), student.CollegeAdminID, student.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history length = %d", len(history))
	}
	if history[0].ID != 3 || history[2].ID != 1 {
		t.Errorf("history not newest first: %d, %d, %d", history[0].ID, history[1].ID, history[2].ID)
	}
}
