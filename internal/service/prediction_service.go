package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/retainhq/retain-backend/internal/config"
	"github.com/retainhq/retain-backend/internal/feature"
	"github.com/retainhq/retain-backend/internal/metrics"
	"github.com/retainhq/retain-backend/internal/model"
	"github.com/retainhq/retain-backend/internal/scorer"
)

// RiskScorer is the remote scoring surface the prediction flow depends on.
type RiskScorer interface {
	Predict(ctx context.Context, vec *feature.Vector, modelName string) (*scorer.Result, error)
	ListModels(ctx context.Context) []scorer.ModelInfo
}

// PredictionStore is the persistence surface the prediction flow depends on.
type PredictionStore interface {
	Create(ctx context.Context, p *model.Prediction) error
	LatestByStudent(ctx context.Context, studentID int) (*model.Prediction, error)
	ListByStudent(ctx context.Context, adminID, studentID int) ([]model.Prediction, error)
}

// PredictionEvent is the payload published on the live prediction feed.
type PredictionEvent struct {
	ID              int             `json:"id"`
	StudentID       int             `json:"student_id"`
	Result          model.RiskLevel `json:"prediction_result"`
	ConfidenceScore float64         `json:"confidence_score"`
	ModelVersion    string          `json:"model_version"`
	PredictedAt     time.Time       `json:"predicted_at"`
}

// PredictionService runs the synchronous scoring flow: transform the student
// into a feature vector, attempt the remote model once, fall back to the
// rule-based estimator on any failure, and persist exactly one prediction
// per run.
type PredictionService struct {
	transformer  *feature.Transformer
	scorer       RiskScorer
	store        PredictionStore
	rdb          *redis.Client
	defaultModel string
	log          zerolog.Logger
}

// NewPredictionService creates a new PredictionService. rdb may be nil, in
// which case model-list caching and the live feed are disabled.
func NewPredictionService(
	transformer *feature.Transformer,
	riskScorer RiskScorer,
	store PredictionStore,
	rdb *redis.Client,
	defaultModel string,
	log zerolog.Logger,
) *PredictionService {
	if defaultModel == "" {
		defaultModel = scorer.DefaultModelName
	}
	return &PredictionService{
		transformer:  transformer,
		scorer:       riskScorer,
		store:        store,
		rdb:          rdb,
		defaultModel: defaultModel,
		log:          log.With().Str("component", "prediction_service").Logger(),
	}
}

// Predict scores a student and records the outcome. It never returns an
// error for scoring failures; those are absorbed by the fallback estimator.
// Only persistence failures propagate.
func (s *PredictionService) Predict(ctx context.Context, student *model.Student, requestedModel string) (*model.Prediction, error) {
	vec := s.transformer.Transform(student)
	modelName := s.resolveModel(ctx, student.ID, requestedModel)

	inputData, err := json.Marshal(vec)
	if err != nil {
		return nil, fmt.Errorf("encode feature vector: %w", err)
	}

	start := time.Now()
	result, scoreErr := s.scorer.Predict(ctx, vec, modelName)
	metrics.ObserveScorerLatency(time.Since(start))

	now := time.Now().UTC()
	prediction := &model.Prediction{
		StudentID:      student.ID,
		CollegeAdminID: student.CollegeAdminID,
		InputData:      inputData,
		PredictedAt:    now,
	}

	outcome := metrics.OutcomeRemote
	if scoreErr == nil {
		if risk, ok := riskFromLabel(result.Prediction); ok {
			prediction.Result = risk
			prediction.ConfidenceScore = roundConfidence(result.Confidence)
			prediction.FeatureImportance = result.FeatureImportance
			prediction.ModelMetadata = mergeMetadata(result)
			prediction.ModelVersion = modelVersion(result, modelName)
			prediction.ModelProvenance = model.ProvenanceRemote
		} else {
			scoreErr = fmt.Errorf("%w: unknown label %q", scorer.ErrScoringFailed, result.Prediction)
		}
	}

	if scoreErr != nil {
		metrics.ObserveScorerError()
		s.log.Warn().
			Err(scoreErr).
			Int("student_id", student.ID).
			Str("model", modelName).
			Msg("remote scoring failed, using rule-based fallback")

		fb := scorer.EstimateFallback(vec, modelName)
		prediction.Result = fb.Result
		prediction.ConfidenceScore = roundConfidence(fb.Confidence)
		prediction.ModelMetadata = fb.Metadata
		prediction.ModelVersion = fb.ModelVersion
		prediction.ModelProvenance = model.ProvenanceFallback
		outcome = metrics.OutcomeFallback
	}

	if err := s.store.Create(ctx, prediction); err != nil {
		return nil, fmt.Errorf("persist prediction: %w", err)
	}

	metrics.ObservePrediction(outcome, string(prediction.Result))
	s.publish(ctx, prediction)

	return prediction, nil
}

// History returns all recorded predictions for a student, newest first.
func (s *PredictionService) History(ctx context.Context, adminID, studentID int) ([]model.Prediction, error) {
	return s.store.ListByStudent(ctx, adminID, studentID)
}

// Latest returns the most recent prediction for a student, if any.
func (s *PredictionService) Latest(ctx context.Context, studentID int) (*model.Prediction, error) {
	return s.store.LatestByStudent(ctx, studentID)
}

// ListModels returns the scoring service's model inventory, cached briefly
// in Redis so repeated calls do not hammer the service.
func (s *PredictionService) ListModels(ctx context.Context) []scorer.ModelInfo {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, config.CacheKey.ModelsListKey()).Bytes(); err == nil {
			var cached []scorer.ModelInfo
			if json.Unmarshal(raw, &cached) == nil && len(cached) > 0 {
				return cached
			}
		}
	}

	models := s.scorer.ListModels(ctx)

	if s.rdb != nil {
		if raw, err := json.Marshal(models); err == nil {
			if err := s.rdb.Set(ctx, config.CacheKey.ModelsListKey(), raw, config.ModelsListTTL).Err(); err != nil {
				s.log.Warn().Err(err).Msg("failed to cache model inventory")
			}
		}
	}

	return models
}

// resolveModel picks the model to attempt: an explicit request wins, then
// the model behind the student's most recent remote prediction if it is
// still served, then the configured default.
func (s *PredictionService) resolveModel(ctx context.Context, studentID int, requested string) string {
	if requested != "" {
		return requested
	}

	prior, err := s.store.LatestByStudent(ctx, studentID)
	if err != nil || prior == nil {
		return s.defaultModel
	}

	var candidate string
	switch prior.ModelProvenance {
	case model.ProvenanceRemote:
		candidate = prior.ModelVersion
	case model.ProvenanceFallback:
		// A fallback run still records which model it tried to reach.
		if attempted, ok := prior.ModelMetadata["attempted_model"].(string); ok {
			candidate = attempted
		}
	}
	if candidate == "" {
		return s.defaultModel
	}

	// Stored versions are display names without the artifact extension, so
	// match against the inventory's cleaned names and return the servable one.
	want := scorer.CleanModelName(candidate)
	for _, m := range s.ListModels(ctx) {
		if scorer.CleanModelName(m.Name) == want {
			return m.Name
		}
	}
	return s.defaultModel
}

// publish emits the prediction on the owning admin's live feed channel.
// Feed delivery is best effort and never fails the prediction.
func (s *PredictionService) publish(ctx context.Context, p *model.Prediction) {
	if s.rdb == nil {
		return
	}

	event := PredictionEvent{
		ID:              p.ID,
		StudentID:       p.StudentID,
		Result:          p.Result,
		ConfidenceScore: p.ConfidenceScore,
		ModelVersion:    p.ModelVersion,
		PredictedAt:     p.PredictedAt,
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.PredictionChannel(p.CollegeAdminID), raw).Err(); err != nil {
		s.log.Warn().Err(err).Int("admin_id", p.CollegeAdminID).Msg("failed to publish prediction event")
	}
}

func riskFromLabel(label string) (model.RiskLevel, bool) {
	switch model.RiskLevel(label) {
	case model.RiskDropout, model.RiskAtRisk, model.RiskSafe:
		return model.RiskLevel(label), true
	}
	return "", false
}

// mergeMetadata folds class probabilities into the model metadata so the
// stored record carries the full scorer response.
func mergeMetadata(result *scorer.Result) map[string]any {
	meta := make(map[string]any, len(result.ModelMetadata)+1)
	for k, v := range result.ModelMetadata {
		meta[k] = v
	}
	if len(result.Probabilities) > 0 {
		meta["probabilities"] = result.Probabilities
	}
	return meta
}

// modelVersion derives the display identity of the model that answered:
// the artifact path reported by the service, else the requested name, else
// a generic version tag.
func modelVersion(result *scorer.Result, requested string) string {
	if p, ok := result.ModelMetadata["model_path"].(string); ok && p != "" {
		return scorer.CleanModelName(path.Base(p))
	}
	if requested != "" {
		return scorer.CleanModelName(requested)
	}
	return "1.0"
}

func roundConfidence(v float64) float64 {
	return math.Round(v*10000) / 10000
}
