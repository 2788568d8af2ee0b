// Package scorer talks to the external dropout-scoring service and provides
// the deterministic rule-based estimator used when that service misbehaves.
package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/retainhq/retain-backend/internal/feature"
	"github.com/retainhq/retain-backend/internal/model"
)

const (
	// DefaultModelName is the baseline model used when the caller does not
	// pick one explicitly.
	DefaultModelName = "random_forest.joblib"

	// modelFileExtension is the known artifact suffix stripped for clean
	// display names.
	modelFileExtension = ".joblib"
)

// ErrScoringFailed wraps every remote-side failure: transport errors,
// non-2xx statuses, and unparsable bodies. All of them trigger the fallback.
var ErrScoringFailed = errors.New("remote scoring failed")

// Result is the scoring service's successful response.
type Result struct {
	Prediction        string                    `json:"prediction"`
	Confidence        float64                   `json:"confidence"`
	Probabilities     map[string]float64        `json:"probabilities"`
	FeatureImportance []model.FeatureImportance `json:"feature_importance"`
	ModelMetadata     map[string]any            `json:"model_metadata"`
}

// ModelInfo describes one model artifact the scoring service can serve.
type ModelInfo struct {
	Name string `json:"name"`
}

type predictRequest struct {
	Data  *feature.Vector `json:"data"`
	Model string          `json:"model"`
}

type modelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// Client is the HTTP client for the scoring service. The service is treated
// as fallible and slow; every call is bounded by the configured timeout and
// attempted exactly once.
type Client struct {
	endpoint string
	http     *http.Client
	log      zerolog.Logger
}

// NewClient creates a scoring client for the given predict endpoint.
func NewClient(endpoint string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		log:      log.With().Str("component", "scorer_client").Logger(),
	}
}

// Predict posts a feature vector and model selector to the scoring service.
// Any failure mode returns an error wrapping ErrScoringFailed so callers can
// route to the fallback estimator.
func (c *Client) Predict(ctx context.Context, vec *feature.Vector, modelName string) (*Result, error) {
	payload, err := json.Marshal(predictRequest{Data: vec, Model: modelName})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrScoringFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrScoringFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoringFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrScoringFailed, resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrScoringFailed, err)
	}
	if result.Prediction == "" {
		return nil, fmt.Errorf("%w: response missing prediction label", ErrScoringFailed)
	}

	return &result, nil
}

// ListModels fetches the scoring service's model inventory from the sibling
// models endpoint. On any failure a fixed default list is substituted so
// model-name validation keeps working while the service is down.
func (c *Client) ListModels(ctx context.Context) []ModelInfo {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.modelsEndpoint(), nil)
	if err != nil {
		return DefaultModels()
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("models listing unavailable, using defaults")
		return DefaultModels()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Msg("models listing unavailable, using defaults")
		return DefaultModels()
	}

	var parsed modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil || len(parsed.Models) == 0 {
		return DefaultModels()
	}

	return parsed.Models
}

// modelsEndpoint derives the models URL from the predict URL.
func (c *Client) modelsEndpoint() string {
	return strings.Replace(c.endpoint, "/predict", "/models", 1)
}

// DefaultModels is the fixed two-entry inventory assumed when the scoring
// service cannot be asked.
func DefaultModels() []ModelInfo {
	return []ModelInfo{
		{Name: "random_forest.joblib"},
		{Name: "logistic_regression.joblib"},
	}
}

// CleanModelName strips the model artifact extension for display purposes.
func CleanModelName(name string) string {
	return strings.TrimSuffix(name, modelFileExtension)
}
