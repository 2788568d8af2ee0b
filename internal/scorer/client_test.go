package scorer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/retainhq/retain-backend/internal/feature"
)

func testVector() *feature.Vector {
	vec := feature.NewVector(2)
	vec.Set("gpa", 3.2)
	vec.Set("attendance_rate", 90.0)
	return vec
}

func newTestClient(url string) *Client {
	return NewClient(url, 5*time.Second, zerolog.Nop())
}

func TestPredictSuccess(t *testing.T) {
	var got struct {
		Data  map[string]any `json:"data"`
		Model string         `json:"model"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"prediction":    "at_risk",
			"confidence":    0.8123,
			"probabilities": map[string]float64{"at_risk": 0.8123, "safe": 0.15, "dropout": 0.0377},
			"model_metadata": map[string]any{
				"model_path": "models/random_forest.joblib",
			},
		})
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL + "/predict").Predict(context.Background(), testVector(), "random_forest.joblib")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	if got.Model != "random_forest.joblib" {
		t.Errorf("posted model = %q", got.Model)
	}
	if got.Data["gpa"] != 3.2 {
		t.Errorf("posted gpa = %v", got.Data["gpa"])
	}
	if result.Prediction != "at_risk" || result.Confidence != 0.8123 {
		t.Errorf("result = %+v", result)
	}
	if result.ModelMetadata["model_path"] != "models/random_forest.joblib" {
		t.Errorf("model_metadata = %v", result.ModelMetadata)
	}
}

func TestPredictServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Predict(context.Background(), testVector(), "")
	if !errors.Is(err, ErrScoringFailed) {
		t.Fatalf("err = %v, want ErrScoringFailed", err)
	}
}

func TestPredictMissingLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"confidence": 0.9})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Predict(context.Background(), testVector(), "")
	if !errors.Is(err, ErrScoringFailed) {
		t.Fatalf("err = %v, want ErrScoringFailed", err)
	}
}

func TestPredictUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestClient(srv.URL).Predict(context.Background(), testVector(), "")
	if !errors.Is(err, ErrScoringFailed) {
		t.Fatalf("err = %v, want ErrScoringFailed", err)
	}
}

func TestListModelsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %s, want /models", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{
				{"name": "random_forest.joblib"},
				{"name": "gradient_boost.joblib"},
			},
		})
	}))
	defer srv.Close()

	models := newTestClient(srv.URL + "/predict").ListModels(context.Background())
	if len(models) != 2 || models[1].Name != "gradient_boost.joblib" {
		t.Errorf("models = %v", models)
	}
}

func TestListModelsFallsBackToDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	models := newTestClient(srv.URL + "/predict").ListModels(context.Background())
	if len(models) != len(DefaultModels()) {
		t.Fatalf("models = %v, want defaults", models)
	}
	if models[0].Name != DefaultModelName {
		t.Errorf("first default = %s", models[0].Name)
	}
}

func TestListModelsEmptyInventoryUsesDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"models": []any{}})
	}))
	defer srv.Close()

	models := newTestClient(srv.URL + "/predict").ListModels(context.Background())
	if len(models) != len(DefaultModels()) {
		t.Errorf("models = %v, want defaults", models)
	}
}

func TestCleanModelName(t *testing.T) {
	cases := map[string]string{
		"random_forest.joblib": "random_forest",
		"random_forest":        "random_forest",
		"":                     "",
	}
	for in, want := range cases {
		if got := CleanModelName(in); got != want {
			t.Errorf("CleanModelName(%q) = %q, want %q", in, got, want)
		}
	}
}
