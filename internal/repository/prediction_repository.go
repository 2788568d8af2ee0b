package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retainhq/retain-backend/internal/model"
)

var ErrNoPrediction = errors.New("no prediction recorded for student")

const predictionColumns = `id, student_id, college_admin_id, prediction_result, confidence_score,
	feature_importance, model_metadata, model_version, model_provenance, input_data,
	predicted_at, created_at`

// PredictionRepository handles the append-only prediction audit log.
// Predictions are created once and never mutated; deletion only happens via
// the student cascade.
type PredictionRepository struct {
	pool *pgxpool.Pool
}

// NewPredictionRepository creates a new PredictionRepository.
func NewPredictionRepository(pool *pgxpool.Pool) *PredictionRepository {
	return &PredictionRepository{pool: pool}
}

func scanPrediction(row interface{ Scan(...any) error }) (*model.Prediction, error) {
	p := &model.Prediction{}
	var importanceRaw, metadataRaw, inputRaw []byte
	err := row.Scan(&p.ID, &p.StudentID, &p.CollegeAdminID, &p.Result, &p.ConfidenceScore,
		&importanceRaw, &metadataRaw, &p.ModelVersion, &p.ModelProvenance, &inputRaw,
		&p.PredictedAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	if len(importanceRaw) > 0 {
		if err := json.Unmarshal(importanceRaw, &p.FeatureImportance); err != nil {
			return nil, fmt.Errorf("decode feature importance: %w", err)
		}
	}
	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &p.ModelMetadata); err != nil {
			return nil, fmt.Errorf("decode model metadata: %w", err)
		}
	}
	p.InputData = inputRaw
	return p, nil
}

// Create appends a prediction record.
func (r *PredictionRepository) Create(ctx context.Context, p *model.Prediction) error {
	var importanceRaw, metadataRaw []byte
	var err error

	if p.FeatureImportance != nil {
		if importanceRaw, err = json.Marshal(p.FeatureImportance); err != nil {
			return fmt.Errorf("encode feature importance: %w", err)
		}
	}
	if p.ModelMetadata != nil {
		if metadataRaw, err = json.Marshal(p.ModelMetadata); err != nil {
			return fmt.Errorf("encode model metadata: %w", err)
		}
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO predictions (student_id, college_admin_id, prediction_result, confidence_score,
			feature_importance, model_metadata, model_version, model_provenance, input_data, predicted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at`,
		p.StudentID, p.CollegeAdminID, p.Result, p.ConfidenceScore,
		importanceRaw, metadataRaw, p.ModelVersion, p.ModelProvenance, []byte(p.InputData), p.PredictedAt,
	).Scan(&p.ID, &p.CreatedAt)
}

// ListByStudent retrieves a student's full prediction history, newest first.
func (r *PredictionRepository) ListByStudent(ctx context.Context, adminID, studentID int) ([]model.Prediction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+predictionColumns+` FROM predictions
		 WHERE student_id = $1 AND college_admin_id = $2
		 ORDER BY created_at DESC`,
		studentID, adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var predictions []model.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, *p)
	}
	if predictions == nil {
		predictions = []model.Prediction{}
	}
	return predictions, rows.Err()
}

// LatestByStudent retrieves a student's most recent prediction, which is
// their current risk assessment.
func (r *PredictionRepository) LatestByStudent(ctx context.Context, studentID int) (*model.Prediction, error) {
	p, err := scanPrediction(r.pool.QueryRow(ctx,
		`SELECT `+predictionColumns+` FROM predictions
		 WHERE student_id = $1
		 ORDER BY created_at DESC LIMIT 1`,
		studentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoPrediction
		}
		return nil, err
	}
	return p, nil
}

// LatestForStudents retrieves the most recent prediction per student, keyed
// by student ID. Students without predictions are simply absent.
func (r *PredictionRepository) LatestForStudents(ctx context.Context, studentIDs []int) (map[int]*model.Prediction, error) {
	if len(studentIDs) == 0 {
		return map[int]*model.Prediction{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT ON (student_id) `+predictionColumns+`
		 FROM predictions
		 WHERE student_id = ANY($1)
		 ORDER BY student_id, created_at DESC`,
		studentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	latest := make(map[int]*model.Prediction, len(studentIDs))
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		latest[p.StudentID] = p
	}
	return latest, rows.Err()
}
