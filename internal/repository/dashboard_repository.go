package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retainhq/retain-backend/internal/model"
)

// DashboardRepository handles admin dashboard data access. Everything is
// scoped to one college admin's students and predictions.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// CountStudents returns the number of students owned by the admin.
func (r *DashboardRepository) CountStudents(ctx context.Context, adminID int) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM students WHERE college_admin_id = $1`, adminID).Scan(&total)
	return total, err
}

// RecentPrediction pairs a prediction with its student's name for display.
type RecentPrediction struct {
	model.Prediction
	StudentName string `json:"student_name"`
}

// GetRecentPredictions retrieves the admin's N most recent predictions with
// student names attached.
func (r *DashboardRepository) GetRecentPredictions(ctx context.Context, adminID, limit int) ([]RecentPrediction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.student_id, p.college_admin_id, p.prediction_result, p.confidence_score,
			p.feature_importance, p.model_metadata, p.model_version, p.model_provenance, p.input_data,
			p.predicted_at, p.created_at, s.full_name
		 FROM predictions p
		 JOIN students s ON s.id = p.student_id
		 WHERE p.college_admin_id = $1
		 ORDER BY p.created_at DESC
		 LIMIT $2`,
		adminID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recent []RecentPrediction
	for rows.Next() {
		var rp RecentPrediction
		var importanceRaw, metadataRaw, inputRaw []byte
		if err := rows.Scan(&rp.ID, &rp.StudentID, &rp.CollegeAdminID, &rp.Result, &rp.ConfidenceScore,
			&importanceRaw, &metadataRaw, &rp.ModelVersion, &rp.ModelProvenance, &inputRaw,
			&rp.PredictedAt, &rp.CreatedAt, &rp.StudentName); err != nil {
			return nil, err
		}
		if len(importanceRaw) > 0 {
			if err := json.Unmarshal(importanceRaw, &rp.FeatureImportance); err != nil {
				return nil, err
			}
		}
		if len(metadataRaw) > 0 {
			if err := json.Unmarshal(metadataRaw, &rp.ModelMetadata); err != nil {
				return nil, err
			}
		}
		rp.InputData = inputRaw
		recent = append(recent, rp)
	}
	if recent == nil {
		recent = []RecentPrediction{}
	}
	return recent, rows.Err()
}

// GetRiskDistribution counts the admin's predictions per risk label.
func (r *DashboardRepository) GetRiskDistribution(ctx context.Context, adminID int) (map[model.RiskLevel]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT prediction_result, COUNT(*) FROM predictions
		 WHERE college_admin_id = $1
		 GROUP BY prediction_result`,
		adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	distribution := make(map[model.RiskLevel]int)
	for rows.Next() {
		var level model.RiskLevel
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, err
		}
		distribution[level] = count
	}
	return distribution, rows.Err()
}

// GetMonthlyTrends counts predictions per month and risk label over the last
// twelve months, keyed "YYYY-MM".
func (r *DashboardRepository) GetMonthlyTrends(ctx context.Context, adminID int) (map[string]map[model.RiskLevel]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT to_char(created_at, 'YYYY-MM') AS month, prediction_result, COUNT(*)
		 FROM predictions
		 WHERE college_admin_id = $1 AND created_at >= NOW() - INTERVAL '12 months'
		 GROUP BY month, prediction_result
		 ORDER BY month`,
		adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trends := make(map[string]map[model.RiskLevel]int)
	for rows.Next() {
		var month string
		var level model.RiskLevel
		var count int
		if err := rows.Scan(&month, &level, &count); err != nil {
			return nil, err
		}
		if trends[month] == nil {
			trends[month] = make(map[model.RiskLevel]int)
		}
		trends[month][level] = count
	}
	return trends, rows.Err()
}
