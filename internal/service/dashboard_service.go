package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/retainhq/retain-backend/internal/config"
	"github.com/retainhq/retain-backend/internal/model"
	"github.com/retainhq/retain-backend/internal/repository"
)

const recentPredictionsLimit = 5

// DashboardData is the aggregate snapshot shown on an admin's dashboard.
type DashboardData struct {
	TotalStudents     int                                `json:"total_students"`
	RiskDistribution  map[model.RiskLevel]int            `json:"risk_distribution"`
	RecentPredictions []repository.RecentPrediction      `json:"recent_predictions"`
	MonthlyTrends     map[string]map[model.RiskLevel]int `json:"monthly_trends"`
}

// DashboardService aggregates per-admin statistics with a short Redis cache
// so dashboard polling does not re-run the aggregate queries every time.
type DashboardService struct {
	dashboards *repository.DashboardRepository
	rdb        *redis.Client
	log        zerolog.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(dashboards *repository.DashboardRepository, rdb *redis.Client, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		dashboards: dashboards,
		rdb:        rdb,
		log:        log.With().Str("component", "dashboard_service").Logger(),
	}
}

// GetDashboard returns the admin's dashboard snapshot, serving from cache
// when a recent one exists.
func (s *DashboardService) GetDashboard(ctx context.Context, adminID int) (*DashboardData, error) {
	key := config.CacheKey.DashboardKey(adminID)

	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var cached DashboardData
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		}
	}

	data, err := s.build(ctx, adminID)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(data); err == nil {
			if err := s.rdb.Set(ctx, key, raw, config.DashboardTTL).Err(); err != nil {
				s.log.Warn().Err(err).Int("admin_id", adminID).Msg("failed to cache dashboard")
			}
		}
	}

	return data, nil
}

// Invalidate drops the cached snapshot so the next read reflects new data.
func (s *DashboardService) Invalidate(ctx context.Context, adminID int) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, config.CacheKey.DashboardKey(adminID)).Err(); err != nil {
		s.log.Warn().Err(err).Int("admin_id", adminID).Msg("failed to invalidate dashboard cache")
	}
}

func (s *DashboardService) build(ctx context.Context, adminID int) (*DashboardData, error) {
	total, err := s.dashboards.CountStudents(ctx, adminID)
	if err != nil {
		return nil, err
	}

	distribution, err := s.dashboards.GetRiskDistribution(ctx, adminID)
	if err != nil {
		return nil, err
	}

	recent, err := s.dashboards.GetRecentPredictions(ctx, adminID, recentPredictionsLimit)
	if err != nil {
		return nil, err
	}

	trends, err := s.dashboards.GetMonthlyTrends(ctx, adminID)
	if err != nil {
		return nil, err
	}

	return &DashboardData{
		TotalStudents:     total,
		RiskDistribution:  distribution,
		RecentPredictions: recent,
		MonthlyTrends:     trends,
	}, nil
}
