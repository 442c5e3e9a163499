package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/aawaaz/complaint-desk/internal/stats"
	"github.com/aawaaz/complaint-desk/internal/store"
	"go.uber.org/zap"
)

// StatisticsService serves the dashboard aggregations
type StatisticsService struct {
	store  store.Store
	urgent map[string]bool
	logger *zap.SugaredLogger
	now    Clock
}

// NewStatisticsService creates a new statistics service. Complaints whose
// level is in urgentLevels count as urgent. A nil clock uses time.Now.
func NewStatisticsService(st store.Store, urgentLevels []string, logger *zap.SugaredLogger, now Clock) *StatisticsService {
	if now == nil {
		now = time.Now
	}
	urgent := make(map[string]bool, len(urgentLevels))
	for _, l := range urgentLevels {
		if l = strings.TrimSpace(l); l != "" {
			urgent[l] = true
		}
	}
	return &StatisticsService{store: st, urgent: urgent, logger: logger, now: now}
}

// Overview returns the summary for tr
func (s *StatisticsService) Overview(ctx context.Context, tr models.TimeRange) (models.OverviewStatistics, error) {
	cs, _, err := s.population(ctx, tr)
	if err != nil {
		return models.OverviewStatistics{}, err
	}
	return stats.Overview(cs, s.urgent), nil
}

// Types returns the category distribution for tr, with trends against the
// preceding period of the same length
func (s *StatisticsService) Types(ctx context.Context, tr models.TimeRange) ([]models.ComplaintTypeDistribution, error) {
	cs, scope, err := s.population(ctx, tr)
	if err != nil {
		return nil, err
	}

	prev, ok := scope.Previous()
	var before []models.Complaint
	if ok {
		before, err = s.store.ComplaintsCreatedBetween(ctx, prev.From, prev.To)
		if err != nil {
			return nil, fmt.Errorf("load previous period: %w", err)
		}
	}
	return stats.Types(cs, before, ok), nil
}

// MonthlyTrends returns the per-month completion trend for tr
func (s *StatisticsService) MonthlyTrends(ctx context.Context, tr models.TimeRange) ([]models.MonthlyTrend, error) {
	cs, scope, err := s.population(ctx, tr)
	if err != nil {
		return nil, err
	}
	return stats.MonthlyTrends(cs, scope, s.now().UTC()), nil
}

// Areas returns the zone distribution for tr
func (s *StatisticsService) Areas(ctx context.Context, tr models.TimeRange) ([]models.AreaDistribution, error) {
	cs, _, err := s.population(ctx, tr)
	if err != nil {
		return nil, err
	}
	return stats.Areas(cs), nil
}

func (s *StatisticsService) population(ctx context.Context, tr models.TimeRange) ([]models.Complaint, stats.Scope, error) {
	scope, err := stats.ResolveScope(tr, s.now().UTC())
	if err != nil {
		return nil, stats.Scope{}, err
	}
	cs, err := s.store.ComplaintsCreatedBetween(ctx, scope.From, scope.To)
	if err != nil {
		s.logger.Errorw("Failed to load complaints for statistics", "timeRange", tr, "error", err)
		return nil, stats.Scope{}, fmt.Errorf("load complaints: %w", err)
	}
	return cs, scope, nil
}
