package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/aawaaz/complaint-desk/internal/apperrors"
	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/aawaaz/complaint-desk/internal/store"
	"go.uber.org/zap"
)

// HistoryService exposes the resolve history of a ticket
type HistoryService struct {
	store      store.Store
	complaints *ComplaintService
	logger     *zap.SugaredLogger
}

// NewHistoryService creates a new history service
func NewHistoryService(st store.Store, complaints *ComplaintService, logger *zap.SugaredLogger) *HistoryService {
	return &HistoryService{store: st, complaints: complaints, logger: logger}
}

// List returns a ticket's entries oldest first. History outlives its ticket,
// so a deleted ticket with entries still lists them.
func (s *HistoryService) List(ctx context.Context, ticketNo string) ([]models.ResolveHistory, error) {
	if strings.TrimSpace(ticketNo) == "" {
		return nil, apperrors.Required("ticketNo")
	}

	entries, err := s.store.ListHistory(ctx, ticketNo)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	if len(entries) > 0 {
		return entries, nil
	}

	if _, err := s.store.GetComplaint(ctx, ticketNo); err != nil {
		return nil, err
	}
	return []models.ResolveHistory{}, nil
}

// Add records a status change through the complaint lifecycle
func (s *HistoryService) Add(ctx context.Context, req models.ResolveRequest, operator string) (models.ResolveHistory, error) {
	return s.complaints.Resolve(ctx, req, operator)
}
