package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aawaaz/complaint-desk/internal/apperrors"
	"github.com/aawaaz/complaint-desk/internal/dictionary"
	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/aawaaz/complaint-desk/internal/query"
	"github.com/aawaaz/complaint-desk/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FeedbackService records satisfaction surveys against completed tickets
type FeedbackService struct {
	store  store.Store
	dict   *dictionary.Registry
	logger *zap.SugaredLogger
	now    Clock
}

// NewFeedbackService creates a new feedback service. A nil clock uses time.Now.
func NewFeedbackService(st store.Store, dict *dictionary.Registry, logger *zap.SugaredLogger, now Clock) *FeedbackService {
	if now == nil {
		now = time.Now
	}
	return &FeedbackService{store: st, dict: dict, logger: logger, now: now}
}

// Submit validates and stores one survey. The ticket must exist and be completed.
func (s *FeedbackService) Submit(ctx context.Context, req models.FeedbackSubmission) (models.Feedback, error) {
	if err := models.ValidateStruct(req); err != nil {
		return models.Feedback{}, err
	}

	ratings := []struct{ field, code string }{
		{"processingSpeed", req.ProcessingSpeed},
		{"staffAttitude", req.StaffAttitude},
		{"resolutionEffect", req.ResolutionEffect},
	}
	var sum float64
	for _, r := range ratings {
		score, err := s.dict.Score(dictionary.KindRating, r.field, r.code)
		if err != nil {
			return models.Feedback{}, err
		}
		sum += score
	}

	c, err := s.store.GetComplaint(ctx, req.TicketNo)
	if err != nil {
		return models.Feedback{}, err
	}
	if c.Status != models.StatusCompleted {
		return models.Feedback{}, apperrors.NewValidationError("ticketNo",
			fmt.Sprintf("ticket is %s, feedback requires a completed ticket", c.Status))
	}

	now := s.now().UTC()
	f := models.Feedback{
		ID:               uuid.New().String(),
		SurveyCode:       strings.TrimSpace(req.SurveyCode),
		TicketNo:         req.TicketNo,
		InvestigatorName: strings.TrimSpace(req.InvestigatorName),
		ContactInfo:      req.ContactInfo,
		ProcessingSpeed:  req.ProcessingSpeed,
		StaffAttitude:    req.StaffAttitude,
		ResolutionEffect: req.ResolutionEffect,
		OtherSuggestions: req.OtherSuggestions,
		Score:            sum / float64(len(ratings)),
		CreatedAt:        now,
	}
	if f.SurveyCode == "" {
		f.SurveyCode = SurveyCode(now)
	}

	if err := s.store.CreateFeedback(ctx, f); err != nil {
		return models.Feedback{}, fmt.Errorf("create feedback: %w", err)
	}

	s.logger.Infow("Feedback recorded",
		"ticketNo", f.TicketNo,
		"surveyCode", f.SurveyCode,
		"score", f.Score,
	)
	return f, nil
}

// List returns one page of feedback, newest first
func (s *FeedbackService) List(ctx context.Context, q query.FeedbackQuery) (models.FeedbackPage, error) {
	q, err := q.Normalize()
	if err != nil {
		return models.FeedbackPage{}, err
	}
	fs, total, err := s.store.ListFeedback(ctx, q)
	if err != nil {
		return models.FeedbackPage{}, fmt.Errorf("list feedback: %w", err)
	}
	if fs == nil {
		fs = []models.Feedback{}
	}
	return models.FeedbackPage{List: fs, Total: total}, nil
}

// DeleteBatch removes the listed surveys, skipping unknown ids
func (s *FeedbackService) DeleteBatch(ctx context.Context, ids []string) (models.DeleteResult, error) {
	ids = compactIDs(ids)
	if len(ids) == 0 {
		return models.DeleteResult{}, apperrors.Required("ids")
	}
	n, err := s.store.DeleteFeedback(ctx, ids)
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("delete feedback: %w", err)
	}
	s.logger.Infow("Feedback deleted", "requested", len(ids), "deleted", n)
	return models.DeleteResult{Deleted: n}, nil
}

// SurveyCode builds SV<yyyymmdd><6 hex>
func SurveyCode(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
	return "SV" + t.Format("20060102") + suffix
}
