// Package services contains business logic layers.
// Services are called by handlers and talk to the store.
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

// SystemOperator is recorded on history entries when no caller identity is known
const SystemOperator = "system"

// Clock returns the current time. Tests inject a fixed one.
type Clock func() time.Time

// ComplaintService handles complaint business logic
type ComplaintService struct {
	store  store.Store
	dict   *dictionary.Registry
	logger *zap.SugaredLogger
	now    Clock
}

// NewComplaintService creates a new complaint service. A nil clock uses time.Now.
func NewComplaintService(st store.Store, dict *dictionary.Registry, logger *zap.SugaredLogger, now Clock) *ComplaintService {
	if now == nil {
		now = time.Now
	}
	return &ComplaintService{store: st, dict: dict, logger: logger, now: now}
}

// Create files a new pending complaint
func (s *ComplaintService) Create(ctx context.Context, req models.CreateComplaintRequest) (models.Complaint, error) {
	if err := s.validateCreate(req); err != nil {
		return models.Complaint{}, err
	}

	now := s.now().UTC()
	c := models.Complaint{
		ID:              uuid.New().String(),
		Title:           strings.TrimSpace(req.Title),
		Content:         req.Content,
		Category:        req.Category,
		Source:          req.Source,
		Level:           req.Level,
		Area:            req.Area,
		ComplainantName: strings.TrimSpace(req.ComplainantName),
		Contact:         req.Contact,
		Assignee:        req.Assignee,
		Status:          models.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateComplaint(ctx, c); err != nil {
		return models.Complaint{}, fmt.Errorf("create complaint: %w", err)
	}

	s.logger.Infow("Complaint created",
		"id", c.ID,
		"category", c.Category,
		"area", c.Area,
	)
	return c, nil
}

// Get returns one complaint
func (s *ComplaintService) Get(ctx context.Context, id string) (models.Complaint, error) {
	if strings.TrimSpace(id) == "" {
		return models.Complaint{}, apperrors.Required("id")
	}
	return s.store.GetComplaint(ctx, id)
}

// List returns one page of complaints matching q
func (s *ComplaintService) List(ctx context.Context, q query.ComplaintQuery) (models.ComplaintPage, error) {
	q, err := q.Normalize()
	if err != nil {
		return models.ComplaintPage{}, err
	}
	cs, total, err := s.store.ListComplaints(ctx, q)
	if err != nil {
		return models.ComplaintPage{}, fmt.Errorf("list complaints: %w", err)
	}

	page := models.ComplaintPage{List: make([]models.ComplaintListItem, 0, len(cs)), Total: total}
	for _, c := range cs {
		page.List = append(page.List, c.ListItem())
	}
	return page, nil
}

// Update applies a partial edit. A forward status change appends exactly one
// history entry in the same store write; a backward one fails and nothing
// is persisted.
func (s *ComplaintService) Update(ctx context.Context, id string, req models.UpdateComplaintRequest, operator string) (models.Complaint, error) {
	if strings.TrimSpace(id) == "" {
		return models.Complaint{}, apperrors.Required("id")
	}
	if err := s.validateUpdate(req); err != nil {
		return models.Complaint{}, err
	}

	now := s.now().UTC()
	updated, err := s.store.UpdateComplaint(ctx, id, func(c *models.Complaint) (*models.ResolveHistory, error) {
		applyEdit(c, req)
		touch(c, now)

		if req.Status == nil {
			return nil, nil
		}
		from, to := c.Status, *req.Status
		if !models.CanTransition(from, to) {
			return nil, apperrors.NewInvalidTransitionError(string(from), string(to))
		}
		if to == from {
			return nil, nil
		}
		c.Status = to
		return newHistory(c, operator, describe(from, to, req.ProcessingNotes)), nil
	})
	if err != nil {
		return models.Complaint{}, err
	}

	s.logger.Infow("Complaint updated",
		"id", id,
		"status", updated.Status,
		"operator", operatorOrSystem(operator),
	)
	return updated, nil
}

// Resolve records a strictly forward status change and returns the history
// entry it appended. Re-stating the current status is an invalid transition.
func (s *ComplaintService) Resolve(ctx context.Context, req models.ResolveRequest, operator string) (models.ResolveHistory, error) {
	if err := models.ValidateStruct(req); err != nil {
		return models.ResolveHistory{}, err
	}
	if !req.Status.Valid() {
		return models.ResolveHistory{}, apperrors.NewValidationError("status", fmt.Sprintf("unknown status %q", req.Status))
	}

	now := s.now().UTC()
	var entry *models.ResolveHistory
	_, err := s.store.UpdateComplaint(ctx, req.TicketNo, func(c *models.Complaint) (*models.ResolveHistory, error) {
		from, to := c.Status, req.Status
		if to.Rank() <= from.Rank() {
			return nil, apperrors.NewInvalidTransitionError(string(from), string(to))
		}
		if req.Description != "" {
			c.ProcessingNotes = req.Description
		}
		touch(c, now)
		c.Status = to
		entry = newHistory(c, operator, describe(from, to, &req.Description))
		return entry, nil
	})
	if err != nil {
		return models.ResolveHistory{}, err
	}

	s.logger.Infow("Complaint resolved",
		"ticketNo", req.TicketNo,
		"status", entry.Status,
		"operator", entry.Operator,
	)
	return *entry, nil
}

// Delete removes one complaint. Its history and feedback are kept.
func (s *ComplaintService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.Required("id")
	}
	n, err := s.store.DeleteComplaints(ctx, []string{id})
	if err != nil {
		return fmt.Errorf("delete complaint: %w", err)
	}
	if n == 0 {
		return apperrors.NewNotFoundError("complaint", id)
	}
	s.logger.Infow("Complaint deleted", "id", id)
	return nil
}

// DeleteBatch removes every listed complaint that exists and reports how many
// were removed. Unknown ids are skipped.
func (s *ComplaintService) DeleteBatch(ctx context.Context, ids []string) (models.DeleteResult, error) {
	ids = compactIDs(ids)
	if len(ids) == 0 {
		return models.DeleteResult{}, apperrors.Required("ids")
	}
	n, err := s.store.DeleteComplaints(ctx, ids)
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("delete complaints: %w", err)
	}
	s.logger.Infow("Complaints deleted", "requested", len(ids), "deleted", n)
	return models.DeleteResult{Deleted: n}, nil
}

func (s *ComplaintService) validateCreate(req models.CreateComplaintRequest) error {
	if err := models.ValidateStruct(req); err != nil {
		return err
	}
	if err := s.dict.Validate(dictionary.KindCategory, "category", req.Category); err != nil {
		return err
	}
	if err := s.dict.Validate(dictionary.KindSource, "source", req.Source); err != nil {
		return err
	}
	if err := s.dict.Validate(dictionary.KindLevel, "level", req.Level); err != nil {
		return err
	}
	return validateArea(req.Area)
}

func (s *ComplaintService) validateUpdate(req models.UpdateComplaintRequest) error {
	nonEmpty := []struct {
		field string
		value *string
	}{
		{"title", req.Title},
		{"complainantName", req.ComplainantName},
		{"content", req.Content},
	}
	for _, r := range nonEmpty {
		if r.value != nil && strings.TrimSpace(*r.value) == "" {
			return apperrors.Required(r.field)
		}
	}
	coded := []struct {
		kind  dictionary.Kind
		field string
		value *string
	}{
		{dictionary.KindCategory, "category", req.Category},
		{dictionary.KindSource, "source", req.Source},
		{dictionary.KindLevel, "level", req.Level},
	}
	for _, r := range coded {
		if r.value == nil {
			continue
		}
		if err := s.dict.Validate(r.kind, r.field, *r.value); err != nil {
			return err
		}
	}
	if req.Area != nil {
		if err := validateArea(*req.Area); err != nil {
			return err
		}
	}
	if req.Status != nil && !req.Status.Valid() {
		return apperrors.NewValidationError("status", fmt.Sprintf("unknown status %q", *req.Status))
	}
	return nil
}

func validateArea(a models.Area) error {
	if a == "" {
		return apperrors.Required("area")
	}
	if !a.Valid() {
		return apperrors.NewValidationError("area", fmt.Sprintf("unknown area %q", a))
	}
	return nil
}

// applyEdit copies the provided fields of req onto c, leaving status alone
func applyEdit(c *models.Complaint, req models.UpdateComplaintRequest) {
	setString(&c.Title, req.Title)
	setString(&c.Content, req.Content)
	setString(&c.Category, req.Category)
	setString(&c.Source, req.Source)
	setString(&c.Level, req.Level)
	setString(&c.ComplainantName, req.ComplainantName)
	setString(&c.Contact, req.Contact)
	setString(&c.Assignee, req.Assignee)
	setString(&c.ProcessingNotes, req.ProcessingNotes)
	if req.Area != nil {
		c.Area = *req.Area
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// touch moves updatedAt forward, never back
func touch(c *models.Complaint, now time.Time) {
	if now.After(c.UpdatedAt) {
		c.UpdatedAt = now
	}
}

func newHistory(c *models.Complaint, operator, description string) *models.ResolveHistory {
	return &models.ResolveHistory{
		ID:          uuid.New().String(),
		TicketNo:    c.ID,
		Status:      c.Status,
		Operator:    operatorOrSystem(operator),
		Description: description,
		CreatedAt:   c.UpdatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func describe(from, to models.Status, notes *string) string {
	if notes != nil && strings.TrimSpace(*notes) != "" {
		return *notes
	}
	return fmt.Sprintf("status changed from %s to %s", from, to)
}

func operatorOrSystem(operator string) string {
	if strings.TrimSpace(operator) == "" {
		return SystemOperator
	}
	return operator
}

// compactIDs trims ids and drops blanks and duplicates, keeping order
func compactIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
