// Package memory is an in-process Store used in development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aawaaz/complaint-desk/internal/apperrors"
	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/aawaaz/complaint-desk/internal/query"
	"github.com/aawaaz/complaint-desk/internal/store"
)

// Store keeps everything in maps guarded by one RWMutex
type Store struct {
	mu         sync.RWMutex
	complaints map[string]models.Complaint
	history    []models.ResolveHistory
	feedback   map[string]models.Feedback
}

var _ store.Store = (*Store)(nil)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		complaints: make(map[string]models.Complaint),
		feedback:   make(map[string]models.Feedback),
	}
}

func (s *Store) CreateComplaint(ctx context.Context, c models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complaints[c.ID] = c
	return nil
}

func (s *Store) GetComplaint(ctx context.Context, id string) (models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.complaints[id]
	if !ok {
		return models.Complaint{}, apperrors.NewNotFoundError("complaint", id)
	}
	return s.withSatisfaction(c, s.scores()), nil
}

func (s *Store) ListComplaints(ctx context.Context, q query.ComplaintQuery) ([]models.Complaint, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	page, total := q.Apply(s.snapshot())
	return page, total, nil
}

func (s *Store) UpdateComplaint(ctx context.Context, id string, mutate store.Mutation) (models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.complaints[id]
	if !ok {
		return models.Complaint{}, apperrors.NewNotFoundError("complaint", id)
	}
	c = s.withSatisfaction(c, s.scores())

	entry, err := mutate(&c)
	if err != nil {
		return models.Complaint{}, err
	}
	s.complaints[id] = c
	if entry != nil {
		s.history = append(s.history, *entry)
	}
	return c, nil
}

func (s *Store) DeleteComplaints(ctx context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for _, id := range ids {
		if _, ok := s.complaints[id]; ok {
			delete(s.complaints, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) ComplaintsCreatedBetween(ctx context.Context, from, to *time.Time) ([]models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Complaint, 0, len(s.complaints))
	for _, c := range s.snapshot() {
		if from != nil && c.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && c.CreatedAt.After(*to) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) ListHistory(ctx context.Context, ticketNo string) ([]models.ResolveHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ResolveHistory, 0)
	for _, h := range s.history {
		if h.TicketNo == ticketNo {
			out = append(out, h)
		}
	}
	sortHistory(out)
	return out, nil
}

func (s *Store) AllHistory(ctx context.Context) ([]models.ResolveHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ResolveHistory, len(s.history))
	copy(out, s.history)
	sortHistory(out)
	return out, nil
}

func (s *Store) CreateFeedback(ctx context.Context, f models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback[f.ID] = f
	return nil
}

func (s *Store) ListFeedback(ctx context.Context, q query.FeedbackQuery) ([]models.Feedback, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]models.Feedback, 0, len(s.feedback))
	for _, f := range s.feedback {
		all = append(all, f)
	}
	page, total := q.Apply(all)
	return page, total, nil
}

func (s *Store) DeleteFeedback(ctx context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for _, id := range ids {
		if _, ok := s.feedback[id]; ok {
			delete(s.feedback, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// snapshot copies all complaints with satisfaction filled in (must hold a lock)
func (s *Store) snapshot() []models.Complaint {
	scores := s.scores()
	out := make([]models.Complaint, 0, len(s.complaints))
	for _, c := range s.complaints {
		out = append(out, s.withSatisfaction(c, scores))
	}
	return out
}

// scores groups feedback scores by ticket (must hold a lock)
func (s *Store) scores() map[string][]float64 {
	byTicket := make(map[string][]float64)
	for _, f := range s.feedback {
		byTicket[f.TicketNo] = append(byTicket[f.TicketNo], f.Score)
	}
	return byTicket
}

func (s *Store) withSatisfaction(c models.Complaint, scores map[string][]float64) models.Complaint {
	c.Satisfaction = nil
	if vals := scores[c.ID]; len(vals) > 0 {
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		mean := sum / float64(len(vals))
		c.Satisfaction = &mean
	}
	return c
}

func sortHistory(hs []models.ResolveHistory) {
	sort.SliceStable(hs, func(i, j int) bool {
		if !hs[i].CreatedAt.Equal(hs[j].CreatedAt) {
			return hs[i].CreatedAt.Before(hs[j].CreatedAt)
		}
		return hs[i].ID < hs[j].ID
	})
}
