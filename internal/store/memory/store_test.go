package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aawaaz/complaint-desk/internal/apperrors"
	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/aawaaz/complaint-desk/internal/query"
)

var base = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func complaint(id string, offset time.Duration, status models.Status) models.Complaint {
	at := base.Add(offset)
	return models.Complaint{
		ID:              id,
		Title:           "Title " + id,
		Category:        "noise",
		Area:            models.AreaA,
		ComplainantName: "Li",
		Status:          status,
		CreatedAt:       at,
		UpdatedAt:       at,
	}
}

func TestUpdateComplaintAppliesMutation(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.CreateComplaint(ctx, complaint("a", 0, models.StatusPending))

	updated, err := s.UpdateComplaint(ctx, "a", func(c *models.Complaint) (*models.ResolveHistory, error) {
		c.Status = models.StatusProcessing
		return &models.ResolveHistory{ID: "h1", TicketNo: c.ID, Status: c.Status, CreatedAt: base}, nil
	})
	if err != nil || updated.Status != models.StatusProcessing {
		t.Fatalf("unexpected result %+v (%v)", updated, err)
	}
	hs, _ := s.ListHistory(ctx, "a")
	if len(hs) != 1 || hs[0].ID != "h1" {
		t.Fatalf("expected one history entry, got %+v", hs)
	}
}

func TestUpdateComplaintAbortsOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.CreateComplaint(ctx, complaint("a", 0, models.StatusPending))

	boom := errors.New("boom")
	_, err := s.UpdateComplaint(ctx, "a", func(c *models.Complaint) (*models.ResolveHistory, error) {
		c.Status = models.StatusCompleted
		return &models.ResolveHistory{ID: "h1", TicketNo: c.ID}, boom
	})
	if err != boom {
		t.Fatalf("expected the mutation error, got %v", err)
	}
	got, _ := s.GetComplaint(ctx, "a")
	hs, _ := s.ListHistory(ctx, "a")
	if got.Status != models.StatusPending || len(hs) != 0 {
		t.Fatalf("expected nothing written, got status=%s history=%d", got.Status, len(hs))
	}

	if _, err := s.UpdateComplaint(ctx, "missing", nil); !apperrors.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestSatisfactionFollowsFeedback(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.CreateComplaint(ctx, complaint("a", 0, models.StatusCompleted))
	s.CreateFeedback(ctx, models.Feedback{ID: "f1", TicketNo: "a", Score: 4, CreatedAt: base})
	s.CreateFeedback(ctx, models.Feedback{ID: "f2", TicketNo: "a", Score: 5, CreatedAt: base.Add(time.Hour)})

	got, _ := s.GetComplaint(ctx, "a")
	if got.Satisfaction == nil || *got.Satisfaction != 4.5 {
		t.Fatalf("expected satisfaction 4.5, got %v", got.Satisfaction)
	}

	if n, _ := s.DeleteFeedback(ctx, []string{"f1", "f2", "nope"}); n != 2 {
		t.Fatalf("expected 2 deleted, got %d", n)
	}
	got, _ = s.GetComplaint(ctx, "a")
	if got.Satisfaction != nil {
		t.Fatalf("expected satisfaction cleared, got %v", *got.Satisfaction)
	}
}

func TestHistoryOutlivesComplaint(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.CreateComplaint(ctx, complaint("a", 0, models.StatusPending))
	s.UpdateComplaint(ctx, "a", func(c *models.Complaint) (*models.ResolveHistory, error) {
		return &models.ResolveHistory{ID: "h2", TicketNo: "a", CreatedAt: base.Add(time.Minute)}, nil
	})
	s.UpdateComplaint(ctx, "a", func(c *models.Complaint) (*models.ResolveHistory, error) {
		return &models.ResolveHistory{ID: "h1", TicketNo: "a", CreatedAt: base.Add(time.Minute)}, nil
	})

	if n, _ := s.DeleteComplaints(ctx, []string{"a"}); n != 1 {
		t.Fatalf("expected 1 deleted, got %d", n)
	}
	all, _ := s.AllHistory(ctx)
	if len(all) != 2 || all[0].ID != "h1" || all[1].ID != "h2" {
		t.Fatalf("expected entries ordered by createdAt then id, got %+v", all)
	}
}

func TestListAndRangeQueries(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.CreateComplaint(ctx, complaint("a", 0, models.StatusPending))
	s.CreateComplaint(ctx, complaint("b", 24*time.Hour, models.StatusCompleted))
	s.CreateComplaint(ctx, complaint("c", 48*time.Hour, models.StatusPending))

	q, _ := query.ComplaintQuery{Status: models.StatusPending}.Normalize()
	page, total, _ := s.ListComplaints(ctx, q)
	if total != 2 || len(page) != 2 || page[0].ID != "c" {
		t.Fatalf("expected pending newest first, got total=%d %+v", total, page)
	}

	from, to := base.Add(time.Hour), base.Add(24*time.Hour)
	between, _ := s.ComplaintsCreatedBetween(ctx, &from, &to)
	if len(between) != 1 || between[0].ID != "b" {
		t.Fatalf("expected only b, got %+v", between)
	}
	open, _ := s.ComplaintsCreatedBetween(ctx, nil, nil)
	if len(open) != 3 {
		t.Fatalf("expected all complaints, got %d", len(open))
	}
}
