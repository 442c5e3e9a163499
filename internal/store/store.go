// Package store defines the persistence contract behind the services.
//
// Implementations must return apperrors.NotFoundError for missing ids and
// must serialise UpdateComplaint calls for the same id.
package store

import (
	"context"
	"time"

	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/aawaaz/complaint-desk/internal/query"
)

// Mutation edits c in place. A non-nil history entry is appended in the same
// write as the edit; an error aborts the write and is returned unchanged.
type Mutation func(c *models.Complaint) (*models.ResolveHistory, error)

// Store persists complaints, their resolve history and feedback.
// Complaints read back from a store carry the satisfaction derived from
// their feedback.
type Store interface {
	CreateComplaint(ctx context.Context, c models.Complaint) error
	GetComplaint(ctx context.Context, id string) (models.Complaint, error)
	ListComplaints(ctx context.Context, q query.ComplaintQuery) ([]models.Complaint, int, error)
	UpdateComplaint(ctx context.Context, id string, mutate Mutation) (models.Complaint, error)
	DeleteComplaints(ctx context.Context, ids []string) (int, error)
	// ComplaintsCreatedBetween returns every complaint created in [from, to];
	// a nil bound is open.
	ComplaintsCreatedBetween(ctx context.Context, from, to *time.Time) ([]models.Complaint, error)

	ListHistory(ctx context.Context, ticketNo string) ([]models.ResolveHistory, error)
	// AllHistory returns every entry ordered by createdAt, then id.
	AllHistory(ctx context.Context) ([]models.ResolveHistory, error)

	CreateFeedback(ctx context.Context, f models.Feedback) error
	ListFeedback(ctx context.Context, q query.FeedbackQuery) ([]models.Feedback, int, error)
	DeleteFeedback(ctx context.Context, ids []string) (int, error)

	Ping(ctx context.Context) error
}
