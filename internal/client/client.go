// Package client is the typed data-access layer over the complaint desk API.
//
// Every call validates its input locally before dispatch, so malformed
// requests fail with a ValidationError without touching the network. Server
// errors come back as the same apperrors kinds the server raised.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aawaaz/complaint-desk/internal/apperrors"
	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/aawaaz/complaint-desk/internal/query"
)

// Client groups the API families behind one transport
type Client struct {
	Complaints *ComplaintsAPI
	History    *HistoryAPI
	Feedback   *FeedbackAPI
	Statistics *StatisticsAPI
}

// New creates a client over t
func New(t Transport) *Client {
	return &Client{
		Complaints: &ComplaintsAPI{t: t},
		History:    &HistoryAPI{t: t},
		Feedback:   &FeedbackAPI{t: t},
		Statistics: &StatisticsAPI{t: t},
	}
}

// ComplaintsAPI covers the complaint lifecycle
type ComplaintsAPI struct{ t Transport }

// List returns one page of complaints
func (a *ComplaintsAPI) List(ctx context.Context, q query.ComplaintQuery) (models.ComplaintPage, error) {
	q, err := q.Normalize()
	if err != nil {
		return models.ComplaintPage{}, err
	}
	var page models.ComplaintPage
	if err := a.t.Do(ctx, http.MethodGet, "/system/complaint/list", q.Values(), &page); err != nil {
		return models.ComplaintPage{}, err
	}
	return page, nil
}

// Create files a new complaint
func (a *ComplaintsAPI) Create(ctx context.Context, req models.CreateComplaintRequest) (models.Complaint, error) {
	if err := checkCreate(req); err != nil {
		return models.Complaint{}, err
	}
	var c models.Complaint
	if err := a.t.Do(ctx, http.MethodPost, "/system/complaint/add", req, &c); err != nil {
		return models.Complaint{}, err
	}
	return c, nil
}

// Get returns one complaint
func (a *ComplaintsAPI) Get(ctx context.Context, id string) (models.Complaint, error) {
	if err := requireID("id", id); err != nil {
		return models.Complaint{}, err
	}
	var c models.Complaint
	if err := a.t.Do(ctx, http.MethodGet, "/system/complaint/get", url.Values{"id": {id}}, &c); err != nil {
		return models.Complaint{}, err
	}
	return c, nil
}

// Update applies a partial edit to complaint id
func (a *ComplaintsAPI) Update(ctx context.Context, id string, req models.UpdateComplaintRequest) (models.Complaint, error) {
	if err := requireID("id", id); err != nil {
		return models.Complaint{}, err
	}
	if req.Status != nil && !req.Status.Valid() {
		return models.Complaint{}, apperrors.NewValidationError("status", fmt.Sprintf("unknown status %q", *req.Status))
	}
	if req.Area != nil && !req.Area.Valid() {
		return models.Complaint{}, apperrors.NewValidationError("area", fmt.Sprintf("unknown area %q", *req.Area))
	}
	req.ID = id

	var c models.Complaint
	if err := a.t.Do(ctx, http.MethodPut, "/system/complaint/edit", req, &c); err != nil {
		return models.Complaint{}, err
	}
	return c, nil
}

// Delete removes one complaint; a missing id is a NotFoundError
func (a *ComplaintsAPI) Delete(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	return a.t.Do(ctx, http.MethodDelete, "/complaints/"+url.PathEscape(id), nil, nil)
}

// DeleteBatch removes the listed complaints, skipping unknown ids
func (a *ComplaintsAPI) DeleteBatch(ctx context.Context, ids []string) (models.DeleteResult, error) {
	if err := requireIDs(ids); err != nil {
		return models.DeleteResult{}, err
	}
	var res models.DeleteResult
	if err := a.t.Do(ctx, http.MethodDelete, "/system/complaint/delete", url.Values{"ids": {strings.Join(ids, ",")}}, &res); err != nil {
		return models.DeleteResult{}, err
	}
	return res, nil
}

// HistoryAPI covers resolve history
type HistoryAPI struct{ t Transport }

// List returns the ticket's entries, oldest first
func (a *HistoryAPI) List(ctx context.Context, ticketNo string) ([]models.ResolveHistory, error) {
	if err := requireID("ticketNo", ticketNo); err != nil {
		return nil, err
	}
	var entries []models.ResolveHistory
	if err := a.t.Do(ctx, http.MethodGet, "/system/complaint/records", url.Values{"ticketNo": {ticketNo}}, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.ResolveHistory{}
	}
	return entries, nil
}

// Add records a forward status change
func (a *HistoryAPI) Add(ctx context.Context, req models.ResolveRequest) (models.ResolveHistory, error) {
	if err := models.ValidateStruct(req); err != nil {
		return models.ResolveHistory{}, err
	}
	if !req.Status.Valid() {
		return models.ResolveHistory{}, apperrors.NewValidationError("status", fmt.Sprintf("unknown status %q", req.Status))
	}
	var entry models.ResolveHistory
	if err := a.t.Do(ctx, http.MethodPost, "/system/complaint/records/add", req, &entry); err != nil {
		return models.ResolveHistory{}, err
	}
	return entry, nil
}

// FeedbackAPI covers satisfaction surveys
type FeedbackAPI struct{ t Transport }

// List returns one page of surveys, newest first
func (a *FeedbackAPI) List(ctx context.Context, q query.FeedbackQuery) (models.FeedbackPage, error) {
	q, err := q.Normalize()
	if err != nil {
		return models.FeedbackPage{}, err
	}
	var page models.FeedbackPage
	if err := a.t.Do(ctx, http.MethodGet, "/system/complaintFeedback/list", q.Values(), &page); err != nil {
		return models.FeedbackPage{}, err
	}
	return page, nil
}

// Submit records a survey for a completed ticket
func (a *FeedbackAPI) Submit(ctx context.Context, req models.FeedbackSubmission) (models.Feedback, error) {
	if err := models.ValidateStruct(req); err != nil {
		return models.Feedback{}, err
	}
	var fb models.Feedback
	if err := a.t.Do(ctx, http.MethodPost, "/system/complaintFeedback/add", req, &fb); err != nil {
		return models.Feedback{}, err
	}
	return fb, nil
}

// DeleteBatch removes the listed surveys, skipping unknown ids
func (a *FeedbackAPI) DeleteBatch(ctx context.Context, ids []string) (models.DeleteResult, error) {
	if err := requireIDs(ids); err != nil {
		return models.DeleteResult{}, err
	}
	var res models.DeleteResult
	if err := a.t.Do(ctx, http.MethodDelete, "/system/complaintFeedback/batch", url.Values{"ids": {strings.Join(ids, ",")}}, &res); err != nil {
		return models.DeleteResult{}, err
	}
	return res, nil
}

// StatisticsAPI covers the dashboard aggregations
type StatisticsAPI struct{ t Transport }

// Overview returns the summary for tr
func (a *StatisticsAPI) Overview(ctx context.Context, tr models.TimeRange) (models.OverviewStatistics, error) {
	var o models.OverviewStatistics
	err := a.get(ctx, "/statistics/overview", tr, &o)
	return o, err
}

// Types returns the category distribution for tr
func (a *StatisticsAPI) Types(ctx context.Context, tr models.TimeRange) ([]models.ComplaintTypeDistribution, error) {
	var out []models.ComplaintTypeDistribution
	err := a.get(ctx, "/statistics/types", tr, &out)
	return out, err
}

// MonthlyTrends returns the per-month completion trend for tr
func (a *StatisticsAPI) MonthlyTrends(ctx context.Context, tr models.TimeRange) ([]models.MonthlyTrend, error) {
	var out []models.MonthlyTrend
	err := a.get(ctx, "/statistics/monthly-trends", tr, &out)
	return out, err
}

// Areas returns the zone distribution for tr
func (a *StatisticsAPI) Areas(ctx context.Context, tr models.TimeRange) ([]models.AreaDistribution, error) {
	var out []models.AreaDistribution
	err := a.get(ctx, "/statistics/areas", tr, &out)
	return out, err
}

func (a *StatisticsAPI) get(ctx context.Context, path string, tr models.TimeRange, out interface{}) error {
	if !tr.Valid() {
		return apperrors.NewValidationError("timeRange", "must be one of week, month, quarter, year")
	}
	params := url.Values{}
	if tr != models.TimeRangeAll {
		params.Set("timeRange", string(tr))
	}
	return a.t.Do(ctx, http.MethodGet, path, params, out)
}

func checkCreate(req models.CreateComplaintRequest) error {
	if err := models.ValidateStruct(req); err != nil {
		return err
	}
	if !req.Area.Valid() {
		return apperrors.NewValidationError("area", fmt.Sprintf("unknown area %q", req.Area))
	}
	return nil
}

func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.Required(field)
	}
	return nil
}

func requireIDs(ids []string) error {
	for _, id := range ids {
		if strings.TrimSpace(id) != "" {
			return nil
		}
	}
	return apperrors.Required("ids")
}
