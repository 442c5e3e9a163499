package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aawaaz/complaint-desk/internal/models"
)

// FeedbackQuery is the canonical feedback list query
type FeedbackQuery struct {
	PageNum    int
	PageSize   int
	DateRange  *DateRange
	TicketNo   string
	SurveyCode string
	Keyword    string // matches investigatorName
}

// Normalize fills defaults and validates q
func (q FeedbackQuery) Normalize() (FeedbackQuery, error) {
	var err error
	if q.PageNum, q.PageSize, err = normalizePage(q.PageNum, q.PageSize); err != nil {
		return q, err
	}
	if err := validateRange(q.DateRange); err != nil {
		return q, err
	}
	q.Keyword = strings.TrimSpace(q.Keyword)
	return q, nil
}

// Offset is the number of rows skipped before the current page
func (q FeedbackQuery) Offset() int {
	return offset(q.PageNum, q.PageSize)
}

// Match reports whether f passes every filter in q
func (q FeedbackQuery) Match(f models.Feedback) bool {
	if q.DateRange != nil && !q.DateRange.Contains(f.CreatedAt) {
		return false
	}
	if q.TicketNo != "" && f.TicketNo != q.TicketNo {
		return false
	}
	if q.SurveyCode != "" && f.SurveyCode != q.SurveyCode {
		return false
	}
	if q.Keyword != "" && !strings.Contains(strings.ToLower(f.InvestigatorName), strings.ToLower(q.Keyword)) {
		return false
	}
	return true
}

// Apply filters and pages fs, newest first
func (q FeedbackQuery) Apply(fs []models.Feedback) ([]models.Feedback, int) {
	matched := make([]models.Feedback, 0, len(fs))
	for _, f := range fs {
		if q.Match(f) {
			matched = append(matched, f)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return Page(matched, q.PageNum, q.PageSize), len(matched)
}

// Values encodes q with the canonical parameter names
func (q FeedbackQuery) Values() url.Values {
	v := url.Values{}
	if q.PageNum > 0 {
		v.Set("pageNum", strconv.Itoa(q.PageNum))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.DateRange != nil {
		v.Add("dateRange", q.DateRange.Start.Format(time.RFC3339Nano))
		v.Add("dateRange", q.DateRange.End.Format(time.RFC3339Nano))
	}
	setIf(v, "ticketNo", q.TicketNo)
	setIf(v, "surveyCode", q.SurveyCode)
	setIf(v, "keyword", q.Keyword)
	return v
}

// FeedbackFromValues parses a feedback query from URL parameters
func FeedbackFromValues(v url.Values) (FeedbackQuery, error) {
	var q FeedbackQuery
	var err error

	if q.PageNum, err = intParam(v, "pageNum", "pageNum", "page"); err != nil {
		return q, err
	}
	if q.PageSize, err = intParam(v, "pageSize", "pageSize"); err != nil {
		return q, err
	}
	if q.DateRange, err = rangeParam(v); err != nil {
		return q, err
	}
	q.TicketNo = first(v, "ticketNo")
	q.SurveyCode = first(v, "surveyCode")
	q.Keyword = first(v, "keyword", "investigatorName", "name")

	return q.Normalize()
}
