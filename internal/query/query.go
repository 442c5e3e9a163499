// Package query normalises list filters into one canonical form.
//
// Both API generations are accepted on the way in (page/pageNum,
// search/name/keyword, type/category, priority/level) and unknown keys are
// ignored. The canonical query is what the stores consume and what the
// client puts on the wire.
package query

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aawaaz/complaint-desk/internal/apperrors"
	"github.com/aawaaz/complaint-desk/internal/models"
)

const (
	DefaultPageNum  = 1
	DefaultPageSize = 20
	MaxPageSize     = 1000

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// DateRange is an inclusive createdAt window
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range, bounds included
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// ComplaintQuery is the canonical complaint list query.
// Zero PageNum/PageSize mean "use the default".
type ComplaintQuery struct {
	PageNum   int
	PageSize  int
	DateRange *DateRange
	Keyword   string
	Status    models.Status
	Category  string
	Level     string
	Area      models.Area
	OrderBy   string
}

// Normalize fills defaults and validates q
func (q ComplaintQuery) Normalize() (ComplaintQuery, error) {
	var err error
	if q.PageNum, q.PageSize, err = normalizePage(q.PageNum, q.PageSize); err != nil {
		return q, err
	}
	if err := validateRange(q.DateRange); err != nil {
		return q, err
	}
	if q.Status != "" && !q.Status.Valid() {
		return q, apperrors.NewValidationError("status", "unknown status "+strconv.Quote(string(q.Status)))
	}
	if q.Area != "" && !q.Area.Valid() {
		return q, apperrors.NewValidationError("area", "must be one of A区, B区")
	}
	if q.OrderBy, err = normalizeOrder(q.OrderBy); err != nil {
		return q, err
	}
	q.Keyword = strings.TrimSpace(q.Keyword)
	return q, nil
}

// Offset is the number of rows skipped before the current page
func (q ComplaintQuery) Offset() int {
	return offset(q.PageNum, q.PageSize)
}

// Match reports whether c passes every filter in q (pagination aside)
func (q ComplaintQuery) Match(c models.Complaint) bool {
	if q.DateRange != nil && !q.DateRange.Contains(c.CreatedAt) {
		return false
	}
	if q.Status != "" && c.Status != q.Status {
		return false
	}
	if q.Category != "" && c.Category != q.Category {
		return false
	}
	if q.Level != "" && c.Level != q.Level {
		return false
	}
	if q.Area != "" && c.Area != q.Area {
		return false
	}
	if q.Keyword != "" {
		kw := strings.ToLower(q.Keyword)
		if !strings.Contains(strings.ToLower(c.Title), kw) &&
			!strings.Contains(strings.ToLower(c.ComplainantName), kw) {
			return false
		}
	}
	return true
}

// Apply filters, orders and pages cs. It returns the page and the total
// number of matches before pagination. q must already be normalised.
func (q ComplaintQuery) Apply(cs []models.Complaint) ([]models.Complaint, int) {
	matched := make([]models.Complaint, 0, len(cs))
	for _, c := range cs {
		if q.Match(c) {
			matched = append(matched, c)
		}
	}
	SortComplaints(matched, q.OrderBy)
	return Page(matched, q.PageNum, q.PageSize), len(matched)
}

// Values encodes q with the canonical parameter names
func (q ComplaintQuery) Values() url.Values {
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
	setIf(v, "keyword", q.Keyword)
	setIf(v, "status", string(q.Status))
	setIf(v, "category", q.Category)
	setIf(v, "level", q.Level)
	setIf(v, "area", string(q.Area))
	setIf(v, "orderBy", q.OrderBy)
	return v
}

// FromValues parses a complaint query from URL parameters and normalises it
func FromValues(v url.Values) (ComplaintQuery, error) {
	var q ComplaintQuery
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
	q.Keyword = first(v, "keyword", "name", "search")
	q.Status = models.Status(first(v, "status"))
	q.Category = first(v, "category", "type")
	q.Level = first(v, "level", "priority")
	q.Area = models.Area(first(v, "area"))
	q.OrderBy = first(v, "orderBy")

	return q.Normalize()
}

// SortComplaints orders cs by createdAt, id breaking ties
func SortComplaints(cs []models.Complaint, order string) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if order == OrderAsc {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if order == OrderAsc {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})
}

// Page returns the pageNum-th slice of size pageSize from items
func Page[T any](items []T, pageNum, pageSize int) []T {
	start := offset(pageNum, pageSize)
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func normalizePage(pageNum, pageSize int) (int, int, error) {
	if pageNum < 0 {
		return 0, 0, apperrors.NewValidationError("pageNum", "must be a positive integer")
	}
	if pageSize < 0 {
		return 0, 0, apperrors.NewValidationError("pageSize", "must be a positive integer")
	}
	if pageNum == 0 {
		pageNum = DefaultPageNum
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		return 0, 0, apperrors.NewValidationError("pageSize", fmt.Sprintf("must not exceed %d", MaxPageSize))
	}
	// the offset (pageNum-1)*pageSize must fit in an int
	if pageNum-1 > math.MaxInt/pageSize {
		return 0, 0, apperrors.NewValidationError("pageNum", "is too large")
	}
	return pageNum, pageSize, nil
}

func normalizeOrder(order string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", OrderDesc:
		return OrderDesc, nil
	case OrderAsc:
		return OrderAsc, nil
	}
	return "", apperrors.NewValidationError("orderBy", "must be asc or desc")
}

func validateRange(r *DateRange) error {
	if r != nil && r.Start.After(r.End) {
		return apperrors.NewValidationError("dateRange", "start must not be after end")
	}
	return nil
}

func offset(pageNum, pageSize int) int {
	if pageNum < 1 {
		pageNum = 1
	}
	return (pageNum - 1) * pageSize
}

func setIf(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

// first returns the first non-empty value among keys
func first(v url.Values, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(v.Get(k)); s != "" {
			return s
		}
	}
	return ""
}

// intParam reads a strictly positive integer; absent yields 0
func intParam(v url.Values, field string, keys ...string) (int, error) {
	raw := first(v, keys...)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperrors.NewValidationError(field, "must be a positive integer")
	}
	return n, nil
}

func rangeParam(v url.Values) (*DateRange, error) {
	var bounds []string
	for _, key := range []string{"dateRange", "dateRange[]"} {
		for _, s := range v[key] {
			if s = strings.TrimSpace(s); s != "" {
				bounds = append(bounds, s)
			}
		}
	}
	if len(bounds) == 1 && strings.Contains(bounds[0], ",") {
		bounds = strings.SplitN(bounds[0], ",", 2)
	}
	if len(bounds) == 0 {
		start, end := first(v, "startDate"), first(v, "endDate")
		if start == "" && end == "" {
			return nil, nil
		}
		bounds = []string{start, end}
	}
	if len(bounds) != 2 || strings.TrimSpace(bounds[0]) == "" || strings.TrimSpace(bounds[1]) == "" {
		return nil, apperrors.NewValidationError("dateRange", "expects exactly a start and an end")
	}

	start, err := ParseDate(bounds[0], false)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(bounds[1], true)
	if err != nil {
		return nil, err
	}
	r := &DateRange{Start: start, End: end}
	return r, validateRange(r)
}

// ParseDate accepts RFC 3339, "YYYY-MM-DD HH:MM:SS" or "YYYY-MM-DD".
// A bare date used as an upper bound covers the whole day.
func ParseDate(s string, upper bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("dateRange", "unrecognised date "+strconv.Quote(s))
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
