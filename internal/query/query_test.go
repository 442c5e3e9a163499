package query

import (
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/aawaaz/complaint-desk/internal/apperrors"
	"github.com/aawaaz/complaint-desk/internal/models"
)

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 10, 0, 0, 0, time.UTC)
}

func population() []models.Complaint {
	return []models.Complaint{
		{ID: "1", Title: "Noise at night", ComplainantName: "Li", Status: models.StatusPending, Category: "noise", Level: "high", Area: models.AreaA, CreatedAt: day(1)},
		{ID: "2", Title: "Broken lamp", ComplainantName: "Wang", Status: models.StatusPending, Category: "facility", Level: "low", Area: models.AreaB, CreatedAt: day(2)},
		{ID: "3", Title: "Garbage", ComplainantName: "li ming", Status: models.StatusPending, Category: "sanitation", Level: "low", Area: models.AreaA, CreatedAt: day(3)},
		{ID: "4", Title: "Noise again", ComplainantName: "Zhao", Status: models.StatusCompleted, Category: "noise", Level: "high", Area: models.AreaB, CreatedAt: day(4)},
		{ID: "5", Title: "Parking", ComplainantName: "Sun", Status: models.StatusCompleted, Category: "traffic", Level: "low", Area: models.AreaA, CreatedAt: day(5)},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	q, err := ComplaintQuery{}.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.PageNum != DefaultPageNum || q.PageSize != DefaultPageSize || q.OrderBy != OrderDesc {
		t.Fatalf("unexpected defaults %+v", q)
	}
}

func TestNormalizeRejects(t *testing.T) {
	cases := []struct {
		name  string
		q     ComplaintQuery
		field string
	}{
		{"negative page", ComplaintQuery{PageNum: -1}, "pageNum"},
		{"negative size", ComplaintQuery{PageSize: -5}, "pageSize"},
		{"reversed range", ComplaintQuery{DateRange: &DateRange{Start: day(5), End: day(1)}}, "dateRange"},
		{"unknown status", ComplaintQuery{Status: "closed"}, "status"},
		{"unknown area", ComplaintQuery{Area: "C区"}, "area"},
		{"bad order", ComplaintQuery{OrderBy: "sideways"}, "orderBy"},
		{"oversized page", ComplaintQuery{PageSize: MaxPageSize + 1}, "pageSize"},
		{"offset overflow", ComplaintQuery{PageNum: math.MaxInt, PageSize: 4}, "pageNum"},
	}

	for _, tt := range cases {
		_, err := tt.q.Normalize()
		var verr *apperrors.ValidationError
		if !apperrors.IsValidation(err) {
			t.Fatalf("%s: expected ValidationError, got %v", tt.name, err)
		}
		verr = err.(*apperrors.ValidationError)
		if verr.Field != tt.field {
			t.Fatalf("%s: expected field %q, got %q", tt.name, tt.field, verr.Field)
		}
	}
}

func TestApplyStatusFilter(t *testing.T) {
	q, _ := ComplaintQuery{PageNum: 1, PageSize: 10, Status: models.StatusPending}.Normalize()
	page, total := q.Apply(population())

	if total != 3 || len(page) != 3 {
		t.Fatalf("expected total=3 len=3, got total=%d len=%d", total, len(page))
	}
	if page[0].ID != "3" {
		t.Fatalf("expected newest first, got %s", page[0].ID)
	}
}

func TestApplyKeywordIsCaseInsensitive(t *testing.T) {
	q, _ := ComplaintQuery{Keyword: "LI"}.Normalize()
	page, total := q.Apply(population())

	// "Li" and "li ming" by name
	if total != 2 {
		t.Fatalf("expected 2 matches, got %d (%v)", total, page)
	}

	q, _ = ComplaintQuery{Keyword: "noise"}.Normalize()
	if _, total = q.Apply(population()); total != 2 {
		t.Fatalf("expected 2 title matches, got %d", total)
	}
}

func TestApplyDateRangeIsInclusive(t *testing.T) {
	q, _ := ComplaintQuery{DateRange: &DateRange{Start: day(2), End: day(4)}, OrderBy: OrderAsc}.Normalize()
	page, total := q.Apply(population())

	if total != 3 {
		t.Fatalf("expected 3 matches, got %d", total)
	}
	if page[0].ID != "2" || page[2].ID != "4" {
		t.Fatalf("expected ascending 2..4, got %s..%s", page[0].ID, page[2].ID)
	}
}

func TestApplyPagination(t *testing.T) {
	q, _ := ComplaintQuery{PageNum: 2, PageSize: 2}.Normalize()
	page, total := q.Apply(population())

	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if len(page) != 2 || page[0].ID != "3" || page[1].ID != "2" {
		t.Fatalf("unexpected second page %v", page)
	}

	q, _ = ComplaintQuery{PageNum: 9, PageSize: 2}.Normalize()
	if page, _ = q.Apply(population()); len(page) != 0 {
		t.Fatalf("expected empty page past the end, got %d", len(page))
	}
}

func TestFromValuesAliasesAndUnknownKeys(t *testing.T) {
	v := url.Values{
		"page":     {"2"},
		"pageSize": {"5"},
		"search":   {"noise"},
		"type":     {"noise"},
		"priority": {"high"},
		"status":   {""},
		"colour":   {"blue"},
	}
	q, err := FromValues(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.PageNum != 2 || q.PageSize != 5 || q.Keyword != "noise" || q.Category != "noise" || q.Level != "high" {
		t.Fatalf("unexpected query %+v", q)
	}
	if q.Status != "" {
		t.Fatalf("expected empty status to be treated as absent, got %q", q.Status)
	}
}

func TestFromValuesRejectsZeroPage(t *testing.T) {
	if _, err := FromValues(url.Values{"pageNum": {"0"}}); !apperrors.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := FromValues(url.Values{"pageSize": {"ten"}}); !apperrors.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestFromValuesRejectsHugePage(t *testing.T) {
	_, err := FromValues(url.Values{"pageNum": {"4611686018427387904"}, "pageSize": {"4"}})
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	q, err := FromValues(url.Values{"pageNum": {"3"}, "pageSize": {"1000"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page, total := q.Apply(population()); len(page) != 0 || total != 5 {
		t.Fatalf("expected an empty last page, got %d of %d", len(page), total)
	}
}

func TestFromValuesDateRangeForms(t *testing.T) {
	forms := []url.Values{
		{"dateRange": {"2025-03-02", "2025-03-04"}},
		{"dateRange[]": {"2025-03-02", "2025-03-04"}},
		{"dateRange": {"2025-03-02,2025-03-04"}},
		{"startDate": {"2025-03-02"}, "endDate": {"2025-03-04"}},
	}

	for _, v := range forms {
		q, err := FromValues(v)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", v, err)
		}
		if q.DateRange == nil {
			t.Fatalf("%v: expected a date range", v)
		}
		// bare end date covers the whole day
		if !q.DateRange.Contains(time.Date(2025, time.March, 4, 23, 59, 0, 0, time.UTC)) {
			t.Fatalf("%v: expected end of day to be included", v)
		}
	}

	if _, err := FromValues(url.Values{"dateRange": {"2025-03-04", "2025-03-02"}}); !apperrors.IsValidation(err) {
		t.Fatalf("expected reversed range to fail, got %v", err)
	}
	if _, err := FromValues(url.Values{"startDate": {"2025-03-04"}}); !apperrors.IsValidation(err) {
		t.Fatalf("expected half-open range to fail, got %v", err)
	}
}

func TestValuesRoundTrip(t *testing.T) {
	in := ComplaintQuery{
		PageNum:   3,
		PageSize:  15,
		DateRange: &DateRange{Start: day(1), End: day(2)},
		Keyword:   "noise",
		Status:    models.StatusProcessing,
		Category:  "noise",
		Level:     "high",
		Area:      models.AreaB,
		OrderBy:   OrderAsc,
	}
	out, err := FromValues(in.Values())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.PageNum != in.PageNum || out.Status != in.Status || out.Area != in.Area || out.OrderBy != in.OrderBy {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
	if !out.DateRange.Start.Equal(in.DateRange.Start) || !out.DateRange.End.Equal(in.DateRange.End) {
		t.Fatalf("date range mismatch: %+v", out.DateRange)
	}
}

func TestFeedbackQuery(t *testing.T) {
	fs := []models.Feedback{
		{ID: "a", TicketNo: "1", InvestigatorName: "Chen", CreatedAt: day(1)},
		{ID: "b", TicketNo: "1", InvestigatorName: "Liu", CreatedAt: day(2)},
		{ID: "c", TicketNo: "2", InvestigatorName: "chen", CreatedAt: day(3)},
	}

	q, err := FeedbackFromValues(url.Values{"ticketNo": {"1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	page, total := q.Apply(fs)
	if total != 2 || page[0].ID != "b" {
		t.Fatalf("unexpected page %v total %d", page, total)
	}

	q, _ = FeedbackQuery{Keyword: "CHEN"}.Normalize()
	if _, total = q.Apply(fs); total != 2 {
		t.Fatalf("expected 2 keyword matches, got %d", total)
	}
}
