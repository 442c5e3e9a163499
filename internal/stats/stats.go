// Package stats derives dashboard statistics from a complaint population.
//
// Everything here is a pure function of its inputs: the caller fetches the
// population for a scope and the functions only count. Rates and
// percentages are in [0, 100], rounded half-up to two decimals, and are 0
// (never NaN) on an empty population.
package stats

import (
	"sort"
	"time"

	"github.com/aawaaz/complaint-desk/internal/apperrors"
	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/shopspring/decimal"
)

const precision = 2

// Scope is a createdAt window. A nil bound is open.
type Scope struct {
	From *time.Time
	To   *time.Time
}

// Bounded reports whether both ends of s are set
func (s Scope) Bounded() bool {
	return s.From != nil && s.To != nil
}

// Contains reports whether t falls in s, bounds included
func (s Scope) Contains(t time.Time) bool {
	if s.From != nil && t.Before(*s.From) {
		return false
	}
	if s.To != nil && t.After(*s.To) {
		return false
	}
	return true
}

// Previous returns the equal-length window immediately before s.
// It reports false for an unbounded scope, which has no predecessor.
func (s Scope) Previous() (Scope, bool) {
	if !s.Bounded() {
		return Scope{}, false
	}
	length := s.To.Sub(*s.From)
	to := s.From.Add(-time.Nanosecond)
	from := s.From.Add(-length)
	return Scope{From: &from, To: &to}, true
}

// ResolveScope turns a time range into a rolling window ending at now
func ResolveScope(tr models.TimeRange, now time.Time) (Scope, error) {
	var from time.Time
	switch tr {
	case models.TimeRangeAll:
		return Scope{}, nil
	case models.TimeRangeWeek:
		from = now.AddDate(0, 0, -7)
	case models.TimeRangeMonth:
		from = now.AddDate(0, -1, 0)
	case models.TimeRangeQuarter:
		from = now.AddDate(0, -3, 0)
	case models.TimeRangeYear:
		from = now.AddDate(-1, 0, 0)
	default:
		return Scope{}, apperrors.NewValidationError("timeRange", "must be one of week, month, quarter, year")
	}
	to := now
	return Scope{From: &from, To: &to}, nil
}

// Filter keeps the complaints created inside s
func Filter(cs []models.Complaint, s Scope) []models.Complaint {
	out := make([]models.Complaint, 0, len(cs))
	for _, c := range cs {
		if s.Contains(c.CreatedAt) {
			out = append(out, c)
		}
	}
	return out
}

// Overview computes the dashboard summary. Levels in urgent count towards
// urgentComplaints.
func Overview(cs []models.Complaint, urgent map[string]bool) models.OverviewStatistics {
	var (
		o            models.OverviewStatistics
		hours        float64
		satisfaction float64
	)

	o.TotalComplaints = len(cs)
	for _, c := range cs {
		switch c.Status {
		case models.StatusPending:
			o.PendingComplaints++
		case models.StatusCompleted:
			o.CompletedComplaints++
			hours += c.UpdatedAt.Sub(c.CreatedAt).Hours()
		}
		if urgent[c.Level] {
			o.UrgentComplaints++
		}
		if c.Satisfaction != nil {
			satisfaction += *c.Satisfaction
			o.SatisfactionTotal++
		}
	}

	o.CompletionRate = Percent(o.CompletedComplaints, o.TotalComplaints)
	o.AverageProcessingTime = Mean(hours, o.CompletedComplaints)
	o.SatisfactionScore = Mean(satisfaction, o.SatisfactionTotal)
	return o
}

// Types computes the category distribution of current. When hasPrevious is
// set each entry's trend compares against the same category in previous;
// otherwise every trend is flat.
func Types(current, previous []models.Complaint, hasPrevious bool) []models.ComplaintTypeDistribution {
	counts := countBy(current, func(c models.Complaint) string { return c.Category })
	before := countBy(previous, func(c models.Complaint) string { return c.Category })

	out := make([]models.ComplaintTypeDistribution, 0, len(counts))
	for category, n := range counts {
		trend := models.TrendFlat
		if hasPrevious {
			trend = Trend(n, before[category])
		}
		out = append(out, models.ComplaintTypeDistribution{
			Type:       category,
			Count:      n,
			Percentage: Percent(n, len(current)),
			Trend:      trend,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// Trend compares a count against the preceding period's count
func Trend(current, previous int) string {
	switch {
	case current > previous:
		return models.TrendUp
	case current < previous:
		return models.TrendDown
	}
	return models.TrendFlat
}

// MonthlyTrends returns one entry per calendar month (UTC) covered by s,
// oldest first and without gaps. An open start begins at the earliest
// complaint; an open end stops at now.
func MonthlyTrends(cs []models.Complaint, s Scope, now time.Time) []models.MonthlyTrend {
	var start time.Time
	if s.From != nil {
		start = *s.From
	} else {
		if len(cs) == 0 {
			return []models.MonthlyTrend{}
		}
		start = cs[0].CreatedAt
		for _, c := range cs[1:] {
			if c.CreatedAt.Before(start) {
				start = c.CreatedAt
			}
		}
	}
	end := now
	if s.To != nil {
		end = *s.To
	}

	type bucket struct{ total, completed int }
	buckets := make(map[string]*bucket)
	for _, c := range cs {
		key := monthKey(c.CreatedAt)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.total++
		if c.Status == models.StatusCompleted {
			b.completed++
		}
	}

	out := make([]models.MonthlyTrend, 0)
	last := monthStart(end)
	for m := monthStart(start); !m.After(last); m = m.AddDate(0, 1, 0) {
		key := monthKey(m)
		entry := models.MonthlyTrend{Month: key}
		if b, ok := buckets[key]; ok {
			entry.TotalCount = b.total
			entry.CompletedCount = b.completed
			entry.CompletionRate = Percent(b.completed, b.total)
		}
		out = append(out, entry)
	}
	return out
}

// Areas computes the zone distribution; both zones are always present
func Areas(cs []models.Complaint) []models.AreaDistribution {
	counts := countBy(cs, func(c models.Complaint) string { return string(c.Area) })

	out := make([]models.AreaDistribution, 0, len(models.Areas))
	for _, area := range models.Areas {
		n := counts[string(area)]
		out = append(out, models.AreaDistribution{
			Area:       area,
			Count:      n,
			Percentage: Percent(n, len(cs)),
		})
	}
	return out
}

// Percent returns part/total*100 rounded to two decimals, 0 when total is 0
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(total)), precision).
		InexactFloat64()
}

// Mean returns sum/n rounded to two decimals, 0 when n is 0
func Mean(sum float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return decimal.NewFromFloat(sum).
		DivRound(decimal.NewFromInt(int64(n)), precision).
		InexactFloat64()
}

func countBy(cs []models.Complaint, key func(models.Complaint) string) map[string]int {
	counts := make(map[string]int)
	for _, c := range cs {
		counts[key(c)]++
	}
	return counts
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
