package models

// TimeRange scopes the statistics endpoints. The zero value means all-time.
type TimeRange string

const (
	TimeRangeAll     TimeRange = ""
	TimeRangeWeek    TimeRange = "week"
	TimeRangeMonth   TimeRange = "month"
	TimeRangeQuarter TimeRange = "quarter"
	TimeRangeYear    TimeRange = "year"
)

// Valid reports whether r is a recognised range
func (r TimeRange) Valid() bool {
	switch r {
	case TimeRangeAll, TimeRangeWeek, TimeRangeMonth, TimeRangeQuarter, TimeRangeYear:
		return true
	}
	return false
}

// Trend directions for the type distribution
const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "flat"
)

// OverviewStatistics is the dashboard summary
type OverviewStatistics struct {
	TotalComplaints       int     `json:"totalComplaints"`
	PendingComplaints     int     `json:"pendingComplaints"`
	CompletedComplaints   int     `json:"completedComplaints"`
	UrgentComplaints      int     `json:"urgentComplaints"`
	AverageProcessingTime float64 `json:"averageProcessingTime"` // hours
	CompletionRate        float64 `json:"completionRate"`        // percent
	SatisfactionScore     float64 `json:"satisfactionScore"`
	SatisfactionTotal     int     `json:"satisfactionTotal"`
}

// ComplaintTypeDistribution for pie/bar charts
type ComplaintTypeDistribution struct {
	Type       string  `json:"type"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Trend      string  `json:"trend"`
}

// MonthlyTrend is one calendar month of the completion trend
type MonthlyTrend struct {
	Month          string  `json:"month"` // YYYY-MM
	CompletionRate float64 `json:"completionRate"`
	TotalCount     int     `json:"totalCount"`
	CompletedCount int     `json:"completedCount"`
}

// AreaDistribution for the zone breakdown
type AreaDistribution struct {
	Area       Area    `json:"area"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}
