package services

import (
	"context"
	"testing"
	"time"

	"github.com/aawaaz/complaint-desk/internal/apperrors"
	"github.com/aawaaz/complaint-desk/internal/models"
)

func TestOverviewEmpty(t *testing.T) {
	f := newFixture()
	o, err := f.statistics.Overview(context.Background(), models.TimeRangeAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o != (models.OverviewStatistics{}) {
		t.Fatalf("expected all zeros, got %+v", o)
	}
}

func TestStatisticsScopesAndInvariants(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// two months ago: outside the month window
	f.clock.t = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	f.complaints.Create(ctx, noiseRequest())

	f.clock.t = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	a, _ := f.complaints.Create(ctx, noiseRequest())
	urgent := noiseRequest()
	urgent.Level = "urgent"
	urgent.Area = models.AreaB
	urgent.Category = "sanitation"
	f.complaints.Create(ctx, urgent)

	f.clock.t = time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	f.complaints.Update(ctx, a.ID, models.UpdateComplaintRequest{Status: ptr(models.StatusCompleted)}, "")
	f.clock.t = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	o, err := f.statistics.Overview(ctx, models.TimeRangeMonth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.OverviewStatistics{
		TotalComplaints:       2,
		PendingComplaints:     1,
		CompletedComplaints:   1,
		UrgentComplaints:      1,
		AverageProcessingTime: 4,
		CompletionRate:        50,
	}
	if o != want {
		t.Fatalf("expected %+v, got %+v", want, o)
	}

	all, _ := f.statistics.Overview(ctx, models.TimeRangeAll)
	if all.TotalComplaints != 3 {
		t.Fatalf("expected 3 complaints all-time, got %d", all.TotalComplaints)
	}

	areas, _ := f.statistics.Areas(ctx, models.TimeRangeMonth)
	if len(areas) != 2 || areas[0].Area != models.AreaA || areas[1].Area != models.AreaB {
		t.Fatalf("expected both zones in order, got %+v", areas)
	}
	if areas[0].Count+areas[1].Count != o.TotalComplaints {
		t.Fatalf("area counts %+v do not sum to %d", areas, o.TotalComplaints)
	}

	types, _ := f.statistics.Types(ctx, models.TimeRangeMonth)
	sum := 0
	for _, ty := range types {
		sum += ty.Count
		if ty.Percentage != 50 {
			t.Errorf("expected 50%% for %s, got %v", ty.Type, ty.Percentage)
		}
	}
	if sum != o.TotalComplaints {
		t.Fatalf("type counts %+v do not sum to %d", types, o.TotalComplaints)
	}
	// the previous month held one noise complaint
	for _, ty := range types {
		if ty.Type == "noise" && ty.Trend != models.TrendFlat {
			t.Errorf("expected noise flat against previous period, got %s", ty.Trend)
		}
		if ty.Type == "sanitation" && ty.Trend != models.TrendUp {
			t.Errorf("expected sanitation up, got %s", ty.Trend)
		}
	}

	allTypes, _ := f.statistics.Types(ctx, models.TimeRangeAll)
	for _, ty := range allTypes {
		if ty.Trend != models.TrendFlat {
			t.Errorf("expected flat trend all-time, got %+v", ty)
		}
	}

	trends, _ := f.statistics.MonthlyTrends(ctx, models.TimeRangeAll)
	if len(trends) != 3 || trends[0].Month != "2024-03" || trends[1].TotalCount != 0 || trends[2].CompletionRate != 50 {
		t.Fatalf("unexpected monthly trends %+v", trends)
	}
}

func TestStatisticsRejectsUnknownRange(t *testing.T) {
	f := newFixture()
	if _, err := f.statistics.Areas(context.Background(), "decade"); !apperrors.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
