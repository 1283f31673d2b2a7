// README: Earnings aggregator tests over fake delivery history (no DB).
package earnings

import (
	"context"
	"testing"
	"time"

	"chowline/internal/modules/order"
	"chowline/internal/modules/rider"
	"chowline/internal/types"
)

type fakeHistory struct {
	deliveries []order.Delivery
}

func (f *fakeHistory) DeliveriesByRider(_ context.Context, _ types.ID, since time.Time) ([]order.Delivery, error) {
	out := make([]order.Delivery, 0, len(f.deliveries))
	for _, d := range f.deliveries {
		if !d.DeliveredAt.Before(since) {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeDirectory struct {
	rider *rider.Rider
}

func (f *fakeDirectory) Get(context.Context, types.ID) (*rider.Rider, error) {
	return f.rider, nil
}

// fixed reference point: a Tuesday afternoon
var now = time.Date(2025, time.March, 11, 15, 30, 0, 0, time.UTC)

func newService(lifetime int64, deliveries ...order.Delivery) *Service {
	return NewService(
		&fakeHistory{deliveries: deliveries},
		&fakeDirectory{rider: &rider.Rider{ID: "rider_1", Earnings: types.Cents(lifetime)}},
	)
}

func delivered(fee int64, at time.Time) order.Delivery {
	return order.Delivery{OrderID: "ord_x", Fee: types.Cents(fee), DeliveredAt: at}
}

func TestSummaryWindows(t *testing.T) {
	svc := newService(100000,
		delivered(299, now.Add(-2*time.Hour)),          // today
		delivered(199, now.Add(-30*time.Minute)),       // today
		delivered(499, now.AddDate(0, 0, -2)),          // this week, not today
		delivered(399, now.AddDate(0, 0, -6)),          // oldest day still in window
		delivered(599, now.AddDate(0, 0, -7)),          // outside the 7-day window
		delivered(999, now.AddDate(0, 0, -30)),         // well outside
	)

	sum, err := svc.Summary(context.Background(), "rider_1", now)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if sum.Total.Amount != 100000 {
		t.Errorf("total = %d, want 100000 (accumulator, not recomputed)", sum.Total.Amount)
	}
	if sum.Today.Amount.Amount != 299+199 || sum.Today.Count != 2 {
		t.Errorf("today = %d/%d, want 498/2", sum.Today.Amount.Amount, sum.Today.Count)
	}
	if want := int64(299 + 199 + 499 + 399); sum.Week.Amount.Amount != want || sum.Week.Count != 4 {
		t.Errorf("week = %d/%d, want %d/4", sum.Week.Amount.Amount, sum.Week.Count, want)
	}
}

func TestSummaryDailyChart(t *testing.T) {
	svc := newService(0,
		delivered(299, now.Add(-time.Hour)),
		delivered(199, now.AddDate(0, 0, -3)),
		delivered(499, now.AddDate(0, 0, -3)),
		delivered(399, now.AddDate(0, 0, -6)),
	)

	sum, err := svc.Summary(context.Background(), "rider_1", now)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if len(sum.DailyChart) != chartDays {
		t.Fatalf("chart length = %d, want %d", len(sum.DailyChart), chartDays)
	}

	// oldest-first: bucket 0 is six days ago, the last bucket is today
	if got := sum.DailyChart[0].Date; got != "2025-03-05" {
		t.Errorf("first bucket date = %s, want 2025-03-05", got)
	}
	if got := sum.DailyChart[chartDays-1].Date; got != "2025-03-11" {
		t.Errorf("last bucket date = %s, want 2025-03-11", got)
	}

	if got := sum.DailyChart[0].Amount.Amount; got != 399 {
		t.Errorf("bucket[0] = %d, want 399", got)
	}
	if got := sum.DailyChart[3].Amount.Amount; got != 199+499 {
		t.Errorf("bucket[3] = %d, want 698", got)
	}
	if got := sum.DailyChart[chartDays-1].Amount.Amount; got != 299 {
		t.Errorf("bucket[6] = %d, want 299", got)
	}

	// days with no deliveries stay zero
	for _, i := range []int{1, 2, 4, 5} {
		if got := sum.DailyChart[i].Amount.Amount; got != 0 {
			t.Errorf("bucket[%d] = %d, want 0", i, got)
		}
	}
}

func TestSummaryNoDeliveries(t *testing.T) {
	svc := newService(4250)

	sum, err := svc.Summary(context.Background(), "rider_1", now)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Total.Amount != 4250 {
		t.Errorf("total = %d, want 4250", sum.Total.Amount)
	}
	if sum.Today.Count != 0 || sum.Week.Count != 0 {
		t.Errorf("expected empty windows, got today=%d week=%d", sum.Today.Count, sum.Week.Count)
	}
	for i, p := range sum.DailyChart {
		if p.Amount.Amount != 0 {
			t.Errorf("bucket[%d] = %d, want 0", i, p.Amount.Amount)
		}
	}
}

// The chart buckets calendar days; a 23-hour spring-forward day must not
// shift later deliveries into the previous bucket.
func TestSummaryDailyChartAcrossSpringForward(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// US DST starts 2025-03-09; March 9 is only 23 hours long.
	local := time.Date(2025, time.March, 11, 15, 0, 0, 0, loc)
	svc := newService(0,
		delivered(500, time.Date(2025, time.March, 10, 0, 30, 0, 0, loc)),
		delivered(300, time.Date(2025, time.March, 9, 12, 0, 0, 0, loc)),
	)

	sum, err := svc.Summary(context.Background(), "rider_1", local)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	byDate := make(map[string]int64, len(sum.DailyChart))
	for _, p := range sum.DailyChart {
		byDate[p.Date] = p.Amount.Amount
	}
	if got := byDate["2025-03-10"]; got != 500 {
		t.Errorf("bucket for 2025-03-10 = %d, want 500", got)
	}
	if got := byDate["2025-03-09"]; got != 300 {
		t.Errorf("bucket for 2025-03-09 = %d, want 300", got)
	}
}

func TestSummaryMidnightBoundary(t *testing.T) {
	dayStart := startOfDay(now)
	svc := newService(0,
		delivered(100, dayStart),                      // first instant of today
		delivered(200, dayStart.Add(-time.Nanosecond)), // yesterday
	)

	sum, err := svc.Summary(context.Background(), "rider_1", now)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Today.Amount.Amount != 100 {
		t.Errorf("today = %d, want 100", sum.Today.Amount.Amount)
	}
	if sum.Week.Amount.Amount != 300 {
		t.Errorf("week = %d, want 300", sum.Week.Amount.Amount)
	}
}
