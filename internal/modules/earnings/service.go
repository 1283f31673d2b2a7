// README: Earnings aggregator: windowed read-model over delivered-order history.
package earnings

import (
	"context"
	"time"

	"chowline/internal/modules/order"
	"chowline/internal/modules/rider"
	"chowline/internal/types"
)

type DeliveryHistory interface {
	DeliveriesByRider(ctx context.Context, riderID types.ID, since time.Time) ([]order.Delivery, error)
}

type RiderDirectory interface {
	Get(ctx context.Context, id types.ID) (*rider.Rider, error)
}

type Window struct {
	Amount types.Money `json:"amount"`
	Count  int         `json:"count"`
}

type ChartPoint struct {
	Date   string      `json:"date"`
	Amount types.Money `json:"amount"`
}

type Summary struct {
	// Total comes from the rider's accumulator, which only the dispatch
	// engine's complete operation writes; it is not recomputed here.
	Total      types.Money  `json:"total"`
	Today      Window       `json:"today"`
	Week       Window       `json:"week"`
	DailyChart []ChartPoint `json:"daily_chart"`
}

type Service struct {
	orders DeliveryHistory
	riders RiderDirectory
}

func NewService(orders DeliveryHistory, riders RiderDirectory) *Service {
	return &Service{orders: orders, riders: riders}
}

const chartDays = 7

// Summary is a pure read: no side effects, safe to call arbitrarily often.
func (s *Service) Summary(ctx context.Context, riderID types.ID, now time.Time) (*Summary, error) {
	r, err := s.riders.Get(ctx, riderID)
	if err != nil {
		return nil, err
	}

	dayStart := startOfDay(now)
	weekStart := dayStart.AddDate(0, 0, -(chartDays - 1))

	deliveries, err := s.orders.DeliveriesByRider(ctx, riderID, weekStart)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		Total:      r.Earnings,
		Today:      Window{Amount: types.Cents(0)},
		Week:       Window{Amount: types.Cents(0)},
		DailyChart: make([]ChartPoint, chartDays),
	}
	for i := range sum.DailyChart {
		day := weekStart.AddDate(0, 0, i)
		sum.DailyChart[i] = ChartPoint{Date: day.Format("2006-01-02"), Amount: types.Cents(0)}
	}

	for _, d := range deliveries {
		at := d.DeliveredAt.In(now.Location())
		if at.Before(weekStart) || !at.Before(dayStart.AddDate(0, 0, 1)) {
			continue
		}
		sum.Week.Amount.Amount += d.Fee.Amount
		sum.Week.Count++

		if sameDay(at, now) {
			sum.Today.Amount.Amount += d.Fee.Amount
			sum.Today.Count++
		}

		bucket := daysBetween(weekStart, startOfDay(at))
		if bucket >= 0 && bucket < chartDays {
			sum.DailyChart[bucket].Amount.Amount += d.Fee.Amount
		}
	}

	return sum, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// daysBetween counts calendar days, not elapsed hours; a DST-shortened
// day still advances the bucket by one.
func daysBetween(from, to time.Time) int {
	return int(utcMidnight(to).Sub(utcMidnight(from)).Hours() / 24)
}

func utcMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
