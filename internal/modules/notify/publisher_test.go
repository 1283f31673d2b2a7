// README: Fan-out tests with a recording redis stub.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"chowline/internal/logger"
	"chowline/internal/modules/order"
	"chowline/internal/types"
)

type recordingRedis struct {
	channels []string
	payloads [][]byte
	err      error
}

func (r *recordingRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	r.channels = append(r.channels, channel)
	if b, ok := message.([]byte); ok {
		r.payloads = append(r.payloads, b)
	}
	cmd := redis.NewIntCmd(ctx)
	if r.err != nil {
		cmd.SetErr(r.err)
	}
	return cmd
}

func testOrder(customerID *types.ID) *order.Order {
	return &order.Order{
		ID:           "ord_1",
		CustomerID:   customerID,
		RestaurantID: "rest_1",
		Status:       order.StatusConfirmed,
	}
}

func TestPublishFanOut(t *testing.T) {
	rec := &recordingRedis{}
	p := NewPublisher(rec, logger.Nop(), time.Second)

	cust := types.ID("cust_1")
	p.Publish(context.Background(), order.EventOrderStatusUpdate, testOrder(&cust))

	want := map[string]bool{
		"restaurant:rest_1": true,
		"user:cust_1":       true,
		"orders:all":        true,
	}
	if len(rec.channels) != len(want) {
		t.Fatalf("published to %d channels, want %d: %v", len(rec.channels), len(want), rec.channels)
	}
	for _, ch := range rec.channels {
		if !want[ch] {
			t.Errorf("unexpected channel %s", ch)
		}
	}

	var env struct {
		Event string       `json:"event"`
		Order *order.Order `json:"order"`
	}
	if err := json.Unmarshal(rec.payloads[0], &env); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if env.Event != order.EventOrderStatusUpdate {
		t.Errorf("event = %s, want %s", env.Event, order.EventOrderStatusUpdate)
	}
	if env.Order == nil || env.Order.ID != "ord_1" {
		t.Errorf("payload order = %+v", env.Order)
	}
}

func TestPublishSkipsUserChannelForGuests(t *testing.T) {
	rec := &recordingRedis{}
	p := NewPublisher(rec, logger.Nop(), time.Second)

	p.Publish(context.Background(), order.EventNewOrder, testOrder(nil))

	for _, ch := range rec.channels {
		if strings.HasPrefix(ch, "user:") {
			t.Fatalf("guest order published to user channel %s", ch)
		}
	}
	if len(rec.channels) != 2 {
		t.Fatalf("published to %d channels, want 2: %v", len(rec.channels), rec.channels)
	}
}

func TestPublishSwallowsErrors(t *testing.T) {
	rec := &recordingRedis{err: errors.New("redis down")}
	p := NewPublisher(rec, logger.Nop(), time.Second)

	cust := types.ID("cust_1")
	// must not panic or block; errors are logged, never surfaced
	p.Publish(context.Background(), order.EventOrderStatusUpdate, testOrder(&cust))

	if len(rec.channels) != 3 {
		t.Fatalf("expected all channels attempted despite errors, got %v", rec.channels)
	}
}

func TestPublishOutlivesCancelledCaller(t *testing.T) {
	rec := &recordingRedis{}
	p := NewPublisher(rec, logger.Nop(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cust := types.ID("cust_1")
	p.Publish(ctx, order.EventOrderStatusUpdate, testOrder(&cust))

	if len(rec.channels) != 3 {
		t.Fatalf("expected publish to proceed after caller cancel, got %v", rec.channels)
	}
}
