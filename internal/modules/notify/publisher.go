// README: Best-effort fan-out of order lifecycle events over redis pub/sub.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chowline/internal/logger"
	"chowline/internal/modules/order"
)

const (
	restaurantChannelPrefix = "restaurant:%s"
	userChannelPrefix       = "user:%s"
	adminChannel            = "orders:all"
)

// redisPublisher is the slice of *redis.Client the publisher needs;
// tests inject a recorder.
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type Publisher struct {
	redis   redisPublisher
	log     logger.ILogger
	timeout time.Duration
}

func NewPublisher(client redisPublisher, log logger.ILogger, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	return &Publisher{redis: client, log: log, timeout: timeout}
}

type envelope struct {
	Event string       `json:"event"`
	Order *order.Order `json:"order"`
}

// Publish fans the event out to the restaurant channel, the customer
// channel (skipped for guest orders), and the admin channel. The caller's
// transition is already committed; failures here are logged and dropped,
// never returned.
func (p *Publisher) Publish(ctx context.Context, event string, o *order.Order) {
	payload, err := json.Marshal(envelope{Event: event, Order: o})
	if err != nil {
		p.log.Error("notify marshal", logger.Error(err), logger.String("order_id", string(o.ID)))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	channels := []string{
		fmt.Sprintf(restaurantChannelPrefix, string(o.RestaurantID)),
		adminChannel,
	}
	if o.CustomerID != nil {
		channels = append(channels, fmt.Sprintf(userChannelPrefix, string(*o.CustomerID)))
	}

	for _, ch := range channels {
		if err := p.redis.Publish(ctx, ch, payload).Err(); err != nil {
			p.log.Warn("notify publish failed",
				logger.Error(err),
				logger.String("channel", ch),
				logger.String("event", event),
				logger.String("order_id", string(o.ID)),
			)
		}
	}
}
