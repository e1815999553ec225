package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkax "github.com/ariefcatur/go-market-escrow.git/internal/kafka"
	"github.com/ariefcatur/go-market-escrow.git/internal/market"
	"github.com/ariefcatur/go-market-escrow.git/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Journal is where lifecycle events land. Satisfied by *JournalRepo.
type Journal interface {
	Append(ctx context.Context, e Entry) error
}

// KV is the slice of the redis API the watcher uses. Satisfied by
// *redis.Client.
type KV interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Service consumes product and order lifecycle events, journals them in
// postgres, and caches the latest order status in redis for cheap reads.
type Service struct {
	Journal     Journal
	Redis       KV
	ServiceName string
}

// HandleEvent is wired as the consumer handler for both lifecycle topics.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env market.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if n, err := s.Redis.Exists(ctx, dkey).Result(); err == nil && n > 0 {
		return nil
	}

	txHash, err := txHashOf(env)
	if err != nil {
		return err
	}
	if err := s.Journal.Append(ctx, Entry{
		EventID:    env.EventID,
		EventType:  env.EventType,
		EntityID:   env.CorrelationID,
		TxHash:     txHash,
		Payload:    env.Payload,
		OccurredAt: env.OccurredAt,
	}); err != nil {
		return err
	}

	s.cacheOrderStatus(ctx, env)

	// marked only once the append landed. A failed append must stay
	// retryable on redelivery; the insert itself dedups on event_id.
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	return nil
}

func (s *Service) cacheOrderStatus(ctx context.Context, env market.Envelope) {
	var orderID uint64
	var status string
	switch env.EventType {
	case market.EventOrderSent:
		p, err := kafkax.UnwrapPayload[market.OrderSentPayload](env.Payload)
		if err != nil {
			return
		}
		orderID, status = p.OrderID, "SENT"
	case market.EventOrderReleased:
		p, err := kafkax.UnwrapPayload[market.OrderReleasedPayload](env.Payload)
		if err != nil {
			return
		}
		orderID, status = p.OrderID, "RELEASED"
	case market.EventOrderCanceled:
		p, err := kafkax.UnwrapPayload[market.OrderCanceledPayload](env.Payload)
		if err != nil {
			return
		}
		orderID, status = p.OrderID, "CANCELED"
	default:
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	_ = s.Redis.Set(ctx, key, status, redisx.TTLStatusCache).Err()
}

func txHashOf(env market.Envelope) (string, error) {
	var head struct {
		TxHash string `json:"tx_hash"`
	}
	if err := json.Unmarshal(env.Payload, &head); err != nil {
		return "", fmt.Errorf("decode payload: %w", err)
	}
	return head.TxHash, nil
}
