// Package audit appends every order lifecycle event to a durable trail.
// It exists so the partner force-update path is attributable after the
// fact rather than an unchecked backdoor.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/nightcaplab/cocktail-courier/internal/kafka"
	"github.com/nightcaplab/cocktail-courier/internal/orders"
	"github.com/nightcaplab/cocktail-courier/internal/redisx"
)

type Appender interface {
	Append(ctx context.Context, rec Record) error
}

type Service struct {
	Repo        Appender
	Redis       *redis.Client
	ServiceName string
	Log         zerolog.Logger
}

// HandleOrderEvent is the consumer handler for both order topics. Unknown
// event types are ignored; processed event ids are deduplicated in Redis
// before the idempotent insert.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	var rec Record
	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := kafka.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		rec = Record{
			OrderID:  p.OrderID,
			ToStatus: string(orders.StatusPending),
		}
	case orders.EventOrderStatusChanged, orders.EventOrderStatusForced:
		p, err := kafka.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		rec = Record{
			OrderID:    p.OrderID,
			Actor:      p.Actor,
			FromStatus: string(p.From),
			ToStatus:   string(p.To),
		}
	default:
		return nil
	}

	if s.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
		if seen, _ := redisx.Exists(ctx, s.Redis, dkey); seen {
			return nil
		}
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}

	rec.EventID = env.EventID
	rec.EventType = env.EventType
	rec.OccurredAt = env.OccurredAt
	rec.Producer = env.Producer
	if err := s.Repo.Append(ctx, rec); err != nil {
		return err
	}
	s.Log.Info().Str("event_id", env.EventID).Int64("order_id", rec.OrderID).
		Str("event_type", env.EventType).Msg("audit row appended")
	return nil
}
