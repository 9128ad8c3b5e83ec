package orders

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/nightcaplab/cocktail-courier/internal/kafka"
	"github.com/nightcaplab/cocktail-courier/internal/metrics"
)

// Notifier receives every accepted status change. The realtime hub
// implements it; nil disables push.
type Notifier interface {
	OrderUpdated(o Order)
}

// EventPublisher is the slice of the kafka producer the lifecycle needs.
type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Lifecycle owns the order state machine. Every status write in the system
// goes through it: the public path validates against the transition table,
// the privileged ForceStatus path skips the table but is attributed and
// audited. Both paths serialize per order id, so updates to one order are
// applied and broadcast in acceptance order.
type Lifecycle struct {
	Store    Store
	Notifier Notifier
	Producer EventPublisher // order.status.changed; nil disables events
	Service  string
	Log      zerolog.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewLifecycle(store Store, log zerolog.Logger) *Lifecycle {
	return &Lifecycle{
		Store: store,
		Log:   log,
		locks: make(map[int64]*sync.Mutex),
	}
}

// UpdateStatus applies one transition through the state machine. It returns
// *NotFoundError for unknown orders and *InvalidTransitionError when the
// transition table forbids the move; in both cases nothing is written.
func (l *Lifecycle) UpdateStatus(ctx context.Context, id int64, to Status, traceID string) (Order, error) {
	lock := l.orderLock(id)
	lock.Lock()
	defer lock.Unlock()

	cur, err := l.Store.GetOrder(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(cur.Status, to) {
		return Order{}, &InvalidTransitionError{From: cur.Status, To: to}
	}

	updated, err := l.Store.UpdateOrderStatus(ctx, id, to)
	if err != nil {
		return Order{}, err
	}
	l.afterTransition(cur.Status, updated, "", traceID)
	return updated, nil
}

// ForceStatus is the partner override: no transition check, but the status
// string is still parsed upstream, the actor is recorded on the emitted
// event, and subscribers are notified like any other change.
func (l *Lifecycle) ForceStatus(ctx context.Context, id int64, to Status, actor, traceID string) (Order, error) {
	lock := l.orderLock(id)
	lock.Lock()
	defer lock.Unlock()

	cur, err := l.Store.GetOrder(ctx, id)
	if err != nil {
		return Order{}, err
	}
	updated, err := l.Store.UpdateOrderStatus(ctx, id, to)
	if err != nil {
		return Order{}, err
	}
	l.Log.Warn().Int64("order_id", id).Str("actor", actor).
		Str("from", string(cur.Status)).Str("to", string(to)).
		Msg("status forced outside state machine")
	l.afterTransition(cur.Status, updated, actor, traceID)
	return updated, nil
}

func (l *Lifecycle) afterTransition(from Status, o Order, actor, traceID string) {
	metrics.StatusTransitions.WithLabelValues(string(o.Status)).Inc()
	l.Log.Info().Int64("order_id", o.ID).Str("user_id", o.UserID).
		Str("from", string(from)).Str("to", string(o.Status)).
		Msg("order status changed")

	if l.Notifier != nil {
		l.Notifier.OrderUpdated(o)
	}
	if l.Producer == nil {
		return
	}
	eventType := EventOrderStatusChanged
	if actor != "" {
		eventType = EventOrderStatusForced
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      l.Service,
		TraceID:       traceID,
		CorrelationID: string(PartitionKey(o.ID)),
		Payload: kafka.MustMarshal(OrderStatusChangedPayload{
			OrderID: o.ID, UserID: o.UserID, From: from, To: o.Status, Actor: actor,
		}),
	}
	l.Producer.Publish(PartitionKey(o.ID), kafka.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (l *Lifecycle) orderLock(id int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

// EstimateDelivery derives the live ETA shown during tracking. It is a
// display value, never persisted, and independent of the stored
// DeliveryTime target set at creation.
func EstimateDelivery(o Order, now time.Time) string {
	switch o.Status {
	case StatusPreparing:
		return o.CreatedAt.Add(30 * time.Minute).Format(time.Kitchen)
	case StatusInTransit:
		return now.Add(15 * time.Minute).Format(time.Kitchen)
	case StatusDelivered:
		return "Delivered"
	default:
		return o.CreatedAt.Add(45 * time.Minute).Format(time.Kitchen)
	}
}
