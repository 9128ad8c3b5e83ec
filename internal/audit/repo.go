package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Record is one row of the order audit trail. Every lifecycle event lands
// here, including the privileged forced updates with their actor.
//
// Schema:
//
//	CREATE TABLE order_audit (
//	  event_id    TEXT PRIMARY KEY,
//	  order_id    BIGINT NOT NULL,
//	  event_type  TEXT NOT NULL,
//	  actor       TEXT NOT NULL DEFAULT '',
//	  from_status TEXT NOT NULL DEFAULT '',
//	  to_status   TEXT NOT NULL,
//	  occurred_at TIMESTAMPTZ NOT NULL,
//	  producer    TEXT NOT NULL,
//	  recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type Record struct {
	EventID    string
	OrderID    int64
	EventType  string
	Actor      string
	FromStatus string
	ToStatus   string
	OccurredAt time.Time
	Producer   string
}

type Repo struct{ DB *pgxpool.Pool }

// Append is idempotent on event id so redelivered Kafka messages cannot
// duplicate trail rows.
func (r *Repo) Append(ctx context.Context, rec Record) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO order_audit(event_id, order_id, event_type, actor, from_status, to_status, occurred_at, producer)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (event_id) DO NOTHING`,
		rec.EventID, rec.OrderID, rec.EventType, rec.Actor, rec.FromStatus, rec.ToStatus, rec.OccurredAt, rec.Producer,
	)
	return err
}

func (r *Repo) ListByOrder(ctx context.Context, orderID int64) ([]Record, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT event_id, order_id, event_type, actor, from_status, to_status, occurred_at, producer
		FROM order_audit WHERE order_id=$1 ORDER BY occurred_at`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.EventID, &rec.OrderID, &rec.EventType, &rec.Actor,
			&rec.FromStatus, &rec.ToStatus, &rec.OccurredAt, &rec.Producer); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
