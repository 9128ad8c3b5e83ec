package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is the relational Store backend.
//
// Schema:
//
//	CREATE TABLE orders (
//	  id               BIGSERIAL PRIMARY KEY,
//	  user_id          TEXT NOT NULL,
//	  subtotal         DOUBLE PRECISION NOT NULL,
//	  delivery_fee     DOUBLE PRECISION NOT NULL,
//	  total            DOUBLE PRECISION NOT NULL,
//	  status           TEXT NOT NULL,
//	  delivery_address TEXT NOT NULL,
//	  delivery_time    TIMESTAMPTZ NOT NULL,
//	  created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE TABLE order_items (
//	  order_id  BIGINT NOT NULL REFERENCES orders(id),
//	  item_id   INT NOT NULL,
//	  name      TEXT NOT NULL,
//	  price     DOUBLE PRECISION NOT NULL,
//	  bar_name  TEXT NOT NULL,
//	  image_url TEXT NOT NULL,
//	  qty       INT NOT NULL,
//	  pos       INT NOT NULL
//	);
type PgStore struct{ DB *pgxpool.Pool }

func (s *PgStore) CreateOrder(ctx context.Context, in NewOrderInput) (Order, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o := Order{
		UserID:          in.UserID,
		Items:           append([]OrderItem(nil), in.Items...),
		Subtotal:        in.Subtotal,
		DeliveryFee:     in.DeliveryFee,
		Total:           in.Total,
		Status:          StatusPending,
		DeliveryAddress: in.DeliveryAddress,
		DeliveryTime:    in.DeliveryTime,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(user_id, subtotal, delivery_fee, total, status, delivery_address, delivery_time)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at`,
		o.UserID, o.Subtotal, o.DeliveryFee, o.Total, string(o.Status), o.DeliveryAddress, o.DeliveryTime,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return Order{}, err
	}

	for pos, it := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(order_id, item_id, name, price, bar_name, image_url, qty, pos)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			o.ID, it.ID, it.Name, it.Price, it.BarName, it.ImageURL, it.Quantity, pos,
		)
		if err != nil {
			return Order{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (s *PgStore) GetOrder(ctx context.Context, id int64) (Order, error) {
	var o Order
	var status string
	err := s.DB.QueryRow(ctx, `
		SELECT id, user_id, subtotal, delivery_fee, total, status, delivery_address, delivery_time, created_at
		FROM orders WHERE id=$1`, id,
	).Scan(&o.ID, &o.UserID, &o.Subtotal, &o.DeliveryFee, &o.Total, &status, &o.DeliveryAddress, &o.DeliveryTime, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, &NotFoundError{OrderID: id}
	}
	if err != nil {
		return Order{}, err
	}
	o.Status, err = ParseStatus(status)
	if err != nil {
		return Order{}, err
	}
	o.Items, err = s.loadItems(ctx, id)
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func (s *PgStore) GetOrdersByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, user_id, subtotal, delivery_fee, total, status, delivery_address, delivery_time, created_at
		FROM orders WHERE user_id=$1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var status string
		if err := rows.Scan(&o.ID, &o.UserID, &o.Subtotal, &o.DeliveryFee, &o.Total, &status, &o.DeliveryAddress, &o.DeliveryTime, &o.CreatedAt); err != nil {
			return nil, err
		}
		if o.Status, err = ParseStatus(status); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Items, err = s.loadItems(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *PgStore) UpdateOrderStatus(ctx context.Context, id int64, status Status) (Order, error) {
	ct, err := s.DB.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, id, string(status))
	if err != nil {
		return Order{}, err
	}
	if ct.RowsAffected() == 0 {
		return Order{}, &NotFoundError{OrderID: id}
	}
	return s.GetOrder(ctx, id)
}

func (s *PgStore) loadItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT item_id, name, price, bar_name, image_url, qty
		FROM order_items WHERE order_id=$1 ORDER BY pos`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Price, &it.BarName, &it.ImageURL, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
