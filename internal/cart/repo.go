package cart

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("order not found")

type Repository interface {
	// open-order lifecycle
	ListOpenOrders(ctx context.Context, userID int64) ([]Order, error)
	CreateOrder(ctx context.Context, userID int64) (*Order, error)
	DeleteOpenOrdersExcept(ctx context.Context, userID, keepID int64) (int64, error)
	GetOrder(ctx context.Context, orderID, userID int64) (*Order, error)
	MarkCompleted(ctx context.Context, orderID int64) (bool, error)

	// line items
	UpsertItem(ctx context.Context, orderID, productID int64, delta int) error
	DeleteItem(ctx context.Context, itemID, userID int64) (int64, string, error)
	SetItemQuantity(ctx context.Context, itemID, userID int64, qty int) (int64, error)
	BumpItemQuantity(ctx context.Context, itemID, userID int64, delta int) (int64, error)
	Items(ctx context.Context, orderID int64) ([]ItemView, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) ListOpenOrders(ctx context.Context, userID int64) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, created_at, completed
		FROM orders
		WHERE user_id = $1 AND NOT completed
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.CreatedAt, &o.Completed); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PGRepo) CreateOrder(ctx context.Context, userID int64) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o := Order{UserID: userID}
	err := r.db.QueryRow(ctx, `
		INSERT INTO orders (user_id, created_at, completed)
		VALUES ($1, NOW(), FALSE)
		RETURNING id, created_at
	`, userID).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// DeleteOpenOrdersExcept removes duplicate open orders, keeping keepID.
// Items cascade with their order.
func (r *PGRepo) DeleteOpenOrdersExcept(ctx context.Context, userID, keepID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		DELETE FROM orders
		WHERE user_id = $1 AND NOT completed AND id <> $2
	`, userID, keepID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PGRepo) GetOrder(ctx context.Context, orderID, userID int64) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o Order
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, created_at, completed
		FROM orders
		WHERE id = $1 AND user_id = $2
	`, orderID, userID).Scan(&o.ID, &o.UserID, &o.CreatedAt, &o.Completed)
	if err != nil {
		return nil, ErrNotFound
	}
	return &o, nil
}

// MarkCompleted transitions an order open -> completed. The transition is
// one-way; an order already completed reports false, letting callers treat a
// repeated confirmation as a no-op.
func (r *PGRepo) MarkCompleted(ctx context.Context, orderID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET completed = TRUE
		WHERE id = $1 AND NOT completed
	`, orderID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpsertItem is a single atomic statement: a new line always starts at
// quantity 1; an existing line is incremented in place by delta, so two
// concurrent adds for the same product never lose an update.
func (r *PGRepo) UpsertItem(ctx context.Context, orderID, productID int64, delta int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity)
		VALUES ($1, $2, 1)
		ON CONFLICT (order_id, product_id)
		DO UPDATE SET quantity = order_items.quantity + $3
	`, orderID, productID, delta)
	return err
}

// DeleteItem removes a line only when it belongs to an open order owned by
// userID. Returns the order id and product name for payload rendering.
func (r *PGRepo) DeleteItem(ctx context.Context, itemID, userID int64) (int64, string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		orderID int64
		name    string
	)
	err := r.db.QueryRow(ctx, `
		DELETE FROM order_items oi
		USING orders o, products p
		WHERE oi.id = $1 AND o.id = oi.order_id AND p.id = oi.product_id
		  AND o.user_id = $2 AND NOT o.completed
		RETURNING oi.order_id, p.name
	`, itemID, userID).Scan(&orderID, &name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, "", ErrNotFound
		}
		return 0, "", err
	}
	return orderID, name, nil
}

// SetItemQuantity sets the quantity to an explicit value, clamped to >= 1.
func (r *PGRepo) SetItemQuantity(ctx context.Context, itemID, userID int64, qty int) (int64, error) {
	return r.updateQuantity(ctx, itemID, userID, `GREATEST(1, $3::int)`, qty)
}

// BumpItemQuantity applies a relative delta, clamped to >= 1. Decrease never
// deletes the line; removal is a separate explicit action.
func (r *PGRepo) BumpItemQuantity(ctx context.Context, itemID, userID int64, delta int) (int64, error) {
	return r.updateQuantity(ctx, itemID, userID, `GREATEST(1, oi.quantity + $3::int)`, delta)
}

func (r *PGRepo) updateQuantity(ctx context.Context, itemID, userID int64, expr string, arg int) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var orderID int64
	err := r.db.QueryRow(ctx, `
		UPDATE order_items oi
		SET quantity = `+expr+`
		FROM orders o
		WHERE oi.id = $1 AND o.id = oi.order_id
		  AND o.user_id = $2 AND NOT o.completed
		RETURNING oi.order_id
	`, itemID, userID, arg).Scan(&orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return orderID, nil
}

func (r *PGRepo) Items(ctx context.Context, orderID int64) ([]ItemView, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, p.image_url,
		       oi.quantity, p.regular_price::text, p.sale_price::text
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ItemView
	for rows.Next() {
		var it ItemView
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.ImageURL, &it.Quantity, &it.RegularPrice, &it.SalePrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
