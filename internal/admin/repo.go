package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("order not found")

// effective unit price: sale price when set, else regular price
const linePriceExpr = `COALESCE(p.sale_price, p.regular_price)`

type OrdersQuery struct {
	Status string // pending | completed | ""
	Q      string
	Limit  int
	Offset int
}

type Repository interface {
	KPIs(ctx context.Context) (*KPIs, error)
	LatestOrders(ctx context.Context, limit int) ([]OrderRow, error)
	OrdersPerDay(ctx context.Context, days int, completedOnly bool) (map[time.Time]int64, error)
	ListOrders(ctx context.Context, q OrdersQuery) ([]OrderRow, error)
	GetOrder(ctx context.Context, id int64) (*OrderRow, error)
	ToggleCompleted(ctx context.Context, id int64) (bool, error)
	Customers(ctx context.Context, q string, limit, offset int) ([]CustomerRow, error)
	CustomerOrders(ctx context.Context, userID int64) ([]CustomerOrder, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) KPIs(ctx context.Context) (*KPIs, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var k KPIs
	var revenue decimal.NullDecimal
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM orders WHERE NOT completed),
			(SELECT COUNT(*) FROM orders WHERE completed),
			(SELECT SUM(oi.quantity * `+linePriceExpr+`)::text
			 FROM order_items oi
			 JOIN orders o ON o.id = oi.order_id
			 JOIN products p ON p.id = oi.product_id
			 WHERE o.completed)
	`).Scan(&k.Products, &k.Orders, &k.Pending, &k.Completed, &revenue)
	if err != nil {
		return nil, err
	}
	if revenue.Valid {
		k.Revenue = revenue.Decimal.StringFixed(2)
	} else {
		k.Revenue = "0.00"
	}
	return &k, nil
}

func (r *PGRepo) LatestOrders(ctx context.Context, limit int) ([]OrderRow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT o.id, o.user_id, u.username, o.created_at, o.completed
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return collectOrderRows(rows)
}

// OrdersPerDay counts orders grouped by creation date; the handler
// zero-fills the day range.
func (r *PGRepo) OrdersPerDay(ctx context.Context, days int, completedOnly bool) (map[time.Time]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT created_at::date AS d, COUNT(*)
		FROM orders
		WHERE created_at::date >= CURRENT_DATE - ($1::int - 1)
		  AND (NOT $2::bool OR completed)
		GROUP BY d
		ORDER BY d
	`, days, completedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// map keys are UTC midnights; lookups must build keys the same way
	out := make(map[time.Time]int64, days)
	for rows.Next() {
		var (
			d time.Time
			n int64
		)
		if err := rows.Scan(&d, &n); err != nil {
			return nil, err
		}
		out[DayKey(d)] = n
	}
	return out, rows.Err()
}

func (r *PGRepo) ListOrders(ctx context.Context, q OrdersQuery) ([]OrderRow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx, `
		SELECT o.id, o.user_id, u.username, o.created_at, o.completed
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE ($1 = '' OR ($1 = 'pending' AND NOT o.completed) OR ($1 = 'completed' AND o.completed))
		  AND ($2 = '' OR u.username ILIKE '%'||$2||'%' OR o.id::text = $2)
		ORDER BY o.id DESC
		LIMIT $3 OFFSET $4
	`, q.Status, strings.TrimSpace(q.Q), limit, offset)
	if err != nil {
		return nil, err
	}
	return collectOrderRows(rows)
}

func (r *PGRepo) GetOrder(ctx context.Context, id int64) (*OrderRow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o OrderRow
	err := r.db.QueryRow(ctx, `
		SELECT o.id, o.user_id, u.username, o.created_at, o.completed
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`, id).Scan(&o.ID, &o.UserID, &o.Username, &o.CreatedAt, &o.Completed)
	if err != nil {
		return nil, ErrNotFound
	}
	return &o, nil
}

// ToggleCompleted is the staff override: an unconditional flip with no side
// effects, used for manual corrections.
func (r *PGRepo) ToggleCompleted(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var completed bool
	err := r.db.QueryRow(ctx, `
		UPDATE orders SET completed = NOT completed
		WHERE id = $1
		RETURNING completed
	`, id).Scan(&completed)
	if err != nil {
		return false, ErrNotFound
	}
	return completed, nil
}

func (r *PGRepo) Customers(ctx context.Context, q string, limit, offset int) ([]CustomerRow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.username, COUNT(o.id)
		FROM users u
		JOIN orders o ON o.user_id = u.id
		WHERE ($1 = '' OR u.username ILIKE '%'||$1||'%' OR u.id::text = $1)
		GROUP BY u.id, u.username
		ORDER BY COUNT(o.id) DESC
		LIMIT $2 OFFSET $3
	`, strings.TrimSpace(q), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CustomerRow
	for rows.Next() {
		var c CustomerRow
		if err := rows.Scan(&c.UserID, &c.Username, &c.OrdersCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) CustomerOrders(ctx context.Context, userID int64) ([]CustomerOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT o.id, o.created_at, o.completed,
		       COALESCE(SUM(oi.quantity * `+linePriceExpr+`), 0)::text
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE o.user_id = $1
		GROUP BY o.id
		ORDER BY o.id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CustomerOrder
	for rows.Next() {
		var o CustomerOrder
		if err := rows.Scan(&o.ID, &o.CreatedAt, &o.Completed, &o.Total); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func collectOrderRows(rows pgx.Rows) ([]OrderRow, error) {
	defer rows.Close()
	var out []OrderRow
	for rows.Next() {
		var o OrderRow
		if err := rows.Scan(&o.ID, &o.UserID, &o.Username, &o.CreatedAt, &o.Completed); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
