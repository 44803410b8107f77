package admin

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayKey collapses a timestamp to UTC midnight. Repo results and handler
// lookups both key per-day maps through it; time.Time map equality includes
// the location, so the two sides must not build keys independently.
func DayKey(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// OrderRow is an order joined to its owner for staff listings.
type OrderRow struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	Completed bool      `json:"completed"`
}

// KPIs are the dashboard headline numbers.
// swagger:model
type KPIs struct {
	Products  int64  `json:"products"`
	Orders    int64  `json:"orders"`
	Pending   int64  `json:"pending"`
	Completed int64  `json:"completed"`
	Revenue   string `json:"revenue"`
}

// Dashboard is the staff landing payload.
// swagger:model
type Dashboard struct {
	KPIs         KPIs       `json:"kpis"`
	LatestOrders []OrderRow `json:"latest_orders"`
}

// OrdersPerDay is the chart payload: one label and one count per day.
// swagger:model
type OrdersPerDay struct {
	Labels        []string `json:"labels"`
	Data          []int64  `json:"data"`
	Days          int      `json:"days"`
	CompletedOnly bool     `json:"completed_only"`
}

// CustomerRow aggregates a user's order count for the customers listing.
type CustomerRow struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	OrdersCount int64  `json:"orders_count"`
}

// CustomerOrder is one order with its derived total for the customer page.
type CustomerOrder struct {
	ID        int64           `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Completed bool            `json:"completed"`
	Total     decimal.Decimal `json:"total"`
}
