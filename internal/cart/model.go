package cart

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/korichuko/storefront/internal/catalog"
)

// Order with completed=false is the user's open cart. A user has at most one
// open order at a time; it is looked up by (user_id, completed=false), never
// held as session state.
type Order struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	Completed bool      `json:"completed"`
}

// Item is one product line inside an order. At most one row exists per
// (order, product); quantity is incremented in place instead of duplicating.
type Item struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// ItemView is an order line joined to its product for rendering.
type ItemView struct {
	ID           int64               `json:"id"`
	OrderID      int64               `json:"order_id"`
	ProductID    int64               `json:"product_id"`
	ProductName  string              `json:"product_name"`
	ImageURL     string              `json:"image_url,omitempty"`
	Quantity     int                 `json:"quantity"`
	RegularPrice decimal.Decimal     `json:"-"`
	SalePrice    decimal.NullDecimal `json:"-"`
}

// UnitPrice is the effective price of the line's product: sale price when
// set, else regular price, clamped to zero on inconsistent data.
func (it ItemView) UnitPrice() decimal.Decimal {
	return catalog.EffectivePrice(it.RegularPrice, it.SalePrice)
}

// LineTotal is quantity times the effective unit price, exact decimal.
func (it ItemView) LineTotal() decimal.Decimal {
	return it.UnitPrice().Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// TotalPrice sums the line totals of an order, exact decimal.
func TotalPrice(items []ItemView) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].LineTotal())
	}
	return total
}

// Snapshot is the cart state handed to the presentation layer.
type Snapshot struct {
	Order Order
	Items []ItemView
}

func (s *Snapshot) CartCount() int {
	n := 0
	for i := range s.Items {
		n += s.Items[i].Quantity
	}
	return n
}

func (s *Snapshot) Total() decimal.Decimal {
	return TotalPrice(s.Items)
}

// QuantityChange is a tagged variant: an explicit target quantity, or a
// relative increase/decrease directive.
type QuantityChange struct {
	kind  changeKind
	value int
}

type changeKind int

const (
	changeSet changeKind = iota
	changeIncrease
	changeDecrease
)

func SetTo(n int) QuantityChange { return QuantityChange{kind: changeSet, value: n} }
func Increase() QuantityChange   { return QuantityChange{kind: changeIncrease} }
func Decrease() QuantityChange   { return QuantityChange{kind: changeDecrease} }

// ParseQuantityChange validates the request payload before dispatch. An
// explicit quantity wins over an action. A malformed quantity or an unknown
// action yields ok=false: the update is ignored, not an error.
func ParseQuantityChange(action, quantity string) (QuantityChange, bool) {
	if quantity != "" {
		n, err := strconv.Atoi(quantity)
		if err != nil {
			return QuantityChange{}, false
		}
		return SetTo(n), true
	}
	switch action {
	case "increase":
		return Increase(), true
	case "decrease":
		return Decrease(), true
	}
	return QuantityChange{}, false
}
