package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ImageURL string `json:"image_url,omitempty"`
}

type SubCategory struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	ImageURL   string `json:"image_url,omitempty"`
	// populated on joined reads
	CategoryName string `json:"category_name,omitempty"`
}

// Size is a reusable unit record (GM, KG, PIECE, BOX, ML, LTR, PACK, ...).
type Size struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

type Product struct {
	ID            int64               `json:"id"`
	Name          string              `json:"name"`
	CategoryID    int64               `json:"category_id"`
	SubCategoryID *int64              `json:"sub_category_id,omitempty"`
	Description   string              `json:"description,omitempty"`
	// NUMERIC in Postgres, decimal here to avoid rounding errors
	RegularPrice decimal.Decimal     `json:"regular_price"`
	SalePrice    decimal.NullDecimal `json:"sale_price,omitempty"`
	SizeValue    decimal.NullDecimal `json:"size_value,omitempty"`
	SizeID       *int64              `json:"size_id,omitempty"`
	ImageURL     string              `json:"image_url,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	OnSale       bool                `json:"on_sale"`
	IsNew        bool                `json:"is_new"`
	Slug         string              `json:"slug"`
	// populated on joined reads
	CategoryName    string `json:"category_name,omitempty"`
	SubCategoryName string `json:"sub_category_name,omitempty"`
	SizeAbbr        string `json:"size_abbr,omitempty"`
}

// EffectivePrice is the sale price when set, else the regular price.
// Inconsistent price data (negative values) degrades to zero, never an error.
func EffectivePrice(regular decimal.Decimal, sale decimal.NullDecimal) decimal.Decimal {
	price := regular
	if sale.Valid {
		price = sale.Decimal
	}
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

func (p *Product) EffectivePrice() decimal.Decimal {
	return EffectivePrice(p.RegularPrice, p.SalePrice)
}

// DiscountPercent is the integer percentage off the regular price, 0 when
// the product is not discounted or the price data does not add up.
func (p *Product) DiscountPercent() int {
	if !p.SalePrice.Valid || !p.RegularPrice.IsPositive() {
		return 0
	}
	if p.SalePrice.Decimal.GreaterThanOrEqual(p.RegularPrice) {
		return 0
	}
	pct := p.RegularPrice.Sub(p.SalePrice.Decimal).
		Div(p.RegularPrice).
		Mul(decimal.NewFromInt(100))
	return int(pct.IntPart())
}

// SizeDisplay renders "500 GM" style labels; empty when size data is incomplete.
func (p *Product) SizeDisplay() string {
	if p.SizeID == nil || !p.SizeValue.Valid || p.SizeAbbr == "" {
		return ""
	}
	v := p.SizeValue.Decimal
	if v.Equal(v.Truncate(0)) {
		v = v.Truncate(0)
	}
	return v.String() + " " + p.SizeAbbr
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error string `json:"error"`
}

// HomePage is the storefront landing payload.
// swagger:model
type HomePage struct {
	DiscountedProducts []Product  `json:"discounted_products"`
	NewProducts        []Product  `json:"new_products"`
	Categories         []Category `json:"categories"`
}

// ProductDetail is a product plus its related products.
// swagger:model
type ProductDetail struct {
	Product Product          `json:"product"`
	Related []RelatedProduct `json:"related_products"`
}

type RelatedProduct struct {
	Product
	DiscountPct int `json:"discount_percent"`
}
