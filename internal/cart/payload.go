package cart

import (
	"html/template"
	"log"
	"strings"
)

// Payload is the JSON cart contract consumed by the storefront scripts:
// {status, message, cart_count, total_price, cart_html}. total_price is a
// float for presentation only; all arithmetic stays decimal.
// swagger:model
type Payload struct {
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	CartCount  int     `json:"cart_count"`
	TotalPrice float64 `json:"total_price"`
	CartHTML   string  `json:"cart_html"`
}

var cartItemsTmpl = template.Must(template.New("cart_items").Parse(`{{range .Items}}<div class="cart-item" data-item-id="{{.ID}}">
  <span class="cart-item-name">{{.ProductName}}</span>
  <span class="cart-item-qty">{{.Quantity}}</span>
  <span class="cart-item-line-total">{{.LineTotal.StringFixed 2}}</span>
</div>
{{else}}<p class="cart-empty">Your cart is empty.</p>
{{end}}`))

// NewPayload renders a snapshot into the wire payload. status must be
// "success" for the storefront cart handler to apply it.
func NewPayload(snap *Snapshot, status, message string) Payload {
	var sb strings.Builder
	if err := cartItemsTmpl.Execute(&sb, snap); err != nil {
		log.Printf("[cart] render cart_html: %v", err)
	}
	total, _ := snap.Total().Float64()
	return Payload{
		Status:     status,
		Message:    message,
		CartCount:  snap.CartCount(),
		TotalPrice: total,
		CartHTML:   sb.String(),
	}
}
