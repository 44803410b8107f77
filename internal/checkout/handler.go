package checkout

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/korichuko/storefront/internal/auth"
	"github.com/korichuko/storefront/internal/cart"
)

type Handler struct {
	co    *Coordinator
	carts *cart.Service
}

func NewHandler(co *Coordinator, carts *cart.Service) *Handler {
	return &Handler{co: co, carts: carts}
}

func orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("order_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return 0, false
	}
	return id, true
}

type checkoutRequest struct {
	PaymentMethod string `json:"payment_method" form:"payment_method"`
}

// ShowCheckout returns the open order for the checkout page.
func (h *Handler) ShowCheckout(c *gin.Context) {
	userID, _ := auth.UserID(c)
	order, err := h.carts.GetOpenOrder(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no open order"})
		return
	}
	snap, err := h.carts.OrderSnapshot(c.Request.Context(), order)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order"})
		return
	}
	c.JSON(http.StatusOK, orderView(snap))
}

// Checkout godoc
// @Summary Check out the open order (cod or razorpay)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body checkout.checkoutRequest true "payment method"
// @Success 200 {object} checkout.PaymentSession
// @Failure 404 {object} catalog.HTTPError
// @Router /checkout [post]
func (h *Handler) Checkout(c *gin.Context) {
	userID, _ := auth.UserID(c)

	var req checkoutRequest
	_ = c.ShouldBind(&req)

	switch req.PaymentMethod {
	case "cod":
		order, err := h.co.CompleteCOD(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no open order"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "order_id": order.ID})

	case "razorpay":
		session, err := h.co.StartOnlinePayment(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no open order"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to start payment"})
			return
		}
		c.JSON(http.StatusOK, session)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown payment_method"})
	}
}

// PaymentCallback godoc
// @Summary Gateway callback: verify signature and complete the order
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param order_id path int true "order id"
// @Param body body checkout.Callback true "gateway callback"
// @Success 200 {object} map[string]any
// @Failure 400 {object} catalog.HTTPError
// @Failure 404 {object} catalog.HTTPError
// @Router /paymenthandler/{order_id} [post]
func (h *Handler) PaymentCallback(c *gin.Context) {
	userID, _ := auth.UserID(c)
	id, ok := orderID(c)
	if !ok {
		return
	}

	var cb Callback
	_ = c.ShouldBind(&cb)

	order, err := h.co.ConfirmPayment(c.Request.Context(), userID, id, cb)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.Is(err, ErrPaymentVerification):
			c.JSON(http.StatusBadRequest, gin.H{"error": "payment verification failed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "payment handling failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "order_id": order.ID})
}

// OrderSuccess returns a completed order for the success page.
func (h *Handler) OrderSuccess(c *gin.Context) {
	userID, _ := auth.UserID(c)
	id, ok := orderID(c)
	if !ok {
		return
	}
	snap, err := h.co.CompletedOrder(c.Request.Context(), userID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, orderView(snap))
}

type lineView struct {
	ID          int64   `json:"id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   string  `json:"unit_price"`
	LineTotal   string  `json:"line_total"`
}

func orderView(snap *cart.Snapshot) gin.H {
	lines := make([]lineView, 0, len(snap.Items))
	total := decimal.Zero
	for _, it := range snap.Items {
		lines = append(lines, lineView{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice().StringFixed(2),
			LineTotal:   it.LineTotal().StringFixed(2),
		})
		total = total.Add(it.LineTotal())
	}
	return gin.H{
		"order_id":    snap.Order.ID,
		"completed":   snap.Order.Completed,
		"created_at":  snap.Order.CreatedAt,
		"items":       lines,
		"cart_count":  snap.CartCount(),
		"total_price": total.StringFixed(2),
	}
}
