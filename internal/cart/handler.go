package cart

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/korichuko/storefront/internal/auth"
	"github.com/korichuko/storefront/internal/catalog"
)

type Handler struct {
	svc     *Service
	catalog catalog.Repository
}

func NewHandler(svc *Service, cat catalog.Repository) *Handler {
	return &Handler{svc: svc, catalog: cat}
}

func itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("item_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return 0, false
	}
	return id, true
}

// GetCart godoc
// @Summary Current open cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} cart.Payload
// @Router /cart [get]
func (h *Handler) GetCart(c *gin.Context) {
	userID, _ := auth.UserID(c)
	snap, err := h.svc.CurrentCart(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return
	}
	c.JSON(http.StatusOK, NewPayload(snap, "success", ""))
}

// AddToCart godoc
// @Summary Add one unit of a product to the open cart
// @Produce json
// @Param pk path int true "product id"
// @Success 200 {object} cart.Payload
// @Failure 401 {object} cart.Payload
// @Failure 404 {object} catalog.HTTPError
// @Router /cart/add/{pk} [post]
func (h *Handler) AddToCart(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "unauthenticated",
			"message": "Please log in to add items",
		})
		return
	}

	productID, err := strconv.ParseInt(c.Param("pk"), 10, 64)
	if err != nil || productID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	snap, err := h.svc.AddProduct(c.Request.Context(), userID, product.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add item"})
		return
	}
	msg := fmt.Sprintf("%q added to cart", product.Name)
	c.JSON(http.StatusOK, NewPayload(snap, "success", msg))
}

// RemoveFromCart godoc
// @Summary Remove a line from the open cart
// @Produce json
// @Security BearerAuth
// @Param item_id path int true "order item id"
// @Success 200 {object} cart.Payload
// @Failure 404 {object} catalog.HTTPError
// @Router /cart/remove/{item_id} [post]
func (h *Handler) RemoveFromCart(c *gin.Context) {
	userID, _ := auth.UserID(c)
	id, ok := itemID(c)
	if !ok {
		return
	}

	snap, name, err := h.svc.RemoveItem(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove item"})
		return
	}
	msg := fmt.Sprintf("%q removed from cart", name)
	c.JSON(http.StatusOK, NewPayload(snap, "success", msg))
}

type updateQuantityRequest struct {
	Action   string `form:"action" json:"action"`
	Quantity string `form:"quantity" json:"quantity"`
}

// UpdateQuantity godoc
// @Summary Change a line's quantity (explicit value or increase/decrease)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param item_id path int true "order item id"
// @Success 200 {object} cart.Payload
// @Failure 404 {object} catalog.HTTPError
// @Router /cart/update-quantity/{item_id} [post]
func (h *Handler) UpdateQuantity(c *gin.Context) {
	userID, _ := auth.UserID(c)
	id, ok := itemID(c)
	if !ok {
		return
	}

	var req updateQuantityRequest
	_ = c.ShouldBind(&req)

	change, valid := ParseQuantityChange(req.Action, req.Quantity)

	var (
		snap *Snapshot
		err  error
	)
	if valid {
		snap, err = h.svc.UpdateQuantity(c.Request.Context(), userID, id, change)
	} else {
		// malformed input is ignored: quantity stays as it was
		snap, err = h.svc.ItemSnapshot(c.Request.Context(), userID, id)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update quantity"})
		return
	}
	c.JSON(http.StatusOK, NewPayload(snap, "success", "Quantity updated"))
}
