package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/korichuko/storefront/internal/cart"
)

const latestOrdersLimit = 7

type Handler struct {
	repo  Repository
	carts cart.Repository
}

func NewHandler(repo Repository, carts cart.Repository) *Handler {
	return &Handler{repo: repo, carts: carts}
}

// Dashboard godoc
// @Summary Staff dashboard KPIs and latest orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} admin.Dashboard
// @Router /admin/dashboard [get]
func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	kpis, err := h.repo.KPIs(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
		return
	}
	latest, err := h.repo.LatestOrders(ctx, latestOrdersLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
		return
	}
	if latest == nil {
		latest = []OrderRow{}
	}
	c.JSON(http.StatusOK, Dashboard{KPIs: *kpis, LatestOrders: latest})
}

// OrdersPerDayAPI godoc
// @Summary Orders-per-day chart data for the last N days
// @Produce json
// @Security BearerAuth
// @Param days query int false "window size (default 30)"
// @Param completed_only query bool false "count only completed orders"
// @Success 200 {object} admin.OrdersPerDay
// @Router /admin/api/metrics/orders-per-day [get]
func (h *Handler) OrdersPerDayAPI(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 || days > 365 {
		days = 30
	}
	completedOnly := false
	switch c.Query("completed_only") {
	case "1", "true", "yes":
		completedOnly = true
	}

	byDate, err := h.repo.OrdersPerDay(c.Request.Context(), days, completedOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load metric"})
		return
	}

	out := OrdersPerDay{
		Labels:        make([]string, 0, days),
		Data:          make([]int64, 0, days),
		Days:          days,
		CompletedOnly: completedOnly,
	}
	end := DayKey(time.Now())
	start := end.AddDate(0, 0, -(days - 1))
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		out.Labels = append(out.Labels, d.Format("02 Jan"))
		out.Data = append(out.Data, byDate[d])
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) ListOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	rowsOut, err := h.repo.ListOrders(c.Request.Context(), OrdersQuery{
		Status: c.Query("status"),
		Q:      c.Query("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}
	if rowsOut == nil {
		rowsOut = []OrderRow{}
	}
	c.JSON(http.StatusOK, rowsOut)
}

func (h *Handler) OrderDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	order, err := h.repo.GetOrder(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	items, err := h.carts.Items(c.Request.Context(), order.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order"})
		return
	}

	total := cart.TotalPrice(items)
	lines := make([]gin.H, 0, len(items))
	for _, it := range items {
		lines = append(lines, gin.H{
			"id":           it.ID,
			"product_id":   it.ProductID,
			"product_name": it.ProductName,
			"quantity":     it.Quantity,
			"unit_price":   it.UnitPrice().StringFixed(2),
			"line_total":   it.LineTotal().StringFixed(2),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"order":       order,
		"items":       lines,
		"total_price": total.StringFixed(2),
	})
}

// ToggleCompleted flips an order's completed flag, staff-only manual
// correction with no payment or inventory side effects.
func (h *Handler) ToggleCompleted(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	completed, err := h.repo.ToggleCompleted(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to toggle order"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": id, "completed": completed})
}

func (h *Handler) Customers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	rowsOut, err := h.repo.Customers(c.Request.Context(), c.Query("q"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list customers"})
		return
	}
	if rowsOut == nil {
		rowsOut = []CustomerRow{}
	}
	c.JSON(http.StatusOK, rowsOut)
}

func (h *Handler) CustomerDetail(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	orders, err := h.repo.CustomerOrders(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load customer"})
		return
	}

	totalSpend := "0.00"
	if len(orders) > 0 {
		sum := orders[0].Total
		for _, o := range orders[1:] {
			sum = sum.Add(o.Total)
		}
		totalSpend = sum.StringFixed(2)
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":      userID,
		"orders":       orders,
		"orders_count": len(orders),
		"total_spend":  totalSpend,
	})
}
