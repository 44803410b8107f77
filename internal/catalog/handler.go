package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	homeSectionLimit = 6
	relatedLimit     = 4
)

type Handler struct {
	repo  Repository
	cache *HomeCache
}

func NewHandler(repo Repository, cache *HomeCache) *Handler {
	return &Handler{repo: repo, cache: cache}
}

// Home godoc
// @Summary Storefront landing page data
// @Produce json
// @Success 200 {object} catalog.HomePage
// @Router / [get]
func (h *Handler) Home(c *gin.Context) {
	ctx := c.Request.Context()
	if page, ok := h.cache.Get(ctx); ok {
		c.JSON(http.StatusOK, page)
		return
	}

	discounted, err := h.repo.OnSaleProducts(ctx, homeSectionLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "failed to load home"})
		return
	}
	fresh, err := h.repo.NewProducts(ctx, homeSectionLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "failed to load home"})
		return
	}
	cats, err := h.repo.Categories(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "failed to load home"})
		return
	}

	page := &HomePage{DiscountedProducts: discounted, NewProducts: fresh, Categories: cats}
	h.cache.Set(ctx, page)
	c.JSON(http.StatusOK, page)
}

// Shop godoc
// @Summary List products with category/price filters
// @Produce json
// @Param category query string false "category slug"
// @Param max_price query string false "maximum effective price"
// @Param sort query string false "price_asc | price_desc"
// @Success 200 {array} catalog.Product
// @Router /shop [get]
func (h *Handler) Shop(c *gin.Context) {
	q := ShopQuery{
		CategorySlug: c.Query("category"),
		Sort:         c.Query("sort"),
	}
	// a malformed max_price is ignored, same as an absent one
	if raw := c.Query("max_price"); raw != "" {
		if d, err := decimal.NewFromString(raw); err == nil {
			q.MaxPrice = decimal.NullDecimal{Decimal: d, Valid: true}
		}
	}

	products, err := h.repo.Shop(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "failed to load products"})
		return
	}
	if products == nil {
		products = []Product{}
	}
	c.JSON(http.StatusOK, products)
}

// ProductDetail godoc
// @Summary Product page with related products
// @Produce json
// @Param id path int true "product id"
// @Success 200 {object} catalog.ProductDetail
// @Failure 404 {object} catalog.HTTPError
// @Router /products/{id} [get]
func (h *Handler) ProductDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, HTTPError{Error: "invalid product id"})
		return
	}

	p, err := h.repo.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, HTTPError{Error: "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "failed to load product"})
		return
	}

	related, err := h.repo.RelatedProducts(c.Request.Context(), p, relatedLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "failed to load product"})
		return
	}

	out := ProductDetail{Product: *p, Related: make([]RelatedProduct, 0, len(related))}
	for _, rp := range related {
		out.Related = append(out.Related, RelatedProduct{Product: rp, DiscountPct: rp.DiscountPercent()})
	}
	c.JSON(http.StatusOK, out)
}
