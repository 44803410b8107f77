package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Staff-only CRUD over the catalog reference data. Mounted behind the staff
// middleware; ownership checks are not needed here.

// CategoryRequest payload for category create/update.
// swagger:model CategoryRequest
type CategoryRequest struct {
	Name     string `json:"name" example:"Snacks"`
	Slug     string `json:"slug" example:"snacks"`
	ImageURL string `json:"image_url"`
}

// SubCategoryRequest payload for sub-category create/update.
// swagger:model SubCategoryRequest
type SubCategoryRequest struct {
	CategoryID int64  `json:"category_id" example:"1"`
	Name       string `json:"name" example:"Chips"`
	Slug       string `json:"slug"`
	ImageURL   string `json:"image_url"`
}

// SizeRequest payload for size create/update.
// swagger:model SizeRequest
type SizeRequest struct {
	Name         string `json:"name" example:"Kilogram"`
	Abbreviation string `json:"abbreviation" example:"KG"`
}

// ProductRequest payload for product create/update.
// swagger:model ProductRequest
type ProductRequest struct {
	Name          string `json:"name" example:"Basmati Rice"`
	CategoryID    int64  `json:"category_id" example:"1"`
	SubCategoryID *int64 `json:"sub_category_id"`
	Description   string `json:"description"`
	RegularPrice  string `json:"regular_price" example:"199.90"`
	SalePrice     string `json:"sale_price" example:"149.90"`
	SizeValue     string `json:"size_value" example:"5"`
	SizeID        *int64 `json:"size_id"`
	ImageURL      string `json:"image_url"`
	OnSale        bool   `json:"on_sale"`
	IsNew         bool   `json:"is_new"`
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, HTTPError{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func pageQuery(c *gin.Context) Query {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return Query{Q: c.Query("q"), Limit: limit, Offset: offset}
}

// ---------- categories ----------

func (h *Handler) AdminListCategories(c *gin.Context) {
	out, err := h.repo.ListCategories(c.Request.Context(), pageQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "failed to list categories"})
		return
	}
	if out == nil {
		out = []Category{}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) AdminCreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, HTTPError{Error: "name is required"})
		return
	}
	cat := &Category{Name: req.Name, Slug: req.Slug, ImageURL: req.ImageURL}
	if err := h.repo.CreateCategory(c.Request.Context(), cat); err != nil {
		c.JSON(http.StatusConflict, HTTPError{Error: "category already exists"})
		return
	}
	h.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, cat)
}

func (h *Handler) AdminUpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, HTTPError{Error: "invalid payload"})
		return
	}
	cat := &Category{ID: id, Name: req.Name, Slug: req.Slug, ImageURL: req.ImageURL}
	if err := h.repo.UpdateCategory(c.Request.Context(), cat); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, HTTPError{Error: "category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "failed to update category"})
		return
	}
	h.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) AdminDeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	deleted, err := h.repo.DeleteCategory(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "failed to delete category"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, HTTPError{Error: "category not found"})
		return
	}
	h.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ---------- subcategories ----------

func (h *Handler) AdminListSubCategories(c *gin.Context) {
	out, err := h.repo.ListSubCategories(c.Request.Context(), pageQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "failed to list sub-categories"})
		return
	}
	if out == nil {
		out = []SubCategory{}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) AdminCreateSubCategory(c *gin.Context) {
	var req SubCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.CategoryID <= 0 {
		c.JSON(http.StatusBadRequest, HTTPError{Error: "name and category_id are required"})
		return
	}
	sc := &SubCategory{CategoryID: req.CategoryID, Name: req.Name, Slug: req.Slug, ImageURL: req.ImageURL}
	if err := h.repo.CreateSubCategory(c.Request.Context(), sc); err != nil {
		c.JSON(http.StatusConflict, HTTPError{Error: "sub-category already exists"})
		return
	}
	c.JSON(http.StatusCreated, sc)
}

func (h *Handler) AdminUpdateSubCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req SubCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, HTTPError{Error: "invalid payload"})
		return
	}
	sc := &SubCategory{ID: id, CategoryID: req.CategoryID, Name: req.Name, Slug: req.Slug, ImageURL: req.ImageURL}
	if err := h.repo.UpdateSubCategory(c.Request.Context(), sc); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, HTTPError{Error: "sub-category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "failed to update sub-category"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) AdminDeleteSubCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	deleted, err := h.repo.DeleteSubCategory(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "failed to delete sub-category"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, HTTPError{Error: "sub-category not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ---------- sizes ----------

func (h *Handler) AdminListSizes(c *gin.Context) {
	out, err := h.repo.ListSizes(c.Request.Context(), pageQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "failed to list sizes"})
		return
	}
	if out == nil {
		out = []Size{}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) AdminCreateSize(c *gin.Context) {
	var req SizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Abbreviation == "" {
		c.JSON(http.StatusBadRequest, HTTPError{Error: "name and abbreviation are required"})
		return
	}
	s := &Size{Name: req.Name, Abbreviation: req.Abbreviation}
	if err := h.repo.CreateSize(c.Request.Context(), s); err != nil {
		c.JSON(http.StatusConflict, HTTPError{Error: "size already exists"})
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *Handler) AdminUpdateSize(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req SizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, HTTPError{Error: "invalid payload"})
		return
	}
	s := &Size{ID: id, Name: req.Name, Abbreviation: req.Abbreviation}
	if err := h.repo.UpdateSize(c.Request.Context(), s); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, HTTPError{Error: "size not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "failed to update size"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// AdminDeleteSize refuses to delete a size still referenced by products.
func (h *Handler) AdminDeleteSize(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	err := h.repo.DeleteSize(c.Request.Context(), id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	case errors.Is(err, ErrSizeInUse):
		c.JSON(http.StatusConflict, HTTPError{Error: "size is in use by products"})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, HTTPError{Error: "size not found"})
	default:
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "failed to delete size"})
	}
}

// ---------- products ----------

func (h *Handler) AdminListProducts(c *gin.Context) {
	out, err := h.repo.ListProducts(c.Request.Context(), pageQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "failed to list products"})
		return
	}
	if out == nil {
		out = []Product{}
	}
	c.JSON(http.StatusOK, out)
}

func productFromRequest(req ProductRequest) (*Product, error) {
	regular, err := decimal.NewFromString(req.RegularPrice)
	if err != nil || regular.IsNegative() {
		return nil, errors.New("invalid regular_price")
	}
	p := &Product{
		Name:          req.Name,
		CategoryID:    req.CategoryID,
		SubCategoryID: req.SubCategoryID,
		Description:   req.Description,
		RegularPrice:  regular,
		SizeID:        req.SizeID,
		ImageURL:      req.ImageURL,
		OnSale:        req.OnSale,
		IsNew:         req.IsNew,
	}
	if req.SalePrice != "" {
		sale, err := decimal.NewFromString(req.SalePrice)
		if err != nil || sale.IsNegative() {
			return nil, errors.New("invalid sale_price")
		}
		p.SalePrice = decimal.NullDecimal{Decimal: sale, Valid: true}
	}
	if req.SizeValue != "" {
		sv, err := decimal.NewFromString(req.SizeValue)
		if err != nil {
			return nil, errors.New("invalid size_value")
		}
		p.SizeValue = decimal.NullDecimal{Decimal: sv, Valid: true}
	}
	return p, nil
}

// AdminCreateProduct godoc
// @Summary Create a product (staff)
// @Accept json
// @Produce json
// @Param product body catalog.ProductRequest true "product"
// @Success 201 {object} catalog.Product
// @Failure 400 {object} catalog.HTTPError
// @Router /admin/products [post]
func (h *Handler) AdminCreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.CategoryID <= 0 {
		c.JSON(http.StatusBadRequest, HTTPError{Error: "name and category_id are required"})
		return
	}
	p, err := productFromRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, HTTPError{Error: err.Error()})
		return
	}
	if err := h.repo.CreateProduct(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "failed to create product"})
		return
	}
	h.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) AdminUpdateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, HTTPError{Error: "invalid payload"})
		return
	}
	p, err := productFromRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, HTTPError{Error: err.Error()})
		return
	}
	p.ID = id
	if err := h.repo.UpdateProduct(c.Request.Context(), p); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, HTTPError{Error: "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "failed to update product"})
		return
	}
	h.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) AdminDeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	deleted, err := h.repo.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, HTTPError{Error: "failed to delete product"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, HTTPError{Error: "product not found"})
		return
	}
	h.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
