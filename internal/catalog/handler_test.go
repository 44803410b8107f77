package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

//
// ---------- STUBS & FAKES ----------
//

// stubRepo records the queries the handlers build and answers from fixtures.
type stubRepo struct {
	lastShop      *ShopQuery
	products      map[int64]*Product
	createSizeErr error
	deleteSizeErr error
}

func (s *stubRepo) Shop(ctx context.Context, q ShopQuery) ([]Product, error) {
	cp := q
	s.lastShop = &cp
	return []Product{}, nil
}

func (s *stubRepo) GetProduct(ctx context.Context, id int64) (*Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *stubRepo) RelatedProducts(ctx context.Context, p *Product, limit int) ([]Product, error) {
	return []Product{}, nil
}

func (s *stubRepo) CreateSize(ctx context.Context, sz *Size) error {
	if s.createSizeErr != nil {
		return s.createSizeErr
	}
	sz.ID = 1
	return nil
}

func (s *stubRepo) DeleteSize(ctx context.Context, id int64) error {
	return s.deleteSizeErr
}

// unused by these tests; minimum implementations for compilation
func (s *stubRepo) Categories(context.Context) ([]Category, error) {
	return nil, fmt.Errorf("not implemented")
}
func (s *stubRepo) OnSaleProducts(context.Context, int) ([]Product, error) {
	return nil, fmt.Errorf("not implemented")
}
func (s *stubRepo) NewProducts(context.Context, int) ([]Product, error) {
	return nil, fmt.Errorf("not implemented")
}
func (s *stubRepo) ListCategories(context.Context, Query) ([]Category, error) {
	return nil, fmt.Errorf("not implemented")
}
func (s *stubRepo) CreateCategory(context.Context, *Category) error {
	return fmt.Errorf("not implemented")
}
func (s *stubRepo) UpdateCategory(context.Context, *Category) error {
	return fmt.Errorf("not implemented")
}
func (s *stubRepo) DeleteCategory(context.Context, int64) (bool, error) {
	return false, fmt.Errorf("not implemented")
}
func (s *stubRepo) ListSubCategories(context.Context, Query) ([]SubCategory, error) {
	return nil, fmt.Errorf("not implemented")
}
func (s *stubRepo) CreateSubCategory(context.Context, *SubCategory) error {
	return fmt.Errorf("not implemented")
}
func (s *stubRepo) UpdateSubCategory(context.Context, *SubCategory) error {
	return fmt.Errorf("not implemented")
}
func (s *stubRepo) DeleteSubCategory(context.Context, int64) (bool, error) {
	return false, fmt.Errorf("not implemented")
}
func (s *stubRepo) ListSizes(context.Context, Query) ([]Size, error) {
	return nil, fmt.Errorf("not implemented")
}
func (s *stubRepo) UpdateSize(context.Context, *Size) error {
	return fmt.Errorf("not implemented")
}
func (s *stubRepo) ListProducts(context.Context, Query) ([]Product, error) {
	return nil, fmt.Errorf("not implemented")
}
func (s *stubRepo) CreateProduct(context.Context, *Product) error {
	return fmt.Errorf("not implemented")
}
func (s *stubRepo) UpdateProduct(context.Context, *Product) error {
	return fmt.Errorf("not implemented")
}
func (s *stubRepo) DeleteProduct(context.Context, int64) (bool, error) {
	return false, fmt.Errorf("not implemented")
}
func (s *stubRepo) SlugExists(context.Context, string, int64) (bool, error) {
	return false, fmt.Errorf("not implemented")
}

func newCatalogRouter(repo *stubRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(repo, nil) // no cache in tests
	r := gin.New()
	r.GET("/shop", h.Shop)
	r.GET("/products/:id", h.ProductDetail)
	r.POST("/admin/sizes", h.AdminCreateSize)
	r.DELETE("/admin/sizes/:id", h.AdminDeleteSize)
	return r
}

//
// ---------- TESTS ----------
//

func TestShop_QueryParsing(t *testing.T) {
	t.Parallel()

	cases := []struct {
		query        string
		wantCategory string
		wantValid    bool
		wantMax      string
		wantSort     string
	}{
		{"", "", false, "", ""},
		{"?category=snacks&sort=price_asc", "snacks", false, "", "price_asc"},
		{"?max_price=99.50", "", true, "99.50", ""},
		{"?max_price=abc", "", false, "", ""}, // malformed price is ignored
		{"?max_price=", "", false, "", ""},
	}
	for _, tc := range cases {
		repo := &stubRepo{}
		r := newCatalogRouter(repo)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/shop"+tc.query, nil))

		if w.Code != http.StatusOK {
			t.Fatalf("%s: status=%d body=%s", tc.query, w.Code, w.Body.String())
		}
		got := repo.lastShop
		if got == nil {
			t.Fatalf("%s: repo never queried", tc.query)
		}
		if got.CategorySlug != tc.wantCategory || got.Sort != tc.wantSort {
			t.Errorf("%s: query = %+v", tc.query, got)
		}
		if got.MaxPrice.Valid != tc.wantValid {
			t.Errorf("%s: MaxPrice.Valid = %v, want %v", tc.query, got.MaxPrice.Valid, tc.wantValid)
		}
		if tc.wantValid && got.MaxPrice.Decimal.StringFixed(2) != tc.wantMax {
			t.Errorf("%s: MaxPrice = %s, want %s", tc.query, got.MaxPrice.Decimal, tc.wantMax)
		}
	}
}

func TestProductDetail_NotFound(t *testing.T) {
	t.Parallel()

	r := newCatalogRouter(&stubRepo{products: map[int64]*Product{}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/42", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestAdminCreateSize_Duplicate(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{createSizeErr: fmt.Errorf(`duplicate key value violates unique constraint "sizes_name_key"`)}
	r := newCatalogRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/sizes",
		strings.NewReader(`{"name":"Kilogram","abbreviation":"KG"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestAdminDeleteSize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"deleted", nil, http.StatusOK},
		{"in use", ErrSizeInUse, http.StatusConflict},
		{"missing", ErrNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		repo := &stubRepo{deleteSizeErr: tc.err}
		r := newCatalogRouter(repo)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/sizes/3", nil))

		if w.Code != tc.wantStatus {
			t.Errorf("%s: status=%d, want %d (body=%s)", tc.name, w.Code, tc.wantStatus, w.Body.String())
		}
	}
}
