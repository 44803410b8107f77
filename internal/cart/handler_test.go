package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/korichuko/storefront/internal/auth"
	"github.com/korichuko/storefront/internal/catalog"
)

// stubCatalog only serves GetProduct; the cart handler touches nothing else.
type stubCatalog struct {
	products map[int64]*catalog.Product
}

func (s *stubCatalog) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return p, nil
}

// The rest of the interface is unused by the handler; minimum implementations
// for compilation.
func (s *stubCatalog) Categories(context.Context) ([]catalog.Category, error) {
	return nil, fmt.Errorf("not implemented")
}
func (s *stubCatalog) OnSaleProducts(context.Context, int) ([]catalog.Product, error) {
	return nil, fmt.Errorf("not implemented")
}
func (s *stubCatalog) NewProducts(context.Context, int) ([]catalog.Product, error) {
	return nil, fmt.Errorf("not implemented")
}
func (s *stubCatalog) Shop(context.Context, catalog.ShopQuery) ([]catalog.Product, error) {
	return nil, fmt.Errorf("not implemented")
}
func (s *stubCatalog) RelatedProducts(context.Context, *catalog.Product, int) ([]catalog.Product, error) {
	return nil, fmt.Errorf("not implemented")
}
func (s *stubCatalog) ListCategories(context.Context, catalog.Query) ([]catalog.Category, error) {
	return nil, fmt.Errorf("not implemented")
}
func (s *stubCatalog) CreateCategory(context.Context, *catalog.Category) error {
	return fmt.Errorf("not implemented")
}
func (s *stubCatalog) UpdateCategory(context.Context, *catalog.Category) error {
	return fmt.Errorf("not implemented")
}
func (s *stubCatalog) DeleteCategory(context.Context, int64) (bool, error) {
	return false, fmt.Errorf("not implemented")
}
func (s *stubCatalog) ListSubCategories(context.Context, catalog.Query) ([]catalog.SubCategory, error) {
	return nil, fmt.Errorf("not implemented")
}
func (s *stubCatalog) CreateSubCategory(context.Context, *catalog.SubCategory) error {
	return fmt.Errorf("not implemented")
}
func (s *stubCatalog) UpdateSubCategory(context.Context, *catalog.SubCategory) error {
	return fmt.Errorf("not implemented")
}
func (s *stubCatalog) DeleteSubCategory(context.Context, int64) (bool, error) {
	return false, fmt.Errorf("not implemented")
}
func (s *stubCatalog) ListSizes(context.Context, catalog.Query) ([]catalog.Size, error) {
	return nil, fmt.Errorf("not implemented")
}
func (s *stubCatalog) CreateSize(context.Context, *catalog.Size) error {
	return fmt.Errorf("not implemented")
}
func (s *stubCatalog) UpdateSize(context.Context, *catalog.Size) error {
	return fmt.Errorf("not implemented")
}
func (s *stubCatalog) DeleteSize(context.Context, int64) error {
	return fmt.Errorf("not implemented")
}
func (s *stubCatalog) ListProducts(context.Context, catalog.Query) ([]catalog.Product, error) {
	return nil, fmt.Errorf("not implemented")
}
func (s *stubCatalog) CreateProduct(context.Context, *catalog.Product) error {
	return fmt.Errorf("not implemented")
}
func (s *stubCatalog) UpdateProduct(context.Context, *catalog.Product) error {
	return fmt.Errorf("not implemented")
}
func (s *stubCatalog) DeleteProduct(context.Context, int64) (bool, error) {
	return false, fmt.Errorf("not implemented")
}
func (s *stubCatalog) SlugExists(context.Context, string, int64) (bool, error) {
	return false, fmt.Errorf("not implemented")
}

func asUser(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auth.CtxUserIDKey, userID)
		c.Next()
	}
}

func newCartRouter(repo *memRepo, cat catalog.Repository, userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewService(repo), cat)
	r := gin.New()
	grp := r.Group("/")
	if userID != 0 {
		grp.Use(asUser(userID))
	}
	grp.GET("/cart", h.GetCart)
	grp.POST("/cart/add/:pk", h.AddToCart)
	grp.POST("/cart/remove/:item_id", h.RemoveFromCart)
	grp.POST("/cart/update-quantity/:item_id", h.UpdateQuantity)
	return r
}

func TestAddToCart_Unauthenticated(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	pid := repo.addProduct("Choco Bar", "10.00", "")
	cat := &stubCatalog{products: map[int64]*catalog.Product{
		pid: {ID: pid, Name: "Choco Bar"},
	}}
	r := newCartRouter(repo, cat, 0) // no user middleware

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/cart/add/%d", pid), nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "unauthenticated" {
		t.Fatalf("status field = %q, want unauthenticated", body.Status)
	}
	// nothing must have been written
	if len(repo.orders) != 0 || len(repo.items) != 0 {
		t.Fatalf("anonymous add mutated storage: %d orders, %d items", len(repo.orders), len(repo.items))
	}
}

func TestAddToCart_PayloadContract(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	pid := repo.addProduct("Choco Bar", "49.50", "")
	cat := &stubCatalog{products: map[int64]*catalog.Product{
		pid: {ID: pid, Name: "Choco Bar"},
	}}
	r := newCartRouter(repo, cat, 7)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/cart/add/%d", pid), nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var p Payload
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.Status != "success" {
		t.Fatalf("status = %q, want success", p.Status)
	}
	if !strings.Contains(p.Message, `"Choco Bar" added`) {
		t.Fatalf("message = %q", p.Message)
	}
	if p.CartCount != 1 {
		t.Fatalf("cart_count = %d, want 1", p.CartCount)
	}
	if p.TotalPrice != 49.5 {
		t.Fatalf("total_price = %v, want 49.5", p.TotalPrice)
	}
	if !strings.Contains(p.CartHTML, "cart-item") || !strings.Contains(p.CartHTML, "Choco Bar") {
		t.Fatalf("cart_html missing item markup: %q", p.CartHTML)
	}
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	cat := &stubCatalog{products: map[int64]*catalog.Product{}}
	r := newCartRouter(repo, cat, 7)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/add/42", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestUpdateQuantity_MalformedIsIgnored(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	pid := repo.addProduct("Tea", "10.00", "")
	cat := &stubCatalog{products: map[int64]*catalog.Product{
		pid: {ID: pid, Name: "Tea"},
	}}
	r := newCartRouter(repo, cat, 7)

	// seed a line at quantity 1
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/cart/add/%d", pid), nil))
	var seeded Payload
	if err := json.Unmarshal(w.Body.Bytes(), &seeded); err != nil {
		t.Fatal(err)
	}

	var itemID int64
	for id := range repo.items {
		itemID = id
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/cart/update-quantity/%d", itemID),
		strings.NewReader(`{"action":"grow","quantity":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var p Payload
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.CartCount != 1 {
		t.Fatalf("cart_count = %d, want unchanged 1", p.CartCount)
	}
	if repo.items[itemID].Quantity != 1 {
		t.Fatalf("quantity = %d, want unchanged 1", repo.items[itemID].Quantity)
	}
}

func TestRemoveFromCart_NotFound(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	cat := &stubCatalog{products: map[int64]*catalog.Product{}}
	r := newCartRouter(repo, cat, 7)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/remove/999", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}
