package cart

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
)

//
// ---------- STUBS & FAKES ----------
//

type memProduct struct {
	name    string
	regular decimal.Decimal
	sale    decimal.NullDecimal
}

// memRepo implements Repository in memory, mirroring the SQL semantics:
// ownership checks on every mutation and GREATEST(1, ...) clamping.
type memRepo struct {
	nextID   int64
	orders   map[int64]*Order
	items    map[int64]*Item
	products map[int64]memProduct
}

func newMemRepo() *memRepo {
	return &memRepo{
		orders:   map[int64]*Order{},
		items:    map[int64]*Item{},
		products: map[int64]memProduct{},
	}
}

func (m *memRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memRepo) addProduct(name, regular string, sale string) int64 {
	id := m.id()
	p := memProduct{name: name, regular: decimal.RequireFromString(regular)}
	if sale != "" {
		p.sale = decimal.NewNullDecimal(decimal.RequireFromString(sale))
	}
	m.products[id] = p
	return id
}

func (m *memRepo) seedOpenOrder(userID int64) *Order {
	o := &Order{ID: m.id(), UserID: userID}
	m.orders[o.ID] = o
	return o
}

func (m *memRepo) ListOpenOrders(ctx context.Context, userID int64) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if o.UserID == userID && !o.Completed {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) CreateOrder(ctx context.Context, userID int64) (*Order, error) {
	o := m.seedOpenOrder(userID)
	cp := *o
	return &cp, nil
}

func (m *memRepo) DeleteOpenOrdersExcept(ctx context.Context, userID, keepID int64) (int64, error) {
	var n int64
	for id, o := range m.orders {
		if o.UserID == userID && !o.Completed && id != keepID {
			delete(m.orders, id)
			for iid, it := range m.items {
				if it.OrderID == id {
					delete(m.items, iid)
				}
			}
			n++
		}
	}
	return n, nil
}

func (m *memRepo) GetOrder(ctx context.Context, orderID, userID int64) (*Order, error) {
	o, ok := m.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memRepo) MarkCompleted(ctx context.Context, orderID int64) (bool, error) {
	o, ok := m.orders[orderID]
	if !ok || o.Completed {
		return false, nil
	}
	o.Completed = true
	return true, nil
}

func (m *memRepo) UpsertItem(ctx context.Context, orderID, productID int64, delta int) error {
	for _, it := range m.items {
		if it.OrderID == orderID && it.ProductID == productID {
			it.Quantity += delta
			return nil
		}
	}
	it := &Item{ID: m.id(), OrderID: orderID, ProductID: productID, Quantity: 1}
	m.items[it.ID] = it
	return nil
}

func (m *memRepo) DeleteItem(ctx context.Context, itemID, userID int64) (int64, string, error) {
	it, ok := m.items[itemID]
	if !ok {
		return 0, "", ErrNotFound
	}
	o, ok := m.orders[it.OrderID]
	if !ok || o.UserID != userID || o.Completed {
		return 0, "", ErrNotFound
	}
	delete(m.items, itemID)
	return it.OrderID, m.products[it.ProductID].name, nil
}

func (m *memRepo) SetItemQuantity(ctx context.Context, itemID, userID int64, qty int) (int64, error) {
	return m.update(itemID, userID, func(q int) int { return qty })
}

func (m *memRepo) BumpItemQuantity(ctx context.Context, itemID, userID int64, delta int) (int64, error) {
	return m.update(itemID, userID, func(q int) int { return q + delta })
}

func (m *memRepo) update(itemID, userID int64, f func(int) int) (int64, error) {
	it, ok := m.items[itemID]
	if !ok {
		return 0, ErrNotFound
	}
	o, ok := m.orders[it.OrderID]
	if !ok || o.UserID != userID || o.Completed {
		return 0, ErrNotFound
	}
	q := f(it.Quantity)
	if q < 1 {
		q = 1
	}
	it.Quantity = q
	return it.OrderID, nil
}

func (m *memRepo) Items(ctx context.Context, orderID int64) ([]ItemView, error) {
	var out []ItemView
	for _, it := range m.items {
		if it.OrderID != orderID {
			continue
		}
		p := m.products[it.ProductID]
		out = append(out, ItemView{
			ID:           it.ID,
			OrderID:      it.OrderID,
			ProductID:    it.ProductID,
			ProductName:  p.name,
			Quantity:     it.Quantity,
			RegularPrice: p.regular,
			SalePrice:    p.sale,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

//
// ---------- TESTS ----------
//

func TestGetOrCreateOpenOrder_CreatesLazily(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	svc := NewService(repo)

	first, err := svc.GetOrCreateOpenOrder(context.Background(), 7)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.GetOrCreateOpenOrder(context.Background(), 7)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same open order, got %d then %d", first.ID, second.ID)
	}
	open, _ := repo.ListOpenOrders(context.Background(), 7)
	if len(open) != 1 {
		t.Fatalf("open orders = %d, want 1", len(open))
	}
}

func TestGetOrCreateOpenOrder_RepairsDuplicates(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	oldest := repo.seedOpenOrder(7)
	repo.seedOpenOrder(7)
	repo.seedOpenOrder(7)
	svc := NewService(repo)

	got, err := svc.GetOrCreateOpenOrder(context.Background(), 7)
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	if got.ID != oldest.ID {
		t.Fatalf("kept order %d, want oldest %d", got.ID, oldest.ID)
	}
	open, _ := repo.ListOpenOrders(context.Background(), 7)
	if len(open) != 1 || open[0].ID != oldest.ID {
		t.Fatalf("after repair open=%v, want just %d", open, oldest.ID)
	}
}

func TestGetOpenOrder_NoneIsNotFound(t *testing.T) {
	t.Parallel()

	svc := NewService(newMemRepo())
	if _, err := svc.GetOpenOrder(context.Background(), 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAddProduct_SameProductIncrements(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	pid := repo.addProduct("Choco Bar", "10.00", "")
	svc := NewService(repo)

	if _, err := svc.AddProduct(context.Background(), 7, pid); err != nil {
		t.Fatalf("first add: %v", err)
	}
	snap, err := svc.AddProduct(context.Background(), 7, pid)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(snap.Items) != 1 {
		t.Fatalf("lines = %d, want 1", len(snap.Items))
	}
	if snap.Items[0].Quantity != 2 {
		t.Fatalf("quantity = %d, want 2", snap.Items[0].Quantity)
	}
	if snap.CartCount() != 2 {
		t.Fatalf("cart count = %d, want 2", snap.CartCount())
	}
}

func TestSnapshotTotal_ExactDecimal(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	a := repo.addProduct("Tea", "100.00", "")
	b := repo.addProduct("Coffee", "80.00", "50.00") // on sale
	svc := NewService(repo)

	if _, err := svc.AddProduct(context.Background(), 7, a); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddProduct(context.Background(), 7, a); err != nil {
		t.Fatal(err)
	}
	snap, err := svc.AddProduct(context.Background(), 7, b)
	if err != nil {
		t.Fatal(err)
	}
	// 100.00*2 + 50.00, sale price wins over regular
	if got := snap.Total().StringFixed(2); got != "250.00" {
		t.Fatalf("total = %s, want 250.00", got)
	}
}

func TestUpdateQuantity_ClampsAtOne(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	pid := repo.addProduct("Tea", "10.00", "")
	svc := NewService(repo)

	snap, err := svc.AddProduct(context.Background(), 7, pid)
	if err != nil {
		t.Fatal(err)
	}
	itemID := snap.Items[0].ID

	snap, err = svc.UpdateQuantity(context.Background(), 7, itemID, Decrease())
	if err != nil {
		t.Fatalf("decrease: %v", err)
	}
	if q := snap.Items[0].Quantity; q != 1 {
		t.Fatalf("quantity after decrease at 1 = %d, want 1", q)
	}

	snap, err = svc.UpdateQuantity(context.Background(), 7, itemID, SetTo(0))
	if err != nil {
		t.Fatalf("set 0: %v", err)
	}
	if q := snap.Items[0].Quantity; q != 1 {
		t.Fatalf("quantity after set 0 = %d, want 1", q)
	}

	snap, err = svc.UpdateQuantity(context.Background(), 7, itemID, SetTo(5))
	if err != nil {
		t.Fatalf("set 5: %v", err)
	}
	if q := snap.Items[0].Quantity; q != 5 {
		t.Fatalf("quantity after set 5 = %d, want 5", q)
	}
}

func TestRemoveItem_OtherUsersItem(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	pid := repo.addProduct("Tea", "10.00", "")
	svc := NewService(repo)

	snap, err := svc.AddProduct(context.Background(), 7, pid)
	if err != nil {
		t.Fatal(err)
	}
	itemID := snap.Items[0].ID

	if _, _, err := svc.RemoveItem(context.Background(), 99, itemID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	// the line must still be there for its owner
	own, err := svc.CurrentCart(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(own.Items) != 1 {
		t.Fatalf("owner lost the line: %d items", len(own.Items))
	}
}

func TestRemoveItem_ReturnsProductName(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	pid := repo.addProduct("Choco Bar", "10.00", "")
	svc := NewService(repo)

	snap, err := svc.AddProduct(context.Background(), 7, pid)
	if err != nil {
		t.Fatal(err)
	}
	after, name, err := svc.RemoveItem(context.Background(), 7, snap.Items[0].ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if name != "Choco Bar" {
		t.Fatalf("name = %q, want Choco Bar", name)
	}
	if len(after.Items) != 0 {
		t.Fatalf("items after remove = %d, want 0", len(after.Items))
	}
}

func TestParseQuantityChange(t *testing.T) {
	t.Parallel()

	cases := []struct {
		action, quantity string
		want             QuantityChange
		ok               bool
	}{
		{"", "3", SetTo(3), true},
		{"increase", "", Increase(), true},
		{"decrease", "", Decrease(), true},
		{"increase", "4", SetTo(4), true}, // explicit quantity wins
		{"", "abc", QuantityChange{}, false},
		{"grow", "", QuantityChange{}, false},
		{"", "", QuantityChange{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseQuantityChange(tc.action, tc.quantity)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseQuantityChange(%q,%q) = (%v,%v), want (%v,%v)",
				tc.action, tc.quantity, got, ok, tc.want, tc.ok)
		}
	}
}
