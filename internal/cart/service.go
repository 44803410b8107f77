package cart

import (
	"context"
	"log"
)

// Service maintains the single-open-order invariant and item quantities on
// behalf of the requesting user. Every mutation verifies ownership through
// the repository's SQL predicates; cross-user mutation is impossible here.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// GetOrCreateOpenOrder returns the user's open order, creating one lazily.
// When duplicate open orders exist (a race or an old bug), the earliest one
// is kept and the rest are deleted. The repair is silent toward the caller
// but logged as an anomaly.
func (s *Service) GetOrCreateOpenOrder(ctx context.Context, userID int64) (*Order, error) {
	open, err := s.repo.ListOpenOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return s.repo.CreateOrder(ctx, userID)
	}
	keep := open[0]
	if len(open) > 1 {
		n, err := s.repo.DeleteOpenOrdersExcept(ctx, userID, keep.ID)
		if err != nil {
			return nil, err
		}
		log.Printf("[cart] warn: repaired %d duplicate open orders user=%d kept=%d", n, userID, keep.ID)
	}
	return &keep, nil
}

// GetOpenOrder is the lookup-only variant used by checkout: no open order
// means there is nothing to pay for.
func (s *Service) GetOpenOrder(ctx context.Context, userID int64) (*Order, error) {
	open, err := s.repo.ListOpenOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, ErrNotFound
	}
	keep := open[0]
	if len(open) > 1 {
		n, err := s.repo.DeleteOpenOrdersExcept(ctx, userID, keep.ID)
		if err != nil {
			return nil, err
		}
		log.Printf("[cart] warn: repaired %d duplicate open orders user=%d kept=%d", n, userID, keep.ID)
	}
	return &keep, nil
}

// AddProduct puts one unit of the product into the user's open order,
// creating the order when needed. Repeated adds increment the existing line.
func (s *Service) AddProduct(ctx context.Context, userID, productID int64) (*Snapshot, error) {
	order, err := s.GetOrCreateOpenOrder(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpsertItem(ctx, order.ID, productID, 1); err != nil {
		return nil, err
	}
	return s.snapshotOrder(ctx, order)
}

// RemoveItem deletes the line when it belongs to one of the user's open
// orders; anything else is ErrNotFound. The removed product's name comes
// back for the confirmation message.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID int64) (*Snapshot, string, error) {
	orderID, name, err := s.repo.DeleteItem(ctx, itemID, userID)
	if err != nil {
		return nil, "", err
	}
	order, err := s.repo.GetOrder(ctx, orderID, userID)
	if err != nil {
		return nil, "", err
	}
	snap, err := s.snapshotOrder(ctx, order)
	return snap, name, err
}

// UpdateQuantity applies a QuantityChange to the line. Quantity is clamped
// to a minimum of 1; decrease never deletes.
func (s *Service) UpdateQuantity(ctx context.Context, userID, itemID int64, change QuantityChange) (*Snapshot, error) {
	var (
		orderID int64
		err     error
	)
	switch change.kind {
	case changeSet:
		orderID, err = s.repo.SetItemQuantity(ctx, itemID, userID, change.value)
	case changeIncrease:
		orderID, err = s.repo.BumpItemQuantity(ctx, itemID, userID, 1)
	case changeDecrease:
		orderID, err = s.repo.BumpItemQuantity(ctx, itemID, userID, -1)
	}
	if err != nil {
		return nil, err
	}
	order, err := s.repo.GetOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	return s.snapshotOrder(ctx, order)
}

// ItemSnapshot re-reads the cart owning the given item without mutating it,
// used when a malformed quantity update is ignored.
func (s *Service) ItemSnapshot(ctx context.Context, userID, itemID int64) (*Snapshot, error) {
	// a zero-delta bump verifies ownership and leaves quantity unchanged
	orderID, err := s.repo.BumpItemQuantity(ctx, itemID, userID, 0)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.GetOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	return s.snapshotOrder(ctx, order)
}

// CurrentCart returns the user's open order snapshot, creating the order on
// first visit.
func (s *Service) CurrentCart(ctx context.Context, userID int64) (*Snapshot, error) {
	order, err := s.GetOrCreateOpenOrder(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.snapshotOrder(ctx, order)
}

// OrderSnapshot loads items for an order the caller already resolved.
func (s *Service) OrderSnapshot(ctx context.Context, order *Order) (*Snapshot, error) {
	return s.snapshotOrder(ctx, order)
}

func (s *Service) snapshotOrder(ctx context.Context, order *Order) (*Snapshot, error) {
	items, err := s.repo.Items(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Order: *order, Items: items}, nil
}
