package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

func newTestOrderService(t *testing.T) (OrderService, *mockCartRepository, *mockOrderRepository, uuid.UUID) {
	t.Helper()

	cartRepo := newMockCartRepository()
	orderRepo := newMockOrderRepository(cartRepo)

	userID := uuid.New()
	now := time.Now()
	cartRepo.carts[userID] = &domain.Cart{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return NewOrderService(cartRepo, orderRepo), cartRepo, orderRepo, userID
}

func fillCart(t *testing.T, cartRepo *mockCartRepository, userID uuid.UUID, count int) []uuid.UUID {
	t.Helper()

	cart := cartRepo.carts[userID]
	ids := make([]uuid.UUID, count)
	now := time.Now()
	for i := range ids {
		ids[i] = uuid.New()
		err := cartRepo.AddItem(context.Background(), &domain.CartItem{
			ID:        uuid.New(),
			CartID:    cart.ID,
			ProductID: ids[i],
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("Failed to seed cart: %v", err)
		}
	}
	return ids
}

func TestCheckoutWholeCart(t *testing.T) {
	svc, cartRepo, orderRepo, userID := newTestOrderService(t)
	ctx := context.Background()

	productIDs := fillCart(t, cartRepo, userID, 3)

	orderID, err := svc.Checkout(ctx, userID, nil)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	items, err := orderRepo.ListItems(ctx, orderID)
	if err != nil {
		t.Fatalf("Failed to list order items: %v", err)
	}
	if len(items) != len(productIDs) {
		t.Fatalf("Expected %d order items, got %d", len(productIDs), len(items))
	}

	ordered := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if item.OrderID != orderID {
			t.Errorf("Order item points at %s, expected %s", item.OrderID, orderID)
		}
		ordered[item.ProductID] = true
	}
	for _, id := range productIDs {
		if !ordered[id] {
			t.Errorf("Product %s missing from the order", id)
		}
	}

	cart := cartRepo.carts[userID]
	if len(cartRepo.items[cart.ID]) != 0 {
		t.Errorf("Expected cart cleared after checkout, got %d items", len(cartRepo.items[cart.ID]))
	}
}

func TestCheckoutSubsetLeavesRest(t *testing.T) {
	svc, cartRepo, orderRepo, userID := newTestOrderService(t)
	ctx := context.Background()

	productIDs := fillCart(t, cartRepo, userID, 3)
	selection := productIDs[:2]

	orderID, err := svc.Checkout(ctx, userID, selection)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	items, err := orderRepo.ListItems(ctx, orderID)
	if err != nil {
		t.Fatalf("Failed to list order items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 order items, got %d", len(items))
	}

	cart := cartRepo.carts[userID]
	remaining := cartRepo.items[cart.ID]
	if len(remaining) != 1 {
		t.Fatalf("Expected 1 item left in cart, got %d", len(remaining))
	}
	if remaining[0].ProductID != productIDs[2] {
		t.Errorf("Wrong item left in cart: %s", remaining[0].ProductID)
	}
}

func TestCheckoutRejectsProductOutsideCart(t *testing.T) {
	svc, cartRepo, orderRepo, userID := newTestOrderService(t)
	ctx := context.Background()

	fillCart(t, cartRepo, userID, 2)

	_, err := svc.Checkout(ctx, userID, []uuid.UUID{uuid.New()})
	if err != ErrProductNotInCart {
		t.Errorf("Expected ErrProductNotInCart, got %v", err)
	}
	if len(orderRepo.orders) != 0 {
		t.Errorf("No order should exist after a rejected checkout, got %d", len(orderRepo.orders))
	}
}

func TestCheckoutRejectsDuplicateSelection(t *testing.T) {
	svc, cartRepo, _, userID := newTestOrderService(t)
	ctx := context.Background()

	productIDs := fillCart(t, cartRepo, userID, 2)

	_, err := svc.Checkout(ctx, userID, []uuid.UUID{productIDs[0], productIDs[0]})
	if err != ErrProductNotInCart {
		t.Errorf("Expected ErrProductNotInCart for a duplicated selection, got %v", err)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, _, _, userID := newTestOrderService(t)

	_, err := svc.Checkout(context.Background(), userID, nil)
	if err != ErrEmptyCart {
		t.Errorf("Expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckoutFailureLeavesCartIntact(t *testing.T) {
	svc, cartRepo, orderRepo, userID := newTestOrderService(t)
	ctx := context.Background()

	fillCart(t, cartRepo, userID, 3)
	orderRepo.failWith = errors.New("connection reset")

	_, err := svc.Checkout(ctx, userID, nil)
	if err == nil {
		t.Fatal("Expected checkout to fail")
	}

	// The write path is one transaction: a failed checkout must leave
	// both sides untouched.
	if len(orderRepo.orders) != 0 {
		t.Errorf("No order should be recorded after a failure, got %d", len(orderRepo.orders))
	}
	cart := cartRepo.carts[userID]
	if len(cartRepo.items[cart.ID]) != 3 {
		t.Errorf("Cart should be intact after a failure, got %d items", len(cartRepo.items[cart.ID]))
	}
}

func TestCheckoutWithoutCart(t *testing.T) {
	cartRepo := newMockCartRepository()
	svc := NewOrderService(cartRepo, newMockOrderRepository(cartRepo))

	_, err := svc.Checkout(context.Background(), uuid.New(), nil)
	if err != repository.ErrCartNotFound {
		t.Errorf("Expected ErrCartNotFound, got %v", err)
	}
}
