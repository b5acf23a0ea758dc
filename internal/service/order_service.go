package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrProductNotInCart = errors.New("product is not in the cart")
)

// OrderService defines the interface for checkout business logic
type OrderService interface {
	// Checkout converts cart contents into an immutable order. With an
	// empty productIDs the whole cart is checked out; otherwise the ids
	// select a subset of the cart, and ids outside it are rejected. The
	// requested list is always reconciled against the server-side cart,
	// never trusted as-is.
	Checkout(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (uuid.UUID, error)
}

type orderService struct {
	cartRepo  repository.CartRepository
	orderRepo repository.OrderRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
) OrderService {
	return &orderService{
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
	}
}

// Checkout snapshots the selected cart items into an order and removes
// them from the cart, all inside one repository transaction.
func (s *orderService) Checkout(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (uuid.UUID, error) {
	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if err == repository.ErrCartNotFound {
			return uuid.Nil, err
		}
		return uuid.Nil, fmt.Errorf("failed to find cart: %w", err)
	}

	inCart, err := s.cartRepo.ListProductIDs(ctx, cart.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to list cart contents: %w", err)
	}

	if len(productIDs) == 0 {
		productIDs = inCart
	} else {
		available := make(map[uuid.UUID]bool, len(inCart))
		for _, id := range inCart {
			available[id] = true
		}
		seen := make(map[uuid.UUID]bool, len(productIDs))
		for _, id := range productIDs {
			if !available[id] || seen[id] {
				return uuid.Nil, ErrProductNotInCart
			}
			seen[id] = true
		}
	}

	if len(productIDs) == 0 {
		return uuid.Nil, ErrEmptyCart
	}

	now := time.Now()
	order := &domain.Order{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
	}

	items := make([]*domain.OrderItem, len(productIDs))
	for i, productID := range productIDs {
		items[i] = &domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: productID,
			CreatedAt: now,
		}
	}

	if err := s.orderRepo.CreateFromCart(ctx, order, items, cart.ID); err != nil {
		return uuid.Nil, fmt.Errorf("checkout failed: %w", err)
	}

	return order.ID, nil
}
