package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// CartService defines the interface for cart business logic. A missing
// cart is an invariant violation here, not a user-facing condition:
// registration and login both guarantee one exists.
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	ListItems(ctx context.Context, userID uuid.UUID) ([]*domain.CartProduct, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID) error
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
}

type cartService struct {
	cartRepo repository.CartRepository
}

// NewCartService creates a new instance of CartService
func NewCartService(cartRepo repository.CartRepository) CartService {
	return &cartService{cartRepo: cartRepo}
}

// GetCart returns the user's cart.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if err == repository.ErrCartNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return cart, nil
}

// ListItems returns the products in the user's cart with their images.
func (s *cartService) ListItems(ctx context.Context, userID uuid.UUID) ([]*domain.CartProduct, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	products, err := s.cartRepo.ListProducts(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}

	return products, nil
}

// AddItem puts a product into the user's cart. A product is binary
// present-or-absent; adding it twice is a conflict, not an increment.
func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID) error {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return err
	}

	exists, err := s.cartRepo.ItemExists(ctx, cart.ID, productID)
	if err != nil {
		return fmt.Errorf("failed to check cart item: %w", err)
	}
	if exists {
		return repository.ErrDuplicateCartItem
	}

	now := time.Now()
	item := &domain.CartItem{
		ID:        uuid.New(),
		CartID:    cart.ID,
		ProductID: productID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The unique constraint turns a racing duplicate insert into
	// ErrDuplicateCartItem as well.
	if err := s.cartRepo.AddItem(ctx, item); err != nil {
		if err == repository.ErrDuplicateCartItem {
			return err
		}
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	return nil
}

// RemoveItem takes a product out of the user's cart.
func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.cartRepo.RemoveItem(ctx, cart.ID, productID); err != nil {
		if err == repository.ErrCartItemNotFound {
			return err
		}
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	return nil
}
