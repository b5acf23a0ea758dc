package service

import (
	"context"
	"errors"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// Mock repositories for testing

type mockUserRepository struct {
	users    map[string]*domain.User
	cartRepo *mockCartRepository
}

func newMockUserRepository(cartRepo *mockCartRepository) *mockUserRepository {
	return &mockUserRepository{
		users:    make(map[string]*domain.User),
		cartRepo: cartRepo,
	}
}

func (m *mockUserRepository) CreateWithCart(ctx context.Context, user *domain.User, cart *domain.Cart) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	m.cartRepo.carts[cart.UserID] = cart
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type mockCartRepository struct {
	carts    map[uuid.UUID]*domain.Cart       // keyed by user id
	items    map[uuid.UUID][]*domain.CartItem // keyed by cart id
	products map[uuid.UUID]*domain.CartProduct
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{
		carts:    make(map[uuid.UUID]*domain.Cart),
		items:    make(map[uuid.UUID][]*domain.CartItem),
		products: make(map[uuid.UUID]*domain.CartProduct),
	}
}

func (m *mockCartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	m.carts[cart.UserID] = cart
	return nil
}

func (m *mockCartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	cart, exists := m.carts[userID]
	if !exists {
		return nil, repository.ErrCartNotFound
	}
	return cart, nil
}

func (m *mockCartRepository) AddItem(ctx context.Context, item *domain.CartItem) error {
	for _, existing := range m.items[item.CartID] {
		if existing.ProductID == item.ProductID {
			return repository.ErrDuplicateCartItem
		}
	}
	m.items[item.CartID] = append(m.items[item.CartID], item)
	return nil
}

func (m *mockCartRepository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	items := m.items[cartID]
	for i, item := range items {
		if item.ProductID == productID {
			m.items[cartID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return repository.ErrCartItemNotFound
}

func (m *mockCartRepository) ItemExists(ctx context.Context, cartID, productID uuid.UUID) (bool, error) {
	for _, item := range m.items[cartID] {
		if item.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCartRepository) ListProductIDs(ctx context.Context, cartID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	for _, item := range m.items[cartID] {
		ids = append(ids, item.ProductID)
	}
	return ids, nil
}

func (m *mockCartRepository) ListProducts(ctx context.Context, cartID uuid.UUID) ([]*domain.CartProduct, error) {
	products := []*domain.CartProduct{}
	for _, item := range m.items[cartID] {
		if product, ok := m.products[item.ProductID]; ok {
			products = append(products, product)
			continue
		}
		products = append(products, &domain.CartProduct{
			ID:     item.ProductID,
			Images: []domain.CartProductImage{},
		})
	}
	return products, nil
}

type mockOrderRepository struct {
	orders   map[uuid.UUID]*domain.Order
	items    map[uuid.UUID][]*domain.OrderItem
	cartRepo *mockCartRepository
	failWith error
}

func newMockOrderRepository(cartRepo *mockCartRepository) *mockOrderRepository {
	return &mockOrderRepository{
		orders:   make(map[uuid.UUID]*domain.Order),
		items:    make(map[uuid.UUID][]*domain.OrderItem),
		cartRepo: cartRepo,
	}
}

func (m *mockOrderRepository) CreateFromCart(ctx context.Context, order *domain.Order, items []*domain.OrderItem, cartID uuid.UUID) error {
	if m.failWith != nil {
		return m.failWith
	}

	var cleared int
	for _, item := range items {
		if err := m.cartRepo.RemoveItem(ctx, cartID, item.ProductID); err == nil {
			cleared++
		}
	}
	if cleared != len(items) {
		return repository.ErrCartClearFailed
	}

	m.orders[order.ID] = order
	m.items[order.ID] = items
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, exists := m.orders[id]
	if !exists {
		return nil, errors.New("order not found")
	}
	return order, nil
}

func (m *mockOrderRepository) ListItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	return m.items[orderID], nil
}
