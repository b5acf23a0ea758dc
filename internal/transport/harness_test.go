package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
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
	carts    map[uuid.UUID]*domain.Cart
	items    map[uuid.UUID][]*domain.CartItem
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
}

func newMockOrderRepository(cartRepo *mockCartRepository) *mockOrderRepository {
	return &mockOrderRepository{
		orders:   make(map[uuid.UUID]*domain.Order),
		items:    make(map[uuid.UUID][]*domain.OrderItem),
		cartRepo: cartRepo,
	}
}

func (m *mockOrderRepository) CreateFromCart(ctx context.Context, order *domain.Order, items []*domain.OrderItem, cartID uuid.UUID) error {
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

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for _, p := range m.products {
		products = append(products, p)
	}
	return products, nil
}

func (m *mockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

// testEnv wires real services and handlers over the mocks, with the
// session gate in front of the protected routes, the way the server
// assembles them.
type testEnv struct {
	router      chi.Router
	userRepo    *mockUserRepository
	cartRepo    *mockCartRepository
	orderRepo   *mockOrderRepository
	productRepo *mockProductRepository
	sessions    *session.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cartRepo := newMockCartRepository()
	userRepo := newMockUserRepository(cartRepo)
	orderRepo := newMockOrderRepository(cartRepo)
	productRepo := newMockProductRepository()

	sessions := session.NewMemoryStore(24*time.Hour, 0)
	t.Cleanup(sessions.Close)

	cookie := session.CookieOptions{
		Name:   "storefront_session",
		Secure: false,
		MaxAge: 24 * time.Hour,
	}
	logger := zap.NewNop()

	authService := service.NewAuthService(userRepo, cartRepo, sessions)
	cartService := service.NewCartService(cartRepo)
	orderService := service.NewOrderService(cartRepo, orderRepo)

	authMiddleware := middleware.SessionAuth(sessions, 24*time.Hour, cookie, logger)

	router := chi.NewRouter()
	NewAuthHandler(authService, cookie, logger).RegisterRoutes(router, authMiddleware)
	NewProductHandler(productRepo, logger).RegisterRoutes(router)
	NewCartHandler(cartService, logger).RegisterRoutes(router, authMiddleware)
	NewOrderHandler(orderService, logger).RegisterRoutes(router, authMiddleware)

	return &testEnv{
		router:      router,
		userRepo:    userRepo,
		cartRepo:    cartRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		sessions:    sessions,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postJSON(path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

// register creates an account and returns its session cookie.
func (e *testEnv) register(t *testing.T, email, password string) *http.Cookie {
	t.Helper()

	w := e.postJSON("/auth/register", RegisterRequest{Email: email, Password: password})
	if w.Code != http.StatusCreated {
		t.Fatalf("Registration failed with status %d: %s", w.Code, w.Body.String())
	}

	for _, c := range w.Result().Cookies() {
		if c.Name == "storefront_session" && c.Value != "" {
			return c
		}
	}
	t.Fatal("Registration did not set a session cookie")
	return nil
}

// seedProduct makes a product visible to both the catalog and the cart
// projection.
func (e *testEnv) seedProduct(name string, price float64) uuid.UUID {
	id := uuid.New()
	now := time.Now()
	e.productRepo.products[id] = &domain.Product{
		ID:        id,
		Name:      name,
		Price:     price,
		Images:    []domain.ProductImage{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	e.cartRepo.products[id] = &domain.CartProduct{
		ID:     id,
		Name:   name,
		Price:  price,
		Images: []domain.CartProductImage{},
	}
	return id
}
