package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCartNotFound      = errors.New("cart not found")
	ErrDuplicateCartItem = errors.New("product already in cart")
	ErrCartItemNotFound  = errors.New("cart item not found")
)

// CartRepository defines the interface for cart data access
type CartRepository interface {
	Create(ctx context.Context, cart *domain.Cart) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	AddItem(ctx context.Context, item *domain.CartItem) error
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error
	ItemExists(ctx context.Context, cartID, productID uuid.UUID) (bool, error)
	ListProductIDs(ctx context.Context, cartID uuid.UUID) ([]uuid.UUID, error)
	ListProducts(ctx context.Context, cartID uuid.UUID) ([]*domain.CartProduct, error)
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// Create inserts a new cart. Used on login for accounts that predate
// cart-per-user; registration creates the cart through UserRepository.
func (r *cartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	query := `
		INSERT INTO carts (id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		cart.ID,
		cart.UserID,
		cart.CreatedAt,
		cart.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}

	return nil
}

// FindByUserID retrieves the user's cart. Every account owns at most one.
func (r *cartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	query := `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`

	cart := &domain.Cart{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find cart by user ID: %w", err)
	}

	return cart, nil
}

// AddItem inserts a cart item. The UNIQUE(cart_id, product_id)
// constraint backs the duplicate check, so concurrent adds of the same
// product cannot both succeed.
func (r *cartRepository) AddItem(ctx context.Context, item *domain.CartItem) error {
	query := `
		INSERT INTO cart_items (id, cart_id, product_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.CartID,
		item.ProductID,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCartItem
		}
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	return nil
}

// RemoveItem deletes the (cart, product) row.
func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	query := `
		DELETE FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, cartID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// ItemExists reports whether the (cart, product) pair is already present.
func (r *cartRepository) ItemExists(ctx context.Context, cartID, productID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM cart_items
			WHERE cart_id = $1 AND product_id = $2
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, cartID, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check cart item: %w", err)
	}

	return exists, nil
}

// ListProductIDs returns the product ids currently in the cart.
func (r *cartRepository) ListProductIDs(ctx context.Context, cartID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT product_id
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart product ids: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan cart product id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart product ids: %w", err)
	}

	return ids, nil
}

// ListProducts returns the cart's products joined with their images,
// projected to id/name/price and url/display_order as the client sees
// them. Images come back ascending by display_order.
func (r *cartRepository) ListProducts(ctx context.Context, cartID uuid.UUID) ([]*domain.CartProduct, error) {
	query := `
		SELECT p.id, p.name, p.price, pi.url, pi.display_order
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		LEFT JOIN product_images pi ON pi.product_id = p.id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at ASC, pi.display_order ASC
	`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart products: %w", err)
	}
	defer rows.Close()

	products := []*domain.CartProduct{}
	byID := map[uuid.UUID]*domain.CartProduct{}

	for rows.Next() {
		var (
			id           uuid.UUID
			name         string
			price        float64
			url          sql.NullString
			displayOrder sql.NullInt64
		)
		if err := rows.Scan(&id, &name, &price, &url, &displayOrder); err != nil {
			return nil, fmt.Errorf("failed to scan cart product: %w", err)
		}

		product, ok := byID[id]
		if !ok {
			product = &domain.CartProduct{
				ID:     id,
				Name:   name,
				Price:  price,
				Images: []domain.CartProductImage{},
			}
			byID[id] = product
			products = append(products, product)
		}

		if url.Valid {
			product.Images = append(product.Images, domain.CartProductImage{
				URL:          url.String,
				DisplayOrder: int(displayOrder.Int64),
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart products: %w", err)
	}

	return products, nil
}
