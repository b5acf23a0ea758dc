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
	ErrOrderCreationFailed = errors.New("failed to create order items")
	ErrCartClearFailed     = errors.New("failed to clear cart items")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// CreateFromCart writes the order, its items, and the matching
	// cart-item deletes in one transaction. A row-count mismatch on
	// either write rolls the whole operation back.
	CreateFromCart(ctx context.Context, order *domain.Order, items []*domain.OrderItem, cartID uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateFromCart converts cart contents into an immutable order snapshot.
func (r *orderRepository) CreateFromCart(ctx context.Context, order *domain.Order, items []*domain.OrderItem, cartID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (id, user_id, created_at)
		VALUES ($1, $2, $3)
	`
	result, err := tx.ExecContext(ctx, orderQuery, order.ID, order.UserID, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil || n != 1 {
		return ErrOrderCreationFailed
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	for _, item := range items {
		result, err := tx.ExecContext(
			ctx,
			itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
		if n, err := result.RowsAffected(); err != nil || n != 1 {
			return ErrOrderCreationFailed
		}
	}

	clearQuery := `
		DELETE FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
	`
	var cleared int64
	for _, item := range items {
		result, err := tx.ExecContext(ctx, clearQuery, cartID, item.ProductID)
		if err != nil {
			return fmt.Errorf("failed to clear cart item: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		cleared += n
	}

	// Every checked-out product must have been removed from the cart
	// exactly once, or the snapshot diverged from the cart mid-flight.
	if cleared != int64(len(items)) {
		return ErrCartClearFailed
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindByID retrieves an order by ID
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, user_id, created_at
		FROM orders
		WHERE id = $1
	`

	order := &domain.Order{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("order %s not found", id)
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	return order, nil
}

// ListItems retrieves the items of an order
func (r *orderRepository) ListItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := []*domain.OrderItem{}
	for rows.Next() {
		item := &domain.OrderItem{}
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}
