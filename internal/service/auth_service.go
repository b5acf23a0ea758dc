package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/session"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for bcrypt hashing
const BcryptCost = 10

var (
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidCredentials deliberately covers both unknown email and
	// wrong password so login failures cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthService defines the interface for account and session business logic
type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Logout(ctx context.Context, token string) error
	GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	cartRepo repository.CartRepository
	sessions session.Store
}

// NewAuthService creates a new instance of AuthService. The session
// store is injected; the service never reaches for a global.
func NewAuthService(
	userRepo repository.UserRepository,
	cartRepo repository.CartRepository,
	sessions session.Store,
) AuthService {
	return &authService{
		userRepo: userRepo,
		cartRepo: cartRepo,
		sessions: sessions,
	}
}

// Register creates a new account with a hashed password, its empty cart,
// and a fresh session. Account and cart are inserted in one transaction.
func (s *authService) Register(ctx context.Context, email, password string) (*domain.User, string, error) {
	if !IsValidEmail(email) {
		return nil, "", ErrInvalidEmail
	}
	if !IsValidPassword(password) {
		return nil, "", ErrInvalidPassword
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && err != repository.ErrUserNotFound {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", repository.ErrUserAlreadyExists
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedBytes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	cart := &domain.Cart{
		ID:        uuid.New(),
		UserID:    user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.CreateWithCart(ctx, user, cart); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user, makes sure their cart exists, and starts a
// new session.
func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	// Accounts created before cart-per-user get their cart here.
	if err := s.ensureCart(ctx, user.ID); err != nil {
		return nil, "", err
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	return user, token, nil
}

// Logout destroys the session. Destroying an already-gone session is not
// an error.
func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by ID
func (s *authService) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *authService) ensureCart(ctx context.Context, userID uuid.UUID) error {
	_, err := s.cartRepo.FindByUserID(ctx, userID)
	if err == nil {
		return nil
	}
	if err != repository.ErrCartNotFound {
		return fmt.Errorf("failed to find cart: %w", err)
	}

	now := time.Now()
	cart := &domain.Cart{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}

	return nil
}
