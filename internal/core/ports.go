package core

import (
	"context"
	"time"
)

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	// GetWithCategories retrieves all active products joined with their
	// category. A non-empty categoryIDs slice restricts the result to
	// those categories.
	GetWithCategories(ctx context.Context, categoryIDs []string) ([]*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]*Category, error)
}

// UserRepository defines the interface for account data access.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id string, passwordHash string, temporary bool) error
	ClearFirstLogin(ctx context.Context, id string) error
	// ResetPassword invokes the server-side reset_user_password stored
	// procedure on behalf of an administrator.
	ResetPassword(ctx context.Context, userID string, passwordHash string) error
}

// ReportCache persists CachedReport values under filter-derived keys,
// namespaced per user so logout can clear one user's entries only.
type ReportCache interface {
	Get(ctx context.Context, userID, key string) (*CachedReport, error)
	Set(ctx context.Context, userID, key string, report *CachedReport) error
	// ClearUser removes every cached entry in the user's namespace.
	ClearUser(ctx context.Context, userID string) error
}

// Clock abstracts time.Now so freshness windows are testable.
type Clock func() time.Time
