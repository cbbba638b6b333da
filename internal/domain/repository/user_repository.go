package repository

import (
	"context"
	"errors"

	"github.com/nasihat/dashboard-api/internal/domain/entity"
)

// ErrEmailTaken is returned by Create when the email unique constraint is
// violated. The constraint in the backing store, not the caller's lookup,
// is the final uniqueness authority under concurrent registration.
var ErrEmailTaken = errors.New("email already taken")

// ErrNotFound is returned by Update when the target row is absent. Lookups
// signal absence with a nil user instead.
var ErrNotFound = errors.New("user not found")

// UserUpdate carries the optional fields an update may change. Nil fields
// are left untouched. Email, provider, and provider id are immutable.
type UserUpdate struct {
	Name         *string
	Avatar       *string
	PasswordHash *string
}

// UserRepository defines durable CRUD for user records.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByProvider(ctx context.Context, provider entity.Provider, providerID string) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, id string, upd UserUpdate) (*entity.User, error)
	Delete(ctx context.Context, id string) error
}
