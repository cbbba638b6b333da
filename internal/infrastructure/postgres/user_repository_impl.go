package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nasihat/dashboard-api/internal/domain/entity"
	"github.com/nasihat/dashboard-api/internal/domain/repository"
)

const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, name, password_hash, avatar, provider, provider_id, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var passwordHash, avatar, providerID *string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &passwordHash, &avatar,
		&u.Provider, &providerID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	if avatar != nil {
		u.Avatar = *avatar
	}
	if providerID != nil {
		u.ProviderID = *providerID
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email))
}

func (r *UserRepository) GetByProvider(ctx context.Context, provider entity.Provider, providerID string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE provider = $1 AND provider_id = $2
	`, provider, providerID))
}

// Create inserts the user and fills in the generated id and timestamps.
// A duplicate email surfaces as repository.ErrEmailTaken so the caller can
// resolve the registration race.
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, avatar, provider, provider_id)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, NULLIF($6, ''))
		RETURNING id, created_at, updated_at
	`, u.Email, u.Name, u.PasswordHash, u.Avatar, u.Provider, u.ProviderID)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrEmailTaken
		}
		return err
	}
	return nil
}

// Update applies only the provided fields and refreshes updated_at.
func (r *UserRepository) Update(ctx context.Context, id string, upd repository.UserUpdate) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET name          = COALESCE($2, name),
		    avatar        = COALESCE($3, avatar),
		    password_hash = COALESCE($4, password_hash),
		    updated_at    = now()
		WHERE id = $1
		RETURNING `+userColumns+`
	`, id, upd.Name, upd.Avatar, upd.PasswordHash)

	u, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

// Delete is idempotent; deleting an absent row is not an error.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
