package postgres

import (
	"context"
	"errors"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, auth0_id, email, name, picture_url, currency, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Auth0ID, &u.Email, &u.Name, &u.PictureURL, &u.Currency, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, uuidToPg(id))
	return scanUser(row)
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (r *UserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE auth0_id = $1`, auth0ID)
	return scanUser(row)
}

// Create creates a new user
func (r *UserRepository) Create(user *domain.User) (*domain.User, error) {
	ctx := context.Background()
	currency := user.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (auth0_id, email, name, picture_url, currency)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		user.Auth0ID, user.Email, user.Name, user.PictureURL, currency)
	return scanUser(row)
}

// Update updates an existing user
func (r *UserRepository) Update(user *domain.User) (*domain.User, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`UPDATE users
		 SET email = $2, name = $3, picture_url = $4, currency = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		uuidToPg(user.ID), user.Email, user.Name, user.PictureURL, user.Currency)
	return scanUser(row)
}

// UpdateProfile updates the user's display name and/or preferred currency
func (r *UserRepository) UpdateProfile(auth0ID string, name *string, currency *string) (*domain.User, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`UPDATE users
		 SET name = COALESCE($2, name), currency = COALESCE($3, currency), updated_at = now()
		 WHERE auth0_id = $1
		 RETURNING `+userColumns,
		auth0ID, name, currency)
	return scanUser(row)
}

// CreateOrGetByAuth0ID creates a user if none exists for the Auth0 ID
func (r *UserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (auth0_id, email, name, picture_url, currency)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (auth0_id) DO UPDATE SET email = EXCLUDED.email
		 RETURNING `+userColumns,
		auth0ID, email, name, pictureURL, domain.DefaultCurrency)
	return scanUser(row)
}
