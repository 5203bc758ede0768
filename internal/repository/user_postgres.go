package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/apperrors"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/models"
)

// PostgresUserStore persists users, permission overrides and hotel grants.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

const userColumns = "id, email, password_hash, full_name, role, permissions, active, created_at, updated_at"

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.Role,
		&u.Permissions,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresUserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, email, password_hash, full_name, role, permissions, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	created, err := scanUser(r.pool.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Role,
		user.Permissions,
		user.Active,
	))
	if err != nil {
		return nil, apperrors.Storage("failed to create user", err)
	}
	return created, nil
}

func (r *PostgresUserStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Storage("failed to get user", err)
	}
	return user, nil
}

func (r *PostgresUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Storage("failed to get user", err)
	}
	return user, nil
}

func (r *PostgresUserStore) ListUsers(ctx context.Context) ([]models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users ORDER BY created_at", userColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.Storage("failed to list users", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.Storage("failed to scan user", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("error iterating users", err)
	}

	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (r *PostgresUserStore) UpdateUser(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		UPDATE users
		SET email = $2, password_hash = $3, full_name = $4, role = $5, permissions = $6, active = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	updated, err := scanUser(r.pool.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Role,
		user.Permissions,
		user.Active,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Storage("failed to update user", err)
	}
	return updated, nil
}

func (r *PostgresUserStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return apperrors.Storage("failed to delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("user")
	}
	return nil
}

func (r *PostgresUserStore) AddHotelGrant(ctx context.Context, userID uuid.UUID, hotelID int64) error {
	query := `
		INSERT INTO user_hotel_grants (user_id, hotel_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, hotel_id) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, query, userID, hotelID); err != nil {
		return apperrors.Storage("failed to add hotel grant", err)
	}
	return nil
}

func (r *PostgresUserStore) RemoveHotelGrant(ctx context.Context, userID uuid.UUID, hotelID int64) error {
	query := "DELETE FROM user_hotel_grants WHERE user_id = $1 AND hotel_id = $2"
	if _, err := r.pool.Exec(ctx, query, userID, hotelID); err != nil {
		return apperrors.Storage("failed to remove hotel grant", err)
	}
	return nil
}

func (r *PostgresUserStore) HasHotelGrant(ctx context.Context, userID uuid.UUID, hotelID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM user_hotel_grants
			WHERE user_id = $1 AND hotel_id = $2
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, hotelID).Scan(&exists); err != nil {
		return false, apperrors.Storage("failed to check hotel grant", err)
	}
	return exists, nil
}

func (r *PostgresUserStore) ListHotelGrants(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	query := "SELECT hotel_id FROM user_hotel_grants WHERE user_id = $1 ORDER BY hotel_id"

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Storage("failed to list hotel grants", err)
	}
	defer rows.Close()

	var hotelIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.Storage("failed to scan hotel grant", err)
		}
		hotelIDs = append(hotelIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("error iterating hotel grants", err)
	}

	if hotelIDs == nil {
		hotelIDs = []int64{}
	}
	return hotelIDs, nil
}
