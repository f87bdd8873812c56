package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sylveur65/Projet-goodyfans-sub000/internal/domain/enums"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type UserRepo struct {
	pool *pgxpool.Pool
}

type UserRecord struct {
	ID           int64
	Email        string
	PasswordHash string
	DisplayName  string
	Role         enums.UserRole
	TOTPSecret   string
	CreatedAt    time.Time
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, email, passwordHash, displayName string, role enums.UserRole) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(email) == "" || passwordHash == "" {
		return UserRecord{}, fmt.Errorf("invalid user payload")
	}

	var record UserRecord
	var roleRaw string
	err := r.pool.QueryRow(ctx, `
INSERT INTO users (email, password_hash, display_name, role, created_at)
VALUES (LOWER($1), $2, $3, $4, NOW())
RETURNING id, email, password_hash, display_name, role, created_at
`, email, passwordHash, displayName, string(role)).Scan(
		&record.ID,
		&record.Email,
		&record.PasswordHash,
		&record.DisplayName,
		&roleRaw,
		&record.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return UserRecord{}, ErrEmailTaken
		}
		return UserRecord{}, fmt.Errorf("create user: %w", err)
	}

	record.Role = enums.UserRole(roleRaw)
	return record, nil
}

func (r *UserRepo) SetTOTPSecret(ctx context.Context, userID int64, secret string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET totp_secret = NULLIF($2, '')
WHERE id = $1
`, userID, secret)
	if err != nil {
		return fmt.Errorf("set totp secret: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var record UserRecord
	var roleRaw string
	err := r.pool.QueryRow(ctx, `
SELECT id, email, password_hash, display_name, role, COALESCE(totp_secret, ''), created_at
FROM users
WHERE email = LOWER($1)
LIMIT 1
`, email).Scan(
		&record.ID,
		&record.Email,
		&record.PasswordHash,
		&record.DisplayName,
		&roleRaw,
		&record.TOTPSecret,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("query user by email: %w", err)
	}

	record.Role = enums.UserRole(roleRaw)
	return record, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return UserRecord{}, fmt.Errorf("invalid user id")
	}

	var record UserRecord
	var roleRaw string
	err := r.pool.QueryRow(ctx, `
SELECT id, email, password_hash, display_name, role, COALESCE(totp_secret, ''), created_at
FROM users
WHERE id = $1
LIMIT 1
`, id).Scan(
		&record.ID,
		&record.Email,
		&record.PasswordHash,
		&record.DisplayName,
		&roleRaw,
		&record.TOTPSecret,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("query user by id: %w", err)
	}

	record.Role = enums.UserRole(roleRaw)
	return record, nil
}
