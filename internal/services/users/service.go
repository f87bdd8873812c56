package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sylveur65/Projet-goodyfans-sub000/internal/domain/enums"
	authsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/auth"
	"github.com/sylveur65/Projet-goodyfans-sub000/internal/pkg/validate"
	pgrepo "github.com/sylveur65/Projet-goodyfans-sub000/internal/repo/postgres"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrTOTPRequired       = errors.New("totp code required")
)

type Store interface {
	Create(ctx context.Context, email, passwordHash, displayName string, role enums.UserRole) (pgrepo.UserRecord, error)
	GetByEmail(ctx context.Context, email string) (pgrepo.UserRecord, error)
	GetByID(ctx context.Context, id int64) (pgrepo.UserRecord, error)
	SetTOTPSecret(ctx context.Context, userID int64, secret string) error
}

type User struct {
	ID          int64
	Email       string
	DisplayName string
	Role        enums.UserRole
	TOTPEnabled bool
	CreatedAt   time.Time
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Register(ctx context.Context, email, password, displayName string, role enums.UserRole) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validate.Email(email) || len(password) < 8 {
		return User{}, ErrValidation
	}
	if role != enums.UserRoleCreator && role != enums.UserRoleBuyer {
		return User{}, ErrValidation
	}
	if s.store == nil {
		return User{}, fmt.Errorf("users service dependencies are not configured")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	record, err := s.store.Create(ctx, email, string(hash), strings.TrimSpace(displayName), role)
	if err != nil {
		if errors.Is(err, pgrepo.ErrEmailTaken) {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}

	return toUser(record), nil
}

// Login verifies the password and, when the account has an enrolled
// authenticator, the one-time code as well. A missing code on such an account
// is reported separately so the client can prompt for it.
func (s *Service) Login(ctx context.Context, email, password, totpCode string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return User{}, ErrValidation
	}
	if s.store == nil {
		return User{}, fmt.Errorf("users service dependencies are not configured")
	}

	record, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}

	if record.TOTPSecret != "" {
		if strings.TrimSpace(totpCode) == "" {
			return User{}, ErrTOTPRequired
		}
		if !authsvc.VerifyTOTP(record.TOTPSecret, totpCode, time.Now()) {
			return User{}, ErrInvalidCredentials
		}
	}

	return toUser(record), nil
}

// EnrollTOTP generates and stores a fresh authenticator secret for the user.
// Re-enrolling replaces the previous secret.
func (s *Service) EnrollTOTP(ctx context.Context, userID int64) (authsvc.TOTPEnrollment, error) {
	if userID <= 0 {
		return authsvc.TOTPEnrollment{}, ErrValidation
	}
	if s.store == nil {
		return authsvc.TOTPEnrollment{}, fmt.Errorf("users service dependencies are not configured")
	}

	record, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return authsvc.TOTPEnrollment{}, ErrUserNotFound
		}
		return authsvc.TOTPEnrollment{}, fmt.Errorf("load user: %w", err)
	}

	enrollment, err := authsvc.NewTOTPEnrollment(totpIssuer, record.Email)
	if err != nil {
		return authsvc.TOTPEnrollment{}, err
	}

	if err := s.store.SetTOTPSecret(ctx, record.ID, enrollment.Secret); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return authsvc.TOTPEnrollment{}, ErrUserNotFound
		}
		return authsvc.TOTPEnrollment{}, fmt.Errorf("store totp secret: %w", err)
	}

	return enrollment, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (User, error) {
	if id <= 0 {
		return User{}, ErrValidation
	}
	if s.store == nil {
		return User{}, fmt.Errorf("users service dependencies are not configured")
	}

	record, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}

	return toUser(record), nil
}

const totpIssuer = "goodyfans"

func toUser(record pgrepo.UserRecord) User {
	return User{
		ID:          record.ID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
		Role:        record.Role,
		TOTPEnabled: record.TOTPSecret != "",
		CreatedAt:   record.CreatedAt,
	}
}
