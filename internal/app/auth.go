package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"stayhub/internal/domain"
)

type AuthService struct {
	users   domain.UserRepository
	issuer  *TokenIssuer
	revoked domain.TokenStore
}

func NewAuthService(u domain.UserRepository, issuer *TokenIssuer, revoked domain.TokenStore) *AuthService {
	return &AuthService{users: u, issuer: issuer, revoked: revoked}
}

type RegisterInput struct {
	Name      string
	Email     string
	Telephone *string
	Password  string
}

func (in RegisterInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || len(in.Name) > 100 {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if len(in.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}
	return nil
}

// Register creates an identity with role user and returns it with a fresh
// bearer token, matching the original register-then-login-in-one flow.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, string, error) {
	if err := in.validate(); err != nil {
		return domain.User{}, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, "", err
	}
	u := domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Telephone:    in.Telephone,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}
	if err := s.users.CreateUser(ctx, &u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return domain.User{}, "", fmt.Errorf("%w: email already registered", domain.ErrValidation)
		}
		return domain.User{}, "", err
	}
	tok, err := s.issuer.Issue(u)
	if err != nil {
		return domain.User{}, "", err
	}
	log.Info().Int64("user_id", u.ID).Msg("user registered")
	return u, tok, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	u, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", domain.ErrUnauthorized
		}
		return domain.User{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return domain.User{}, "", domain.ErrUnauthorized
	}
	tok, err := s.issuer.Issue(u)
	if err != nil {
		return domain.User{}, "", err
	}
	return u, tok, nil
}

// Logout revokes the presented token for its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	return s.revoked.Revoke(ctx, claims.ID, ttl)
}

func (s *AuthService) Profile(ctx context.Context, actor domain.Identity) (domain.User, error) {
	return s.users.GetUserByID(ctx, actor.UserID)
}

func (s *AuthService) AssignRole(ctx context.Context, actor domain.Identity, userID int64, role domain.Role) (domain.User, error) {
	if !domain.Allowed(actor, domain.ActAssignRole, domain.RelNone) {
		return domain.User{}, domain.ErrForbidden
	}
	if !role.Valid() {
		return domain.User{}, fmt.Errorf("%w: role must be user, hotel or admin", domain.ErrValidation)
	}
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.users.UpdateUserRole(ctx, userID, role); err != nil {
		return domain.User{}, err
	}
	u.Role = role
	log.Info().Int64("user_id", userID).Str("role", string(role)).Msg("role assigned")
	return u, nil
}

func (s *AuthService) ListUsers(ctx context.Context, actor domain.Identity) ([]domain.User, error) {
	if !domain.Allowed(actor, domain.ActListUsers, domain.RelNone) {
		return nil, domain.ErrForbidden
	}
	return s.users.ListUsers(ctx)
}
