// Package account is the server side of the auth provider: sign-up, sign-in,
// sign-out and token authentication. A successful authentication also makes
// sure the user has a directory record.
package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oggyb/muzz-dating/internal/app"
	"github.com/oggyb/muzz-dating/internal/auth"
	"github.com/oggyb/muzz-dating/internal/db"
	svcErr "github.com/oggyb/muzz-dating/internal/errors"
	"github.com/oggyb/muzz-dating/internal/model"
	"github.com/oggyb/muzz-dating/internal/repository"
)

const minPasswordLength = 6

// Directory is the part of the User Directory the account service needs.
type Directory interface {
	UpsertIfAbsent(ctx context.Context, id, email, displayName string) (bool, error)
}

// Grant is the result of a successful sign-up or sign-in.
type Grant struct {
	Identity  model.Identity
	Token     string
	ExpiresAt time.Time
}

type Service struct {
	appCtx    *app.AppContext
	accounts  *repository.AccountRepository
	directory Directory
	passwords *auth.PasswordService
	tokens    *auth.TokenService
}

// NewService fails when the configured JWT secret is unusable.
func NewService(appCtx *app.AppContext, directory Directory) (*Service, error) {
	tokens, err := auth.NewTokenService(appCtx.Config.Auth.JWTSecret, appCtx.Config.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}
	return &Service{
		appCtx:    appCtx,
		accounts:  repository.NewAccountRepository(appCtx.DB),
		directory: directory,
		passwords: auth.NewPasswordService(appCtx.Config.Auth.BcryptCost),
		tokens:    tokens,
	}, nil
}

// CreateAccount registers email with a fresh opaque user id and signs in.
func (s *Service) CreateAccount(ctx context.Context, email, password string) (Grant, error) {
	email = normalizeEmail(email)
	s.appCtx.Logger.Debug("CreateAccount called", "email", email)

	if err := validateCredentials(email, password); err != nil {
		return Grant{}, err
	}
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return Grant{}, svcErr.Validation("password", err.Error())
	}

	userID := uuid.NewString()
	err = s.accounts.Create(ctx, db.Account{
		UserID:       userID,
		Email:        email,
		PasswordHash: hash,
		LastLoginAt:  s.appCtx.Now(),
	})
	if errors.Is(err, repository.ErrEmailTaken) {
		return Grant{}, svcErr.AlreadyExists("account", email)
	}
	if err != nil {
		s.appCtx.Logger.Error("Create account failed", "email", email, "err", err)
		return Grant{}, svcErr.Remote("create account", err)
	}

	s.appCtx.Logger.Info("account created", "user", userID)
	return s.grant(ctx, userID, email)
}

// SignIn verifies the password and issues a new access token.
// Unknown emails and wrong passwords give the same error.
func (s *Service) SignIn(ctx context.Context, email, password string) (Grant, error) {
	email = normalizeEmail(email)
	s.appCtx.Logger.Debug("SignIn called", "email", email)

	acc, err := s.accounts.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Grant{}, svcErr.Unauthenticated("invalid email or password")
	}
	if err != nil {
		s.appCtx.Logger.Error("FindByEmail failed", "err", err)
		return Grant{}, svcErr.Remote("sign in", err)
	}

	if err := s.passwords.Verify(acc.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			return Grant{}, svcErr.Unauthenticated("invalid email or password")
		}
		return Grant{}, svcErr.Remote("sign in", err)
	}

	if err := s.accounts.TouchLogin(ctx, acc.UserID, s.appCtx.Now()); err != nil {
		s.appCtx.Logger.Warn("TouchLogin failed", "user", acc.UserID, "err", err)
	}
	return s.grant(ctx, acc.UserID, acc.Email)
}

// SignOut revokes the token until it would have expired.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return svcErr.Unauthenticated("invalid token")
	}
	ttl := claims.ExpiresAt.Sub(s.appCtx.Now())
	if err := s.appCtx.RedisCache.RevokeToken(ctx, claims.TokenID, ttl); err != nil {
		s.appCtx.Logger.Error("RevokeToken failed", "user", claims.UserID, "err", err)
		return svcErr.Remote("sign out", err)
	}
	s.appCtx.Logger.Info("signed out", "user", claims.UserID)
	return nil
}

// Authenticate validates an access token and checks it was not revoked.
func (s *Service) Authenticate(ctx context.Context, token string) (auth.Claims, error) {
	claims, err := s.tokens.Validate(token)
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return auth.Claims{}, svcErr.Unauthenticated("token expired")
	case err != nil:
		return auth.Claims{}, svcErr.Unauthenticated("invalid token")
	}

	revoked, err := s.appCtx.RedisCache.IsTokenRevoked(ctx, claims.TokenID)
	if err != nil {
		return auth.Claims{}, svcErr.Remote("check token", err)
	}
	if revoked {
		return auth.Claims{}, svcErr.Unauthenticated("token revoked")
	}
	return claims, nil
}

// grant issues a token and creates the directory record if absent. A failed
// directory write is logged; the user is signed in regardless.
func (s *Service) grant(ctx context.Context, userID, email string) (Grant, error) {
	token, claims, err := s.tokens.Issue(userID, email)
	if err != nil {
		return Grant{}, svcErr.Remote("issue token", err)
	}
	if _, err := s.directory.UpsertIfAbsent(ctx, userID, email, ""); err != nil {
		s.appCtx.Logger.Error("directory auto-creation failed", "user", userID, "err", err)
	}
	return Grant{
		Identity:  model.Identity{UserID: userID, Email: email},
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return svcErr.Validation("email", "a valid email is required")
	}
	if len(password) < minPasswordLength {
		return svcErr.Validation("password", "password must be at least 6 characters")
	}
	return nil
}
