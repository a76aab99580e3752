package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kryptospire-dev/bot-dash/internal/common/cache"
	"github.com/kryptospire-dev/bot-dash/internal/common/config"
	apperrors "github.com/kryptospire-dev/bot-dash/internal/common/errors"
	"github.com/kryptospire-dev/bot-dash/internal/common/logger"
)

const sessionKeyPrefix = "session:"

// AuthService gates the admin console behind the single configured
// credential pair. A successful login issues a bearer token held in Redis
// with a TTL; nothing resembling multi-user account management lives here.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Validate(ctx context.Context, token string) (bool, error)
}

type authService struct {
	cache cache.Cache

	email      string
	password   string
	sessionTTL time.Duration
}

func NewAuthService(c cache.Cache, cfg *config.Config) AuthService {
	return &authService{
		cache:      c,
		email:      cfg.Admin.Email,
		password:   cfg.Admin.Password,
		sessionTTL: cfg.Admin.SessionTTL,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.email)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	if !emailOK || !passwordOK {
		return "", apperrors.NewUnauthorizedError("invalid email or password")
	}

	token := uuid.New().String()
	if err := s.cache.Set(ctx, sessionKeyPrefix+token, email, s.sessionTTL); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeCacheError, "failed to store session")
	}

	logger.Info().Str("email", email).Msg("Admin logged in")

	return token, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.cache.Delete(ctx, sessionKeyPrefix+token); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeCacheError, "failed to drop session")
	}
	return nil
}

func (s *authService) Validate(ctx context.Context, token string) (bool, error) {
	var email string
	err := s.cache.Get(ctx, sessionKeyPrefix+token, &email)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
