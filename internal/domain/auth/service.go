package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (User, error)
	UpdateLastLogin(ctx context.Context, userID string) error
}

type Service struct {
	Store    UserStore
	Secret   string
	TokenTTL time.Duration
	Logger   *zap.Logger
}

func NewService(store UserStore, secret string, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Store: store, Secret: secret, TokenTTL: ttl, Logger: logger}
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userId"`
	Admin     bool      `json:"admin"`
}

// Login checks the password and issues a signed token. Unknown email and wrong password
// are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.Store.FindUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	expires := time.Now().Add(s.TokenTTL)
	token, err := GenerateToken(s.Secret, Claims{UserID: user.ID, Admin: user.Admin}, s.TokenTTL)
	if err != nil {
		return Session{}, err
	}
	if err := s.Store.UpdateLastLogin(ctx, user.ID); err != nil {
		s.Logger.Warn("update last_login failed", zap.String("userId", user.ID), zap.Error(err))
	}
	return Session{Token: token, ExpiresAt: expires, UserID: user.ID, Admin: user.Admin}, nil
}
