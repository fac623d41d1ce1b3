package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/devtrail/bootcamper/config"
	"github.com/devtrail/bootcamper/internal/domain/authz"
	"github.com/devtrail/bootcamper/internal/domain/entity"
	"github.com/devtrail/bootcamper/internal/domain/repository"
	"github.com/devtrail/bootcamper/pkg/apperr"
	"github.com/devtrail/bootcamper/pkg/helpers"
	"github.com/devtrail/bootcamper/pkg/mailer"
)

const (
	sessionTTL    = 24 * time.Hour
	resetTokenTTL = 30 * time.Minute
)

func sessionKey(userID string) string { return "user:session:" + userID }
func resetKey(token string) string    { return "pwd:reset:token:" + token }

// AuthService owns registration, sessions and credential management.
type AuthService struct {
	Users  repository.UserRepository
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Pub    *helpers.RabbitPublisher
	Logger *logrus.Logger
	Cfg    *config.Config
}

func NewAuthService(users repository.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, pub *helpers.RabbitPublisher, logger *logrus.Logger, cfg *config.Config) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Redis: rdb, Pub: pub, Logger: logger, Cfg: cfg}
}

// TokenPair is an issued access/refresh pair.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// Register creates an account with role user or publisher. Admin accounts
// are only created by admins through the user management endpoints.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role authz.Role) (*entity.User, error) {
	if role == "" {
		role = authz.RoleUser
	}
	if role == authz.RoleAdmin || !authz.ValidRole(role) {
		return nil, apperr.Validation("role must be user or publisher")
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, apperr.Upstream("hash password", err)
	}
	now := time.Now().UTC()
	u := &entity.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      role,
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if apperr.Is(err, apperr.KindDuplicate) {
			return nil, apperr.Duplicate("email already registered")
		}
		return nil, err
	}
	s.enqueueMail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateWelcome,
		Data:     map[string]any{"Name": u.Name},
	})
	return u, nil
}

// Login validates credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil || !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, TokenPair{}, apperr.Authentication("invalid credentials")
	}
	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// issueTokens generates the token pair and records the session in Redis. The
// session carries the role so the auth middleware can resolve an identity
// without a store round-trip.
func (s *AuthService) issueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, apperr.Upstream("generate access token", err)
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, apperr.Upstream("generate refresh token", err)
	}

	key := sessionKey(u.ID)
	pipe := s.Redis.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"role":       string(u.Role),
		"sid":        sid,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return TokenPair{}, apperr.Upstream("store session", err)
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh rotates the session id and both tokens.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, apperr.Authentication("invalid refresh token")
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, apperr.Authentication("invalid refresh token")
	}
	data, err := s.Redis.HGetAll(ctx, sessionKey(u.ID)).Result()
	if err != nil || len(data) == 0 || data["sid"] != claims.SessionID {
		return TokenPair{}, apperr.Authentication("session expired")
	}
	return s.issueTokens(ctx, u)
}

// Logout drops the session.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.Redis.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return apperr.Upstream("drop session", err)
	}
	return nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, userID string) (*entity.User, error) {
	return s.Users.GetByID(ctx, userID)
}

// UpdateDetails changes name and/or email, keeping the session hash in step.
func (s *AuthService) UpdateDetails(ctx context.Context, userID, name, email string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = email
	}
	if err := s.Users.Update(ctx, u); err != nil {
		if apperr.Is(err, apperr.KindDuplicate) {
			return nil, apperr.Duplicate("email already registered")
		}
		return nil, err
	}
	if err := s.Redis.HSet(ctx, sessionKey(u.ID), map[string]any{
		"name":  u.Name,
		"email": u.Email,
	}).Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("session update failed")
	}
	return u, nil
}

// UpdatePassword verifies the current password before setting a new one.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(u.Password, current) {
		return apperr.Authentication("current password is incorrect")
	}
	hash, err := helpers.HashPassword(next)
	if err != nil {
		return apperr.Upstream("hash password", err)
	}
	return s.Users.UpdatePassword(ctx, u.ID, hash)
}

// ForgotPassword issues a reset token and enqueues the reset email. It
// reports success for unknown emails so the endpoint can not be used for
// account enumeration.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			if s.Logger != nil {
				s.Logger.WithField("email", email).Info("password reset requested for unknown email")
			}
			return nil
		}
		return err
	}

	tok, err := genToken(32)
	if err != nil {
		return apperr.Upstream("generate reset token", err)
	}
	if err := s.Redis.Set(ctx, resetKey(tok), u.ID, resetTokenTTL).Err(); err != nil {
		return apperr.Upstream("store reset token", err)
	}

	s.enqueueMail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateResetPassword,
		Data: map[string]any{
			"Name":             u.Name,
			"ResetURL":         s.Cfg.ResetPasswordURL + "?token=" + tok,
			"ExpiresInMinutes": int(resetTokenTTL.Minutes()),
		},
	})
	return nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	uid, err := s.Redis.Get(ctx, resetKey(token)).Result()
	if err != nil || uid == "" {
		return apperr.Validation("invalid or expired token")
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return apperr.Upstream("hash password", err)
	}
	if err := s.Users.UpdatePassword(ctx, uid, hash); err != nil {
		return err
	}
	s.Redis.Del(ctx, resetKey(token))
	return nil
}

func (s *AuthService) enqueueMail(ctx context.Context, job mailer.EmailJob) {
	if s.Pub == nil || s.Cfg == nil || !s.Cfg.MailSendEnabled {
		return
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("template", job.Template).Warn("failed to enqueue email")
	}
}

func genToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
