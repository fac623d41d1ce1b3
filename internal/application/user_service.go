package application

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/devtrail/bootcamper/internal/domain/authz"
	"github.com/devtrail/bootcamper/internal/domain/entity"
	"github.com/devtrail/bootcamper/internal/domain/repository"
	"github.com/devtrail/bootcamper/pkg/apperr"
	"github.com/devtrail/bootcamper/pkg/helpers"
	"github.com/devtrail/bootcamper/pkg/query"
)

// UserInput carries admin-settable account fields.
type UserInput struct {
	Name     string `json:"name" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"omitempty,pwd"`
	Role     string `json:"role" binding:"required,oneof=user publisher admin"`
}

var adminOnly = []authz.Role{authz.RoleAdmin}

// UserService is the admin account management surface.
type UserService struct {
	Users  repository.UserRepository
	Logger *logrus.Logger
}

func NewUserService(users repository.UserRepository, logger *logrus.Logger) *UserService {
	return &UserService{Users: users, Logger: logger}
}

var userQueryOpts = query.Options{
	ExcludedKeys:    []string{"password"},
	DefaultSort:     "-created_at",
	DefaultPageSize: 25,
	MaxPageSize:     100,
}

func (s *UserService) List(ctx context.Context, id *authz.Identity, params url.Values) (*ListResult[*entity.User], error) {
	if err := decisionErr(authz.Authorize(id, authz.Action{Verb: authz.Read, RequiredRoles: adminOnly})); err != nil {
		return nil, err
	}
	d := query.Compile(params, userQueryOpts)
	items, total, err := s.Users.List(ctx, d)
	if err != nil {
		return nil, err
	}
	return newListResult(items, total, d.Page), nil
}

func (s *UserService) Get(ctx context.Context, id *authz.Identity, userID string) (*entity.User, error) {
	if err := decisionErr(authz.Authorize(id, authz.Action{Verb: authz.Read, RequiredRoles: adminOnly})); err != nil {
		return nil, err
	}
	return s.Users.GetByID(ctx, userID)
}

func (s *UserService) Create(ctx context.Context, id *authz.Identity, in UserInput) (*entity.User, error) {
	if err := decisionErr(authz.Authorize(id, authz.Action{Verb: authz.Create, RequiredRoles: adminOnly})); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, apperr.Validation("password is required")
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Upstream("hash password", err)
	}
	now := time.Now().UTC()
	u := &entity.User{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Role:      authz.Role(in.Role),
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
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id *authz.Identity, userID string, in UserInput) (*entity.User, error) {
	if err := decisionErr(authz.Authorize(id, authz.Action{Verb: authz.Update, RequiredRoles: adminOnly})); err != nil {
		return nil, err
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Name = in.Name
	u.Email = in.Email
	u.Role = authz.Role(in.Role)
	if err := s.Users.Update(ctx, u); err != nil {
		if apperr.Is(err, apperr.KindDuplicate) {
			return nil, apperr.Duplicate("email already registered")
		}
		return nil, err
	}
	if in.Password != "" {
		hash, err := helpers.HashPassword(in.Password)
		if err != nil {
			return nil, apperr.Upstream("hash password", err)
		}
		if err := s.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id *authz.Identity, userID string) error {
	if err := decisionErr(authz.Authorize(id, authz.Action{Verb: authz.Delete, RequiredRoles: adminOnly})); err != nil {
		return err
	}
	if id != nil && id.ID == userID {
		return apperr.Validation("admins cannot delete their own account")
	}
	return s.Users.Delete(ctx, userID)
}
