package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/devtrail/bootcamper/internal/domain/entity"
	"github.com/devtrail/bootcamper/internal/domain/repository"
	"github.com/devtrail/bootcamper/pkg/query"
)

type UserRepository struct {
	c *Client
}

func NewUserRepository(c *Client) *UserRepository {
	return &UserRepository{c: c}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	return insertOne(ctx, r.c.col(ColUsers), u)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return findOne[entity.User](ctx, r.c.col(ColUsers), bson.D{{Key: "_id", Value: id}}, "user not found")
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return findOne[entity.User](ctx, r.c.col(ColUsers), bson.D{{Key: "email", Value: email}}, "user not found")
}

func (r *UserRepository) List(ctx context.Context, d query.Descriptor) ([]*entity.User, int64, error) {
	return findPage[entity.User](ctx, r.c.col(ColUsers), compileFilter(d), compileFindOptions(d))
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now().UTC()
	return replaceByID(ctx, r.c.col(ColUsers), u.ID, u, "user not found")
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return updateByID(ctx, r.c.col(ColUsers), id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "password", Value: hash},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}, "user not found")
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.c.col(ColUsers), id, "user not found")
}

var _ repository.UserRepository = (*UserRepository)(nil)
