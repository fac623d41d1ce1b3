package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/devtrail/bootcamper/internal/domain/entity"
	"github.com/devtrail/bootcamper/internal/domain/repository"
	"github.com/devtrail/bootcamper/pkg/apperr"
	"github.com/devtrail/bootcamper/pkg/query"
)

type ReviewRepository struct {
	c *Client
}

func NewReviewRepository(c *Client) *ReviewRepository {
	return &ReviewRepository{c: c}
}

// Create relies on the unique (bootcamp_id, user_id) index; a second review
// by the same user for the same bootcamp surfaces as a duplicate error.
func (r *ReviewRepository) Create(ctx context.Context, rev *entity.Review) error {
	_, err := r.c.col(ColReviews).InsertOne(ctx, rev)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Duplicate("review already submitted for this bootcamp")
	}
	return wrapError(err, "")
}

func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	return findOne[entity.Review](ctx, r.c.col(ColReviews), bson.D{{Key: "_id", Value: id}}, "review not found")
}

func (r *ReviewRepository) List(ctx context.Context, d query.Descriptor) ([]*entity.Review, int64, error) {
	return findPage[entity.Review](ctx, r.c.col(ColReviews), compileFilter(d), compileFindOptions(d))
}

func (r *ReviewRepository) RatingsByBootcamp(ctx context.Context, bootcampID string) ([]int, error) {
	type row struct {
		Rating int `bson:"rating"`
	}
	rows, err := findMany[row](ctx, r.c.col(ColReviews), bson.D{{Key: "bootcamp_id", Value: bootcampID}})
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(rows))
	for _, rw := range rows {
		out = append(out, rw.Rating)
	}
	return out, nil
}

func (r *ReviewRepository) Update(ctx context.Context, rev *entity.Review) error {
	rev.UpdatedAt = time.Now().UTC()
	return replaceByID(ctx, r.c.col(ColReviews), rev.ID, rev, "review not found")
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.c.col(ColReviews), id, "review not found")
}

func (r *ReviewRepository) DeleteByBootcamp(ctx context.Context, bootcampID string) error {
	return deleteMany(ctx, r.c.col(ColReviews), bson.D{{Key: "bootcamp_id", Value: bootcampID}})
}

var _ repository.ReviewRepository = (*ReviewRepository)(nil)
