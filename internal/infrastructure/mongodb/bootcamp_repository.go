package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/devtrail/bootcamper/internal/domain/entity"
	"github.com/devtrail/bootcamper/internal/domain/repository"
	"github.com/devtrail/bootcamper/pkg/query"
)

// earthRadiusKm is used to convert a search radius to radians for
// $centerSphere.
const earthRadiusKm = 6378.1

type BootcampRepository struct {
	c *Client
}

func NewBootcampRepository(c *Client) *BootcampRepository {
	return &BootcampRepository{c: c}
}

func (r *BootcampRepository) Create(ctx context.Context, b *entity.Bootcamp) error {
	return insertOne(ctx, r.c.col(ColBootcamps), b)
}

func (r *BootcampRepository) GetByID(ctx context.Context, id string) (*entity.Bootcamp, error) {
	return findOne[entity.Bootcamp](ctx, r.c.col(ColBootcamps), bson.D{{Key: "_id", Value: id}}, "bootcamp not found")
}

func (r *BootcampRepository) GetByOwner(ctx context.Context, userID string) (*entity.Bootcamp, error) {
	return findOne[entity.Bootcamp](ctx, r.c.col(ColBootcamps), bson.D{{Key: "user_id", Value: userID}}, "bootcamp not found")
}

func (r *BootcampRepository) List(ctx context.Context, d query.Descriptor) ([]*entity.Bootcamp, int64, error) {
	return findPage[entity.Bootcamp](ctx, r.c.col(ColBootcamps), compileFilter(d), compileFindOptions(d))
}

func (r *BootcampRepository) ListWithinRadius(ctx context.Context, lng, lat, radiusKm float64) ([]*entity.Bootcamp, error) {
	filter := bson.D{{Key: "location", Value: bson.D{
		{Key: "$geoWithin", Value: bson.D{
			{Key: "$centerSphere", Value: bson.A{
				bson.A{lng, lat},
				radiusKm / earthRadiusKm,
			}},
		}},
	}}}
	return findMany[entity.Bootcamp](ctx, r.c.col(ColBootcamps), filter)
}

func (r *BootcampRepository) Update(ctx context.Context, b *entity.Bootcamp) error {
	b.UpdatedAt = time.Now().UTC()
	return replaceByID(ctx, r.c.col(ColBootcamps), b.ID, b, "bootcamp not found")
}

func (r *BootcampRepository) SetPhoto(ctx context.Context, id, url string) error {
	return updateByID(ctx, r.c.col(ColBootcamps), id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "photo", Value: url},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}, "bootcamp not found")
}

func (r *BootcampRepository) SetAverageCost(ctx context.Context, id string, cost int) error {
	return updateByID(ctx, r.c.col(ColBootcamps), id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "averageCost", Value: cost},
	}}}, "bootcamp not found")
}

// SetAverageRating unsets the field for nil so "no reviews" is absence rather
// than zero.
func (r *BootcampRepository) SetAverageRating(ctx context.Context, id string, rating *int) error {
	col := r.c.col(ColBootcamps)
	if rating == nil {
		return updateByID(ctx, col, id, bson.D{{Key: "$unset", Value: bson.D{
			{Key: "averageRating", Value: ""},
		}}}, "bootcamp not found")
	}
	return updateByID(ctx, col, id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "averageRating", Value: *rating},
	}}}, "bootcamp not found")
}

func (r *BootcampRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.c.col(ColBootcamps), id, "bootcamp not found")
}

var _ repository.BootcampRepository = (*BootcampRepository)(nil)
