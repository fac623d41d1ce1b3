// Package repository defines the store contracts the services depend on.
// Implementations translate query.Descriptor values into their native query
// language; nothing above this boundary knows the storage technology.
package repository

import (
	"context"

	"github.com/devtrail/bootcamper/internal/domain/entity"
	"github.com/devtrail/bootcamper/pkg/query"
)

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, d query.Descriptor) ([]*entity.User, int64, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
}

// BootcampRepository persists bootcamps, including the derived aggregate
// fields written by the maintainer.
type BootcampRepository interface {
	Create(ctx context.Context, b *entity.Bootcamp) error
	GetByID(ctx context.Context, id string) (*entity.Bootcamp, error)
	GetByOwner(ctx context.Context, userID string) (*entity.Bootcamp, error)
	List(ctx context.Context, d query.Descriptor) ([]*entity.Bootcamp, int64, error)
	ListWithinRadius(ctx context.Context, lng, lat, radiusKm float64) ([]*entity.Bootcamp, error)
	Update(ctx context.Context, b *entity.Bootcamp) error
	SetPhoto(ctx context.Context, id, url string) error
	SetAverageCost(ctx context.Context, id string, cost int) error
	// SetAverageRating clears the field when rating is nil.
	SetAverageRating(ctx context.Context, id string, rating *int) error
	Delete(ctx context.Context, id string) error
}

// CourseRepository persists courses.
type CourseRepository interface {
	Create(ctx context.Context, c *entity.Course) error
	GetByID(ctx context.Context, id string) (*entity.Course, error)
	List(ctx context.Context, d query.Descriptor) ([]*entity.Course, int64, error)
	TuitionsByBootcamp(ctx context.Context, bootcampID string) ([]float64, error)
	Update(ctx context.Context, c *entity.Course) error
	Delete(ctx context.Context, id string) error
	DeleteByBootcamp(ctx context.Context, bootcampID string) error
}

// ReviewRepository persists reviews. Create returns a duplicate error when
// the (user, bootcamp) pair already has one.
type ReviewRepository interface {
	Create(ctx context.Context, r *entity.Review) error
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	List(ctx context.Context, d query.Descriptor) ([]*entity.Review, int64, error)
	RatingsByBootcamp(ctx context.Context, bootcampID string) ([]int, error)
	Update(ctx context.Context, r *entity.Review) error
	Delete(ctx context.Context, id string) error
	DeleteByBootcamp(ctx context.Context, bootcampID string) error
}
