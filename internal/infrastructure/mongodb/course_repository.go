package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/devtrail/bootcamper/internal/domain/entity"
	"github.com/devtrail/bootcamper/internal/domain/repository"
	"github.com/devtrail/bootcamper/pkg/query"
)

type CourseRepository struct {
	c *Client
}

func NewCourseRepository(c *Client) *CourseRepository {
	return &CourseRepository{c: c}
}

func (r *CourseRepository) Create(ctx context.Context, course *entity.Course) error {
	return insertOne(ctx, r.c.col(ColCourses), course)
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*entity.Course, error) {
	return findOne[entity.Course](ctx, r.c.col(ColCourses), bson.D{{Key: "_id", Value: id}}, "course not found")
}

func (r *CourseRepository) List(ctx context.Context, d query.Descriptor) ([]*entity.Course, int64, error) {
	return findPage[entity.Course](ctx, r.c.col(ColCourses), compileFilter(d), compileFindOptions(d))
}

// TuitionsByBootcamp projects only the tuition values the aggregate
// maintainer needs.
func (r *CourseRepository) TuitionsByBootcamp(ctx context.Context, bootcampID string) ([]float64, error) {
	type row struct {
		Tuition float64 `bson:"tuition"`
	}
	rows, err := findMany[row](ctx, r.c.col(ColCourses), bson.D{{Key: "bootcamp_id", Value: bootcampID}})
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(rows))
	for _, rw := range rows {
		out = append(out, rw.Tuition)
	}
	return out, nil
}

func (r *CourseRepository) Update(ctx context.Context, course *entity.Course) error {
	course.UpdatedAt = time.Now().UTC()
	return replaceByID(ctx, r.c.col(ColCourses), course.ID, course, "course not found")
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.c.col(ColCourses), id, "course not found")
}

func (r *CourseRepository) DeleteByBootcamp(ctx context.Context, bootcampID string) error {
	return deleteMany(ctx, r.c.col(ColCourses), bson.D{{Key: "bootcamp_id", Value: bootcampID}})
}

var _ repository.CourseRepository = (*CourseRepository)(nil)
