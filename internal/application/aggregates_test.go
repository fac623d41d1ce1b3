package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtrail/bootcamper/internal/domain/entity"
	"github.com/devtrail/bootcamper/pkg/apperr"
	"github.com/devtrail/bootcamper/pkg/query"
)

// fakeBootcampRepo records aggregate writes; only the methods the maintainer
// touches do real work.
type fakeBootcampRepo struct {
	bootcamps map[string]*entity.Bootcamp

	costWrites   int
	ratingWrites int
}

func newFakeBootcampRepo(ids ...string) *fakeBootcampRepo {
	m := make(map[string]*entity.Bootcamp, len(ids))
	for _, id := range ids {
		m[id] = &entity.Bootcamp{ID: id}
	}
	return &fakeBootcampRepo{bootcamps: m}
}

func (f *fakeBootcampRepo) Create(_ context.Context, b *entity.Bootcamp) error {
	f.bootcamps[b.ID] = b
	return nil
}

func (f *fakeBootcampRepo) GetByID(_ context.Context, id string) (*entity.Bootcamp, error) {
	b, ok := f.bootcamps[id]
	if !ok {
		return nil, apperr.NotFound("bootcamp not found")
	}
	return b, nil
}

func (f *fakeBootcampRepo) GetByOwner(_ context.Context, userID string) (*entity.Bootcamp, error) {
	for _, b := range f.bootcamps {
		if b.UserID == userID {
			return b, nil
		}
	}
	return nil, apperr.NotFound("bootcamp not found")
}

func (f *fakeBootcampRepo) List(context.Context, query.Descriptor) ([]*entity.Bootcamp, int64, error) {
	return nil, 0, nil
}

func (f *fakeBootcampRepo) ListWithinRadius(context.Context, float64, float64, float64) ([]*entity.Bootcamp, error) {
	return nil, nil
}

func (f *fakeBootcampRepo) Update(_ context.Context, b *entity.Bootcamp) error {
	f.bootcamps[b.ID] = b
	return nil
}

func (f *fakeBootcampRepo) SetPhoto(_ context.Context, id, url string) error {
	f.bootcamps[id].Photo = url
	return nil
}

func (f *fakeBootcampRepo) SetAverageCost(_ context.Context, id string, cost int) error {
	b, ok := f.bootcamps[id]
	if !ok {
		return apperr.NotFound("bootcamp not found")
	}
	b.AverageCost = cost
	f.costWrites++
	return nil
}

func (f *fakeBootcampRepo) SetAverageRating(_ context.Context, id string, rating *int) error {
	b, ok := f.bootcamps[id]
	if !ok {
		return apperr.NotFound("bootcamp not found")
	}
	b.AverageRating = rating
	f.ratingWrites++
	return nil
}

func (f *fakeBootcampRepo) Delete(_ context.Context, id string) error {
	delete(f.bootcamps, id)
	return nil
}

type fakeCourseRepo struct {
	courses map[string]*entity.Course
	readErr error
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: make(map[string]*entity.Course)}
}

func (f *fakeCourseRepo) add(id, bootcampID string, tuition float64) {
	f.courses[id] = &entity.Course{ID: id, BootcampID: bootcampID, Tuition: tuition}
}

func (f *fakeCourseRepo) Create(_ context.Context, c *entity.Course) error {
	f.courses[c.ID] = c
	return nil
}

func (f *fakeCourseRepo) GetByID(_ context.Context, id string) (*entity.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, apperr.NotFound("course not found")
	}
	return c, nil
}

func (f *fakeCourseRepo) List(context.Context, query.Descriptor) ([]*entity.Course, int64, error) {
	return nil, 0, nil
}

func (f *fakeCourseRepo) TuitionsByBootcamp(_ context.Context, bootcampID string) ([]float64, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []float64
	for _, c := range f.courses {
		if c.BootcampID == bootcampID {
			out = append(out, c.Tuition)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) Update(_ context.Context, c *entity.Course) error {
	f.courses[c.ID] = c
	return nil
}

func (f *fakeCourseRepo) Delete(_ context.Context, id string) error {
	delete(f.courses, id)
	return nil
}

func (f *fakeCourseRepo) DeleteByBootcamp(_ context.Context, bootcampID string) error {
	for id, c := range f.courses {
		if c.BootcampID == bootcampID {
			delete(f.courses, id)
		}
	}
	return nil
}

type fakeReviewRepo struct {
	reviews map[string]*entity.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[string]*entity.Review)}
}

func (f *fakeReviewRepo) add(id, bootcampID string, rating int) {
	f.reviews[id] = &entity.Review{ID: id, BootcampID: bootcampID, Rating: rating}
}

func (f *fakeReviewRepo) Create(_ context.Context, r *entity.Review) error {
	// Same constraint as the store's unique (bootcamp_id, user_id) index.
	for _, existing := range f.reviews {
		if existing.BootcampID == r.BootcampID && existing.UserID == r.UserID {
			return apperr.Duplicate("review already submitted for this bootcamp")
		}
	}
	f.reviews[r.ID] = r
	return nil
}

func (f *fakeReviewRepo) GetByID(_ context.Context, id string) (*entity.Review, error) {
	r, ok := f.reviews[id]
	if !ok {
		return nil, apperr.NotFound("review not found")
	}
	return r, nil
}

func (f *fakeReviewRepo) List(context.Context, query.Descriptor) ([]*entity.Review, int64, error) {
	return nil, 0, nil
}

func (f *fakeReviewRepo) RatingsByBootcamp(_ context.Context, bootcampID string) ([]int, error) {
	var out []int
	for _, r := range f.reviews {
		if r.BootcampID == bootcampID {
			out = append(out, r.Rating)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) Update(_ context.Context, r *entity.Review) error {
	f.reviews[r.ID] = r
	return nil
}

func (f *fakeReviewRepo) Delete(_ context.Context, id string) error {
	delete(f.reviews, id)
	return nil
}

func (f *fakeReviewRepo) DeleteByBootcamp(_ context.Context, bootcampID string) error {
	for id, r := range f.reviews {
		if r.BootcampID == bootcampID {
			delete(f.reviews, id)
		}
	}
	return nil
}

func newTestMaintainer() (*AggregateMaintainer, *fakeBootcampRepo, *fakeCourseRepo, *fakeReviewRepo) {
	bootcamps := newFakeBootcampRepo("bc-1")
	courses := newFakeCourseRepo()
	reviews := newFakeReviewRepo()
	return NewAggregateMaintainer(bootcamps, courses, reviews, nil), bootcamps, courses, reviews
}

func TestRecomputeAverageCost(t *testing.T) {
	ctx := context.Background()
	m, bootcamps, courses, _ := newTestMaintainer()

	courses.add("c-1", "bc-1", 1000)
	courses.add("c-2", "bc-1", 2000)
	courses.add("c-3", "bc-1", 3000)

	require.NoError(t, m.RecomputeAverageCost(ctx, "bc-1"))
	assert.Equal(t, 2000, bootcamps.bootcamps["bc-1"].AverageCost)

	courses.add("c-4", "bc-1", 4000)
	require.NoError(t, m.RecomputeAverageCost(ctx, "bc-1"))
	assert.Equal(t, 2500, bootcamps.bootcamps["bc-1"].AverageCost)

	courses.Delete(ctx, "c-4")
	courses.Delete(ctx, "c-1")
	require.NoError(t, m.RecomputeAverageCost(ctx, "bc-1"))
	assert.Equal(t, 2500, bootcamps.bootcamps["bc-1"].AverageCost)
}

func TestRecomputeAverageCostNoCourses(t *testing.T) {
	ctx := context.Background()
	m, bootcamps, courses, _ := newTestMaintainer()

	courses.add("c-1", "bc-1", 9000)
	require.NoError(t, m.RecomputeAverageCost(ctx, "bc-1"))
	require.Equal(t, 9000, bootcamps.bootcamps["bc-1"].AverageCost)

	courses.Delete(ctx, "c-1")
	require.NoError(t, m.RecomputeAverageCost(ctx, "bc-1"))
	assert.Equal(t, 0, bootcamps.bootcamps["bc-1"].AverageCost)
}

func TestRecomputeAverageCostRounds(t *testing.T) {
	ctx := context.Background()
	m, bootcamps, courses, _ := newTestMaintainer()

	courses.add("c-1", "bc-1", 100)
	courses.add("c-2", "bc-1", 101)
	require.NoError(t, m.RecomputeAverageCost(ctx, "bc-1"))
	// 100.5 rounds half away from zero
	assert.Equal(t, 101, bootcamps.bootcamps["bc-1"].AverageCost)
}

func TestRecomputeAverageCostIdempotent(t *testing.T) {
	ctx := context.Background()
	m, bootcamps, courses, _ := newTestMaintainer()

	courses.add("c-1", "bc-1", 5000)
	require.NoError(t, m.RecomputeAverageCost(ctx, "bc-1"))
	require.NoError(t, m.RecomputeAverageCost(ctx, "bc-1"))
	require.NoError(t, m.RecomputeAverageCost(ctx, "bc-1"))
	assert.Equal(t, 5000, bootcamps.bootcamps["bc-1"].AverageCost)
}

func TestRecomputeAverageCostReadFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	m, bootcamps, courses, _ := newTestMaintainer()

	courses.add("c-1", "bc-1", 7000)
	require.NoError(t, m.RecomputeAverageCost(ctx, "bc-1"))
	require.Equal(t, 1, bootcamps.costWrites)

	courses.readErr = errors.New("connection reset")
	err := m.RecomputeAverageCost(ctx, "bc-1")
	require.Error(t, err)
	assert.Equal(t, 1, bootcamps.costWrites, "failed read must not produce a write")
	assert.Equal(t, 7000, bootcamps.bootcamps["bc-1"].AverageCost)
}

func TestRecomputeAverageRating(t *testing.T) {
	ctx := context.Background()
	m, bootcamps, _, reviews := newTestMaintainer()

	reviews.add("r-1", "bc-1", 8)
	reviews.add("r-2", "bc-1", 9)
	require.NoError(t, m.RecomputeAverageRating(ctx, "bc-1"))
	got := bootcamps.bootcamps["bc-1"].AverageRating
	require.NotNil(t, got)
	// 8.5 rounds half away from zero
	assert.Equal(t, 9, *got)
}

func TestRecomputeAverageRatingClearedWhenNoReviews(t *testing.T) {
	ctx := context.Background()
	m, bootcamps, _, reviews := newTestMaintainer()

	reviews.add("r-1", "bc-1", 4)
	require.NoError(t, m.RecomputeAverageRating(ctx, "bc-1"))
	require.NotNil(t, bootcamps.bootcamps["bc-1"].AverageRating)

	reviews.Delete(ctx, "r-1")
	require.NoError(t, m.RecomputeAverageRating(ctx, "bc-1"))
	assert.Nil(t, bootcamps.bootcamps["bc-1"].AverageRating, "rating must be cleared, not zeroed")
}

func TestRecomputeAverageRatingIgnoresOtherBootcamps(t *testing.T) {
	ctx := context.Background()
	m, bootcamps, _, reviews := newTestMaintainer()
	bootcamps.bootcamps["bc-2"] = &entity.Bootcamp{ID: "bc-2"}

	reviews.add("r-1", "bc-1", 10)
	reviews.add("r-2", "bc-2", 2)
	require.NoError(t, m.RecomputeAverageRating(ctx, "bc-1"))
	got := bootcamps.bootcamps["bc-1"].AverageRating
	require.NotNil(t, got)
	assert.Equal(t, 10, *got)
}

func TestDeleteBootcampCascade(t *testing.T) {
	ctx := context.Background()
	m, bootcamps, courses, reviews := newTestMaintainer()
	bootcamps.bootcamps["bc-2"] = &entity.Bootcamp{ID: "bc-2"}

	courses.add("c-1", "bc-1", 1000)
	courses.add("c-2", "bc-1", 2000)
	courses.add("c-3", "bc-2", 3000)
	reviews.add("r-1", "bc-1", 7)
	reviews.add("r-2", "bc-2", 5)

	require.NoError(t, m.DeleteBootcampCascade(ctx, "bc-1"))

	_, ok := bootcamps.bootcamps["bc-1"]
	assert.False(t, ok, "bootcamp must be gone")

	left, err := courses.TuitionsByBootcamp(ctx, "bc-1")
	require.NoError(t, err)
	assert.Empty(t, left, "no orphaned courses")

	ratings, err := reviews.RatingsByBootcamp(ctx, "bc-1")
	require.NoError(t, err)
	assert.Empty(t, ratings, "no orphaned reviews")

	// siblings untouched
	other, err := courses.TuitionsByBootcamp(ctx, "bc-2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
	assert.Contains(t, bootcamps.bootcamps, "bc-2")
}

func TestDeleteBootcampCascadeStopsOnChildFailure(t *testing.T) {
	ctx := context.Background()
	m, bootcamps, _, _ := newTestMaintainer()

	// A failing child delete must leave the parent in place.
	failing := &failingCourseRepo{}
	m.Courses = failing
	err := m.DeleteBootcampCascade(ctx, "bc-1")
	require.Error(t, err)
	assert.Contains(t, bootcamps.bootcamps, "bc-1")
}

type failingCourseRepo struct{ fakeCourseRepo }

func (f *failingCourseRepo) DeleteByBootcamp(context.Context, string) error {
	return apperr.Upstream("delete courses", errors.New("connection reset"))
}
