package application

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtrail/bootcamper/internal/domain/authz"
	"github.com/devtrail/bootcamper/internal/domain/entity"
	"github.com/devtrail/bootcamper/pkg/apperr"
	"github.com/devtrail/bootcamper/pkg/geocoder"
)

type fakeGeocoder struct{ loc geocoder.Location }

func (g fakeGeocoder) Geocode(context.Context, string) (geocoder.Location, error) {
	return g.loc, nil
}

func newTestBootcampService() (*BootcampService, *fakeBootcampRepo, *fakeCourseRepo, *fakeReviewRepo) {
	bootcamps := newFakeBootcampRepo()
	courses := newFakeCourseRepo()
	reviews := newFakeReviewRepo()
	maint := NewAggregateMaintainer(bootcamps, courses, reviews, nil)
	svc := NewBootcampService(bootcamps, maint, fakeGeocoder{loc: geocoder.Location{Lat: 42.35, Lng: -71.1, City: "Boston", Country: "US"}}, nil, "", nil, "", nil)
	return svc, bootcamps, courses, reviews
}

var demoBootcamp = BootcampInput{
	Name:        "Devworks Bootcamp",
	Description: "Full stack in 12 weeks",
	Address:     "233 Bay State Rd, Boston",
	Careers:     []string{"Web Development"},
}

func TestBootcampCreateRequiresPublisher(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestBootcampService()

	_, err := svc.Create(ctx, nil, demoBootcamp)
	assert.True(t, apperr.Is(err, apperr.KindAuthentication), "anonymous create must be unauthenticated, got %v", err)

	_, err = svc.Create(ctx, &authz.Identity{ID: "u-1", Role: authz.RoleUser}, demoBootcamp)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization), "plain user create must be forbidden, got %v", err)

	b, err := svc.Create(ctx, &authz.Identity{ID: "p-1", Role: authz.RolePublisher}, demoBootcamp)
	require.NoError(t, err)
	assert.Equal(t, "p-1", b.UserID)
	assert.Equal(t, "devworks-bootcamp", b.Slug)
	require.NotNil(t, b.Location)
	assert.Equal(t, []float64{-71.1, 42.35}, b.Location.Coordinates)
}

func TestBootcampCreateOnePerPublisher(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestBootcampService()
	publisher := &authz.Identity{ID: "p-1", Role: authz.RolePublisher}

	_, err := svc.Create(ctx, publisher, demoBootcamp)
	require.NoError(t, err)

	second := demoBootcamp
	second.Name = "Second Campus"
	_, err = svc.Create(ctx, publisher, second)
	assert.True(t, apperr.Is(err, apperr.KindDuplicate), "second bootcamp must be rejected, got %v", err)

	// admins are exempt from the cap
	_, err = svc.Create(ctx, &authz.Identity{ID: "a-1", Role: authz.RoleAdmin}, second)
	assert.NoError(t, err)
}

func TestBootcampUpdateOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestBootcampService()
	owner := &authz.Identity{ID: "p-1", Role: authz.RolePublisher}

	b, err := svc.Create(ctx, owner, demoBootcamp)
	require.NoError(t, err)

	in := demoBootcamp
	in.Description = "Updated description"

	_, err = svc.Update(ctx, &authz.Identity{ID: "p-2", Role: authz.RolePublisher}, b.ID, in)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization), "non-owner update must be forbidden, got %v", err)

	got, err := svc.Update(ctx, owner, b.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Updated description", got.Description)

	got, err = svc.Update(ctx, &authz.Identity{ID: "a-1", Role: authz.RoleAdmin}, b.ID, demoBootcamp)
	require.NoError(t, err)
	assert.Equal(t, "Full stack in 12 weeks", got.Description)
}

func TestBootcampDeleteCascades(t *testing.T) {
	ctx := context.Background()
	svc, bootcamps, courses, reviews := newTestBootcampService()
	owner := &authz.Identity{ID: "p-1", Role: authz.RolePublisher}

	b, err := svc.Create(ctx, owner, demoBootcamp)
	require.NoError(t, err)
	courses.add("c-1", b.ID, 5000)
	reviews.add("r-1", b.ID, 8)

	require.NoError(t, svc.Delete(ctx, owner, b.ID))
	assert.NotContains(t, bootcamps.bootcamps, b.ID)
	assert.Empty(t, courses.courses)
	assert.Empty(t, reviews.reviews)
}

func TestCourseMutationsRecomputeAverageCost(t *testing.T) {
	ctx := context.Background()
	bootcamps := newFakeBootcampRepo("bc-1")
	bootcamps.bootcamps["bc-1"].UserID = "p-1"
	courses := newFakeCourseRepo()
	reviews := newFakeReviewRepo()
	maint := NewAggregateMaintainer(bootcamps, courses, reviews, nil)
	svc := NewCourseService(courses, bootcamps, maint, nil)
	owner := &authz.Identity{ID: "p-1", Role: authz.RolePublisher}

	c1, err := svc.Create(ctx, owner, "bc-1", CourseInput{Title: "Full Stack", Description: "d", Weeks: 12, Tuition: 10000, MinimumSkill: entity.SkillIntermediate})
	require.NoError(t, err)
	assert.Equal(t, 10000, bootcamps.bootcamps["bc-1"].AverageCost)

	_, err = svc.Create(ctx, owner, "bc-1", CourseInput{Title: "Front End", Description: "d", Weeks: 8, Tuition: 8000, MinimumSkill: entity.SkillBeginner})
	require.NoError(t, err)
	assert.Equal(t, 9000, bootcamps.bootcamps["bc-1"].AverageCost)

	require.NoError(t, svc.Delete(ctx, owner, c1.ID))
	assert.Equal(t, 8000, bootcamps.bootcamps["bc-1"].AverageCost)
}

func TestCourseCreateRequiresBootcampOwner(t *testing.T) {
	ctx := context.Background()
	bootcamps := newFakeBootcampRepo("bc-1")
	bootcamps.bootcamps["bc-1"].UserID = "p-1"
	courses := newFakeCourseRepo()
	maint := NewAggregateMaintainer(bootcamps, courses, newFakeReviewRepo(), nil)
	svc := NewCourseService(courses, bootcamps, maint, nil)

	in := CourseInput{Title: "Full Stack", Description: "d", Weeks: 12, Tuition: 10000, MinimumSkill: entity.SkillIntermediate}

	_, err := svc.Create(ctx, &authz.Identity{ID: "p-2", Role: authz.RolePublisher}, "bc-1", in)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization), "other publisher must be forbidden, got %v", err)

	_, err = svc.Create(ctx, &authz.Identity{ID: "p-1", Role: authz.RolePublisher}, "bc-1", in)
	assert.NoError(t, err)

	_, err = svc.Create(ctx, &authz.Identity{ID: "p-1", Role: authz.RolePublisher}, "missing", in)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestReviewMutationsRecomputeAverageRating(t *testing.T) {
	ctx := context.Background()
	bootcamps := newFakeBootcampRepo("bc-1")
	reviews := newFakeReviewRepo()
	maint := NewAggregateMaintainer(bootcamps, newFakeCourseRepo(), reviews, nil)
	svc := NewReviewService(reviews, bootcamps, maint, nil)

	r, err := svc.Create(ctx, &authz.Identity{ID: "u-1", Role: authz.RoleUser}, "bc-1", ReviewInput{Title: "Great", Text: "t", Rating: 8})
	require.NoError(t, err)
	require.NotNil(t, bootcamps.bootcamps["bc-1"].AverageRating)
	assert.Equal(t, 8, *bootcamps.bootcamps["bc-1"].AverageRating)

	require.NoError(t, svc.Delete(ctx, &authz.Identity{ID: "u-1", Role: authz.RoleUser}, r.ID))
	assert.Nil(t, bootcamps.bootcamps["bc-1"].AverageRating)
}

func TestReviewCreateRoleAndScope(t *testing.T) {
	ctx := context.Background()
	bootcamps := newFakeBootcampRepo("bc-1")
	reviews := newFakeReviewRepo()
	maint := NewAggregateMaintainer(bootcamps, newFakeCourseRepo(), reviews, nil)
	svc := NewReviewService(reviews, bootcamps, maint, nil)

	in := ReviewInput{Title: "Great", Text: "t", Rating: 9}

	_, err := svc.Create(ctx, &authz.Identity{ID: "p-1", Role: authz.RolePublisher}, "bc-1", in)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization), "publishers may not review, got %v", err)

	_, err = svc.Create(ctx, nil, "bc-1", in)
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))

	_, err = svc.Create(ctx, &authz.Identity{ID: "u-1", Role: authz.RoleUser}, "bc-1", in)
	assert.NoError(t, err)
}

func TestReviewCreateOncePerUserPerBootcamp(t *testing.T) {
	ctx := context.Background()
	bootcamps := newFakeBootcampRepo("bc-1", "bc-2")
	reviews := newFakeReviewRepo()
	maint := NewAggregateMaintainer(bootcamps, newFakeCourseRepo(), reviews, nil)
	svc := NewReviewService(reviews, bootcamps, maint, nil)

	alice := &authz.Identity{ID: "u-1", Role: authz.RoleUser}
	in := ReviewInput{Title: "Great", Text: "t", Rating: 9}

	_, err := svc.Create(ctx, alice, "bc-1", in)
	require.NoError(t, err)

	_, err = svc.Create(ctx, alice, "bc-1", in)
	assert.True(t, apperr.Is(err, apperr.KindDuplicate), "second review by the same user must be rejected, got %v", err)
	assert.Len(t, reviews.reviews, 1)

	// A different user on the same bootcamp, or the same user elsewhere, is fine.
	_, err = svc.Create(ctx, &authz.Identity{ID: "u-2", Role: authz.RoleUser}, "bc-1", in)
	assert.NoError(t, err)
	_, err = svc.Create(ctx, alice, "bc-2", in)
	assert.NoError(t, err)
}

func TestListScopedToBootcamp(t *testing.T) {
	ctx := context.Background()
	bootcamps := newFakeBootcampRepo("bc-1")
	courses := newFakeCourseRepo()
	maint := NewAggregateMaintainer(bootcamps, courses, newFakeReviewRepo(), nil)
	svc := NewCourseService(courses, bootcamps, maint, nil)

	_, err := svc.List(ctx, "missing", url.Values{})
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "listing under an unknown bootcamp must 404, got %v", err)
}
