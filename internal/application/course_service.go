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
	"github.com/devtrail/bootcamper/pkg/query"
)

// CourseInput carries client-settable course fields.
type CourseInput struct {
	Title                string  `json:"title" binding:"required,max=100"`
	Description          string  `json:"description" binding:"required,max=500"`
	Weeks                int     `json:"weeks" binding:"required,gte=1"`
	Tuition              float64 `json:"tuition" binding:"required,gte=0"`
	MinimumSkill         string  `json:"minimum_skill" binding:"required,oneof=beginner intermediate advanced"`
	ScholarshipAvailable bool    `json:"scholarship_available"`
}

// CourseService orchestrates course CRUD. Every mutation is followed by a
// recompute of the parent bootcamp's average cost before the call returns.
type CourseService struct {
	Courses    repository.CourseRepository
	Bootcamps  repository.BootcampRepository
	Maintainer *AggregateMaintainer
	Logger     *logrus.Logger
}

func NewCourseService(courses repository.CourseRepository, bootcamps repository.BootcampRepository, maintainer *AggregateMaintainer, logger *logrus.Logger) *CourseService {
	return &CourseService{Courses: courses, Bootcamps: bootcamps, Maintainer: maintainer, Logger: logger}
}

var courseQueryOpts = query.Options{
	DefaultSort:     "-created_at",
	DefaultPageSize: 25,
	MaxPageSize:     100,
}

// List returns a page of courses. When bootcampID is non-empty the results
// are scoped to that bootcamp.
func (s *CourseService) List(ctx context.Context, bootcampID string, params url.Values) (*ListResult[*entity.Course], error) {
	d := query.Compile(params, courseQueryOpts)
	if bootcampID != "" {
		if _, err := s.Bootcamps.GetByID(ctx, bootcampID); err != nil {
			return nil, err
		}
		d.Conditions = append(d.Conditions, query.Condition{Field: "bootcamp_id", Op: query.OpEq, Value: bootcampID})
	}
	items, total, err := s.Courses.List(ctx, d)
	if err != nil {
		return nil, err
	}
	return newListResult(items, total, d.Page), nil
}

func (s *CourseService) Get(ctx context.Context, id string) (*entity.Course, error) {
	return s.Courses.GetByID(ctx, id)
}

// Create adds a course under a bootcamp. Only the bootcamp's owner (or an
// admin) may add courses to it.
func (s *CourseService) Create(ctx context.Context, id *authz.Identity, bootcampID string, in CourseInput) (*entity.Course, error) {
	b, err := s.Bootcamps.GetByID(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	if err := decisionErr(authz.Authorize(id, authz.Action{
		Verb:            authz.Create,
		ResourceOwnerID: b.UserID,
		RequiredRoles:   []authz.Role{authz.RolePublisher},
	})); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &entity.Course{
		ID:                   uuid.NewString(),
		Title:                in.Title,
		Description:          in.Description,
		Weeks:                in.Weeks,
		Tuition:              in.Tuition,
		MinimumSkill:         in.MinimumSkill,
		ScholarshipAvailable: in.ScholarshipAvailable,
		BootcampID:           b.ID,
		UserID:               id.ID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.Courses.Create(ctx, c); err != nil {
		return nil, err
	}
	if err := s.Maintainer.RecomputeAverageCost(ctx, b.ID); err != nil {
		return nil, err
	}
	return c, nil
}

// Update modifies a course. Owner or admin only.
func (s *CourseService) Update(ctx context.Context, id *authz.Identity, courseID string, in CourseInput) (*entity.Course, error) {
	c, err := s.Courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := decisionErr(authz.Authorize(id, authz.Action{
		Verb:            authz.Update,
		ResourceOwnerID: c.UserID,
	})); err != nil {
		return nil, err
	}

	c.Title = in.Title
	c.Description = in.Description
	c.Weeks = in.Weeks
	c.Tuition = in.Tuition
	c.MinimumSkill = in.MinimumSkill
	c.ScholarshipAvailable = in.ScholarshipAvailable
	c.UpdatedAt = time.Now().UTC()

	if err := s.Courses.Update(ctx, c); err != nil {
		return nil, err
	}
	if err := s.Maintainer.RecomputeAverageCost(ctx, c.BootcampID); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a course. Owner or admin only.
func (s *CourseService) Delete(ctx context.Context, id *authz.Identity, courseID string) error {
	c, err := s.Courses.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if err := decisionErr(authz.Authorize(id, authz.Action{
		Verb:            authz.Delete,
		ResourceOwnerID: c.UserID,
	})); err != nil {
		return err
	}
	if err := s.Courses.Delete(ctx, courseID); err != nil {
		return err
	}
	return s.Maintainer.RecomputeAverageCost(ctx, c.BootcampID)
}
