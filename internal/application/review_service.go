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

// ReviewInput carries client-settable review fields.
type ReviewInput struct {
	Title  string `json:"title" binding:"required,max=100"`
	Text   string `json:"text" binding:"required,max=500"`
	Rating int    `json:"rating" binding:"required,gte=1,lte=10"`
}

// ReviewService orchestrates review CRUD. Every mutation is followed by a
// recompute of the parent bootcamp's average rating before the call returns.
type ReviewService struct {
	Reviews    repository.ReviewRepository
	Bootcamps  repository.BootcampRepository
	Maintainer *AggregateMaintainer
	Logger     *logrus.Logger
}

func NewReviewService(reviews repository.ReviewRepository, bootcamps repository.BootcampRepository, maintainer *AggregateMaintainer, logger *logrus.Logger) *ReviewService {
	return &ReviewService{Reviews: reviews, Bootcamps: bootcamps, Maintainer: maintainer, Logger: logger}
}

var reviewQueryOpts = query.Options{
	DefaultSort:     "-created_at",
	DefaultPageSize: 25,
	MaxPageSize:     100,
}

// List returns a page of reviews, scoped to a bootcamp when bootcampID is
// non-empty.
func (s *ReviewService) List(ctx context.Context, bootcampID string, params url.Values) (*ListResult[*entity.Review], error) {
	d := query.Compile(params, reviewQueryOpts)
	if bootcampID != "" {
		if _, err := s.Bootcamps.GetByID(ctx, bootcampID); err != nil {
			return nil, err
		}
		d.Conditions = append(d.Conditions, query.Condition{Field: "bootcamp_id", Op: query.OpEq, Value: bootcampID})
	}
	items, total, err := s.Reviews.List(ctx, d)
	if err != nil {
		return nil, err
	}
	return newListResult(items, total, d.Page), nil
}

func (s *ReviewService) Get(ctx context.Context, id string) (*entity.Review, error) {
	return s.Reviews.GetByID(ctx, id)
}

// Create adds a review. Only plain users review bootcamps, one review per
// user per bootcamp; the store's unique index backstops the constraint.
func (s *ReviewService) Create(ctx context.Context, id *authz.Identity, bootcampID string, in ReviewInput) (*entity.Review, error) {
	b, err := s.Bootcamps.GetByID(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	if err := decisionErr(authz.Authorize(id, authz.Action{
		Verb:          authz.Create,
		RequiredRoles: []authz.Role{authz.RoleUser},
	})); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	r := &entity.Review{
		ID:         uuid.NewString(),
		Title:      in.Title,
		Text:       in.Text,
		Rating:     in.Rating,
		BootcampID: b.ID,
		UserID:     id.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Reviews.Create(ctx, r); err != nil {
		return nil, err
	}
	if err := s.Maintainer.RecomputeAverageRating(ctx, b.ID); err != nil {
		return nil, err
	}
	return r, nil
}

// Update modifies a review. Owner or admin only.
func (s *ReviewService) Update(ctx context.Context, id *authz.Identity, reviewID string, in ReviewInput) (*entity.Review, error) {
	r, err := s.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := decisionErr(authz.Authorize(id, authz.Action{
		Verb:            authz.Update,
		ResourceOwnerID: r.UserID,
	})); err != nil {
		return nil, err
	}

	r.Title = in.Title
	r.Text = in.Text
	r.Rating = in.Rating
	r.UpdatedAt = time.Now().UTC()

	if err := s.Reviews.Update(ctx, r); err != nil {
		return nil, err
	}
	if err := s.Maintainer.RecomputeAverageRating(ctx, r.BootcampID); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete removes a review. Owner or admin only.
func (s *ReviewService) Delete(ctx context.Context, id *authz.Identity, reviewID string) error {
	r, err := s.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := decisionErr(authz.Authorize(id, authz.Action{
		Verb:            authz.Delete,
		ResourceOwnerID: r.UserID,
	})); err != nil {
		return err
	}
	if err := s.Reviews.Delete(ctx, reviewID); err != nil {
		return err
	}
	return s.Maintainer.RecomputeAverageRating(ctx, r.BootcampID)
}
