package application

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/devtrail/bootcamper/internal/domain/repository"
)

// AggregateMaintainer keeps the derived summary fields on a bootcamp
// consistent with its child collections. Both recomputes are idempotent:
// they read the full child set, compute once and write once, so a failed read
// leaves the previous value untouched. They run synchronously after every
// course/review mutation; across overlapping requests the last recompute to
// complete wins and the value self-heals on the next mutation.
type AggregateMaintainer struct {
	Bootcamps repository.BootcampRepository
	Courses   repository.CourseRepository
	Reviews   repository.ReviewRepository
	Logger    *logrus.Logger
}

func NewAggregateMaintainer(b repository.BootcampRepository, c repository.CourseRepository, r repository.ReviewRepository, logger *logrus.Logger) *AggregateMaintainer {
	return &AggregateMaintainer{Bootcamps: b, Courses: c, Reviews: r, Logger: logger}
}

// RecomputeAverageCost writes the rounded mean tuition of the bootcamp's
// courses, or 0 when none exist.
func (m *AggregateMaintainer) RecomputeAverageCost(ctx context.Context, bootcampID string) error {
	tuitions, err := m.Courses.TuitionsByBootcamp(ctx, bootcampID)
	if err != nil {
		return err
	}
	avg := 0
	if len(tuitions) > 0 {
		sum := 0.0
		for _, t := range tuitions {
			sum += t
		}
		avg = int(math.Round(sum / float64(len(tuitions))))
	}
	if err := m.Bootcamps.SetAverageCost(ctx, bootcampID, avg); err != nil {
		return err
	}
	if m.Logger != nil {
		m.Logger.WithFields(logrus.Fields{"bootcamp_id": bootcampID, "average_cost": avg}).Debug("average cost recomputed")
	}
	return nil
}

// RecomputeAverageRating writes the rounded mean rating of the bootcamp's
// reviews. With zero reviews the field is cleared, not set to 0: ratings
// start at 1, so 0 is not a valid "no data" sentinel.
func (m *AggregateMaintainer) RecomputeAverageRating(ctx context.Context, bootcampID string) error {
	ratings, err := m.Reviews.RatingsByBootcamp(ctx, bootcampID)
	if err != nil {
		return err
	}
	var avg *int
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r
		}
		v := int(math.Round(float64(sum) / float64(len(ratings))))
		avg = &v
	}
	if err := m.Bootcamps.SetAverageRating(ctx, bootcampID, avg); err != nil {
		return err
	}
	if m.Logger != nil {
		m.Logger.WithField("bootcamp_id", bootcampID).Debug("average rating recomputed")
	}
	return nil
}

// DeleteBootcampCascade removes a bootcamp together with every course and
// review referencing it. Deletes are ordered children first, parent last: the
// store offers no multi-document transaction, so the only transient state a
// concurrent reader can observe is a childless bootcamp, never an orphaned
// child.
func (m *AggregateMaintainer) DeleteBootcampCascade(ctx context.Context, bootcampID string) error {
	if err := m.Courses.DeleteByBootcamp(ctx, bootcampID); err != nil {
		return err
	}
	if err := m.Reviews.DeleteByBootcamp(ctx, bootcampID); err != nil {
		return err
	}
	if err := m.Bootcamps.Delete(ctx, bootcampID); err != nil {
		return err
	}
	if m.Logger != nil {
		m.Logger.WithField("bootcamp_id", bootcampID).Info("bootcamp cascade delete complete")
	}
	return nil
}
