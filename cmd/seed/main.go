package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/devtrail/bootcamper/config"
	"github.com/devtrail/bootcamper/internal/domain/authz"
	"github.com/devtrail/bootcamper/internal/domain/entity"
	"github.com/devtrail/bootcamper/internal/infrastructure/mongodb"
	"github.com/devtrail/bootcamper/pkg/apperr"
	"github.com/devtrail/bootcamper/pkg/helpers"
)

// Seeds a demo data set: one account per role, a bootcamp with two courses
// and a review. Safe to re-run; existing accounts are kept.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = client.Close() }()

	users := mongodb.NewUserRepository(client)
	bootcamps := mongodb.NewBootcampRepository(client)
	courses := mongodb.NewCourseRepository(client)
	reviews := mongodb.NewReviewRepository(client)

	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	seedUser := func(name, email string, role authz.Role) *entity.User {
		if existing, err := users.GetByEmail(ctx, email); err == nil {
			fmt.Printf("kept user: %s (%s)\n", email, existing.Role)
			return existing
		}
		now := time.Now().UTC()
		u := &entity.User{
			ID:        uuid.NewString(),
			Name:      name,
			Email:     email,
			Role:      role,
			Password:  hash,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("failed to seed user %s: %v", email, err)
		}
		fmt.Printf("seeded user: %s (%s) password=%s\n", email, role, password)
		return u
	}

	admin := seedUser("Admin Account", "admin@devtrail.io", authz.RoleAdmin)
	publisher := seedUser("Devworks Publisher", "publisher@devtrail.io", authz.RolePublisher)
	reviewer := seedUser("Demo User", "user@devtrail.io", authz.RoleUser)
	_ = admin

	b, err := bootcamps.GetByOwner(ctx, publisher.ID)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			log.Fatalf("failed to look up bootcamp: %v", err)
		}
		now := time.Now().UTC()
		b = &entity.Bootcamp{
			ID:          uuid.NewString(),
			Name:        "Devworks Bootcamp",
			Slug:        entity.Slugify("Devworks Bootcamp"),
			Description: "Devworks teaches full stack web development over 12 intensive weeks.",
			Website:     "https://devworks.example.com",
			Email:       "enroll@devworks.example.com",
			Address:     "233 Bay State Rd, Boston, MA 02215",
			Location: &entity.Location{
				Type:        "Point",
				Coordinates: []float64{-71.104028, 42.350097},
				City:        "Boston",
				Country:     "US",
			},
			Careers:   []string{"Web Development", "UI/UX"},
			Housing:   true,
			UserID:    publisher.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := bootcamps.Create(ctx, b); err != nil {
			log.Fatalf("failed to seed bootcamp: %v", err)
		}
		fmt.Printf("seeded bootcamp: %s\n", b.Name)

		for _, spec := range []struct {
			title   string
			weeks   int
			tuition float64
			skill   string
		}{
			{"Full Stack Web Development", 12, 10000, entity.SkillIntermediate},
			{"Front End Web Development", 8, 8000, entity.SkillBeginner},
		} {
			c := &entity.Course{
				ID:           uuid.NewString(),
				Title:        spec.title,
				Description:  spec.title + " taught by industry engineers.",
				Weeks:        spec.weeks,
				Tuition:      spec.tuition,
				MinimumSkill: spec.skill,
				BootcampID:   b.ID,
				UserID:       publisher.ID,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := courses.Create(ctx, c); err != nil {
				log.Fatalf("failed to seed course: %v", err)
			}
			fmt.Printf("seeded course: %s\n", c.Title)
		}
		if err := bootcamps.SetAverageCost(ctx, b.ID, 9000); err != nil {
			log.Fatalf("failed to set average cost: %v", err)
		}

		r := &entity.Review{
			ID:         uuid.NewString(),
			Title:      "Learned a ton",
			Text:       "Great instructors and a strong curriculum.",
			Rating:     9,
			BootcampID: b.ID,
			UserID:     reviewer.ID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := reviews.Create(ctx, r); err != nil {
			log.Fatalf("failed to seed review: %v", err)
		}
		rating := 9
		if err := bootcamps.SetAverageRating(ctx, b.ID, &rating); err != nil {
			log.Fatalf("failed to set average rating: %v", err)
		}
		fmt.Println("seeded review")
	} else {
		fmt.Printf("kept bootcamp: %s\n", b.Name)
	}
}
