package entity

import "time"

// Rating bounds for a review.
const (
	RatingMin = 1
	RatingMax = 10
)

// Review belongs to one bootcamp and one user; the store enforces at most one
// review per (user, bootcamp) pair. Rating feeds the parent's derived
// averageRating.
type Review struct {
	ID         string    `bson:"_id" json:"id"`
	Title      string    `bson:"title" json:"title"`
	Text       string    `bson:"text" json:"text"`
	Rating     int       `bson:"rating" json:"rating"`
	BootcampID string    `bson:"bootcamp_id" json:"bootcamp_id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}
