package entity

import (
	"regexp"
	"strings"
	"time"
)

// Location is a GeoJSON point with the formatted address alongside.
type Location struct {
	Type             string    `bson:"type" json:"type"`
	Coordinates      []float64 `bson:"coordinates" json:"coordinates"` // [lng, lat]
	FormattedAddress string    `bson:"formatted_address,omitempty" json:"formatted_address,omitempty"`
	City             string    `bson:"city,omitempty" json:"city,omitempty"`
	Country          string    `bson:"country,omitempty" json:"country,omitempty"`
}

// Bootcamp is owned by exactly one user. AverageCost and AverageRating are
// derived fields: clients never set them, only the aggregate maintainer
// writes them. AverageRating is a pointer because "no reviews" is absence,
// not zero: zero is below the valid rating range.
type Bootcamp struct {
	ID            string    `bson:"_id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	Slug          string    `bson:"slug" json:"slug"`
	Description   string    `bson:"description" json:"description"`
	Website       string    `bson:"website,omitempty" json:"website,omitempty"`
	Phone         string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Email         string    `bson:"email,omitempty" json:"email,omitempty"`
	Address       string    `bson:"address,omitempty" json:"address,omitempty"`
	Location      *Location `bson:"location,omitempty" json:"location,omitempty"`
	Careers       []string  `bson:"careers" json:"careers"`
	Housing       bool      `bson:"housing" json:"housing"`
	JobAssistance bool      `bson:"job_assistance" json:"job_assistance"`
	JobGuarantee  bool      `bson:"job_guarantee" json:"job_guarantee"`
	AcceptGI      bool      `bson:"accept_gi" json:"accept_gi"`
	Photo         string    `bson:"photo,omitempty" json:"photo,omitempty"`
	AverageCost   int       `bson:"averageCost" json:"averageCost"`
	AverageRating *int      `bson:"averageRating,omitempty" json:"averageRating,omitempty"`
	UserID        string    `bson:"user_id" json:"user_id"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a bootcamp name.
func Slugify(name string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}
