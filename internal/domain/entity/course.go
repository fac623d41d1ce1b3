package entity

import "time"

// Skill levels accepted for a course.
const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
)

// Course belongs to exactly one bootcamp. Tuition feeds the parent's derived
// averageCost.
type Course struct {
	ID                   string    `bson:"_id" json:"id"`
	Title                string    `bson:"title" json:"title"`
	Description          string    `bson:"description" json:"description"`
	Weeks                int       `bson:"weeks" json:"weeks"`
	Tuition              float64   `bson:"tuition" json:"tuition"`
	MinimumSkill         string    `bson:"minimum_skill" json:"minimum_skill"`
	ScholarshipAvailable bool      `bson:"scholarship_available" json:"scholarship_available"`
	BootcampID           string    `bson:"bootcamp_id" json:"bootcamp_id"`
	UserID               string    `bson:"user_id" json:"user_id"`
	CreatedAt            time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time `bson:"updated_at" json:"updated_at"`
}
