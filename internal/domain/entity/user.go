package entity

import (
	"time"

	"github.com/devtrail/bootcamper/internal/domain/authz"
)

// User is the account aggregate. Password holds a bcrypt hash and is never
// serialized into responses.
type User struct {
	ID        string     `bson:"_id" json:"id"`
	Name      string     `bson:"name" json:"name"`
	Email     string     `bson:"email" json:"email"`
	Role      authz.Role `bson:"role" json:"role"`
	Password  string     `bson:"password" json:"-"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// Identity adapts the user for authorization decisions.
func (u *User) Identity() *authz.Identity {
	if u == nil {
		return nil
	}
	return &authz.Identity{ID: u.ID, Role: u.Role}
}
