package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	anon := (*Identity)(nil)
	admin := &Identity{ID: "a1", Role: RoleAdmin}
	pubU := &Identity{ID: "u1", Role: RolePublisher}
	user := &Identity{ID: "u2", Role: RoleUser}

	tests := []struct {
		name       string
		id         *Identity
		act        Action
		allowed    bool
		wantReason Reason
	}{
		{
			name:    "anonymous read is always allowed",
			id:      anon,
			act:     Action{Verb: Read, ResourceOwnerID: "someone"},
			allowed: true,
		},
		{
			name:       "anonymous create is unauthenticated",
			id:         anon,
			act:        Action{Verb: Create},
			wantReason: ReasonUnauthenticated,
		},
		{
			name:       "anonymous update is unauthenticated",
			id:         anon,
			act:        Action{Verb: Update, ResourceOwnerID: "someone"},
			wantReason: ReasonUnauthenticated,
		},
		{
			name:       "anonymous delete is unauthenticated",
			id:         anon,
			act:        Action{Verb: Delete},
			wantReason: ReasonUnauthenticated,
		},
		{
			name:    "admin bypasses ownership mismatch",
			id:      admin,
			act:     Action{Verb: Delete, ResourceOwnerID: "not-admin", RequiredRoles: []Role{RolePublisher}},
			allowed: true,
		},
		{
			name:    "admin bypasses role requirement",
			id:      admin,
			act:     Action{Verb: Create, RequiredRoles: []Role{RoleUser}},
			allowed: true,
		},
		{
			name:       "role outside required set is forbidden",
			id:         user,
			act:        Action{Verb: Create, RequiredRoles: []Role{RolePublisher}},
			wantReason: ReasonForbidden,
		},
		{
			name:    "role inside required set is allowed",
			id:      pubU,
			act:     Action{Verb: Create, RequiredRoles: []Role{RolePublisher}},
			allowed: true,
		},
		{
			name:       "owner mismatch is forbidden even for permitted role",
			id:         pubU,
			act:        Action{Verb: Update, ResourceOwnerID: "u2", RequiredRoles: []Role{RolePublisher}},
			wantReason: ReasonForbidden,
		},
		{
			name:    "owner match is allowed",
			id:      pubU,
			act:     Action{Verb: Update, ResourceOwnerID: "u1", RequiredRoles: []Role{RolePublisher}},
			allowed: true,
		},
		{
			name:    "no owner and no role requirement passes",
			id:      user,
			act:     Action{Verb: Update},
			allowed: true,
		},
		{
			name:       "review author mismatch is forbidden",
			id:         user,
			act:        Action{Verb: Delete, ResourceOwnerID: "u9", RequiredRoles: []Role{RoleUser}},
			wantReason: ReasonForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authorize(tt.id, tt.act)
			assert.Equal(t, tt.allowed, got.Allowed)
			if tt.allowed {
				assert.Equal(t, ReasonNone, got.Reason)
			} else {
				assert.Equal(t, tt.wantReason, got.Reason)
			}
		})
	}
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleUser))
	assert.True(t, ValidRole(RolePublisher))
	assert.True(t, ValidRole(RoleAdmin))
	assert.False(t, ValidRole(Role("superuser")))
	assert.False(t, ValidRole(Role("")))
}
