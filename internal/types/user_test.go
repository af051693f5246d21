package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleKnown(t *testing.T) {
	assert.True(t, RoleUser.Known())
	assert.True(t, RoleAdmin.Known())
	assert.False(t, Role("moderator").Known())
	assert.False(t, Role("").Known())
}

func TestPublicKeepsStoredRole(t *testing.T) {
	u := &User{ID: 3, Username: "bo", Email: "bo@x.com", PasswordHash: "h", Role: Role("moderator")}
	assert.Equal(t, PublicUser{ID: 3, Username: "bo", Email: "bo@x.com", Role: "moderator"}, u.Public())
}
