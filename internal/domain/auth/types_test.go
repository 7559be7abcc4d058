package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Valid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleEditor, RoleViewer, RoleUser} {
		assert.True(t, r.Valid(), string(r))
	}
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}

func TestPrincipal_CanAccessResourceOwnedBy(t *testing.T) {
	owner := Principal{UserID: "user-1", Role: RoleUser}
	assert.True(t, owner.CanAccessResourceOwnedBy("user-1"))
	assert.False(t, owner.CanAccessResourceOwnedBy("user-2"))

	admin := Principal{UserID: "admin-1", Role: RoleAdmin}
	assert.True(t, admin.CanAccessResourceOwnedBy("user-1"))

	viewer := Principal{UserID: "user-3", Role: RoleViewer}
	assert.False(t, viewer.CanAccessResourceOwnedBy("user-1"))
	assert.True(t, viewer.CanAccessResourceOwnedBy("user-3"))
}

func TestSession_Principal(t *testing.T) {
	sess := Session{ID: "s", UserID: "user-1", Role: RoleEditor}
	p := sess.Principal()
	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, RoleEditor, p.Role)
}
