package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/models"
)

func activeUser(email string) *models.UserProfile {
	return &models.UserProfile{UID: "u1", Email: email, Status: models.UserStatusActive}
}

func TestAnonymousDeniedEverywhere(t *testing.T) {
	p := Policy{AdminEmail: "admin@gother.com"}

	for _, action := range []Action{ActionAddToCart, ActionCheckout, ActionEnterAdmin} {
		d := p.Check(nil, action)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonRequiresAuth, d.Reason)
	}
}

func TestActiveUserMayShop(t *testing.T) {
	p := Policy{AdminEmail: "admin@gother.com"}
	u := activeUser("nour@example.com")

	assert.True(t, p.Check(u, ActionAddToCart).Allowed)
	assert.True(t, p.Check(u, ActionCheckout).Allowed)
}

func TestFrozenUserCannotShop(t *testing.T) {
	p := Policy{AdminEmail: "admin@gother.com"}
	u := activeUser("nour@example.com")
	u.Status = models.UserStatusFrozen

	for _, action := range []Action{ActionAddToCart, ActionCheckout} {
		d := p.Check(u, action)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonAccountFrozen, d.Reason)
	}
}

func TestAdminSurfaceReservedEmail(t *testing.T) {
	p := Policy{AdminEmail: "admin@gother.com"}

	assert.True(t, p.Check(activeUser("admin@gother.com"), ActionEnterAdmin).Allowed)
	// Comparison is case-insensitive.
	assert.True(t, p.Check(activeUser("Admin@GoTher.com"), ActionEnterAdmin).Allowed)

	d := p.Check(activeUser("nour@example.com"), ActionEnterAdmin)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonNotAdmin, d.Reason)
}

func TestUnknownActionDenied(t *testing.T) {
	p := Policy{AdminEmail: "admin@gother.com"}

	assert.False(t, p.Check(activeUser("nour@example.com"), Action("fly")).Allowed)
}
