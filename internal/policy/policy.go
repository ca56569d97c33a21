// Package policy holds the access decisions consulted before any
// state-changing user action.
package policy

import (
	"strings"

	"storefront/internal/models"
)

// Action names a user intent subject to policy.
type Action string

const (
	ActionAddToCart  Action = "add-to-cart"
	ActionCheckout   Action = "checkout"
	ActionEnterAdmin Action = "enter-admin-surface"
)

// Reason is the machine-readable denial reason.
type Reason string

const (
	ReasonRequiresAuth  Reason = "requires-auth"
	ReasonAccountFrozen Reason = "account-frozen"
	ReasonNotAdmin      Reason = "not-admin"
)

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

var allow = Decision{Allowed: true}

func deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Policy is a pure decision function over (session, action).
//
// The admin surface is granted to whichever account registered the reserved
// administrative address. Anyone who learns that address can self-elevate at
// signup; that matches the upstream store's behavior and is kept until the
// policy is reviewed.
type Policy struct {
	AdminEmail string
}

// Check decides whether session may perform action. A nil session means
// anonymous. Blocked accounts never reach this point: the session controller
// refuses to hold one.
func (p Policy) Check(session *models.UserProfile, action Action) Decision {
	switch action {
	case ActionAddToCart, ActionCheckout:
		if session == nil {
			return deny(ReasonRequiresAuth)
		}
		if session.Status == models.UserStatusFrozen {
			return deny(ReasonAccountFrozen)
		}
		return allow

	case ActionEnterAdmin:
		if session == nil {
			return deny(ReasonRequiresAuth)
		}
		if !strings.EqualFold(session.Email, p.AdminEmail) {
			return deny(ReasonNotAdmin)
		}
		return allow
	}
	return deny(ReasonNotAdmin)
}
