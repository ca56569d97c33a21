// Package session owns the current authenticated profile and enforces
// account-status policy on every auth transition.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/internal/identity"
	"storefront/internal/models"
	"storefront/internal/remote"
	"storefront/internal/util"
)

// MinPasswordLength is validated locally before any provider call.
const MinPasswordLength = 6

// NoticeAccountBlocked is surfaced when a blocked account attempts to hold
// a session.
const NoticeAccountBlocked = "account-blocked"

// NoticeFunc receives user-facing notices raised by session transitions.
type NoticeFunc func(code string)

const profileFetchTimeout = 10 * time.Second

// Controller tracks the signed-in profile. It subscribes to identity
// pushes, fetches the matching users document, and refuses to hold a
// session for blocked accounts.
type Controller struct {
	provider   identity.Provider
	store      remote.Store
	adminEmail string
	notice     NoticeFunc
	logger     *zap.Logger

	mu        sync.RWMutex
	current   *models.UserProfile
	adminMode bool
	nextID    int
	subs      map[int]func(*models.UserProfile)
}

// NewController builds a session controller. notice may be nil.
func NewController(provider identity.Provider, store remote.Store, adminEmail string, notice NoticeFunc) *Controller {
	return &Controller{
		provider:   provider,
		store:      store,
		adminEmail: strings.ToLower(adminEmail),
		notice:     notice,
		logger:     util.GetLogger(),
		subs:       make(map[int]func(*models.UserProfile)),
	}
}

// Start subscribes to auth pushes. The returned disposer must be invoked
// on teardown before any re-subscribe.
func (c *Controller) Start() identity.Disposer {
	return c.provider.OnAuthStateChanged(c.handleAuthState)
}

func (c *Controller) handleAuthState(state identity.AuthState) {
	if !state.SignedIn {
		c.setSession(nil)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), profileFetchTimeout)
	defer cancel()

	data, ok, err := c.store.Get(ctx, "users/"+state.UID)
	if err != nil {
		c.logger.Error("Failed to fetch profile", zap.String("uid", state.UID), zap.Error(err))
		c.setSession(nil)
		return
	}
	if !ok {
		// Identity exists but the profile document does not (the window
		// between account creation and profile write). Treated as anonymous.
		c.setSession(nil)
		return
	}

	profile, err := models.ParseUserProfile(state.UID, data)
	if err != nil {
		c.logger.Warn("Dropping malformed profile", zap.String("uid", state.UID), zap.Error(err))
		c.setSession(nil)
		return
	}

	if profile.Status == models.UserStatusBlocked {
		util.SessionsBlockedTotal.Inc()
		c.logger.Warn("Blocked account sign-in refused", zap.String("uid", state.UID))
		_ = c.provider.SignOut(ctx)
		c.setSession(nil)
		if c.notice != nil {
			c.notice(NoticeAccountBlocked)
		}
		return
	}

	c.setSession(&profile)
}

func (c *Controller) setSession(profile *models.UserProfile) {
	c.mu.Lock()
	c.current = profile
	if profile == nil {
		c.adminMode = false
	}
	subs := make([]func(*models.UserProfile), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(profile)
	}
}

// Current returns the signed-in profile, or nil when anonymous. The
// returned value is a copy.
func (c *Controller) Current() *models.UserProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil
	}
	cp := *c.current
	return &cp
}

// Subscribe registers fn for session changes and returns an unsubscribe
// function. fn receives nil on sign-out.
func (c *Controller) Subscribe(fn func(*models.UserProfile)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// DefaultContactName seeds the checkout contact form.
func (c *Controller) DefaultContactName() string {
	if cur := c.Current(); cur != nil {
		return cur.DisplayName
	}
	return ""
}

// AdminMode reports whether the elevated view is active.
func (c *Controller) AdminMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.adminMode
}

// SetAdminMode toggles the elevated view. Callers must pass the
// enter-admin-surface policy check first; sign-out clears it regardless.
func (c *Controller) SetAdminMode(on bool) {
	c.mu.Lock()
	c.adminMode = on && c.current != nil
	c.mu.Unlock()
}

// SignIn authenticates against the identity provider. Password length is
// validated locally before any remote call.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	if len(password) < MinPasswordLength {
		return identity.NewError(identity.CodeWeakSecret, "password below minimum length")
	}
	return c.provider.SignIn(ctx, normalizeEmail(email), password)
}

// SignUp registers a new identity and writes its profile document. The
// reserved administrative address receives the admin role; everyone else
// is a plain user.
func (c *Controller) SignUp(ctx context.Context, email, password, name string) error {
	if len(password) < MinPasswordLength {
		return identity.NewError(identity.CodeWeakSecret, "password below minimum length")
	}
	target := normalizeEmail(email)

	if err := c.provider.SignUp(ctx, target, password, name); err != nil {
		return err
	}

	state := c.provider.Current()
	role := models.RoleUser
	if target == c.adminEmail {
		role = models.RoleAdmin
	}
	profile := models.UserProfile{
		UID:         state.UID,
		Email:       target,
		DisplayName: name,
		Status:      models.UserStatusActive,
		Role:        role,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := c.store.Set(ctx, "users/"+state.UID, profile, false); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}

	// The auth push raced the profile write and saw no document; re-run the
	// lookup now that the profile exists.
	c.handleAuthState(state)
	return nil
}

// UpdateDisplayName changes the user's own display name on both the
// identity provider and the profile document.
func (c *Controller) UpdateDisplayName(ctx context.Context, name string) error {
	cur := c.Current()
	if cur == nil {
		return identity.NewError(identity.CodeUserNotFound, "no active session")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("display name must not be empty")
	}

	if err := c.provider.UpdateDisplayName(ctx, name); err != nil {
		return err
	}
	if err := c.store.Update(ctx, "users/"+cur.UID, map[string]interface{}{
		"displayName": name,
	}); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	c.mu.Lock()
	if c.current != nil && c.current.UID == cur.UID {
		c.current.DisplayName = name
	}
	c.mu.Unlock()
	return nil
}

// SignOut ends the session.
func (c *Controller) SignOut(ctx context.Context) error {
	return c.provider.SignOut(ctx)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
