package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/identity"
	"storefront/internal/models"
	"storefront/internal/remote"
)

// fakeProvider drives auth pushes by hand.
type fakeProvider struct {
	state     identity.AuthState
	fn        identity.AuthFunc
	signOuts  int
	signUpErr error
}

func (f *fakeProvider) OnAuthStateChanged(fn identity.AuthFunc) identity.Disposer {
	f.fn = fn
	fn(f.state)
	return func() { f.fn = nil }
}

func (f *fakeProvider) push(state identity.AuthState) {
	f.state = state
	if f.fn != nil {
		f.fn(state)
	}
}

func (f *fakeProvider) SignIn(ctx context.Context, email, password string) error { return nil }

func (f *fakeProvider) SignUp(ctx context.Context, email, password, displayName string) error {
	if f.signUpErr != nil {
		return f.signUpErr
	}
	f.state = identity.AuthState{SignedIn: true, UID: "new-uid", Email: email, DisplayName: displayName}
	return nil
}

func (f *fakeProvider) UpdateDisplayName(ctx context.Context, name string) error { return nil }

func (f *fakeProvider) SignOut(ctx context.Context) error {
	f.signOuts++
	f.state = identity.AuthState{}
	return nil
}

func (f *fakeProvider) Current() identity.AuthState { return f.state }

// fakeDocs is an in-memory document store.
type fakeDocs struct {
	docs map[string]map[string]interface{}
	sets map[string]interface{}
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{
		docs: make(map[string]map[string]interface{}),
		sets: make(map[string]interface{}),
	}
}

func (f *fakeDocs) Subscribe(path string, fn remote.SnapshotFunc) (remote.Disposer, error) {
	return func() {}, nil
}

func (f *fakeDocs) Get(ctx context.Context, path string) (map[string]interface{}, bool, error) {
	data, ok := f.docs[path]
	return data, ok, nil
}

func (f *fakeDocs) Set(ctx context.Context, path string, data interface{}, merge bool) error {
	f.sets[path] = data
	if profile, ok := data.(models.UserProfile); ok {
		f.docs[path] = map[string]interface{}{
			"email":       profile.Email,
			"displayName": profile.DisplayName,
			"status":      profile.Status,
			"role":        profile.Role,
			"createdAt":   profile.CreatedAt,
		}
	}
	return nil
}

func (f *fakeDocs) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	doc, ok := f.docs[path]
	if !ok {
		doc = make(map[string]interface{})
		f.docs[path] = doc
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (f *fakeDocs) Delete(ctx context.Context, path string) error {
	delete(f.docs, path)
	return nil
}

func signedIn(uid string) identity.AuthState {
	return identity.AuthState{SignedIn: true, UID: uid, Email: uid + "@example.com"}
}

func TestSessionLoadsProfileOnSignIn(t *testing.T) {
	provider := &fakeProvider{}
	store := newFakeDocs()
	store.docs["users/u1"] = map[string]interface{}{
		"email":       "nour@example.com",
		"displayName": "Nour",
		"status":      "active",
	}
	c := NewController(provider, store, "admin@gother.com", nil)
	defer c.Start()()

	provider.push(signedIn("u1"))

	cur := c.Current()
	require.NotNil(t, cur)
	assert.Equal(t, "u1", cur.UID)
	assert.Equal(t, "Nour", cur.DisplayName)
	assert.Equal(t, models.RoleUser, cur.Role)
}

func TestSessionMissingProfileIsAnonymous(t *testing.T) {
	provider := &fakeProvider{}
	c := NewController(provider, newFakeDocs(), "admin@gother.com", nil)
	defer c.Start()()

	provider.push(signedIn("ghost"))

	assert.Nil(t, c.Current())
}

func TestBlockedAccountForcedOut(t *testing.T) {
	provider := &fakeProvider{}
	store := newFakeDocs()
	store.docs["users/u1"] = map[string]interface{}{
		"email":  "nour@example.com",
		"status": "blocked",
	}
	var notices []string
	c := NewController(provider, store, "admin@gother.com", func(code string) {
		notices = append(notices, code)
	})
	defer c.Start()()

	provider.push(signedIn("u1"))

	assert.Nil(t, c.Current())
	assert.Equal(t, 1, provider.signOuts)
	assert.Equal(t, []string{NoticeAccountBlocked}, notices)
}

func TestFrozenAccountKeepsSession(t *testing.T) {
	provider := &fakeProvider{}
	store := newFakeDocs()
	store.docs["users/u1"] = map[string]interface{}{
		"email":  "nour@example.com",
		"status": "frozen",
	}
	c := NewController(provider, store, "admin@gother.com", nil)
	defer c.Start()()

	provider.push(signedIn("u1"))

	cur := c.Current()
	require.NotNil(t, cur)
	assert.Equal(t, models.UserStatusFrozen, cur.Status)
	assert.Zero(t, provider.signOuts)
}

func TestSignOutClearsAdminMode(t *testing.T) {
	provider := &fakeProvider{}
	store := newFakeDocs()
	store.docs["users/u1"] = map[string]interface{}{
		"email":  "admin@gother.com",
		"status": "active",
		"role":   "admin",
	}
	c := NewController(provider, store, "admin@gother.com", nil)
	defer c.Start()()

	provider.push(signedIn("u1"))
	c.SetAdminMode(true)
	require.True(t, c.AdminMode())

	provider.push(identity.AuthState{})

	assert.Nil(t, c.Current())
	assert.False(t, c.AdminMode())
}

func TestSignInRejectsShortPassword(t *testing.T) {
	provider := &fakeProvider{}
	c := NewController(provider, newFakeDocs(), "admin@gother.com", nil)

	err := c.SignIn(context.Background(), "nour@example.com", "12345")

	require.Error(t, err)
	assert.Equal(t, identity.CodeWeakSecret, identity.CodeOf(err))
}

func TestSignUpWritesProfileAndLoadsSession(t *testing.T) {
	provider := &fakeProvider{}
	store := newFakeDocs()
	c := NewController(provider, store, "admin@gother.com", nil)
	defer c.Start()()

	err := c.SignUp(context.Background(), "Nour@Example.com", "secret1", "Nour")
	require.NoError(t, err)

	written, ok := store.sets["users/new-uid"].(models.UserProfile)
	require.True(t, ok)
	assert.Equal(t, "nour@example.com", written.Email)
	assert.Equal(t, models.RoleUser, written.Role)
	assert.Equal(t, models.UserStatusActive, written.Status)

	cur := c.Current()
	require.NotNil(t, cur)
	assert.Equal(t, "new-uid", cur.UID)
}

func TestSignUpReservedEmailGetsAdminRole(t *testing.T) {
	provider := &fakeProvider{}
	store := newFakeDocs()
	c := NewController(provider, store, "admin@gother.com", nil)
	defer c.Start()()

	err := c.SignUp(context.Background(), "Admin@GoTher.com", "secret1", "Admin")
	require.NoError(t, err)

	written, ok := store.sets["users/new-uid"].(models.UserProfile)
	require.True(t, ok)
	assert.Equal(t, models.RoleAdmin, written.Role)
}

func TestUpdateDisplayName(t *testing.T) {
	provider := &fakeProvider{}
	store := newFakeDocs()
	store.docs["users/u1"] = map[string]interface{}{
		"email":       "nour@example.com",
		"displayName": "Nour",
		"status":      "active",
	}
	c := NewController(provider, store, "admin@gother.com", nil)
	defer c.Start()()
	provider.push(signedIn("u1"))

	err := c.UpdateDisplayName(context.Background(), "  Noura  ")
	require.NoError(t, err)

	assert.Equal(t, "Noura", store.docs["users/u1"]["displayName"])
	assert.Equal(t, "Noura", c.Current().DisplayName)
	assert.Equal(t, "Noura", c.DefaultContactName())
}

func TestUpdateDisplayNameRequiresSession(t *testing.T) {
	provider := &fakeProvider{}
	c := NewController(provider, newFakeDocs(), "admin@gother.com", nil)

	err := c.UpdateDisplayName(context.Background(), "Nour")

	require.Error(t, err)
	assert.Equal(t, identity.CodeUserNotFound, identity.CodeOf(err))
}
