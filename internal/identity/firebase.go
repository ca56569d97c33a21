package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

const identityToolkitBase = "https://identitytoolkit.googleapis.com/v1"

// FirebaseProvider implements Provider against the Firebase Identity
// Toolkit REST API. It owns the session token and emits auth pushes to
// registered listeners after every sign-in, sign-up, and sign-out.
type FirebaseProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client

	mu      sync.Mutex
	state   AuthState
	idToken string
	nextID  int
	subs    map[int]AuthFunc
}

// NewFirebaseProvider builds a provider for the given web API key.
func NewFirebaseProvider(apiKey string) *FirebaseProvider {
	return &FirebaseProvider{
		apiKey:  apiKey,
		baseURL: identityToolkitBase,
		client:  &http.Client{Timeout: 15 * time.Second},
		subs:    make(map[int]AuthFunc),
	}
}

type toolkitResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	IDToken     string `json:"idToken"`
	Error       *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *FirebaseProvider) call(ctx context.Context, endpoint string, payload interface{}) (*toolkitResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/accounts:%s?key=%s", p.baseURL, endpoint, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	var out toolkitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}
	if out.Error != nil {
		return nil, mapToolkitError(out.Error.Message)
	}
	if resp.StatusCode >= 400 {
		return nil, NewError(CodeUnknown, resp.Status)
	}
	return &out, nil
}

// mapToolkitError translates Identity Toolkit error strings into stable codes.
func mapToolkitError(message string) *Error {
	msg := strings.SplitN(message, " ", 2)[0]
	switch {
	case msg == "EMAIL_EXISTS":
		return NewError(CodeAccountExists, message)
	case msg == "EMAIL_NOT_FOUND":
		return NewError(CodeUserNotFound, message)
	case msg == "INVALID_PASSWORD", msg == "INVALID_LOGIN_CREDENTIALS":
		return NewError(CodeWrongCredential, message)
	case msg == "INVALID_EMAIL":
		return NewError(CodeMalformedIdentifier, message)
	case msg == "TOO_MANY_ATTEMPTS_TRY_LATER":
		return NewError(CodeTooManyAttempts, message)
	case strings.HasPrefix(message, "WEAK_PASSWORD"):
		return NewError(CodeWeakSecret, message)
	}
	return NewError(CodeUnknown, message)
}

// OnAuthStateChanged registers fn and immediately delivers the current state.
func (p *FirebaseProvider) OnAuthStateChanged(fn AuthFunc) Disposer {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	state := p.state
	p.mu.Unlock()

	fn(state)
	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *FirebaseProvider) setState(state AuthState, idToken string) {
	p.mu.Lock()
	p.state = state
	p.idToken = idToken
	subs := make([]AuthFunc, 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// SignIn authenticates with email and password.
func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) error {
	resp, err := p.call(ctx, "signInWithPassword", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return err
	}
	p.setState(AuthState{
		SignedIn:    true,
		UID:         resp.LocalID,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
	}, resp.IDToken)
	return nil
}

// SignUp creates an account and sets the initial display name.
func (p *FirebaseProvider) SignUp(ctx context.Context, email, password, displayName string) error {
	resp, err := p.call(ctx, "signUp", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return err
	}
	p.setState(AuthState{
		SignedIn:    true,
		UID:         resp.LocalID,
		Email:       resp.Email,
		DisplayName: displayName,
	}, resp.IDToken)

	if displayName != "" {
		if err := p.UpdateDisplayName(ctx, displayName); err != nil {
			return err
		}
	}
	return nil
}

// UpdateDisplayName updates the signed-in account's display name.
func (p *FirebaseProvider) UpdateDisplayName(ctx context.Context, name string) error {
	p.mu.Lock()
	token := p.idToken
	state := p.state
	p.mu.Unlock()

	if !state.SignedIn {
		return NewError(CodeUserNotFound, "no signed-in account")
	}

	_, err := p.call(ctx, "update", map[string]interface{}{
		"idToken":           token,
		"displayName":       name,
		"returnSecureToken": false,
	})
	if err != nil {
		return err
	}

	state.DisplayName = name
	p.setState(state, token)
	return nil
}

// SignOut clears the session and pushes a signed-out state.
func (p *FirebaseProvider) SignOut(ctx context.Context) error {
	p.setState(AuthState{}, "")
	return nil
}

// Current returns the latest auth state.
func (p *FirebaseProvider) Current() AuthState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}
