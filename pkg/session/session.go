// Package session keeps track of the signed-in user.
//
// A session says who the user is and which sign-in provider vouched for
// them. Its presence decides where drafts are stored: signed-in users get
// their draft in the per-user remote store, everyone else keeps it on the
// device.
//
//	store, err := session.NewCLIStore("")
//	sess, err := session.New(session.ProviderGoogle, "Ana", "ana@example.com", session.DefaultTTL)
//	store.SaveSession(ctx, sess)
//
//	owner := sess.UserID() // "google:3f0c..."
package session

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	perrors "github.com/ncassessoria/gerapost/pkg/errors"
)

// Provider is a sign-in provider.
type Provider string

// Supported providers.
const (
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
)

// Providers lists the enabled providers.
func Providers() []Provider { return []Provider{ProviderGoogle, ProviderFacebook} }

// ParseProvider returns the provider named s. Unknown names are reported
// as a disabled provider.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Providers() {
		if p == known {
			return p, nil
		}
	}
	return "", perrors.New(perrors.ErrCodeAuthProviderDisabled, "sign-in with %q is not enabled", s)
}

// User is the identity behind a session.
type User struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Provider Provider `json:"provider"`
}

// Session stores user session data.
type Session struct {
	ID        string    `json:"id"`
	User      *User     `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// UserID returns the owner key of the user's drafts, namespaced by
// provider: "google:{id}".
func (s *Session) UserID() string {
	if s == nil || s.User == nil {
		return ""
	}
	return fmt.Sprintf("%s:%s", s.User.Provider, s.User.ID)
}

// Authenticated reports whether s is a live session.
func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil && !s.IsExpired()
}

// DefaultTTL is the default session duration.
const DefaultTTL = 30 * 24 * time.Hour

// userNamespace derives stable user IDs from provider and email, so the
// same person signing in again owns the same drafts.
var userNamespace = uuid.MustParse("6f1d2c0e-4b7a-5e39-9c1a-0b8e2f6d4a51")

// New signs a user in with provider and returns a fresh session.
func New(provider Provider, name, email string, ttl time.Duration) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeAuthInvalidCredentials, err, "invalid e-mail address %q", email)
	}
	if _, err := ParseProvider(string(provider)); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	now := time.Now()
	return &Session{
		ID: uuid.NewString(),
		User: &User{
			ID:       uuid.NewSHA1(userNamespace, []byte(string(provider)+":"+email)).String(),
			Name:     name,
			Email:    email,
			Provider: provider,
		},
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}
