package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"staymarket/internal/domain/user"
)

var (
	ErrTokenRequired   = errors.New("auth: token is required")
	ErrUserRequired    = errors.New("auth: user is required")
	ErrTTLInvalid      = errors.New("auth: ttl must be positive")
	ErrSessionNotFound = errors.New("auth: session not found")
)

type Token string

// Session binds an opaque bearer token to a user until ExpiresAt. Roles are
// snapshotted at login; a role granted later takes effect on the next login
// or on BecomeHost, which refreshes the stored user.
type Session struct {
	Token     Token
	UserID    user.ID
	Roles     []user.Role
	CreatedAt time.Time
	ExpiresAt time.Time
}

type CreateSessionParams struct {
	Token  Token
	UserID user.ID
	Roles  []user.Role
	TTL    time.Duration
	Now    time.Time
}

func NewSession(params CreateSessionParams) (*Session, error) {
	token := Token(strings.TrimSpace(string(params.Token)))
	switch {
	case token == "":
		return nil, ErrTokenRequired
	case strings.TrimSpace(string(params.UserID)) == "":
		return nil, ErrUserRequired
	case params.TTL <= 0:
		return nil, ErrTTLInvalid
	}
	issued := params.Now
	if issued.IsZero() {
		issued = time.Now()
	}
	issued = issued.UTC()
	return &Session{
		Token:     token,
		UserID:    params.UserID,
		Roles:     append([]user.Role(nil), params.Roles...),
		CreatedAt: issued,
		ExpiresAt: issued.Add(params.TTL),
	}, nil
}

// Expired reports whether the session has lapsed at the given instant.
// A session expiring exactly at the instant counts as expired.
func (s *Session) Expired(at time.Time) bool {
	if at.IsZero() {
		at = time.Now()
	}
	return !s.ExpiresAt.After(at.UTC())
}

type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, token Token) (*Session, error)
	Delete(ctx context.Context, token Token) error
	DeleteByUser(ctx context.Context, userID user.ID) error
}
