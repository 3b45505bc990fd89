// Package session carries the authenticated actor explicitly through every call.
// Nothing in the engine reads identity from globals; handlers resolve a Session
// once per request and pass it down.
package session

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go-lcms/internal/shared/apperror"
)

type Role string

const (
	RoleEmployee   Role = "employee"
	RoleSupervisor Role = "supervisor"
	RoleHR         Role = "hr"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleEmployee, RoleSupervisor, RoleHR:
		return r, true
	default:
		return "", false
	}
}

type Session struct {
	UserID string
	Email  string
	Role   Role
}

var ErrNotAuthenticated = apperror.New(
	apperror.CodeUnauthorized,
	"not authenticated",
	http.StatusUnauthorized,
)

// Source resolves the current session. A nil session with a nil error means
// nobody is signed in.
type Source interface {
	Current(ctx context.Context) (*Session, error)
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok && s.UserID != ""
}

// ContextSource reads the session the auth middleware stored on the request context.
type ContextSource struct{}

func (ContextSource) Current(ctx context.Context) (*Session, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// Await asks src for the current session and gives up after timeout, returning
// ErrNotAuthenticated instead of waiting indefinitely.
func Await(ctx context.Context, src Source, timeout time.Duration) (Session, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		s   *Session
		err error
	}
	ch := make(chan result, 1)
	go func() {
		s, err := src.Current(ctx)
		ch <- result{s: s, err: err}
	}()

	select {
	case <-ctx.Done():
		return Session{}, ErrNotAuthenticated
	case r := <-ch:
		if r.err != nil {
			return Session{}, apperror.WrapWith(ErrNotAuthenticated, r.err)
		}
		if r.s == nil || r.s.UserID == "" {
			return Session{}, ErrNotAuthenticated
		}
		return *r.s, nil
	}
}
