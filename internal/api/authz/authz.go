package authz

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

const RoleAdmin = "admin"

// AuthUser is the caller identity forwarded by the upstream gateway.
type AuthUser struct {
	ID   string
	Role string
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil, if no user is stored, or if the stored value has a different type.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}

	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}

	return user
}

// IsAdmin reports whether user carries the admin role (case-insensitive).
func IsAdmin(user *AuthUser) bool {
	return user != nil && strings.EqualFold(user.Role, RoleAdmin)
}

// RequireUser fails with ErrUnauthenticated when no user is in ctx.
func RequireUser(ctx context.Context) error {
	if UserFromContext(ctx) == nil {
		return ErrUnauthenticated
	}
	return nil
}

// RequireAdmin gates theme catalog administration: the global theme and the
// enabled-themes allow-list.
func RequireAdmin(ctx context.Context) error {
	user := UserFromContext(ctx)
	if user == nil {
		return ErrUnauthenticated
	}
	if !IsAdmin(user) {
		return ErrForbidden
	}
	return nil
}
