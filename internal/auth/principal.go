// ABOUTME: Principal identity and role enumeration for authenticated requests
// ABOUTME: Provides WithPrincipal/PrincipalFromContext for context propagation

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRole is returned when a role string cannot be parsed.
var ErrUnknownRole = errors.New("unknown role")

// Role is the closed set of roles a principal can hold. Each principal
// carries exactly one role.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
)

// wireRolePrefix is the conventional prefix used in tokens and storage so
// generic role-based checks recognize the value.
const wireRolePrefix = "ROLE_"

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "ADMIN"
	default:
		return "USER"
	}
}

// Wire returns the prefixed serialized form, e.g. "ROLE_ADMIN".
func (r Role) Wire() string {
	return wireRolePrefix + r.String()
}

// ParseRole parses either the bare ("ADMIN") or wire ("ROLE_ADMIN") form.
func ParseRole(s string) (Role, error) {
	switch strings.TrimPrefix(s, wireRolePrefix) {
	case "USER":
		return RoleUser, nil
	case "ADMIN":
		return RoleAdmin, nil
	default:
		return RoleUser, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Principal is the resolved identity of the requester for the duration of one
// request. Immutable once constructed; derived from stored credentials at
// login or from token claims on later requests, never persisted itself.
type Principal struct {
	Username string
	Role     Role
}

// principalContextKey is the key type for storing a Principal in context.Context.
type principalContextKey struct{}

// WithPrincipal returns a new context with the Principal attached.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext retrieves the Principal from the context, returning
// nil if the request is unauthenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, ok := ctx.Value(principalContextKey{}).(*Principal)
	if !ok {
		return nil
	}
	return p
}
