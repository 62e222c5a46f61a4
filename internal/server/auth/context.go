package auth

import (
	"context"
	"slices"
)

type ctxKey string

const principalKey ctxKey = "principal"

// Principal is the identity resolved for a single request.
type Principal struct {
	Subject string
	Roles   []string
}

// HasRole reports whether the principal was granted role.
func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	p.Roles = slices.Clone(p.Roles)
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the principal installed by WithPrincipal, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
