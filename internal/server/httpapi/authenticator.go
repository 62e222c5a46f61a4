package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/userauth/internal/common"
	"github.com/dmitrijs2005/userauth/internal/logging"
	"github.com/dmitrijs2005/userauth/internal/server/auth"
	"github.com/dmitrijs2005/userauth/internal/server/models"
)

// UserLookup resolves a token subject to a stored user.
type UserLookup interface {
	FindByUserName(ctx context.Context, userName string) (*models.User, bool, error)
}

// RequestAuthenticator installs an auth.Principal into the request context
// when the request carries a valid bearer token for an existing user. Any
// failure to authenticate leaves the request anonymous; access decisions
// are made later by RequireAuthenticated and RequireRole.
type RequestAuthenticator struct {
	codec  *auth.TokenCodec
	users  UserLookup
	now    func() time.Time
	logger logging.Logger
}

func NewRequestAuthenticator(codec *auth.TokenCodec, users UserLookup, now func() time.Time, l logging.Logger) *RequestAuthenticator {
	if now == nil {
		now = time.Now
	}
	return &RequestAuthenticator{codec: codec, users: users, now: now, logger: l.With("module", "authenticator")}
}

func (a *RequestAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		subject, err := a.codec.ParseSubject(token)
		if err != nil {
			a.logger.Debug(ctx, "rejecting token", "reason", err)
			next.ServeHTTP(w, r)
			return
		}

		if !a.codec.IsValid(token, subject, a.now()) {
			a.logger.Debug(ctx, "rejecting token", "reason", "expired", "subject", subject)
			next.ServeHTTP(w, r)
			return
		}

		user, found, err := a.users.FindByUserName(ctx, subject)
		if err != nil {
			a.logger.Error(ctx, "user lookup failed", "subject", subject, "error", err)
			writeFailure(w, common.ErrInternal)
			return
		}
		if !found {
			a.logger.Debug(ctx, "rejecting token", "reason", "unknown subject", "subject", subject)
			next.ServeHTTP(w, r)
			return
		}

		ctx = auth.WithPrincipal(ctx, auth.Principal{Subject: user.UserName, Roles: user.Roles})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuthenticated rejects requests without a principal with 401.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.PrincipalFrom(r.Context()); !ok {
			writeFailure(w, common.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects anonymous requests with 401 and principals lacking
// role with 403.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.PrincipalFrom(r.Context())
			if !ok {
				writeFailure(w, common.ErrUnauthorized)
				return
			}
			if !p.HasRole(role) {
				writeFailure(w, common.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>". The
// scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get(common.AuthorizationHeaderName)
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
