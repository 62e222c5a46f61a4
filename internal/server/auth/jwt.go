// Package auth issues and validates the signed session tokens handed out by
// the server, and carries the authenticated principal through a request
// context.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/userauth/internal/common"
)

// SigningMethod is the only algorithm TokenCodec issues or accepts.
var SigningMethod = jwt.SigningMethodHS256

// TokenCodec signs and verifies HS256 tokens over a fixed secret and TTL.
// It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec returns a codec for the given secret and token lifetime.
// The TTL must be a positive whole number of seconds, matching the
// resolution of the iat/exp claims.
func NewTokenCodec(secret []byte, ttl time.Duration) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: empty secret key")
	}
	if ttl <= 0 || ttl%time.Second != 0 {
		return nil, fmt.Errorf("auth: token ttl must be a positive whole number of seconds, got %s", ttl)
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &TokenCodec{secret: key, ttl: ttl}, nil
}

// TTL returns the lifetime of issued tokens.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Issue mints a token for subject, valid from now until now+TTL. now is
// truncated to the second before the claims are built.
func (c *TokenCodec) Issue(subject string, now time.Time) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: empty token subject", common.ErrValidation)
	}
	issuedAt := now.Truncate(time.Second)

	token := jwt.NewWithClaims(SigningMethod, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.ttl)),
		ID:        uuid.NewString(),
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseSubject verifies the signature and returns the sub claim. Time claims
// are not checked here.
func (c *TokenCodec) ParseSubject(token string) (string, error) {
	claims, err := c.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Validate checks signature, expiry against now and that the subject equals
// expectedSubject exactly. The returned error is one of the common token
// errors.
func (c *TokenCodec) Validate(token, expectedSubject string, now time.Time) error {
	claims, err := c.parse(token,
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return err
	}
	if claims.Subject != expectedSubject {
		return common.ErrSubjectMismatch
	}
	return nil
}

// IsValid is Validate reduced to a boolean.
func (c *TokenCodec) IsValid(token, expectedSubject string, now time.Time) bool {
	return c.Validate(token, expectedSubject, now) == nil
}

func (c *TokenCodec) parse(token string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	opts = append(opts,
		jwt.WithValidMethods([]string{SigningMethod.Alg()}),
		jwt.WithStrictDecoding(),
	)

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", common.ErrTokenMalformed)
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", common.ErrTokenSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", common.ErrTokenMalformed, err)
	}
}
