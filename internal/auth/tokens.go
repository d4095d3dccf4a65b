package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shopfront/catalog_api/internal/identity"
)

// TokenTTL is the lifetime of every issued bearer token.
const TokenTTL = 2 * time.Hour

var (
	// ErrSigningKeyMissing aborts startup when no signing secret is configured.
	ErrSigningKeyMissing = errors.New("token signing key is not configured")
	// ErrSigning wraps failures while signing a token.
	ErrSigning = errors.New("sign token")
	// ErrMalformedToken indicates the token could not be decoded.
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidSignature indicates the signature or algorithm did not verify.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpired indicates the token is past its expiry.
	ErrExpired = errors.New("token expired")
)

// Claims is the token payload: the password-stripped user plus registered claims.
type Claims struct {
	User identity.PublicUser `json:"user"`
	jwt.RegisteredClaims
}

// CallerID returns the identity carried by the token.
func (c Claims) CallerID() string {
	if c.User.ID != "" {
		return c.User.ID
	}
	return c.Subject
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens builds a token service for the given secret.
func NewTokens(secret string) (*Tokens, error) {
	if secret == "" {
		return nil, ErrSigningKeyMissing
	}
	return &Tokens{secret: []byte(secret), ttl: TokenTTL, now: time.Now}, nil
}

// Issue signs a token embedding user that expires TokenTTL from now.
func (t *Tokens) Issue(user identity.PublicUser) (string, error) {
	now := t.now()
	claims := Claims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return signed, nil
}

// Verify checks signature and expiry. It returns ErrMalformedToken,
// ErrInvalidSignature or ErrExpired on failure.
func (t *Tokens) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformedToken
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		default:
			return Claims{}, ErrInvalidSignature
		}
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidSignature
	}
	if claims.CallerID() == "" {
		return Claims{}, ErrMalformedToken
	}
	return claims, nil
}
