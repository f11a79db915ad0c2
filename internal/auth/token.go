// ABOUTME: Signed session token encoding and decoding
// ABOUTME: HS256 claims carry subject, role, issued-at, and expiry

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum signing secret size in bytes (256 bits).
const MinSecretLength = 32

// Token errors
var (
	ErrSecretTooShort   = errors.New("signing secret too short")
	ErrInvalidTTL       = errors.New("token ttl must be positive")
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpiredToken     = errors.New("token expired")
	ErrMissingClaim     = errors.New("missing required claim")
)

// Claims is the decoded claim set of a session token.
type Claims struct {
	Subject   string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec mints and validates signed session tokens. It is a pure function of
// its inputs and the process-wide secret, so a single instance is safe to
// share across requests.
type Codec struct {
	secret []byte
}

// NewCodec creates a token codec with the given signing secret.
// The secret must be at least MinSecretLength bytes.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrSecretTooShort, len(secret), MinSecretLength)
	}
	return &Codec{secret: secret}, nil
}

// Encode mints a signed token for the given subject and role, valid for ttl
// from now. A non-positive ttl is rejected with ErrInvalidTTL.
func (c *Codec) Encode(subject string, role Role, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", ErrInvalidTTL
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role.Wire(),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode validates a token string and returns its claims. Expiry is checked
// against this process's clock; skew is not compensated. Tokens signed with
// anything other than HMAC are rejected.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		case errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
	}

	if !token.Valid {
		return nil, ErrInvalidSignature
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrMalformedToken
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	roleStr, ok := mapClaims["role"].(string)
	if !ok || roleStr == "" {
		return nil, fmt.Errorf("%w: role", ErrMissingClaim)
	}
	role, err := ParseRole(roleStr)
	if err != nil {
		return nil, fmt.Errorf("%w: role %q", ErrMalformedToken, roleStr)
	}

	claims := &Claims{
		Subject: sub,
		Role:    role,
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	return claims, nil
}
