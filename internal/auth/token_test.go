// ABOUTME: Unit tests for session token encoding and decoding
// ABOUTME: Covers round trips, expiry, tampering, and TTL validation

package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenTestSecret is a 32-byte secret that meets the MinSecretLength requirement.
var tokenTestSecret = []byte("token-codec-test-secret-32-bytes")

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec(tokenTestSecret)
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	return codec
}

func TestNewCodec_ShortSecret(t *testing.T) {
	_, err := NewCodec([]byte("too-short"))
	if !errors.Is(err, ErrSecretTooShort) {
		t.Errorf("NewCodec() error = %v, want ErrSecretTooShort", err)
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	tests := []struct {
		name    string
		subject string
		role    Role
		ttl     time.Duration
	}{
		{name: "user role", subject: "alice", role: RoleUser, ttl: time.Hour},
		{name: "admin role", subject: "bob", role: RoleAdmin, ttl: 10 * time.Hour},
		{name: "short ttl", subject: "carol", role: RoleUser, ttl: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := codec.Encode(tt.subject, tt.role, tt.ttl)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}

			claims, err := codec.Decode(token)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}

			if claims.Subject != tt.subject {
				t.Errorf("Subject = %q, want %q", claims.Subject, tt.subject)
			}
			if claims.Role != tt.role {
				t.Errorf("Role = %v, want %v", claims.Role, tt.role)
			}
			if claims.ExpiresAt.Before(claims.IssuedAt) {
				t.Errorf("ExpiresAt %v before IssuedAt %v", claims.ExpiresAt, claims.IssuedAt)
			}
		})
	}
}

func TestCodec_Encode_InvalidTTL(t *testing.T) {
	codec := newTestCodec(t)

	for _, ttl := range []time.Duration{0, -time.Second, -time.Hour} {
		if _, err := codec.Encode("alice", RoleUser, ttl); !errors.Is(err, ErrInvalidTTL) {
			t.Errorf("Encode(ttl=%v) error = %v, want ErrInvalidTTL", ttl, err)
		}
	}
}

func TestCodec_Decode_Malformed(t *testing.T) {
	codec := newTestCodec(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "garbage token", token: "not-a-jwt-token"},
		{name: "bad segments", token: "header.payload.signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.token)
			if !errors.Is(err, ErrMalformedToken) {
				t.Errorf("Decode() error = %v, want ErrMalformedToken", err)
			}
		})
	}
}

func TestCodec_Decode_WrongSecret(t *testing.T) {
	codec := newTestCodec(t)

	other, err := NewCodec([]byte("a-different-signing-secret-32-by"))
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	token, err := other.Encode("alice", RoleUser, time.Hour)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if _, err := codec.Decode(token); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Decode() error = %v, want ErrInvalidSignature", err)
	}
}

func TestCodec_Decode_Expired(t *testing.T) {
	codec := newTestCodec(t)

	// Craft an already-expired token with the same secret; Encode refuses
	// non-positive TTLs so it cannot produce one.
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  "alice",
		"role": "ROLE_USER",
		"iat":  now.Add(-2 * time.Hour).Unix(),
		"exp":  now.Add(-time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tokenTestSecret)
	if err != nil {
		t.Fatalf("signing expired token: %v", err)
	}

	if _, err := codec.Decode(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Decode() error = %v, want ErrExpiredToken", err)
	}
}

func TestCodec_Decode_TamperedPayload(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Encode("alice", RoleUser, time.Hour)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	// Rewrite the payload claims while keeping the original signature.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	var claims map[string]any
	if err := json.Unmarshal(payload, &claims); err != nil {
		t.Fatalf("unmarshaling payload: %v", err)
	}
	claims["role"] = "ROLE_ADMIN" // privilege escalation attempt
	altered, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshaling altered payload: %v", err)
	}
	parts[1] = base64.RawURLEncoding.EncodeToString(altered)
	tampered := strings.Join(parts, ".")

	if _, err := codec.Decode(tampered); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Decode() error = %v, want ErrInvalidSignature", err)
	}
}

func TestCodec_Decode_MissingRoleClaim(t *testing.T) {
	codec := newTestCodec(t)

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": "alice",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tokenTestSecret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	if _, err := codec.Decode(token); !errors.Is(err, ErrMissingClaim) {
		t.Errorf("Decode() error = %v, want ErrMissingClaim", err)
	}
}

func TestCodec_Decode_RejectsUnsignedToken(t *testing.T) {
	codec := newTestCodec(t)

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  "alice",
		"role": "ROLE_ADMIN",
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	if _, err := codec.Decode(token); err == nil {
		t.Error("Decode() should reject an alg=none token")
	}
}
