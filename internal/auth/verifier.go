// ABOUTME: Credential verification against stored user records
// ABOUTME: Produces a Principal on success, typed failures otherwise

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/varnhold/tollgate/internal/store"
)

// Verification errors. Callers must collapse both into one generic
// authentication failure before anything reaches a client; the distinction
// exists for logging only.
var (
	ErrUnknownUser    = errors.New("unknown user")
	ErrBadCredentials = errors.New("bad credentials")
)

// dummyHash is compared against when the username does not exist, so a
// lookup miss costs the same as a password mismatch. This prevents timing
// attacks that could enumerate valid usernames.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserLookup is the subset of store operations the verifier needs.
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*store.User, error)
}

// Verifier checks a username/password pair against stored credentials.
// Stateless and safe for concurrent use.
type Verifier struct {
	users  UserLookup
	logger *slog.Logger
}

// NewVerifier creates a credential verifier backed by the given user store.
func NewVerifier(users UserLookup, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		users:  users,
		logger: logger.With("component", "verifier"),
	}
}

// Verify looks up the stored credential record for username and checks
// password against its bcrypt hash. Returns ErrUnknownUser or
// ErrBadCredentials on authentication failure; storage faults propagate
// unchanged so they surface as server errors, not as failed logins.
func (v *Verifier) Verify(ctx context.Context, username, password string) (*Principal, error) {
	user, err := v.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			v.logger.Debug("login attempt for unknown user", "username", username)
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		v.logger.Debug("password mismatch", "username", username)
		return nil, ErrBadCredentials
	}

	role, err := ParseRole(user.Role)
	if err != nil {
		return nil, fmt.Errorf("stored role for %q: %w", username, err)
	}

	return &Principal{Username: user.Username, Role: role}, nil
}
