// ABOUTME: Request gates: the login handler, session middleware, and role checks
// ABOUTME: SessionGate identifies the caller; the Require middlewares reject

package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultTokenTTL is the session length used when the configuration does not
// override it.
const DefaultTokenTTL = 10 * time.Hour

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// credentials is the login request body, accepted as form fields or JSON.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// readCredentials pulls username and password out of the request body.
func readCredentials(r *http.Request) (credentials, bool) {
	var creds credentials
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			return creds, false
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return creds, false
		}
		creds.Username = r.FormValue("username")
		creds.Password = r.FormValue("password")
	}
	return creds, creds.Username != "" && creds.Password != ""
}

// LoginGate handles the login route: it exchanges a username/password pair
// for a signed bearer token attached to the response as
// "Authorization: Bearer <token>". Every failed attempt gets the same 401
// with an empty body, so clients cannot tell an unknown user from a wrong
// password.
type LoginGate struct {
	verifier *Verifier
	codec    *Codec
	ttl      time.Duration
	logger   *slog.Logger
}

// NewLoginGate creates the login handler. A non-positive ttl falls back to
// DefaultTokenTTL.
func NewLoginGate(verifier *Verifier, codec *Codec, ttl time.Duration, logger *slog.Logger) *LoginGate {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginGate{
		verifier: verifier,
		codec:    codec,
		ttl:      ttl,
		logger:   logger.With("component", "login"),
	}
}

func (g *LoginGate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	creds, ok := readCredentials(r)
	if !ok {
		g.logger.Debug("login rejected", "reason", "missing_credentials")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	principal, err := g.verifier.Verify(r.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) || errors.Is(err, ErrBadCredentials) {
			g.logger.Info("login failed", "username", creds.Username, "reason", failureReason(err))
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		g.logger.Error("login verification error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	token, err := g.codec.Encode(principal.Username, principal.Role, g.ttl)
	if err != nil {
		g.logger.Error("minting token failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	g.logger.Info("login succeeded", "username", principal.Username, "role", principal.Role.String())

	w.Header().Set("Authorization", "Bearer "+token)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// failureReason maps verification errors to log-safe reason strings.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownUser):
		return "unknown_user"
	case errors.Is(err, ErrBadCredentials):
		return "bad_password"
	default:
		return "error"
	}
}

// SessionGate creates middleware that reconstructs the authenticated
// principal from the request's bearer token. It is deliberately lenient: a
// missing, malformed, expired, or tampered token just means the request
// proceeds with no principal installed. Deciding whether anonymous access is
// acceptable belongs to the authorization middlewares below, never here.
func SessionGate(codec *Codec, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "session")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				next.ServeHTTP(w, r) // Continue as anonymous
				return
			}

			claims, err := codec.Decode(token)
			if err != nil {
				logger.Debug("discarding bearer token", "reason", decodeReason(err))
				next.ServeHTTP(w, r)
				return
			}

			principal := &Principal{Username: claims.Subject, Role: claims.Role}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// decodeReason maps token decode errors to log-safe reason strings.
func decodeReason(err error) string {
	switch {
	case errors.Is(err, ErrExpiredToken):
		return "expired"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrMissingClaim):
		return "missing_claim"
	default:
		return "malformed"
	}
}

// RequireAuthenticated creates middleware that rejects requests carrying no
// principal with 401. Must run after SessionGate.
func RequireAuthenticated(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "authz")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if PrincipalFromContext(r.Context()) == nil {
				logger.Info("request rejected", "path", r.URL.Path, "reason", "unauthenticated")
				http.Error(w, `{"error":"not authenticated"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole creates middleware that rejects requests whose principal does
// not hold the given role: 401 when unauthenticated, 403 when authenticated
// without the role. Must run after SessionGate.
func RequireRole(role Role, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "authz")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				logger.Info("request rejected", "path", r.URL.Path, "reason", "unauthenticated")
				http.Error(w, `{"error":"not authenticated"}`, http.StatusUnauthorized)
				return
			}
			if principal.Role != role {
				logger.Info("request rejected", "path", r.URL.Path,
					"username", principal.Username, "reason", "role_required", "role", role.String())
				http.Error(w, `{"error":"insufficient role"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
