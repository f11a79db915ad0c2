// ABOUTME: Route handlers: index, registration, and the authenticated endpoints
// ABOUTME: Registration hashes with bcrypt and assigns the configured default role

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/varnhold/tollgate/internal/auth"
	"github.com/varnhold/tollgate/internal/store"
)

// Username validation regex: alphanumeric + underscores, 3-32 characters
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{2,31}$`)

const minPasswordLength = 8

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleIndex serves the public root. It doubles as the health endpoint.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "tollgate",
		"status":  "ok",
	})
}

// joinRequest is the registration body, accepted as form fields or JSON.
type joinRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func readJoinRequest(r *http.Request) (joinRequest, bool) {
	var req joinRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, false
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, false
		}
		req.Username = r.FormValue("username")
		req.Password = r.FormValue("password")
	}
	return req, true
}

// handleJoin registers a new user. The stored role comes from the configured
// default, not from the request: signups can never pick their own role.
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	req, ok := readJoinRequest(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "username and password required")
		return
	}
	if !usernameRegex.MatchString(req.Username) {
		writeJSONError(w, http.StatusBadRequest, "username must start with a letter and contain only letters, numbers, and underscores (3-32 characters)")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeJSONError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	exists, err := s.store.ExistsByUsername(r.Context(), req.Username)
	if err != nil {
		s.logger.Error("failed to check username", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if exists {
		writeJSONError(w, http.StatusConflict, "username already taken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user := &store.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         s.defaultRole.Wire(),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(r.Context(), user); err != nil {
		// The existence check races with concurrent signups; the unique
		// constraint is the authority.
		if errors.Is(err, store.ErrUsernameExists) {
			writeJSONError(w, http.StatusConflict, "username already taken")
			return
		}
		s.logger.Error("failed to create user", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"username": user.Username,
		"role":     user.Role,
	})
}

// handleMe returns the authenticated principal's identity.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{
		"username": principal.Username,
		"role":     principal.Role.String(),
	})
}

// handleAdmin returns a user summary. Reaching it requires RoleAdmin.
func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.CountUsers(r.Context())
	if err != nil {
		s.logger.Error("failed to count users", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	type userSummary struct {
		Username  string `json:"username"`
		Role      string `json:"role"`
		CreatedAt string `json:"created_at"`
	}
	summaries := make([]userSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, userSummary{
			Username:  u.Username,
			Role:      u.Role,
			CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_count": count,
		"users":      summaries,
	})
}
