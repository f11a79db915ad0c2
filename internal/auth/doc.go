// Package auth implements stateless authentication for tollgate.
//
// # Flow
//
// Two gates cover every request:
//
//   - LoginGate handles the login route. It drives the Verifier against the
//     user store and, on success, mints an HS256 session token via Codec and
//     attaches it to the response Authorization header.
//
//   - SessionGate runs in front of protected routes. It decodes the bearer
//     token and installs a Principal into the request context. It never
//     rejects a request itself: a bad or absent token simply leaves the
//     request anonymous, and the RequireAuthenticated / RequireRole
//     middlewares decide whether that is acceptable.
//
// This split keeps authentication (who is this?) separate from authorization
// (may they do this?).
//
// # Tokens
//
// Tokens are compact JWTs signed with a process-wide symmetric secret of at
// least MinSecretLength bytes, loaded once at startup. Claims: sub (username),
// role (wire form, e.g. "ROLE_ADMIN"), iat, exp. There is no refresh or
// revocation; a token is valid until its expiry.
//
// # Principals
//
// A Principal is the request-scoped identity {username, role}. Roles are a
// closed enumeration (RoleUser, RoleAdmin) serialized to the prefixed string
// form only at the token and storage boundaries.
package auth
