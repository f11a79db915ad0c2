// Package server assembles the tollgate HTTP service.
//
// Route map:
//
//	GET  /       public index / health
//	POST /join   registration (bcrypt hash, configured default role)
//	POST /login  LoginGate - exchanges credentials for a bearer token
//	GET  /me     any authenticated principal
//	GET  /admin  requires RoleAdmin
//
// The public routes are public by construction: SessionGate is simply not in
// front of them. Protected routes run SessionGate (identify) followed by a
// Require middleware (reject), so an invalid token on a public route is
// harmless and an absent token on a protected route fails in the
// authorization layer with 401, never inside SessionGate.
package server
