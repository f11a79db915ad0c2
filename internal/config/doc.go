// Package config loads and validates tollgate configuration.
//
// Configuration is a single YAML file. Values in the form ${VAR_NAME} are
// expanded from the environment before parsing, which keeps the signing
// secret out of the file itself:
//
//	server:
//	  http_addr: "localhost:8080"
//
//	database:
//	  path: "/var/lib/tollgate/tollgate.db"
//
//	auth:
//	  jwt_secret: "${TOLLGATE_JWT_SECRET}"
//	  token_ttl: "10h"
//	  default_role: "USER"
//
//	cors:
//	  allowed_origin: "http://localhost:3000"
//
//	logging:
//	  level: "info"
//	  format: "text"
//
// Load performs validation: the HTTP address, database path, and jwt_secret
// are required. The secret's minimum length is enforced where the token codec
// is constructed, after expansion.
package config
