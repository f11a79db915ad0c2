// Package store provides credential persistence for tollgate.
//
// The only entity is the User record: a unique username, a bcrypt password
// hash, and a single role in wire form. SQLiteStore is the production
// implementation, backed by modernc.org/sqlite with the schema created on
// open. The authentication core treats the store as a read path keyed by
// username; registration is the single write path.
package store
