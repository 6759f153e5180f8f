// Package msgstore persists greeting messages in an append-only log.
//
// A Store is opened from a URL whose scheme selects the backend:
//
//	pebble:///var/lib/greetd/store   embedded Pebble (default; bare paths too)
//	postgres://user@host/db          PostgreSQL via a pgx pool
//	sqlite:///tmp/greetd.db          SQLite, single connection
//
// Example:
//
//	s, err := msgstore.Open(ctx, "pebble://./data/store", msgstore.Options{})
//	if err != nil { /* handle */ }
//	defer s.Close()
//	m, _ := s.Append(ctx, "Hello Alice!")
//	all, _ := s.List(ctx)
package msgstore
