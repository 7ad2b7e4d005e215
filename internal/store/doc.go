// Package store holds the persistence adapters behind the core collaborator
// interfaces: postgres for the server, sqlite for the command line tool and
// memory for tests and database-less development runs.
package store

import "errors"

// ErrNotFound is returned when deleting a configuration that does not exist.
var ErrNotFound = errors.New("not found")
