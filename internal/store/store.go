// Package store is the persistence boundary for customer records. Every Load
// goes to the backing storage and every Save writes through before returning;
// nothing is cached in between, so the only in-memory state is whatever
// record a caller currently holds.
package store

import (
	"errors"

	"bankaccount/internal/account"
)

var (
	// ErrNotFound means no record exists for the given username.
	ErrNotFound = errors.New("record not found")

	// ErrCorrupt means a stored record is missing fields or unparsable.
	ErrCorrupt = errors.New("record is corrupt")

	// ErrExists means a record already exists for the given username.
	ErrExists = errors.New("record already exists")
)

// Store loads, saves, deletes and enumerates customer records. It doubles as
// the roster: enumeration is List, membership is Load.
type Store interface {
	Load(username string) (*account.Record, error)
	Save(rec *account.Record) error
	Delete(username string) error
	List() ([]*account.Record, error)
}
