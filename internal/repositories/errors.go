package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is wrapped by lookups and deletes that match no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is wrapped by inserts that hit a unique or primary key.
	ErrDuplicate = errors.New("already exists")
)

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
