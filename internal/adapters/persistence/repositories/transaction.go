package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// WithTransaction runs fn inside a transaction bound to ctx. Any error
// returned by fn rolls the transaction back and is returned unchanged.
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return errors.New("repositories: transaction function is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return db.WithContext(ctx).Transaction(fn)
}

// IsNotFound reports whether err is gorm's record-not-found
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
