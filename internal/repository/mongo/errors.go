package mongo

import (
	"errors"

	ierr "github.com/netbill/netbill/internal/errors"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// wrapDBError translates driver errors into the service error taxonomy.
// Conditional-write misses are handled at the call sites, since only the
// caller knows whether a zero match means "gone" or "state changed".
func wrapDBError(err error, hint string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ierr.WithError(err).
			WithHint(hint).
			Mark(ierr.ErrNotFound)
	}
	if mongo.IsDuplicateKeyError(err) {
		return ierr.WithError(err).
			WithHint(hint).
			Mark(ierr.ErrAlreadyExists)
	}
	return ierr.WithError(err).
		WithHint(hint).
		Mark(ierr.ErrDatabase)
}
