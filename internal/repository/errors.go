package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no document matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

// objectID parses a hex identifier. Malformed ids cannot match any document
// and are reported as ErrNotFound.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

// ownerString normalizes a stored owner reference. Older documents hold an
// ObjectID, newer ones its hex string.
func ownerString(v any) string {
	switch ref := v.(type) {
	case string:
		return ref
	case primitive.ObjectID:
		return ref.Hex()
	default:
		return ""
	}
}
