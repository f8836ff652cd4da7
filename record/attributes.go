package record

import (
	"context"
	"maps"
)

// Reserved attribute and field names.
const (
	// VersionAttribute holds the optimistic lock version in the store.
	VersionAttribute = "_version"

	// IDField reads the record id through Get.
	IDField = "_id"

	// AttributesField reads a copy of the attribute bag through Get.
	AttributesField = "_attributes"
)

var reserved = map[string]bool{
	IDField:          true,
	VersionAttribute: true,
	AttributesField:  true,
}

// IsReserved reports whether name is managed by the record itself.
func IsReserved(name string) bool {
	return reserved[name]
}

// Attributes is the string attribute bag stored under one id.
type Attributes map[string]string

// Clone returns a copy of the attributes. A nil receiver yields an empty map.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	maps.Copy(out, a)
	return out
}

// Expected makes a put conditional on Name currently holding Value.
type Expected struct {
	Name  string
	Value string
}

// AttributeStore is the remote key/attribute store a Record is persisted in.
type AttributeStore interface {
	// GetAttributes returns all attributes for id, or an empty map if none exist.
	// consistentRead requests a strongly consistent read.
	GetAttributes(ctx context.Context, id string, consistentRead bool) (Attributes, error)

	// PutAttributes merges attrs into the attributes stored for id, creating it if absent.
	// If expected is non-nil the write is atomic and conditional; a mismatch
	// returns ErrConditionFailed and leaves the stored attributes unchanged.
	PutAttributes(ctx context.Context, id string, attrs Attributes, expected *Expected) error
}
