package record

import (
	"errors"
	"fmt"
)

var (
	// ErrNoIdentifier is returned when a record without an id is refreshed.
	ErrNoIdentifier = errors.New("vine: record has no identifier")

	// ErrNotFound is returned when the store holds no attributes for an id.
	ErrNotFound = errors.New("vine: record not found")

	// ErrCorruptRecord is returned when a stored record has a missing or invalid version.
	ErrCorruptRecord = errors.New("vine: record is corrupt")

	// ErrConcurrentModification is returned when a conditional save loses to another writer.
	// The caller should refresh, reapply its changes and save again.
	ErrConcurrentModification = errors.New("vine: record was modified concurrently")

	// ErrImmutableField is returned when a reserved field is written.
	ErrImmutableField = errors.New("vine: field is immutable")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("vine: field validation failed")

	// ErrRequired is wrapped by a *ValidationError when a required field is missing on save.
	ErrRequired = errors.New("vine: required field is missing")

	// ErrFieldNotFound is returned when a field is absent from the loaded attributes.
	ErrFieldNotFound = errors.New("vine: field not found")

	// ErrNotLoaded is returned when saving a record that has an id but was never loaded.
	ErrNotLoaded = errors.New("vine: record has an identifier but was never loaded")

	// ErrConditionFailed is returned by an AttributeStore when the expected value does not match.
	ErrConditionFailed = errors.New("vine: conditional write failed")

	// ErrUnknownType is returned by a Registry for an unregistered record type.
	ErrUnknownType = errors.New("vine: unknown record type")
)

// ValidationError reports a value rejected by a field's validator.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("vine: invalid value for field %q: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// CorruptRecordError reports stored attributes that are not a valid record.
type CorruptRecordError struct {
	ID     string
	Reason string
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("vine: record %q is corrupt: %s", e.ID, e.Reason)
}

// Is reports whether target is ErrCorruptRecord.
func (e *CorruptRecordError) Is(target error) bool { return target == ErrCorruptRecord }
