package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
)

// Record is a schema-typed attribute bag persisted under one id with
// optimistic locking on VersionAttribute.
//
// A Record is not safe for concurrent use. Concurrent writers of the same id
// are arbitrated by the store's conditional write.
type Record struct {
	store  AttributeStore
	schema *Schema
	logger *slog.Logger
	newID  func() string

	id      string
	version int64
	fields  Attributes
	locals  map[string]any
}

// New creates a record that has not been persisted. Save assigns its id.
func New(store AttributeStore, schema *Schema, opts ...Option) *Record {
	r := &Record{
		store:  store,
		schema: schema,
		logger: slog.Default(),
		newID:  NewID,
		fields: make(Attributes),
		locals: make(map[string]any),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open creates a handle on the record stored under id. Nothing is read until
// the first field access or an explicit Refresh.
func Open(store AttributeStore, schema *Schema, id string, opts ...Option) *Record {
	r := New(store, schema, opts...)
	r.id = id
	return r
}

// ID returns the record id, or "" if the record was never saved.
func (r *Record) ID() string { return r.id }

// Version returns the last known stored version, 0 if not loaded or saved.
func (r *Record) Version() int64 { return r.version }

// Loaded reports whether the record holds a stored version.
func (r *Record) Loaded() bool { return r.version != 0 }

// Schema returns the record's schema.
func (r *Record) Schema() *Schema { return r.schema }

// Fields returns a copy of the local attribute bag, including VersionAttribute.
func (r *Record) Fields() Attributes { return r.fields.Clone() }

// EnsureLoaded reads the record from the store unless it is already loaded.
func (r *Record) EnsureLoaded(ctx context.Context) error {
	return r.Refresh(ctx, false)
}

// Refresh replaces the local attributes with a consistent read of the store.
// Unless force is set, an already loaded record is left untouched.
func (r *Record) Refresh(ctx context.Context, force bool) error {
	if r.id == "" {
		return ErrNoIdentifier
	}
	if r.version != 0 && !force {
		return nil
	}

	attrs, err := r.store.GetAttributes(ctx, r.id, true)
	if err != nil {
		return fmt.Errorf("get attributes %s: %w", r.id, err)
	}
	if len(attrs) == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, r.id)
	}

	version, err := parseVersion(r.id, attrs)
	if err != nil {
		return err
	}

	r.fields = attrs.Clone()
	r.version = version

	r.logger.Debug("record refreshed",
		"type", r.schema.TypeName(),
		"id", r.id,
		"version", version,
	)
	return nil
}

// Get returns a field value. Schema fields are decoded from the loaded
// attributes, loading the record first if it has an id and was never loaded.
// Reserved names return the record's own state and other names return values
// stored with Set.
func (r *Record) Get(ctx context.Context, name string) (any, error) {
	def, ok := r.schema.Field(name)
	if !ok {
		return r.getLocal(name)
	}

	if r.id != "" {
		if err := r.Refresh(ctx, false); err != nil {
			return nil, err
		}
	}

	raw, ok := r.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	v, err := def.decode(raw)
	if err != nil {
		return nil, &CorruptRecordError{
			ID:     r.id,
			Reason: fmt.Sprintf("field %q: %v", name, err),
		}
	}
	return v, nil
}

func (r *Record) getLocal(name string) (any, error) {
	switch name {
	case IDField:
		return r.id, nil
	case VersionAttribute:
		return r.version, nil
	case AttributesField:
		return r.Fields(), nil
	}
	if v, ok := r.locals[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, name)
}

// Set writes a field locally. Schema fields are validated and become visible
// to other holders only after Save. Reserved names are rejected with
// ErrImmutableField and other names are kept as local, unpersisted values.
func (r *Record) Set(ctx context.Context, name string, value any) error {
	if IsReserved(name) {
		return fmt.Errorf("%w: %q", ErrImmutableField, name)
	}

	def, ok := r.schema.Field(name)
	if !ok {
		r.locals[name] = value
		return nil
	}

	// Writes must not be based on unread state.
	if r.id != "" {
		if err := r.Refresh(ctx, false); err != nil {
			return err
		}
	}

	raw, err := def.encode(value)
	if err != nil {
		return err
	}
	r.fields[name] = raw
	return nil
}

// Save persists the record.
//
// A loaded record is written conditionally on the store still holding the
// version it was loaded at; losing that race returns
// ErrConcurrentModification and leaves the record unchanged. A record without
// an id is assigned one and created at version 1. A record opened by id but
// never loaded returns ErrNotLoaded.
func (r *Record) Save(ctx context.Context) error {
	if r.version == 0 && r.id != "" {
		return fmt.Errorf("%w: %s", ErrNotLoaded, r.id)
	}
	if name, missing := r.schema.missingRequired(r.fields); missing {
		return &ValidationError{Field: name, Err: ErrRequired}
	}

	if r.version != 0 {
		return r.update(ctx)
	}
	return r.create(ctx)
}

func (r *Record) update(ctx context.Context) error {
	oldVersion := r.version
	newVersion := oldVersion + 1

	out := r.fields.Clone()
	out[VersionAttribute] = strconv.FormatInt(newVersion, 10)

	err := r.store.PutAttributes(ctx, r.id, out, &Expected{
		Name:  VersionAttribute,
		Value: strconv.FormatInt(oldVersion, 10),
	})
	if errors.Is(err, ErrConditionFailed) {
		r.logger.Info("record modified concurrently",
			"type", r.schema.TypeName(),
			"id", r.id,
			"version", oldVersion,
		)
		return fmt.Errorf("%w: %s at version %d", ErrConcurrentModification, r.id, oldVersion)
	}
	if err != nil {
		return fmt.Errorf("put attributes %s: %w", r.id, err)
	}

	r.fields = out
	r.version = newVersion

	r.logger.Debug("record saved",
		"type", r.schema.TypeName(),
		"id", r.id,
		"version", newVersion,
	)
	return nil
}

func (r *Record) create(ctx context.Context) error {
	id := r.newID()

	out := r.fields.Clone()
	out[VersionAttribute] = "1"

	if err := r.store.PutAttributes(ctx, id, out, nil); err != nil {
		return fmt.Errorf("put attributes %s: %w", id, err)
	}

	r.id = id
	r.fields = out
	r.version = 1

	r.logger.Debug("record created",
		"type", r.schema.TypeName(),
		"id", id,
	)
	return nil
}

// parseVersion extracts a positive VersionAttribute from stored attributes.
func parseVersion(id string, attrs Attributes) (int64, error) {
	raw, ok := attrs[VersionAttribute]
	if !ok {
		return 0, &CorruptRecordError{ID: id, Reason: "missing " + VersionAttribute}
	}
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &CorruptRecordError{ID: id, Reason: fmt.Sprintf("invalid %s %q", VersionAttribute, raw)}
	}
	if version < 1 {
		return 0, &CorruptRecordError{ID: id, Reason: fmt.Sprintf("%s %d is not positive", VersionAttribute, version)}
	}
	return version, nil
}

// GetField returns the typed value of a schema field.
func GetField[T any](ctx context.Context, r *Record, f Field[T]) (T, error) {
	var zero T
	if !r.schema.Has(f.Name()) {
		return zero, fmt.Errorf("%w: %q is not in schema %q", ErrFieldNotFound, f.Name(), r.schema.TypeName())
	}
	v, err := r.Get(ctx, f.Name())
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("vine: field %q holds %T, not %T", f.Name(), v, zero)
	}
	return typed, nil
}

// SetField writes the typed value of a schema field.
func SetField[T any](ctx context.Context, r *Record, f Field[T], v T) error {
	if !r.schema.Has(f.Name()) {
		return fmt.Errorf("%w: %q is not in schema %q", ErrFieldNotFound, f.Name(), r.schema.TypeName())
	}
	return r.Set(ctx, f.Name(), v)
}
