package record

import (
	"errors"
	"fmt"
)

// Schema declares the store-backed fields of one record type.
type Schema struct {
	typeName string
	domain   string
	fields   map[string]FieldDef
	order    []string
}

// NewSchema builds a schema for typeName. Field names must be unique and
// must not be reserved.
func NewSchema(typeName string, fields ...FieldDef) (*Schema, error) {
	if typeName == "" {
		return nil, errors.New("vine: schema type name is empty")
	}
	s := &Schema{
		typeName: typeName,
		domain:   typeName,
		fields:   make(map[string]FieldDef, len(fields)),
	}
	for _, f := range fields {
		name := f.Name()
		switch {
		case name == "":
			return nil, fmt.Errorf("vine: schema %q: field name is empty", typeName)
		case IsReserved(name):
			return nil, fmt.Errorf("vine: schema %q: field %q: %w", typeName, name, ErrImmutableField)
		case s.fields[name] != nil:
			return nil, fmt.Errorf("vine: schema %q: duplicate field %q", typeName, name)
		}
		if err := f.buildErr(); err != nil {
			return nil, fmt.Errorf("vine: schema %q: %w", typeName, err)
		}
		s.fields[name] = f
		s.order = append(s.order, name)
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error.
func MustSchema(typeName string, fields ...FieldDef) *Schema {
	s, err := NewSchema(typeName, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// WithDomain returns a copy of the schema stored in the named domain.
func (s *Schema) WithDomain(domain string) *Schema {
	c := *s
	c.domain = domain
	return &c
}

// TypeName returns the record type name.
func (s *Schema) TypeName() string { return s.typeName }

// Domain returns the storage domain (table) records of this type live in.
func (s *Schema) Domain() string { return s.domain }

// Field returns the named field definition.
func (s *Schema) Field(name string) (FieldDef, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// Has reports whether name is a schema field.
func (s *Schema) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// Fields returns the field names in declaration order.
func (s *Schema) Fields() []string {
	return append([]string(nil), s.order...)
}

// missingRequired returns the first required field absent from attrs.
func (s *Schema) missingRequired(attrs Attributes) (string, bool) {
	for _, name := range s.order {
		if !s.fields[name].IsRequired() {
			continue
		}
		if _, ok := attrs[name]; !ok {
			return name, true
		}
	}
	return "", false
}
