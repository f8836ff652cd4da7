package record

import "fmt"

// Registry holds the schemas of all known record types.
type Registry struct {
	schemas []*Schema
	byType  map[string]*Schema
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[string]*Schema),
	}
}

// Register adds a schema to the registry.
// This should be called during init() for each record type.
func (r *Registry) Register(s *Schema) error {
	if _, ok := r.byType[s.TypeName()]; ok {
		return fmt.Errorf("vine: record type %q already registered", s.TypeName())
	}
	r.schemas = append(r.schemas, s)
	r.byType[s.TypeName()] = s
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(s *Schema) {
	if err := r.Register(s); err != nil {
		panic(err)
	}
}

// Lookup returns the schema registered for typeName.
func (r *Registry) Lookup(typeName string) (*Schema, bool) {
	s, ok := r.byType[typeName]
	return s, ok
}

// All returns all registered schemas in registration order.
func (r *Registry) All() []*Schema {
	return append([]*Schema(nil), r.schemas...)
}

// New creates an unsaved record of the registered type.
func (r *Registry) New(store AttributeStore, typeName string, opts ...Option) (*Record, error) {
	s, ok := r.byType[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	return New(store, s, opts...), nil
}

// Open creates a handle on an existing record of the registered type.
func (r *Registry) Open(store AttributeStore, typeName, id string, opts ...Option) (*Record, error) {
	s, ok := r.byType[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	return Open(store, s, id, opts...), nil
}
