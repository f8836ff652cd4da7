package record

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// FieldDef is a schema field of any value type. It is implemented by Field.
type FieldDef interface {
	// Name returns the attribute name the field is stored under.
	Name() string

	// IsRequired reports whether Save requires the field to be present.
	IsRequired() bool

	encode(value any) (string, error)
	decode(raw string) (any, error)
	buildErr() error
}

// Codec converts field values to and from their stored string form.
type Codec[T any] struct {
	Encode func(T) string
	Decode func(string) (T, error)
}

// Field is a typed, validated, store-backed field. Builder methods return
// modified copies, so a Field value can be shared across schemas.
type Field[T any] struct {
	name     string
	required bool
	codec    Codec[T]
	checks   []func(T) error
	rules    []rule
	err      error
}

type rule struct {
	expression string
	program    *vm.Program
}

// Custom declares a field stored with codec. Both codec functions must be
// set; NewSchema rejects the field otherwise.
func Custom[T any](name string, codec Codec[T]) Field[T] {
	f := Field[T]{name: name, codec: codec}
	if codec.Encode == nil || codec.Decode == nil {
		f.err = fmt.Errorf("field %q: codec must set Encode and Decode", name)
	}
	return f
}

// String declares a string field.
func String(name string) Field[string] {
	return Custom(name, Codec[string]{
		Encode: func(s string) string { return s },
		Decode: func(s string) (string, error) { return s, nil },
	})
}

// Int declares an integer field stored in base 10.
func Int(name string) Field[int] {
	return Custom(name, Codec[int]{
		Encode: strconv.Itoa,
		Decode: strconv.Atoi,
	})
}

// Bool declares a boolean field.
func Bool(name string) Field[bool] {
	return Custom(name, Codec[bool]{
		Encode: strconv.FormatBool,
		Decode: strconv.ParseBool,
	})
}

// Float declares a float64 field.
func Float(name string) Field[float64] {
	return Custom(name, Codec[float64]{
		Encode: func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) },
		Decode: func(s string) (float64, error) { return strconv.ParseFloat(s, 64) },
	})
}

// Time declares a timestamp field stored as RFC 3339 in UTC.
func Time(name string) Field[time.Time] {
	return Custom(name, Codec[time.Time]{
		Encode: func(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) },
		Decode: func(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) },
	})
}

// Name returns the attribute name the field is stored under.
func (f Field[T]) Name() string { return f.name }

// IsRequired reports whether Save requires the field to be present.
func (f Field[T]) IsRequired() bool { return f.required }

// Required marks the field as required on save.
func (f Field[T]) Required() Field[T] {
	f.required = true
	return f
}

// Check adds a validation function run on every write.
func (f Field[T]) Check(fn func(T) error) Field[T] {
	f.checks = append(slices.Clip(f.checks), fn)
	return f
}

// Rule adds a boolean expr-lang expression run on every write, with the
// candidate bound to value, e.g. `len(value) <= 64`.
// A compile error is reported by NewSchema.
func (f Field[T]) Rule(expression string) Field[T] {
	var zero T
	program, err := expr.Compile(expression,
		expr.Env(map[string]any{"value": zero}),
		expr.AsBool(),
	)
	if err != nil {
		f.err = errors.Join(f.err, fmt.Errorf("field %q: rule %q: %w", f.name, expression, err))
		return f
	}
	f.rules = append(slices.Clip(f.rules), rule{expression: expression, program: program})
	return f
}

// Validate runs the field's checks and rules against v.
func (f Field[T]) Validate(v T) error {
	for _, check := range f.checks {
		if err := check(v); err != nil {
			return &ValidationError{Field: f.name, Err: err}
		}
	}
	for _, r := range f.rules {
		out, err := expr.Run(r.program, map[string]any{"value": v})
		if err != nil {
			return &ValidationError{Field: f.name, Err: fmt.Errorf("rule %q: %w", r.expression, err)}
		}
		if ok, _ := out.(bool); !ok {
			return &ValidationError{Field: f.name, Err: fmt.Errorf("rule %q not satisfied", r.expression)}
		}
	}
	return nil
}

// encode accepts a T or its string encoding, validates it and returns the
// stored form.
func (f Field[T]) encode(value any) (string, error) {
	var v T
	if typed, ok := value.(T); ok {
		v = typed
	} else if s, ok := value.(string); ok {
		decoded, err := f.codec.Decode(s)
		if err != nil {
			return "", &ValidationError{Field: f.name, Err: err}
		}
		v = decoded
	} else {
		return "", &ValidationError{Field: f.name, Err: fmt.Errorf("unsupported type %T", value)}
	}
	if err := f.Validate(v); err != nil {
		return "", err
	}
	return f.codec.Encode(v), nil
}

func (f Field[T]) decode(raw string) (any, error) {
	return f.codec.Decode(raw)
}

func (f Field[T]) buildErr() error { return f.err }
