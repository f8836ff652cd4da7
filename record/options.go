package record

import (
	"encoding/hex"
	"log/slog"

	"github.com/google/uuid"
)

// Option configures a Record.
type Option func(*Record)

// WithLogger sets the logger used for save and refresh events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Record) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithIDGenerator replaces the generator used to assign ids on first save.
func WithIDGenerator(gen func() string) Option {
	return func(r *Record) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// NewID returns a random 128-bit identifier rendered as 32 hex characters.
func NewID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
