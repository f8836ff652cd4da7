// Package stream provides DynamoDB Streams handlers for record version changes.
package stream

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/vine/record"
)

// Event names carried by DynamoDB stream records.
const (
	EventInsert = "INSERT"
	EventModify = "MODIFY"
	EventRemove = "REMOVE"
)

// Change describes one stored version transition of a record.
type Change struct {
	// Table is the source table name, parsed from the stream ARN.
	Table string

	// ID is the record id.
	ID string

	// Event is EventInsert, EventModify or EventRemove.
	Event string

	// OldVersion is the version before the change, 0 if unknown or absent.
	OldVersion int64

	// NewVersion is the version after the change, 0 for removals.
	NewVersion int64
}

// Listener receives changes. Returning an error stops the batch.
type Listener func(ctx context.Context, c Change) error

// Config holds configuration for the Handler.
type Config struct {
	// KeyAttribute is the hash key attribute holding the record id.
	// Default: "id"
	KeyAttribute string

	// VersionAttribute is the attribute holding the record version.
	// Default: record.VersionAttribute
	VersionAttribute string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		KeyAttribute:     "id",
		VersionAttribute: record.VersionAttribute,
	}
}

func (c *Config) validate() {
	if c.KeyAttribute == "" {
		c.KeyAttribute = "id"
	}
	if c.VersionAttribute == "" {
		c.VersionAttribute = record.VersionAttribute
	}
}

// Handler turns DynamoDB stream events into record version changes.
type Handler struct {
	listener Listener
	config   Config
	logger   *slog.Logger
}

// NewHandler creates a new stream handler.
func NewHandler(listener Listener, config Config, logger *slog.Logger) *Handler {
	config.validate()
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		listener: listener,
		config:   config,
		logger:   logger,
	}
}

// HandleVersionChanges delivers the version change of every stream record to
// the listener. This function is designed to be used as an AWS Lambda handler.
func (h *Handler) HandleVersionChanges(ctx context.Context, event events.DynamoDBEvent) error {
	for _, rec := range event.Records {
		if err := h.processRecord(ctx, rec); err != nil {
			h.logger.Error("failed to process record",
				"eventID", rec.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// processRecord processes a single DynamoDB stream record.
func (h *Handler) processRecord(ctx context.Context, rec events.DynamoDBEventRecord) error {
	c, ok := h.change(rec)
	if !ok {
		return nil
	}

	if c.Event == EventModify && c.OldVersion != 0 && c.NewVersion != c.OldVersion+1 {
		h.logger.Warn("version gap",
			"table", c.Table,
			"id", c.ID,
			"oldVersion", c.OldVersion,
			"newVersion", c.NewVersion,
		)
	}

	h.logger.Debug("delivering version change",
		"table", c.Table,
		"id", c.ID,
		"event", c.Event,
		"version", c.NewVersion,
	)

	if h.listener == nil {
		return nil
	}
	return h.listener(ctx, c)
}

// change extracts the Change of rec. It reports false for records that carry
// no deliverable change.
func (h *Handler) change(rec events.DynamoDBEventRecord) (Change, bool) {
	switch rec.EventName {
	case EventInsert, EventModify, EventRemove:
	default:
		return Change{}, false
	}

	c := Change{
		Table: tableFromARN(rec.EventSourceArn),
		Event: rec.EventName,
		ID:    getStringAttr(rec.Change.Keys, h.config.KeyAttribute),
	}
	if c.ID == "" {
		c.ID = getStringAttr(rec.Change.NewImage, h.config.KeyAttribute)
	}
	if c.ID == "" {
		c.ID = getStringAttr(rec.Change.OldImage, h.config.KeyAttribute)
	}
	if c.ID == "" {
		h.logger.Warn("stream record without key",
			"eventID", rec.EventID,
			"table", c.Table,
		)
		return Change{}, false
	}

	c.OldVersion, _ = getVersionAttr(rec.Change.OldImage, h.config.VersionAttribute)
	if c.Event == EventRemove {
		return c, true
	}

	newVersion, ok := getVersionAttr(rec.Change.NewImage, h.config.VersionAttribute)
	if !ok {
		h.logger.Warn("corrupt record image",
			"eventID", rec.EventID,
			"table", c.Table,
			"id", c.ID,
		)
		return Change{}, false
	}
	c.NewVersion = newVersion
	return c, true
}

// tableFromARN extracts the table name from a stream ARN such as
// arn:aws:dynamodb:us-east-1:123456789012:table/notes/stream/2024-01-01T00:00:00.000.
func tableFromARN(arn string) string {
	_, rest, ok := strings.Cut(arn, ":table/")
	if !ok {
		return ""
	}
	table, _, _ := strings.Cut(rest, "/")
	return table
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}

// getVersionAttr extracts a positive version stored as a string or number.
func getVersionAttr(image map[string]events.DynamoDBAttributeValue, key string) (int64, bool) {
	v, ok := image[key]
	if !ok {
		return 0, false
	}

	var raw string
	switch v.DataType() {
	case events.DataTypeString:
		raw = v.String()
	case events.DataTypeNumber:
		raw = v.Number()
	default:
		return 0, false
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
