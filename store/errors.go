package store

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/jacentio/vine/record"
)

// ErrNoAttributes is returned when a put carries nothing to write.
var ErrNoAttributes = errors.New("vine: no attributes to write")

// ErrReservedAttribute is returned when a put names the table's key or TTL
// attribute, which the store manages itself.
var ErrReservedAttribute = errors.New("vine: attribute is reserved by the store")

// mapPutError maps DynamoDB errors for conditional puts.
func mapPutError(table string, err error) error {
	if err == nil {
		return nil
	}

	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return record.ErrConditionFailed
	}
	return wrapAPIError("update item", table, err)
}

// wrapAPIError adds the table and the service error code to err.
func wrapAPIError(op, table string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s %s: %s: %w", op, table, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("%s %s: %w", op, table, err)
}
