package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/vine/record"
)

// API is the subset of the DynamoDB client used by the Store.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// Store provides record attribute storage in DynamoDB tables.
type Store struct {
	client API
	config Config
	logger *slog.Logger
	now    func() time.Time
}

// New creates a new Store instance.
func New(client API, config Config) *Store {
	config.validate()
	return &Store{
		client: client,
		config: config,
		logger: slog.Default(),
		now:    time.Now,
	}
}

// NewFromAWS creates a Store with a DynamoDB client built from the default
// AWS configuration chain.
func NewFromAWS(ctx context.Context, cfg Config, optFns ...func(*config.LoadOptions) error) (*Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return New(dynamodb.NewFromConfig(awsCfg), cfg), nil
}

// SetLogger sets the logger. A nil logger is ignored.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Config returns the store configuration with defaults applied.
func (s *Store) Config() Config {
	return s.config
}

// Domain returns the attribute store for one domain.
func (s *Store) Domain(name string) *Domain {
	return &Domain{store: s, table: s.config.TablePrefix + name}
}

// Domain is a record.AttributeStore backed by one DynamoDB table.
type Domain struct {
	store *Store
	table string
}

var _ record.AttributeStore = (*Domain)(nil)

// TableName returns the DynamoDB table name.
func (d *Domain) TableName() string {
	return d.table
}

func (d *Domain) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		d.store.config.KeyAttribute: &types.AttributeValueMemberS{Value: id},
	}
}

// GetAttributes reads all attributes of id. A missing or expired item yields
// an empty map.
func (d *Domain) GetAttributes(ctx context.Context, id string, consistentRead bool) (record.Attributes, error) {
	result, err := d.store.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.table),
		Key:            d.key(id),
		ConsistentRead: aws.Bool(consistentRead),
	})
	if err != nil {
		return nil, wrapAPIError("get item", d.table, err)
	}
	if result.Item == nil {
		return record.Attributes{}, nil
	}
	if IsExpired(result.Item, d.store.config.TTLAttribute, d.store.now()) {
		return record.Attributes{}, nil
	}

	return d.unmarshalAttributes(id, result.Item), nil
}

// PutAttributes merges attrs into the item for id, creating it if absent.
// With expected set the update is conditional on that attribute's value,
// matching either its string or number form. Attributes named like the key
// or TTL attribute are rejected with ErrReservedAttribute.
func (d *Domain) PutAttributes(ctx context.Context, id string, attrs record.Attributes, expected *record.Expected) error {
	names := make([]string, 0, len(attrs))
	for k := range attrs {
		if k == d.store.config.KeyAttribute || k == d.store.config.TTLAttribute {
			return fmt.Errorf("%w: %s", ErrReservedAttribute, k)
		}
		names = append(names, k)
	}
	if len(names) == 0 {
		return ErrNoAttributes
	}
	slices.Sort(names)

	values, err := attributevalue.MarshalMap(attrs)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}

	setClauses := make([]string, 0, len(names))
	exprNames := make(map[string]string, len(names)+1)
	exprValues := make(map[string]types.AttributeValue, len(names)+1)
	for i, k := range names {
		nameKey := fmt.Sprintf("#attr%d", i)
		valueKey := fmt.Sprintf(":val%d", i)
		exprNames[nameKey] = k
		exprValues[valueKey] = values[k]
		setClauses = append(setClauses, fmt.Sprintf("%s = %s", nameKey, valueKey))
	}

	input := &dynamodb.UpdateItemInput{
		TableName:        aws.String(d.table),
		Key:              d.key(id),
		UpdateExpression: aws.String("SET " + strings.Join(setClauses, ", ")),
	}
	if expected != nil {
		exprNames["#expected"] = expected.Name
		exprValues[":expected"] = &types.AttributeValueMemberS{Value: expected.Value}
		input.ConditionExpression = aws.String("#expected = :expected")
		// Other writers may have stored a numeric value as N.
		if _, err := strconv.ParseInt(expected.Value, 10, 64); err == nil {
			exprValues[":expectedN"] = &types.AttributeValueMemberN{Value: expected.Value}
			input.ConditionExpression = aws.String("#expected IN (:expected, :expectedN)")
		}
	}
	input.ExpressionAttributeNames = exprNames
	input.ExpressionAttributeValues = exprValues

	_, err = d.store.client.UpdateItem(ctx, input)
	err = mapPutError(d.table, err)
	if expected != nil && errors.Is(err, record.ErrConditionFailed) {
		d.store.logger.Debug("conditional put rejected",
			"table", d.table,
			"id", id,
			"expected", expected.Value,
		)
	}
	return err
}

// unmarshalAttributes converts a DynamoDB item to record attributes.
// The key and TTL attributes are dropped; numbers and booleans are kept in their string
// form and other types are skipped.
func (d *Domain) unmarshalAttributes(id string, item map[string]types.AttributeValue) record.Attributes {
	attrs := make(record.Attributes, len(item))
	for k, v := range item {
		if k == d.store.config.KeyAttribute || k == d.store.config.TTLAttribute {
			continue
		}
		switch v := v.(type) {
		case *types.AttributeValueMemberS:
			attrs[k] = v.Value
		case *types.AttributeValueMemberN:
			attrs[k] = v.Value
		case *types.AttributeValueMemberBOOL:
			attrs[k] = strconv.FormatBool(v.Value)
		default:
			d.store.logger.Debug("skipping non-scalar attribute",
				"table", d.table,
				"id", id,
				"attribute", k,
			)
		}
	}
	return attrs
}
