//go:build e2e

// Package e2e contains end-to-end integration tests using real DynamoDB tables.
// Run with: go test -tags=e2e -v ./e2e/...
package e2e

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/jacentio/vine/record"
	"github.com/jacentio/vine/store"
)

// Test configuration
const (
	// profileEnv optionally names the shared config profile to use.
	profileEnv = "VINE_E2E_PROFILE"

	// Table names - unique per test run to avoid conflicts
	tablePrefix = "vine-e2e-test"
)

var (
	testID      string
	prefix      string
	notesDomain = "notes"

	ddbClient *dynamodb.Client
	testStore *store.Store
)

// --- Test Schema ---

var (
	noteTitle  = record.String("title").Required()
	noteCount  = record.Int("count")
	noteSchema = record.MustSchema("note", noteTitle, noteCount).WithDomain(notesDomain)
)

// --- Test Setup & Teardown ---

func TestMain(m *testing.M) {
	// Generate unique test ID
	testID = uuid.New().String()[:8]
	prefix = fmt.Sprintf("%s-%s-", tablePrefix, testID)

	fmt.Printf("Test ID: %s\n", testID)
	fmt.Printf("Table: %s%s\n", prefix, notesDomain)

	ctx := context.Background()
	var opts []func(*config.LoadOptions) error
	if profile := os.Getenv(profileEnv); profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		fmt.Printf("Failed to load AWS config: %v\n", err)
		os.Exit(1)
	}

	ddbClient = dynamodb.NewFromConfig(cfg)

	if err := createTables(ctx); err != nil {
		fmt.Printf("Failed to create tables: %v\n", err)
		os.Exit(1)
	}

	testStore = store.New(ddbClient, store.Config{TablePrefix: prefix})

	code := m.Run()

	if err := deleteTables(ctx); err != nil {
		fmt.Printf("Failed to delete tables: %v\n", err)
	}

	os.Exit(code)
}

func createTables(ctx context.Context) error {
	fmt.Println("Creating test tables...")
	tableName := prefix + notesDomain

	_, err := ddbClient.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(tableName),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("create table %s: %w", tableName, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(ddbClient)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(tableName)}, 2*time.Minute); err != nil {
		return fmt.Errorf("wait for table %s: %w", tableName, err)
	}

	fmt.Println("Tables ready")
	return nil
}

func deleteTables(ctx context.Context) error {
	fmt.Println("Deleting test tables...")
	_, err := ddbClient.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: aws.String(prefix + notesDomain),
	})
	return err
}

func notes() record.AttributeStore {
	return testStore.Domain(noteSchema.Domain())
}

// --- Tests ---

func TestCreateAndReload(t *testing.T) {
	ctx := context.Background()

	n := record.New(notes(), noteSchema)
	if err := record.SetField(ctx, n, noteTitle, "A"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := n.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if n.ID() == "" || n.Version() != 1 {
		t.Fatalf("expected id and version 1, got %q/%d", n.ID(), n.Version())
	}

	other := record.Open(notes(), noteSchema, n.ID())
	title, err := record.GetField(ctx, other, noteTitle)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if title != "A" || other.Version() != 1 {
		t.Errorf("expected 'A' at version 1, got %q at %d", title, other.Version())
	}
}

func TestUpdate_Scenario(t *testing.T) {
	ctx := context.Background()

	n := record.New(notes(), noteSchema)
	_ = record.SetField(ctx, n, noteTitle, "A")
	if err := n.Save(ctx); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := record.SetField(ctx, n, noteTitle, "B"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := n.Save(ctx); err != nil {
		t.Fatalf("update: %v", err)
	}
	if n.Version() != 2 {
		t.Errorf("expected version 2, got %d", n.Version())
	}

	other := record.Open(notes(), noteSchema, n.ID())
	title, err := record.GetField(ctx, other, noteTitle)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if title != "B" || other.Version() != 2 {
		t.Errorf("expected 'B' at version 2, got %q at %d", title, other.Version())
	}
}

func TestUpdate_OptimisticLockFailure(t *testing.T) {
	ctx := context.Background()

	n := record.New(notes(), noteSchema)
	_ = record.SetField(ctx, n, noteTitle, "A")
	if err := n.Save(ctx); err != nil {
		t.Fatalf("create: %v", err)
	}

	a := record.Open(notes(), noteSchema, n.ID())
	b := record.Open(notes(), noteSchema, n.ID())
	_ = record.SetField(ctx, a, noteCount, 1)
	_ = record.SetField(ctx, b, noteCount, 2)

	if err := a.Save(ctx); err != nil {
		t.Fatalf("save a: %v", err)
	}
	err := b.Save(ctx)
	if !errors.Is(err, record.ErrConcurrentModification) {
		t.Errorf("expected ErrConcurrentModification, got %v", err)
	}
}

func TestRefresh_NotFound(t *testing.T) {
	r := record.Open(notes(), noteSchema, record.NewID())

	err := r.Refresh(context.Background(), false)
	if !errors.Is(err, record.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNewFromAWS(t *testing.T) {
	ctx := context.Background()
	var opts []func(*config.LoadOptions) error
	if profile := os.Getenv(profileEnv); profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	s, err := store.NewFromAWS(ctx, store.Config{TablePrefix: prefix}, opts...)
	if err != nil {
		t.Fatalf("new from aws: %v", err)
	}

	n := record.New(s.Domain(notesDomain), noteSchema)
	_ = record.SetField(ctx, n, noteTitle, "via NewFromAWS")
	if err := n.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
}
