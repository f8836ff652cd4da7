// Package store provides DynamoDB-backed attribute storage for records.
//
// Each record domain maps to one table whose hash key ([Config.KeyAttribute])
// holds the record id. Attributes are stored as string values and written
// with UpdateItem, so a put merges into the existing item. Conditional puts
// use a ConditionExpression on the expected attribute and report a failed
// check as [record.ErrConditionFailed].
//
// # Usage
//
//	s, err := store.NewFromAWS(ctx, store.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	notes := s.Domain("note")
//	n := record.New(notes, noteSchema)
//
// # Tables
//
// A domain table needs only a string hash key:
//
//	KeySchema:            [{AttributeName: "id", KeyType: HASH}]
//	AttributeDefinitions: [{AttributeName: "id", AttributeType: S}]
//
// Items whose [Config.TTLAttribute] has passed are read as absent.
package store
