// Package record maps typed records onto a schema-less key/attribute store.
//
// Each record lives under one id as a bag of string attributes. The
// VersionAttribute ("_version") holds a counter that is used as a
// compare-and-swap token: every save of a loaded record is conditional on
// the store still holding the version the record was loaded at.
//
// # Schemas
//
// A record type is declared as a [Schema] of typed fields:
//
//	var (
//	    noteTitle = record.String("title").Required().Rule(`len(value) <= 200`)
//	    noteCount = record.Int("count")
//	    notes     = record.MustSchema("note", noteTitle, noteCount)
//	)
//
// Fields are read and written through [GetField] and [SetField], or by name
// through [Record.Get] and [Record.Set].
//
// # Lifecycle
//
//	n := record.New(store, notes)          // no id, version 0
//	_ = record.SetField(ctx, n, noteTitle, "A")
//	_ = n.Save(ctx)                        // id assigned, version 1
//
//	m := record.Open(store, notes, n.ID()) // not loaded
//	title, _ := record.GetField(ctx, m, noteTitle) // one consistent read
//
// # Errors
//
//   - [ErrNoIdentifier] - refresh of a record without an id
//   - [ErrNotFound] - no attributes stored under the id
//   - [ErrCorruptRecord] - stored version missing or invalid
//   - [ErrConcurrentModification] - another writer saved first; refresh and retry
//   - [ErrImmutableField] - write to a reserved field
//   - [ErrValidation] - value rejected by a field validator
//   - [ErrFieldNotFound] - field absent from the loaded attributes
//   - [ErrNotLoaded] - save of a record opened by id but never loaded
//
// Nothing is retried automatically.
package record
