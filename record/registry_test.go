package record_test

import (
	"errors"
	"testing"

	"github.com/jacentio/vine/memstore"
	"github.com/jacentio/vine/record"
)

func TestNewRegistry(t *testing.T) {
	r := record.NewRegistry()
	if r == nil {
		t.Fatal("expected non-nil registry")
	}
	if len(r.All()) != 0 {
		t.Errorf("expected empty registry, got %d schemas", len(r.All()))
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := record.NewRegistry()
	note := record.MustSchema("note", record.String("title"))
	task := record.MustSchema("task", record.Bool("done"))

	r.MustRegister(note)
	r.MustRegister(task)

	got, ok := r.Lookup("note")
	if !ok || got != note {
		t.Errorf("expected note schema, got %v", got)
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Error("expected missing type to be absent")
	}

	all := r.All()
	if len(all) != 2 || all[0] != note || all[1] != task {
		t.Errorf("expected [note task] in registration order, got %v", all)
	}
}

func TestRegistry_DuplicateType(t *testing.T) {
	r := record.NewRegistry()
	r.MustRegister(record.MustSchema("note"))

	if err := r.Register(record.MustSchema("note")); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestRegistry_NewAndOpen(t *testing.T) {
	reg := record.NewRegistry()
	reg.MustRegister(record.MustSchema("note", record.String("title")))
	ms := memstore.New()

	n, err := reg.New(ms, "note")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if n.Schema().TypeName() != "note" || n.ID() != "" {
		t.Errorf("unexpected record %q/%q", n.Schema().TypeName(), n.ID())
	}

	o, err := reg.Open(ms, "note", "abc")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if o.ID() != "abc" || o.Loaded() {
		t.Errorf("expected unloaded handle on abc, got id=%q loaded=%v", o.ID(), o.Loaded())
	}

	if _, err := reg.New(ms, "missing"); !errors.Is(err, record.ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
	if _, err := reg.Open(ms, "missing", "abc"); !errors.Is(err, record.ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
}
