package store

import (
	"testing"

	"github.com/google/uuid"
)

type fakeEntity struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func (f *fakeEntity) EntityID() uuid.UUID { return f.ID }

func TestAppendFindRemove(t *testing.T) {
	s := New()
	e := &fakeEntity{ID: uuid.New(), Name: "one"}
	s.Append(Records, e)

	got, ok := s.Find(Records, e.ID)
	if !ok {
		t.Fatal("entity not found after append")
	}
	if got.(*fakeEntity).Name != "one" {
		t.Errorf("wrong entity: %+v", got)
	}

	if !s.Remove(Records, e.ID) {
		t.Error("remove reported missing")
	}
	if _, ok := s.Find(Records, e.ID); ok {
		t.Error("entity still present after remove")
	}
	if s.Remove(Records, e.ID) {
		t.Error("second remove should report missing")
	}
}

func TestUpdatePreservesPosition(t *testing.T) {
	s := New()
	a := &fakeEntity{ID: uuid.New(), Name: "a"}
	b := &fakeEntity{ID: uuid.New(), Name: "b"}
	c := &fakeEntity{ID: uuid.New(), Name: "c"}
	for _, e := range []*fakeEntity{a, b, c} {
		s.Append(Records, e)
	}

	if !s.Update(Records, &fakeEntity{ID: b.ID, Name: "b2"}) {
		t.Fatal("update reported missing")
	}
	items := s.Snapshot(Records)
	if len(items) != 3 || items[1].(*fakeEntity).Name != "b2" {
		t.Errorf("update moved or dropped entities: %+v", items)
	}

	if s.Update(Records, &fakeEntity{ID: uuid.New()}) {
		t.Error("update of unknown id should report missing")
	}
}

func TestReplaceAndSerialized(t *testing.T) {
	s := New()
	if s.Serialized(Messages) != "[]" {
		t.Errorf("empty collection should serialize to [], got %s", s.Serialized(Messages))
	}

	s.Append(Messages, &fakeEntity{ID: uuid.New(), Name: "x"})
	before := s.Serialized(Messages)

	s.Replace(Messages, []Entity{
		&fakeEntity{ID: uuid.New(), Name: "y"},
		&fakeEntity{ID: uuid.New(), Name: "z"},
	})
	after := s.Serialized(Messages)

	if before == after {
		t.Error("serialization did not change after replace")
	}
	if len(s.Snapshot(Messages)) != 2 {
		t.Error("replace did not swap contents")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New()
	s.Append(Users, &fakeEntity{ID: uuid.New()})
	snap := s.Snapshot(Users)
	snap[0] = nil
	if got := s.Snapshot(Users); got[0] == nil {
		t.Error("mutating a snapshot leaked into the store")
	}
}

func TestServerKeys(t *testing.T) {
	if AuditLog.ServerKey() != "activity_logs" {
		t.Errorf("auditlog server key: %s", AuditLog.ServerKey())
	}
	if Records.ServerKey() != "records" {
		t.Errorf("records server key: %s", Records.ServerKey())
	}
	if len(All()) != 9 {
		t.Errorf("expected 9 collections, got %d", len(All()))
	}
}
