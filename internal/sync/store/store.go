// Package store is the client-side replica of the server's collections.
// Views read it synchronously; the sync engine is its only mutator.
package store

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Collection names one replicated dataset. The constants below are the
// full set; stringly-typed lookups are resolved once at composition time.
type Collection string

const (
	Users         Collection = "users"
	Patients      Collection = "patients"
	Records       Collection = "records"
	Prescriptions Collection = "prescriptions"
	Appointments  Collection = "appointments"
	Notifications Collection = "notifications"
	Messages      Collection = "messages"
	AuditLog      Collection = "auditlog"
	Vitals        Collection = "vitals"
)

// All lists every collection in snapshot order.
func All() []Collection {
	return []Collection{
		Users, Patients, Records, Prescriptions, Appointments,
		Notifications, Messages, AuditLog, Vitals,
	}
}

// ServerKey maps a collection to the key the snapshot endpoint uses.
func (c Collection) ServerKey() string {
	if c == AuditLog {
		return "activity_logs"
	}
	return string(c)
}

// Entity is anything the store can hold.
type Entity interface {
	EntityID() uuid.UUID
}

// Store holds per-collection entity sequences. Access is serialized by a
// single mutex; collections are small working sets, not bulk datasets.
type Store struct {
	mu   sync.Mutex
	data map[Collection][]Entity
}

func New() *Store {
	return &Store{data: make(map[Collection][]Entity)}
}

// Snapshot returns a copy of the collection's current slice. Entities are
// shared pointers; callers must treat them as read-only.
func (s *Store) Snapshot(c Collection) []Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Entity, len(s.data[c]))
	copy(items, s.data[c])
	return items
}

// Find returns the entity with the given id, if present.
func (s *Store) Find(c Collection, id uuid.UUID) (Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.data[c] {
		if e.EntityID() == id {
			return e, true
		}
	}
	return nil, false
}

// Append adds an entity to the end of the collection.
func (s *Store) Append(c Collection, e Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[c] = append(s.data[c], e)
}

// Update replaces the entity with the same id in place, preserving
// position. Returns false when no entity matches.
func (s *Store) Update(c Collection, e Entity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.data[c] {
		if existing.EntityID() == e.EntityID() {
			s.data[c][i] = e
			return true
		}
	}
	return false
}

// Remove deletes the entity with the given id. Returns false when absent.
func (s *Store) Remove(c Collection, id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.data[c] {
		if existing.EntityID() == id {
			s.data[c] = append(s.data[c][:i], s.data[c][i+1:]...)
			return true
		}
	}
	return false
}

// Replace swaps the whole collection for the given slice. Used by
// reconciliation when the server copy diverges.
func (s *Store) Replace(c Collection, items []Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]Entity, len(items))
	copy(cp, items)
	s.data[c] = cp
}

// Serialized returns a structural JSON serialization of the collection,
// used by the reconciler to detect divergence without field-by-field
// comparison.
func (s *Store) Serialized(c Collection) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.data[c]
	if len(items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}
