package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caresync/caresync/internal/domain/audit"
	"github.com/caresync/caresync/internal/platform/phi"
	"github.com/caresync/caresync/internal/sync/api"
	"github.com/caresync/caresync/internal/sync/engine"
	"github.com/caresync/caresync/internal/sync/signal"
	"github.com/caresync/caresync/internal/sync/store"
)

type failingRemote struct{ err error }

func (f *failingRemote) Snapshot(_ context.Context) (*api.SnapshotPayload, error) {
	return &api.SnapshotPayload{Data: map[string]json.RawMessage{}}, nil
}

func (f *failingRemote) Post(_ context.Context, _ string, _, _ interface{}) error {
	return f.err
}

func (f *failingRemote) Put(_ context.Context, _ string, _, _ interface{}) error {
	return f.err
}

func (f *failingRemote) Delete(_ context.Context, _ string) error { return f.err }

func newRecorder(t *testing.T, remote engine.Remote) (*Recorder, *store.Store) {
	t.Helper()
	phiSvc, err := phi.NewService("", zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	st := store.New()
	eng := engine.New(st, signal.NewBus(), remote, phiSvc, zerolog.Nop())
	return NewRecorder(eng, uuid.New(), "Dr. Ada", zerolog.Nop()), st
}

func TestRecordSurvivesServerFailure(t *testing.T) {
	rec, st := newRecorder(t, &failingRemote{err: fmt.Errorf("server down")})

	rec.ViewedDocument(context.Background(), "doc-1", "Lab Results", "records")

	entries := st.Snapshot(store.AuditLog)
	if len(entries) != 1 {
		t.Fatalf("expected exactly one audit entry, got %d", len(entries))
	}
	entry := entries[0].(*audit.Entry)
	if entry.Action != ActionViewedDocument {
		t.Errorf("action = %s", entry.Action)
	}
	if entry.ActorName != "Dr. Ada" {
		t.Errorf("actor name = %s", entry.ActorName)
	}
	if entry.Timestamp.IsZero() {
		t.Error("timestamp not stamped")
	}
}

func TestEveryAccessProducesOneEntry(t *testing.T) {
	rec, st := newRecorder(t, &failingRemote{})

	rec.ViewedDocument(context.Background(), "doc-1", "Lab Results", "records")
	rec.AccessedFolder(context.Background(), "folder-9", "Cardiology", "records")
	rec.ViewedDocument(context.Background(), "doc-1", "Lab Results", "records")

	if got := len(st.Snapshot(store.AuditLog)); got != 3 {
		t.Errorf("expected 3 entries, got %d", got)
	}
}
