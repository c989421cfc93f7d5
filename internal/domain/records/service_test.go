package records

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caresync/caresync/internal/domain/scheduling"
	"github.com/caresync/caresync/internal/platform/phi"
)

type mockRecordRepo struct {
	records map[uuid.UUID]*Record
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{records: make(map[uuid.UUID]*Record)}
}

func clone(r *Record) *Record {
	cp := *r
	if r.Payload != nil {
		cp.Payload = make(map[string]interface{}, len(r.Payload))
		for k, v := range r.Payload {
			cp.Payload[k] = v
		}
	}
	return &cp
}

func (m *mockRecordRepo) Create(_ context.Context, r *Record) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	m.records[r.ID] = clone(r)
	return nil
}

func (m *mockRecordRepo) GetByID(_ context.Context, id uuid.UUID) (*Record, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return clone(r), nil
}

func (m *mockRecordRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("not found")
	}
	delete(m.records, id)
	return nil
}

func (m *mockRecordRepo) List(_ context.Context, limit, offset int) ([]*Record, int, error) {
	var items []*Record
	for _, r := range m.records {
		items = append(items, clone(r))
	}
	return items, len(items), nil
}

func (m *mockRecordRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	var items []*Record
	for _, r := range m.records {
		if r.PatientID == patientID {
			items = append(items, clone(r))
		}
	}
	return items, len(items), nil
}

type mockMarker struct {
	marked []uuid.UUID
	err    error
}

func (m *mockMarker) MarkServicesRendered(_ context.Context, patientID uuid.UUID) (*scheduling.Appointment, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.marked = append(m.marked, patientID)
	return &scheduling.Appointment{PatientID: patientID, ServicesRendered: true}, nil
}

const testPHIKey = "abababababababababababababababababababababababababababababababab"

func newTestService(t *testing.T, key string) (*Service, *mockRecordRepo, *mockMarker) {
	t.Helper()
	phiSvc, err := phi.NewService(key, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	repo := newMockRecordRepo()
	marker := &mockMarker{}
	return NewService(repo, marker, phiSvc, zerolog.Nop()), repo, marker
}

func validRecord() *Record {
	return &Record{
		PatientID:  uuid.New(),
		AuthorID:   uuid.New(),
		AuthorRole: "physician",
		Unit:       "cardiology",
		Payload: map[string]interface{}{
			"diagnosis": "Essential hypertension",
			"visitType": "consultation",
		},
	}
}

func TestDispatchValidation(t *testing.T) {
	svc, _, _ := newTestService(t, "")

	cases := []struct {
		name   string
		mutate func(*Record)
	}{
		{"missing patient", func(r *Record) { r.PatientID = uuid.Nil }},
		{"missing author", func(r *Record) { r.AuthorID = uuid.Nil }},
		{"missing role", func(r *Record) { r.AuthorRole = "" }},
		{"missing unit", func(r *Record) { r.Unit = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := validRecord()
			tc.mutate(rec)
			if err := svc.Dispatch(context.Background(), rec); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDispatchEncryptsPayloadAtRest(t *testing.T) {
	svc, repo, _ := newTestService(t, testPHIKey)

	rec := validRecord()
	if err := svc.Dispatch(context.Background(), rec); err != nil {
		t.Fatal(err)
	}

	stored := repo.records[rec.ID]
	diag, _ := stored.Payload["diagnosis"].(string)
	if diag == "Essential hypertension" || !strings.Contains(diag, ":") {
		t.Errorf("diagnosis not encrypted at rest: %q", diag)
	}
	if stored.Payload["visitType"] != "consultation" {
		t.Error("non-PHI payload field was modified")
	}

	// The caller's copy keeps plaintext.
	if rec.Payload["diagnosis"] != "Essential hypertension" {
		t.Errorf("caller copy mutated: %v", rec.Payload["diagnosis"])
	}

	got, err := svc.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Payload["diagnosis"] != "Essential hypertension" {
		t.Errorf("payload not decrypted on read: %v", got.Payload["diagnosis"])
	}
}

func TestDispatchMarksServicesRendered(t *testing.T) {
	svc, _, marker := newTestService(t, "")

	rec := validRecord()
	if err := svc.Dispatch(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	if len(marker.marked) != 1 || marker.marked[0] != rec.PatientID {
		t.Errorf("expected services-rendered mark for %s, got %v", rec.PatientID, marker.marked)
	}
}

func TestDispatchSurvivesMarkerFailure(t *testing.T) {
	svc, repo, marker := newTestService(t, "")
	marker.err = fmt.Errorf("scheduling unavailable")

	rec := validRecord()
	if err := svc.Dispatch(context.Background(), rec); err != nil {
		t.Fatalf("dispatch should not fail when marking fails: %v", err)
	}
	if _, ok := repo.records[rec.ID]; !ok {
		t.Error("record was not persisted")
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	svc, repo, _ := newTestService(t, "")

	rec := validRecord()
	if err := svc.Dispatch(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(context.Background(), rec.ID); err != nil {
		t.Fatal(err)
	}
	if len(repo.records) != 0 {
		t.Error("record still present after delete")
	}
	if err := svc.Delete(context.Background(), rec.ID); err == nil {
		t.Error("expected error deleting a missing record")
	}
}
