package scheduling

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockAppointmentRepo struct {
	appointments map[uuid.UUID]*Appointment
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{appointments: make(map[uuid.UUID]*Appointment)}
}

func (m *mockAppointmentRepo) Create(_ context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	m.appointments[a.ID] = &cp
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *a
	return &cp, nil
}

func (m *mockAppointmentRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.appointments[a.ID]; !ok {
		return fmt.Errorf("not found")
	}
	cp := *a
	m.appointments[a.ID] = &cp
	return nil
}

func (m *mockAppointmentRepo) List(_ context.Context, limit, offset int) ([]*Appointment, int, error) {
	var items []*Appointment
	for _, a := range m.appointments {
		cp := *a
		items = append(items, &cp)
	}
	return items, len(items), nil
}

func (m *mockAppointmentRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var items []*Appointment
	for _, a := range m.appointments {
		if a.PatientID == patientID {
			cp := *a
			items = append(items, &cp)
		}
	}
	return items, len(items), nil
}

func (m *mockAppointmentRepo) ListByProfessional(_ context.Context, professionalID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var items []*Appointment
	for _, a := range m.appointments {
		if a.ProfessionalID == professionalID {
			cp := *a
			items = append(items, &cp)
		}
	}
	return items, len(items), nil
}

func (m *mockAppointmentRepo) FindOpenByPatient(_ context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	var items []*Appointment
	for _, a := range m.appointments {
		if a.PatientID == patientID && a.Open() {
			cp := *a
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ScheduledAt.Before(items[j].ScheduledAt) })
	return items, nil
}

func newAppointment(t *testing.T, svc *Service) *Appointment {
	t.Helper()
	a := &Appointment{
		PatientID:      uuid.New(),
		ProfessionalID: uuid.New(),
		ScheduledAt:    time.Now().Add(24 * time.Hour),
		AgreedAmount:   50000,
	}
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	return a
}

func TestCreateDefaultsAndValidation(t *testing.T) {
	repo := newMockAppointmentRepo()
	svc := NewService(repo)

	a := newAppointment(t, svc)
	if a.Status != StatusUpcoming {
		t.Errorf("expected default status Upcoming, got %s", a.Status)
	}
	if a.BalanceDue != 50000 || a.PaymentStatus != PaymentUnpaid {
		t.Errorf("balance not derived: %+v", a)
	}

	if err := svc.Create(context.Background(), &Appointment{ProfessionalID: uuid.New(), ScheduledAt: time.Now()}); err == nil {
		t.Error("expected error for missing patient_id")
	}
	if err := svc.Create(context.Background(), &Appointment{
		PatientID: uuid.New(), ProfessionalID: uuid.New(), ScheduledAt: time.Now(),
		Status: StatusCompleted,
	}); err == nil {
		t.Error("expected error for non-Upcoming initial status")
	}
}

func TestAcceptFlow(t *testing.T) {
	repo := newMockAppointmentRepo()
	svc := NewService(repo)
	a := newAppointment(t, svc)

	got, err := svc.Accept(context.Background(), a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusInProgress {
		t.Errorf("expected In Progress, got %s", got.Status)
	}

	// Accepting twice is rejected.
	if _, err := svc.Accept(context.Background(), a.ID); err == nil {
		t.Error("expected error accepting an In Progress appointment")
	}
}

func TestCancelCompletedRejected(t *testing.T) {
	repo := newMockAppointmentRepo()
	svc := NewService(repo)
	a := newAppointment(t, svc)

	if _, err := svc.Accept(context.Background(), a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Complete(context.Background(), a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Cancel(context.Background(), a.ID); err == nil {
		t.Error("expected error cancelling a completed appointment")
	}
}

func TestUpdateEditsDetailsButNotStatus(t *testing.T) {
	repo := newMockAppointmentRepo()
	svc := NewService(repo)
	a := newAppointment(t, svc)

	a.AgreedAmount = 20000
	if err := svc.Update(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.AgreedAmount != 20000 || got.BalanceDue != 20000 {
		t.Errorf("balance not re-derived: %+v", got)
	}

	got.Status = StatusCompleted
	if err := svc.Update(context.Background(), got); err == nil {
		t.Error("expected error for status change through update")
	}
}

func TestRecordPayment(t *testing.T) {
	repo := newMockAppointmentRepo()
	svc := NewService(repo)
	a := newAppointment(t, svc)

	got, err := svc.RecordPayment(context.Background(), a.ID, 20000)
	if err != nil {
		t.Fatal(err)
	}
	if got.BalanceDue != 30000 || got.PaymentStatus != PaymentPartial {
		t.Errorf("unexpected after partial payment: %+v", got)
	}

	// Overpayment clamps the balance at zero.
	got, err = svc.RecordPayment(context.Background(), a.ID, 40000)
	if err != nil {
		t.Fatal(err)
	}
	if got.BalanceDue != 0 || got.PaymentStatus != PaymentPaid {
		t.Errorf("unexpected after overpayment: %+v", got)
	}

	if _, err := svc.RecordPayment(context.Background(), a.ID, 0); err == nil {
		t.Error("expected error for non-positive amount")
	}
}

func TestMarkServicesRendered(t *testing.T) {
	repo := newMockAppointmentRepo()
	svc := NewService(repo)
	a := newAppointment(t, svc)

	got, err := svc.MarkServicesRendered(context.Background(), a.PatientID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || !got.ServicesRendered {
		t.Fatalf("expected services rendered flag set, got %+v", got)
	}
	// Status does not move; the flag is independent of the state machine.
	if got.Status != StatusUpcoming {
		t.Errorf("status should be unchanged, got %s", got.Status)
	}

	// No open appointment is not an error.
	got, err = svc.MarkServicesRendered(context.Background(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected nil for patient with no open appointment, got %+v", got)
	}
}
