package identity

import (
	"testing"
	"time"
)

func TestPatientAge(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	dob := time.Date(1990, 9, 15, 0, 0, 0, 0, time.UTC)
	p := Patient{DateOfBirth: &dob}
	if got := p.Age(now); got != 35 {
		t.Errorf("expected 35 before birthday, got %d", got)
	}

	dob = time.Date(1990, 8, 31, 0, 0, 0, 0, time.UTC)
	if got := p.Age(now); got != 36 {
		t.Errorf("expected 36 on birthday, got %d", got)
	}

	infant := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	p = Patient{DateOfBirth: &infant}
	if got := p.Age(now); got != 0 {
		t.Errorf("expected 0 for infant, got %d", got)
	}

	p = Patient{}
	if got := p.Age(now); got != -1 {
		t.Errorf("expected -1 for unknown dob, got %d", got)
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RolePhysician, RoleNurse, RolePharmacist, RoleFrontDesk, RolePatient} {
		if !ValidRole(role) {
			t.Errorf("expected %s to be valid", role)
		}
	}
	if ValidRole("superuser") {
		t.Error("superuser should not be a valid role")
	}
}
