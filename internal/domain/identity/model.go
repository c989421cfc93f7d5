package identity

import (
	"time"

	"github.com/google/uuid"
)

// Roles a platform account can hold. RoleAdmin additionally passes every
// role gate.
const (
	RoleAdmin      = "admin"
	RolePhysician  = "physician"
	RoleNurse      = "nurse"
	RolePharmacist = "pharmacist"
	RoleFrontDesk  = "front_desk"
	RolePatient    = "patient"
)

// User represents a platform account: clinical staff, front desk, or a
// patient login.
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Role      string    `db:"role" json:"role"`
	Email     string    `db:"email" json:"email,omitempty"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	Specialty *string   `db:"specialty" json:"specialty,omitempty"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// EntityID returns the stable identity used by cache reconciliation.
func (u *User) EntityID() uuid.UUID { return u.ID }

// Patient represents a patient profile. Contact fields are PHI and are
// stored encrypted.
type Patient struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Name        string     `db:"name" json:"name"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Sex         string     `db:"sex" json:"sex,omitempty"`
	Phone       string     `db:"phone" json:"phone,omitempty"`
	Email       string     `db:"email" json:"email,omitempty"`
	Address     string     `db:"address" json:"address,omitempty"`
	BloodType   *string    `db:"blood_type" json:"blood_type,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// EntityID returns the stable identity used by cache reconciliation.
func (p *Patient) EntityID() uuid.UUID { return p.ID }

// Age returns the patient's age in whole years at the given time, or -1 when
// the date of birth is unknown.
func (p *Patient) Age(now time.Time) int {
	if p.DateOfBirth == nil {
		return -1
	}
	years := now.Year() - p.DateOfBirth.Year()
	anniversary := p.DateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

var validRoles = map[string]bool{
	RoleAdmin: true, RolePhysician: true, RoleNurse: true,
	RolePharmacist: true, RoleFrontDesk: true, RolePatient: true,
}

// ValidRole reports whether the role string is one of the platform roles.
func ValidRole(role string) bool { return validRoles[role] }
