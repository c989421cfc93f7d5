package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/caresync/caresync/internal/platform/phi"
)

type Service struct {
	users    UserRepository
	patients PatientRepository
	phi      *phi.Service
}

func NewService(users UserRepository, patients PatientRepository, phiSvc *phi.Service) *Service {
	return &Service{users: users, patients: patients, phi: phiSvc}
}

// -- Users --

func (s *Service) CreateUser(ctx context.Context, u *User) error {
	if u.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !ValidRole(u.Role) {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	u.IsActive = true
	if err := s.encryptUser(u); err != nil {
		return err
	}
	return s.users.Create(ctx, u)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.decryptUser(u)
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, u *User) error {
	if u.Role != "" && !ValidRole(u.Role) {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	if err := s.encryptUser(u); err != nil {
		return err
	}
	return s.users.Update(ctx, u)
}

func (s *Service) ListUsers(ctx context.Context, role string, limit, offset int) ([]*User, int, error) {
	var (
		items []*User
		total int
		err   error
	)
	if role != "" {
		items, total, err = s.users.ListByRole(ctx, role, limit, offset)
	} else {
		items, total, err = s.users.List(ctx, limit, offset)
	}
	if err != nil {
		return nil, 0, err
	}
	for _, u := range items {
		s.decryptUser(u)
	}
	return items, total, nil
}

func (s *Service) encryptUser(u *User) error {
	var err error
	if u.Email, err = s.phi.EncryptField(u.Email); err != nil {
		return fmt.Errorf("encrypt email: %w", err)
	}
	if u.Phone, err = s.phi.EncryptField(u.Phone); err != nil {
		return fmt.Errorf("encrypt phone: %w", err)
	}
	return nil
}

func (s *Service) decryptUser(u *User) {
	u.Email = s.phi.DecryptField(u.Email)
	u.Phone = s.phi.DecryptField(u.Phone)
}

// -- Patients --

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := s.encryptPatient(p); err != nil {
		return err
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.decryptPatient(p)
	return p, nil
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("id is required")
	}
	if err := s.encryptPatient(p); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	items, total, err := s.patients.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, p := range items {
		s.decryptPatient(p)
	}
	return items, total, nil
}

func (s *Service) encryptPatient(p *Patient) error {
	var err error
	if p.Phone, err = s.phi.EncryptField(p.Phone); err != nil {
		return fmt.Errorf("encrypt phone: %w", err)
	}
	if p.Email, err = s.phi.EncryptField(p.Email); err != nil {
		return fmt.Errorf("encrypt email: %w", err)
	}
	if p.Address, err = s.phi.EncryptField(p.Address); err != nil {
		return fmt.Errorf("encrypt address: %w", err)
	}
	return nil
}

func (s *Service) decryptPatient(p *Patient) {
	p.Phone = s.phi.DecryptField(p.Phone)
	p.Email = s.phi.DecryptField(p.Email)
	p.Address = s.phi.DecryptField(p.Address)
}
