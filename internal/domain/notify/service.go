package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/caresync/caresync/internal/domain/scheduling"
)

// AppointmentAdvancer moves a booked appointment forward when its booking
// notification is accepted. Satisfied by the scheduling service.
type AppointmentAdvancer interface {
	Accept(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error)
}

type Service struct {
	notifications NotificationRepository
	appointments  AppointmentAdvancer
}

func NewService(notifications NotificationRepository, appointments AppointmentAdvancer) *Service {
	return &Service{notifications: notifications, appointments: appointments}
}

func (s *Service) Create(ctx context.Context, n *Notification) error {
	if n.Title == "" {
		return fmt.Errorf("title is required")
	}
	if n.Type == "" {
		return fmt.Errorf("type is required")
	}
	if n.RecipientID == nil && n.RecipientRole == "" {
		return fmt.Errorf("a recipient_id or recipient_role is required")
	}
	if n.Status == "" {
		n.Status = StatusUnread
	}
	if n.Status != StatusUnread {
		return fmt.Errorf("new notifications must start as %s", StatusUnread)
	}
	return s.notifications.Create(ctx, n)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Notification, error) {
	return s.notifications.GetByID(ctx, id)
}

// Update edits a notification's content or details. Status never changes
// here; the transition methods own status.
func (s *Service) Update(ctx context.Context, n *Notification) error {
	existing, err := s.notifications.GetByID(ctx, n.ID)
	if err != nil {
		return err
	}
	if n.Status != existing.Status {
		return fmt.Errorf("status changes only through accept, snooze, reactivate or dismiss")
	}
	if n.Title == "" {
		return fmt.Errorf("title is required")
	}
	if n.Type == "" {
		return fmt.Errorf("type is required")
	}
	if n.RecipientID == nil && n.RecipientRole == "" {
		return fmt.Errorf("a recipient_id or recipient_role is required")
	}
	return s.notifications.Update(ctx, n)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Notification, int, error) {
	return s.notifications.List(ctx, limit, offset)
}

func (s *Service) ListActive(ctx context.Context, recipientID uuid.UUID, role string, limit, offset int) ([]*Notification, int, error) {
	return s.notifications.ListActive(ctx, recipientID, role, limit, offset)
}

// Accept marks the notification accepted. For an appointment booking, the
// referenced appointment is advanced first; views never move appointment
// statuses directly, only through this action.
func (s *Service) Accept(ctx context.Context, id uuid.UUID) (*Notification, error) {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(n.Status, StatusAccepted) {
		return nil, fmt.Errorf("cannot accept notification in status %s", n.Status)
	}

	if n.Type == TypeAppointmentBooking {
		apptID, ok := n.AppointmentID()
		if !ok {
			return nil, fmt.Errorf("booking notification has no valid appointmentId")
		}
		if _, err := s.appointments.Accept(ctx, apptID); err != nil {
			return nil, fmt.Errorf("advance appointment: %w", err)
		}
	}

	n.Status = StatusAccepted
	if err := s.notifications.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Snooze parks an unread notification.
func (s *Service) Snooze(ctx context.Context, id uuid.UUID) (*Notification, error) {
	return s.transition(ctx, id, StatusSnoozed)
}

// Reactivate returns a snoozed notification to Unread.
func (s *Service) Reactivate(ctx context.Context, id uuid.UUID) (*Notification, error) {
	return s.transition(ctx, id, StatusUnread)
}

// Dismiss retires a notification. Dismissing an already-dismissed
// notification is a no-op, not an error.
func (s *Service) Dismiss(ctx context.Context, id uuid.UUID) (*Notification, error) {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.Status == StatusDismissed {
		return n, nil
	}
	if !CanTransition(n.Status, StatusDismissed) {
		return nil, fmt.Errorf("cannot dismiss notification in status %s", n.Status)
	}
	n.Status = StatusDismissed
	if err := s.notifications.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to string) (*Notification, error) {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(n.Status, to) {
		return nil, fmt.Errorf("cannot move notification from %s to %s", n.Status, to)
	}
	n.Status = to
	if err := s.notifications.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}
