package snapshot

import (
	"context"

	"github.com/caresync/caresync/internal/domain/audit"
	"github.com/caresync/caresync/internal/domain/chat"
	"github.com/caresync/caresync/internal/domain/identity"
	"github.com/caresync/caresync/internal/domain/notify"
	"github.com/caresync/caresync/internal/domain/pharmacy"
	"github.com/caresync/caresync/internal/domain/records"
	"github.com/caresync/caresync/internal/domain/scheduling"
	"github.com/caresync/caresync/internal/domain/vitals"
)

// Wire registers the standard collections in the order clients expect
// them. Keys match the collection names the sync protocol uses.
func Wire(
	s *Service,
	users *identity.Service,
	appointments *scheduling.Service,
	medRecords *records.Service,
	prescriptions *pharmacy.Service,
	notifications *notify.Service,
	messages *chat.Service,
	activity *audit.Service,
	samples *vitals.Service,
) {
	s.Register("users", func(ctx context.Context) (interface{}, error) {
		items, _, err := users.ListUsers(ctx, "", snapshotLimit, 0)
		return items, err
	})
	s.Register("patients", func(ctx context.Context) (interface{}, error) {
		items, _, err := users.ListPatients(ctx, snapshotLimit, 0)
		return items, err
	})
	s.Register("appointments", func(ctx context.Context) (interface{}, error) {
		items, _, err := appointments.List(ctx, snapshotLimit, 0)
		return items, err
	})
	s.Register("records", func(ctx context.Context) (interface{}, error) {
		items, _, err := medRecords.List(ctx, snapshotLimit, 0)
		return items, err
	})
	s.Register("prescriptions", func(ctx context.Context) (interface{}, error) {
		items, _, err := prescriptions.List(ctx, snapshotLimit, 0)
		return items, err
	})
	s.Register("notifications", func(ctx context.Context) (interface{}, error) {
		items, _, err := notifications.List(ctx, snapshotLimit, 0)
		return items, err
	})
	s.Register("messages", func(ctx context.Context) (interface{}, error) {
		items, _, err := messages.List(ctx, snapshotLimit, 0)
		return items, err
	})
	s.Register("activity_logs", func(ctx context.Context) (interface{}, error) {
		items, _, err := activity.List(ctx, snapshotLimit, 0)
		return items, err
	})
	s.Register("vitals", func(ctx context.Context) (interface{}, error) {
		items, _, err := samples.List(ctx, snapshotLimit, 0)
		return items, err
	})
}
