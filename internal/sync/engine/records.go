package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/caresync/caresync/internal/domain/records"
	"github.com/caresync/caresync/internal/sync/api"
	"github.com/caresync/caresync/internal/sync/signal"
	"github.com/caresync/caresync/internal/sync/store"
)

// SaveRecord dispatches a medical record: PHI fields in the payload are
// encrypted, the record is appended to the replica, and the server write
// is attempted. Records are immutable after dispatch.
func (e *Engine) SaveRecord(ctx context.Context, rec *records.Record) error {
	if rec.PatientID == uuid.Nil {
		return fmt.Errorf("%w: patient_id is required", ErrValidation)
	}
	if rec.AuthorID == uuid.Nil {
		return fmt.Errorf("%w: author_id is required", ErrValidation)
	}
	if rec.Unit == "" {
		return fmt.Errorf("%w: unit is required", ErrValidation)
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = e.now()
	}
	if rec.Payload != nil {
		if err := e.phi.EncryptPayload("records", rec.Payload); err != nil {
			return fmt.Errorf("encrypt payload: %w", err)
		}
	}

	e.store.Append(store.Records, rec)
	e.publish(store.Records, signal.OriginLocal)
	return e.persist(ctx, store.Records, rec.ID, "/api/v1/records", rec)
}

// DeleteRecord removes a record locally and issues the server delete.
// Until the server confirms, the deletion is provisional: if the server
// write fails, the next reconciliation restores the record.
func (e *Engine) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	if _, ok := e.store.Find(store.Records, id); !ok {
		return fmt.Errorf("%w: record %s", ErrNotFound, id)
	}
	e.store.Remove(store.Records, id)
	e.publish(store.Records, signal.OriginLocal)

	err := e.remote.Delete(ctx, "/api/v1/records/"+id.String()+"?confirm=true")
	if err == nil || errors.Is(err, api.ErrGone) {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
