// Package auditlog records PHI access on the client. The recorder never
// fails its caller: viewing a document must succeed even when the audit
// write does not.
package auditlog

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caresync/caresync/internal/domain/audit"
	"github.com/caresync/caresync/internal/sync/engine"
)

// Actions recorded against document access.
const (
	ActionViewedDocument = "viewed_document"
	ActionAccessedFolder = "accessed_folder"
)

// Recorder writes audit entries for one authenticated actor.
type Recorder struct {
	eng       *engine.Engine
	actorID   uuid.UUID
	actorName string
	log       zerolog.Logger
}

func NewRecorder(eng *engine.Engine, actorID uuid.UUID, actorName string, log zerolog.Logger) *Recorder {
	return &Recorder{eng: eng, actorID: actorID, actorName: actorName, log: log}
}

// Record appends an audit entry. The local append always lands; a failed
// server write is logged and swallowed so the audited action proceeds.
func (r *Recorder) Record(ctx context.Context, action, targetID, targetName, location, notes string) {
	entry := &audit.Entry{
		ActorID:    r.actorID,
		ActorName:  r.actorName,
		Action:     action,
		TargetID:   targetID,
		TargetName: targetName,
		Location:   location,
		Notes:      notes,
	}
	if err := r.eng.SaveAuditEntry(ctx, entry); err != nil {
		r.log.Warn().Err(err).
			Str("action", action).
			Str("target_id", targetID).
			Msg("audit write failed, entry kept locally")
	}
}

// ViewedDocument records a document view.
func (r *Recorder) ViewedDocument(ctx context.Context, targetID, targetName, location string) {
	r.Record(ctx, ActionViewedDocument, targetID, targetName, location, "")
}

// AccessedFolder records a folder access.
func (r *Recorder) AccessedFolder(ctx context.Context, targetID, targetName, location string) {
	r.Record(ctx, ActionAccessedFolder, targetID, targetName, location, "")
}
