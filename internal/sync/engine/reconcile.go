package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/caresync/caresync/internal/domain/audit"
	"github.com/caresync/caresync/internal/domain/chat"
	"github.com/caresync/caresync/internal/domain/identity"
	"github.com/caresync/caresync/internal/domain/notify"
	"github.com/caresync/caresync/internal/domain/pharmacy"
	"github.com/caresync/caresync/internal/domain/records"
	"github.com/caresync/caresync/internal/domain/scheduling"
	"github.com/caresync/caresync/internal/domain/vitals"
	"github.com/caresync/caresync/internal/sync/signal"
	"github.com/caresync/caresync/internal/sync/store"
)

// Pull fetches the server snapshot and reconciles every collection. A
// collection is overwritten only when the server payload differs from the
// snapshot applied on the previous reconciliation, never from whatever is
// currently in the store: an optimistic write that landed after the fetch
// is therefore not clobbered by stale server data.
func (e *Engine) Pull(ctx context.Context) error {
	snap, err := e.remote.Snapshot(ctx)
	if err != nil {
		return err
	}

	for _, c := range store.All() {
		raw, ok := snap.Data[c.ServerKey()]
		if !ok {
			continue
		}
		entities, err := decodeCollection(c, raw)
		if err != nil {
			e.log.Warn().Err(err).Str("collection", string(c)).Msg("skipping undecodable snapshot collection")
			continue
		}
		serialized := serializeEntities(entities)

		e.mu.Lock()
		last := e.lastReconciled[c]
		e.mu.Unlock()
		if serialized == last {
			continue
		}

		merged := e.mergeUnconfirmed(c, entities)
		e.store.Replace(c, merged)
		e.mu.Lock()
		e.lastReconciled[c] = serialized
		e.mu.Unlock()
		e.publish(c, signal.OriginRemote)
	}
	return nil
}

// mergeUnconfirmed re-appends optimistic local writes the server does not
// know about yet, so an overwrite never loses them. Entities the server
// now carries are marked confirmed.
func (e *Engine) mergeUnconfirmed(c store.Collection, server []store.Entity) []store.Entity {
	e.mu.Lock()
	pending := make([]uuid.UUID, 0, len(e.unconfirmed[c]))
	for id := range e.unconfirmed[c] {
		pending = append(pending, id)
	}
	e.mu.Unlock()
	if len(pending) == 0 {
		return server
	}

	onServer := make(map[uuid.UUID]struct{}, len(server))
	for _, ent := range server {
		onServer[ent.EntityID()] = struct{}{}
	}

	merged := server
	for _, id := range pending {
		if _, ok := onServer[id]; ok {
			e.confirm(c, id)
			continue
		}
		if local, ok := e.store.Find(c, id); ok {
			merged = append(merged, local)
		}
	}
	return merged
}

func serializeEntities(items []store.Entity) string {
	if len(items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeCollection(c store.Collection, raw json.RawMessage) ([]store.Entity, error) {
	switch c {
	case store.Users:
		return decodeList[identity.User](raw)
	case store.Patients:
		return decodeList[identity.Patient](raw)
	case store.Records:
		return decodeList[records.Record](raw)
	case store.Prescriptions:
		return decodeList[pharmacy.Prescription](raw)
	case store.Appointments:
		return decodeList[scheduling.Appointment](raw)
	case store.Notifications:
		return decodeList[notify.Notification](raw)
	case store.Messages:
		return decodeList[chat.Message](raw)
	case store.AuditLog:
		return decodeList[audit.Entry](raw)
	case store.Vitals:
		return decodeList[vitals.Sample](raw)
	default:
		return nil, fmt.Errorf("unknown collection %q", c)
	}
}

func decodeList[T any, PT interface {
	*T
	store.Entity
}](raw json.RawMessage) ([]store.Entity, error) {
	var items []PT
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	out := make([]store.Entity, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out, nil
}
