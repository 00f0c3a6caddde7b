package entity

import (
	"encoding/json"
	"reflect"

	"github.com/google/uuid"
)

// Operation mirrors original_source's EntityOperation: whether a wire
// update is a create, update, or remove.
type Operation uint8

const (
	OpCreate Operation = iota
	OpUpdate
	OpRemove
)

// Update is one entity's wire-ready change, JSON-marshaled for the
// ENTITY packet payload.
type Update struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Operation Operation  `json:"operation"`
	Transform *Transform `json:"transform,omitempty"`
	Metadata  *Metadata  `json:"metadata,omitempty"`
}

// snapshot is the last-known state of one entity, kept so Diff can tell
// an in-place Transform/Metadata change from an untouched entity.
type snapshot struct {
	etype     string
	transform Transform
	metadata  Metadata
}

// Bookkeeping tracks each entity's last-known lifecycle state and
// component values, so it can diff against the current set and emit
// create/update/remove events exactly once each, grounded on
// bookkeeping.rs's differentiate_entities, generalized to also catch
// per-tick position/metadata drift rather than lifecycle alone.
type Bookkeeping struct {
	known map[uuid.UUID]snapshot
}

// NewBookkeeping returns an empty tracker.
func NewBookkeeping() *Bookkeeping {
	return &Bookkeeping{known: make(map[uuid.UUID]snapshot)}
}

// Diff compares the registry's current live set against what was known
// last tick, returning one Update per entity that changed lifecycle
// state (created or removed) or whose Transform/Metadata drifted since
// the last Diff, and records the new known set.
func (bk *Bookkeeping) Diff(reg *Registry) []Update {
	current := reg.All()
	currentIDs := make(map[uuid.UUID]struct{}, len(current))

	var updates []Update
	for _, e := range current {
		currentIDs[e.ID] = struct{}{}
		prev, ok := bk.known[e.ID]
		switch {
		case !ok:
			meta := e.Metadata
			transform := e.Transform
			updates = append(updates, Update{
				ID:        e.ID.String(),
				Type:      e.Type,
				Operation: OpCreate,
				Transform: &transform,
				Metadata:  &meta,
			})
		case prev.transform != e.Transform || !reflect.DeepEqual(prev.metadata, e.Metadata):
			meta := e.Metadata
			transform := e.Transform
			updates = append(updates, Update{
				ID:        e.ID.String(),
				Type:      e.Type,
				Operation: OpUpdate,
				Transform: &transform,
				Metadata:  &meta,
			})
		}
		bk.known[e.ID] = snapshot{etype: e.Type, transform: e.Transform, metadata: e.Metadata}
	}

	for id := range bk.known {
		if _, ok := currentIDs[id]; !ok {
			updates = append(updates, Update{ID: id.String(), Operation: OpRemove})
			delete(bk.known, id)
		}
	}

	return updates
}

// Snapshot returns an Update for every live entity's current transform
// and metadata, used for the periodic full ENTITY sync (not just
// lifecycle deltas), matching entity_meta.rs's per-tick metadata
// refresh.
func Snapshot(reg *Registry) []Update {
	entities := reg.All()
	updates := make([]Update, 0, len(entities))
	for _, e := range entities {
		meta := e.Metadata
		transform := e.Transform
		updates = append(updates, Update{
			ID:        e.ID.String(),
			Type:      e.Type,
			Operation: OpUpdate,
			Transform: &transform,
			Metadata:  &meta,
		})
	}
	return updates
}

// MarshalUpdates encodes updates as the ENTITY packet payload.
func MarshalUpdates(updates []Update) ([]byte, error) {
	return json.Marshal(updates)
}
