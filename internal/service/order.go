package service

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/Tomlord1122/kanban-backend/internal/reorder"
)

// orderEntries converts a validated bulk reorder list. Repeated ids or
// repeated target positions cannot all be honoured and are rejected.
func orderEntries(field string, items []PositionUpdate) ([]reorder.Entry, error) {
	entries := make([]reorder.Entry, 0, len(items))
	ids := make(map[uint]bool, len(items))
	positions := make(map[int]bool, len(items))
	verr := &ValidationError{Fields: map[string]string{}}

	for i, item := range items {
		if ids[item.ID] {
			verr.Fields[fmt.Sprintf("%s[%d].id", field, i)] = "is duplicated"
		}
		if positions[*item.Position] {
			verr.Fields[fmt.Sprintf("%s[%d].position", field, i)] = "is duplicated"
		}
		ids[item.ID] = true
		positions[*item.Position] = true
		entries = append(entries, reorder.Entry{ID: item.ID, Position: *item.Position})
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return entries, nil
}

// missingID returns the first of ids that is absent from existing.
func missingID(ids, existing []uint) (uint, bool) {
	found := make(map[uint]bool, len(existing))
	for _, id := range existing {
		found[id] = true
	}
	for _, id := range ids {
		if !found[id] {
			return id, true
		}
	}
	return 0, false
}

func entryIDs(entries []reorder.Entry) []uint {
	ids := make([]uint, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

// applyOrder runs a bulk reorder against scope. Entries naming entities
// of another parent are skipped rather than failing the batch.
func applyOrder(ctx context.Context, scope reorder.Scope, field string, entries []reorder.Entry, fields log.Fields) error {
	res, err := reorder.ApplyOrder(ctx, scope, entries)
	var collision *reorder.CollisionError
	if errors.As(err, &collision) {
		return invalid(fmt.Sprintf("%s[%d].position", field, collision.Index),
			fmt.Sprintf("lands on position %d together with %s[%d]", collision.Position, field, collision.Other))
	}
	if err != nil {
		return err
	}
	if len(res.Skipped) > 0 {
		log.WithFields(fields).WithField("skipped_ids", res.Skipped).Debug("bulk reorder skipped entries outside scope")
	}
	log.WithFields(fields).WithField("moves", res.Moves).Debug("bulk reorder applied")
	return nil
}
