package persistence

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/quasilyte/gdata/v2"

	"github.com/talgya/garden-sim/internal/engine"
)

// slotObject groups all garden saves under one gdata object.
const slotObject = "gardens"

// ErrNoSlot is returned when a named slot has never been saved.
var ErrNoSlot = errors.New("save slot not found")

// ErrSlotsUnavailable is returned by Save and Load when the platform data
// directory could not be opened.
var ErrSlotsUnavailable = errors.New("save slots unavailable")

// Slots stores snapshots as named save slots in the per-user data directory.
// A nil manager puts Slots in degraded mode: Exists reports false and Save
// and Load fail with ErrSlotsUnavailable.
type Slots struct {
	manager *gdata.Manager
}

// OpenSlots opens the save-slot store for appName. On failure it logs a
// warning and returns a degraded store rather than an error.
func OpenSlots(appName string) *Slots {
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		slog.Warn("save slots unavailable", "app", appName, "error", err)
		return &Slots{}
	}
	return &Slots{manager: manager}
}

// NewSlots wraps an existing manager, which may be nil.
func NewSlots(manager *gdata.Manager) *Slots {
	return &Slots{manager: manager}
}

// Available reports whether slots are backed by storage.
func (s *Slots) Available() bool {
	return s != nil && s.manager != nil
}

// Exists reports whether slot has been saved.
func (s *Slots) Exists(slot string) bool {
	if !s.Available() {
		return false
	}
	return s.manager.ObjectPropExists(slotObject, slot)
}

// Save writes st to slot, replacing any previous contents.
func (s *Slots) Save(slot string, st engine.State) error {
	if !s.Available() {
		return ErrSlotsUnavailable
	}
	data, err := Encode(st)
	if err != nil {
		return err
	}
	if err := s.manager.SaveObjectProp(slotObject, slot, data); err != nil {
		return fmt.Errorf("save slot %q: %w", slot, err)
	}
	slog.Info("slot saved", "slot", slot, "month", st.Month, "plants", len(st.Plants))
	return nil
}

// Load reads slot.
func (s *Slots) Load(slot string) (engine.State, error) {
	if !s.Available() {
		return engine.State{}, ErrSlotsUnavailable
	}
	if !s.manager.ObjectPropExists(slotObject, slot) {
		return engine.State{}, fmt.Errorf("%q: %w", slot, ErrNoSlot)
	}
	data, err := s.manager.LoadObjectProp(slotObject, slot)
	if err != nil {
		return engine.State{}, fmt.Errorf("load slot %q: %w", slot, err)
	}
	st, err := Decode(data)
	if err != nil {
		return engine.State{}, fmt.Errorf("slot %q: %w", slot, err)
	}
	return st, nil
}
