package persistence

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/talgya/garden-sim/internal/engine"
)

// Snapshot is the flat on-disk record of a garden. It has no version field;
// optional fields degrade to defaults when absent.
type Snapshot struct {
	RunID   string         `yaml:"run_id,omitempty"`
	Month   int            `yaml:"month"`
	SoilID  int            `yaml:"soil_id"`
	Width   float64        `yaml:"width"`
	Height  float64        `yaml:"height"`
	Plants  []PlantRecord  `yaml:"plants"`
	Hazards []HazardRecord `yaml:"hazards,omitempty"`
}

// PlantRecord is one plant row of a snapshot.
type PlantRecord struct {
	TypeID int     `yaml:"type_id"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Age    int     `yaml:"age"`
	Height float64 `yaml:"height"`
	Radius float64 `yaml:"radius"`
}

// HazardRecord is one hazard row of a snapshot. MonthsLeft is optional for
// files written before hazards faded.
type HazardRecord struct {
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	Radius     float64 `yaml:"radius"`
	MonthsLeft *int    `yaml:"months_left,omitempty"`
}

// ErrMalformed wraps snapshot content that parses but cannot describe a garden.
var ErrMalformed = errors.New("malformed snapshot")

// FromState converts engine state to its flat record.
func FromState(st engine.State) Snapshot {
	snap := Snapshot{
		RunID:   st.RunID,
		Month:   st.Month,
		SoilID:  st.SoilID,
		Width:   st.Width,
		Height:  st.Height,
		Plants:  make([]PlantRecord, 0, len(st.Plants)),
		Hazards: make([]HazardRecord, 0, len(st.Hazards)),
	}
	for _, p := range st.Plants {
		snap.Plants = append(snap.Plants, PlantRecord{
			TypeID: p.TypeID, X: p.X, Y: p.Y, Age: p.Age, Height: p.Height, Radius: p.Radius,
		})
	}
	for _, h := range st.Hazards {
		left := h.MonthsLeft
		snap.Hazards = append(snap.Hazards, HazardRecord{X: h.X, Y: h.Y, Radius: h.Radius, MonthsLeft: &left})
	}
	return snap
}

// ToState converts a record back to engine state. Missing or zero
// months_left defaults to the standard hazard lifetime.
func (s Snapshot) ToState() engine.State {
	st := engine.State{
		RunID:   s.RunID,
		Month:   s.Month,
		SoilID:  s.SoilID,
		Width:   s.Width,
		Height:  s.Height,
		Plants:  make([]engine.PlantState, 0, len(s.Plants)),
		Hazards: make([]engine.HazardState, 0, len(s.Hazards)),
	}
	for _, p := range s.Plants {
		st.Plants = append(st.Plants, engine.PlantState{
			TypeID: p.TypeID, X: p.X, Y: p.Y, Age: p.Age, Height: p.Height, Radius: p.Radius,
		})
	}
	for _, h := range s.Hazards {
		left := engine.HazardLifetime
		if h.MonthsLeft != nil && *h.MonthsLeft > 0 {
			left = *h.MonthsLeft
		}
		st.Hazards = append(st.Hazards, engine.HazardState{X: h.X, Y: h.Y, Radius: h.Radius, MonthsLeft: left})
	}
	return st
}

// Encode serializes state to YAML. Floats are written in shortest
// round-trip form, so Decode reproduces them bit for bit.
func Encode(st engine.State) ([]byte, error) {
	data, err := yaml.Marshal(FromState(st))
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a YAML snapshot into engine state.
func Decode(data []byte) (engine.State, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return engine.State{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Width <= 0 || snap.Height <= 0 {
		return engine.State{}, fmt.Errorf("%w: garden size %vx%v", ErrMalformed, snap.Width, snap.Height)
	}
	if snap.Month < 0 {
		return engine.State{}, fmt.Errorf("%w: negative month %d", ErrMalformed, snap.Month)
	}
	return snap.ToState(), nil
}

// SaveFile writes a snapshot atomically: to a temp file in the same
// directory, then renamed over path.
func SaveFile(path string, st engine.State) error {
	data, err := Encode(st)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}

	slog.Info("snapshot saved", "path", path, "month", st.Month, "plants", len(st.Plants), "hazards", len(st.Hazards))
	return nil
}

// LoadFile reads a snapshot file.
func LoadFile(path string) (engine.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.State{}, fmt.Errorf("read snapshot: %w", err)
	}
	st, err := Decode(data)
	if err != nil {
		return engine.State{}, fmt.Errorf("%s: %w", path, err)
	}
	return st, nil
}
