package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/quasilyte/gdata/v2"
)

func openTestSlots(t *testing.T) *Slots {
	t.Helper()
	appName := fmt.Sprintf("garden_sim_test_%d", time.Now().UnixNano())
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil
	}
	t.Cleanup(func() {
		if home, err := os.UserHomeDir(); err == nil {
			os.RemoveAll(filepath.Join(home, ".local", "share", appName))
		}
	})
	return NewSlots(manager)
}

func TestSlotsRoundTrip(t *testing.T) {
	slots := openTestSlots(t)
	if slots == nil {
		t.Skip("cannot open gdata storage for testing")
	}

	if slots.Exists("spring") {
		t.Fatalf("expected no slot before saving")
	}
	if _, err := slots.Load("spring"); !errors.Is(err, ErrNoSlot) {
		t.Fatalf("expected ErrNoSlot, got %v", err)
	}

	want := grownState(t, 6, 8)
	if err := slots.Save("spring", want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !slots.Exists("spring") {
		t.Fatalf("expected slot after saving")
	}
	got, err := slots.Load("spring")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("slot round trip mismatch")
	}
}

func TestSlotsDegraded(t *testing.T) {
	slots := NewSlots(nil)
	if slots.Available() || slots.Exists("any") {
		t.Fatalf("expected degraded slots to report nothing")
	}
	if err := slots.Save("any", grownState(t, 1, 1)); !errors.Is(err, ErrSlotsUnavailable) {
		t.Fatalf("expected ErrSlotsUnavailable on save, got %v", err)
	}
	if _, err := slots.Load("any"); !errors.Is(err, ErrSlotsUnavailable) {
		t.Fatalf("expected ErrSlotsUnavailable on load, got %v", err)
	}
}
