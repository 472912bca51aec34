package transport

import (
	"errors"
	"testing"
)

func TestSimReadWrite(t *testing.T) {
	sim := NewSim(9, nil)
	if err := sim.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer sim.Disconnect()

	if err := sim.Write(9, 204, []byte{0x3F, 0x80, 0x00, 0x00}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := sim.Read(9, 204, 4)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := []byte{0x3F, 0x80, 0x00, 0x00}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Read() = % X, want % X", got, want)
		}
	}
}

func TestSimZeroInitialized(t *testing.T) {
	sim := NewSim(9, nil)
	got, err := sim.Read(9, 198, 8)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	for i, b := range got {
		if b != 0 {
			t.Errorf("byte %d = 0x%02X, want 0x00", i, b)
		}
	}
}

func TestSimGrowsBeyondInitialRegion(t *testing.T) {
	sim := NewSim(9, nil)

	// Write past the initial region, then read even further past the end.
	if err := sim.Write(9, 1000, []byte{0xAB}); err != nil {
		t.Fatalf("Write() beyond region error = %v", err)
	}
	got, err := sim.Read(9, 998, 8)
	if err != nil {
		t.Fatalf("Read() beyond region error = %v", err)
	}
	want := []byte{0x00, 0x00, 0xAB, 0x00, 0x00, 0x00, 0x00, 0x00}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Read() = % X, want % X", got, want)
		}
	}
}

func TestSimWhitelist(t *testing.T) {
	sim := NewSim(9, nil)

	var permErr *PermissionError
	if _, err := sim.Read(1, 0, 4); !errors.As(err, &permErr) {
		t.Errorf("Read(DB1) error = %v, want PermissionError", err)
	}
	if err := sim.Write(10, 0, []byte{1}); !errors.As(err, &permErr) {
		t.Errorf("Write(DB10) error = %v, want PermissionError", err)
	}
	if permErr != nil && permErr.Allowed != 9 {
		t.Errorf("PermissionError.Allowed = %d, want 9", permErr.Allowed)
	}
}

func TestSimSetBit(t *testing.T) {
	sim := NewSim(9, nil)

	if err := sim.SetBit(9, 202, 0, true); err != nil {
		t.Fatalf("SetBit() error = %v", err)
	}
	got, err := sim.Read(9, 202, 1)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got[0] != 0x01 {
		t.Errorf("byte after SetBit = 0x%02X, want 0x01", got[0])
	}

	if err := sim.SetBit(9, 202, 0, false); err != nil {
		t.Fatalf("SetBit(clear) error = %v", err)
	}
	got, _ = sim.Read(9, 202, 1)
	if got[0] != 0x00 {
		t.Errorf("byte after clear = 0x%02X, want 0x00", got[0])
	}
}

func TestSimNegativeSpans(t *testing.T) {
	sim := NewSim(9, nil)
	if _, err := sim.Read(9, -1, 4); err == nil {
		t.Error("Read() with negative start: expected error")
	}
	if err := sim.Write(9, -1, []byte{1}); err == nil {
		t.Error("Write() with negative start: expected error")
	}
}
