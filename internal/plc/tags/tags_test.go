package tags

import (
	"testing"

	"github.com/tamaralab/plclink/internal/params"
)

func TestResolveCoversAllTags(t *testing.T) {
	for _, id := range All() {
		d := Resolve(id)
		if d.DB != ExperimentDB {
			t.Errorf("%s: DB = %d, want %d", id, d.DB, ExperimentDB)
		}
		if d.Offset < 198 || d.Offset > 262 {
			t.Errorf("%s: offset %d outside experiment block span", id, d.Offset)
		}
		switch d.Kind {
		case Bool:
			if d.Bit < 0 || d.Bit > 7 {
				t.Errorf("%s: bool bit offset %d not in [0, 7]", id, d.Bit)
			}
		case Str:
			if d.MaxLen <= 0 {
				t.Errorf("%s: string tag without max length", id)
			}
			if d.Bit != NoBit {
				t.Errorf("%s: string tag with bit offset %d", id, d.Bit)
			}
		default:
			if d.Bit != NoBit {
				t.Errorf("%s: %s tag with bit offset %d", id, d.Kind, d.Bit)
			}
		}
	}
}

func TestResolveKnownOffsets(t *testing.T) {
	tests := []struct {
		id     ID
		offset int
		bit    int8
		kind   Kind
	}{
		{OperationMode, 198, NoBit, Int},
		{MachineMode, 200, NoBit, Int},
		{CrunchValid, 202, 0, Bool},
		{TFR, 204, NoBit, Real},
		{FRR, 208, NoBit, Int},
		{TargetVolume, 210, NoBit, Real},
		{Temperature, 214, NoBit, Real},
		{ChipID, 218, NoBit, Int},
		{ManifoldID, 220, NoBit, Int},
		{OrgSolventID, 222, NoBit, Int},
		{CustomOrgSolvent, 224, NoBit, Str},
		{LabPressure, 242, NoBit, Real},
		{Viscosity, 246, NoBit, Real},
		{Sensitivity, 250, NoBit, Real},
		{MolarVolume, 254, NoBit, Real},
		{CmdRunStart, 258, 0, Bool},
		{CmdRunStop, 258, 3, Bool},
		{CmdCleanPausePlay, 260, 1, Bool},
		{CmdPressureTestConfirm, 262, 2, Bool},
	}

	for _, tt := range tests {
		t.Run(tt.id.String(), func(t *testing.T) {
			d := Resolve(tt.id)
			if d.Offset != tt.offset || d.Bit != tt.bit || d.Kind != tt.kind {
				t.Errorf("Resolve(%s) = {offset %d, bit %d, %s}, want {offset %d, bit %d, %s}",
					tt.id, d.Offset, d.Bit, d.Kind, tt.offset, tt.bit, tt.kind)
			}
		})
	}
}

func TestNoOverlappingCells(t *testing.T) {
	// Each (offset, bit) pair must be claimed by at most one tag; whole-cell
	// tags must not straddle another tag's span.
	type span struct {
		start, end int // byte span, end exclusive
		bit        int8
		owner      ID
	}
	var spans []span
	for _, id := range All() {
		d := Resolve(id)
		size := 1
		switch d.Kind {
		case Real:
			size = 4
		case Int:
			size = 2
		case Str:
			size = 2 + d.MaxLen
		}
		spans = append(spans, span{d.Offset, d.Offset + size, d.Bit, id})
	}
	for i, a := range spans {
		for _, b := range spans[i+1:] {
			if a.start >= b.end || b.start >= a.end {
				continue
			}
			// Bool tags may share a byte as long as the bits differ.
			if a.bit != NoBit && b.bit != NoBit && a.bit != b.bit {
				continue
			}
			t.Errorf("tags %s and %s overlap", a.owner, b.owner)
		}
	}
}

func TestCommandMatrix(t *testing.T) {
	tests := []struct {
		mode params.MachineMode
		bit  params.CommandBit
		want ID
	}{
		{params.Run, params.Start, CmdRunStart},
		{params.Run, params.Stop, CmdRunStop},
		{params.Clean, params.PausePlay, CmdCleanPausePlay},
		{params.Clean, params.Confirm, CmdCleanConfirm},
		{params.PressureTest, params.Start, CmdPressureTestStart},
		{params.PressureTest, params.Stop, CmdPressureTestStop},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			got, err := Command(tt.mode, tt.bit)
			if err != nil {
				t.Fatalf("Command() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Command(%s, %s) = %s, want %s", tt.mode, tt.bit, got, tt.want)
			}
		})
	}
}

func TestCommandRejectsUnknownMode(t *testing.T) {
	if _, err := Command(params.MachineMode(99), params.Start); err == nil {
		t.Error("Command() with unknown mode: expected error, got nil")
	}
}
