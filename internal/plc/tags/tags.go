// Package tags is the closed registry of whitelisted controller cells.
// Every addressable cell in the experiment block (DB9) has exactly one ID
// here; code outside this package never constructs raw addresses. Unknown
// tags are impossible by construction.
package tags

import (
	"fmt"

	"github.com/tamaralab/plclink/internal/params"
)

// ExperimentDB is the single data block this application may touch.
const ExperimentDB = 9

// Kind is the wire encoding of a cell.
type Kind int

const (
	Real Kind = iota
	Int
	Bool
	Str
)

func (k Kind) String() string {
	switch k {
	case Real:
		return "REAL"
	case Int:
		return "INT"
	case Bool:
		return "BOOL"
	case Str:
		return "STRING"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// NoBit marks a descriptor that addresses a whole cell rather than one bit.
const NoBit int8 = -1

// Descriptor locates and types one whitelisted cell.
type Descriptor struct {
	DB     int
	Offset int
	Bit    int8 // bit offset within the byte for Bool cells, NoBit otherwise
	Kind   Kind
	MaxLen int // declared capacity, Str cells only
}

// ID identifies a whitelisted cell. The set is closed; see the constants below.
type ID int

const (
	OperationMode ID = iota
	MachineMode
	CrunchValid

	TFR
	FRR
	TargetVolume
	Temperature
	ChipID
	ManifoldID
	OrgSolventID
	CustomOrgSolvent
	LabPressure

	Viscosity
	Sensitivity
	MolarVolume

	CmdRunStart
	CmdRunPausePlay
	CmdRunConfirm
	CmdRunStop
	CmdCleanStart
	CmdCleanPausePlay
	CmdCleanConfirm
	CmdCleanStop
	CmdPressureTestStart
	CmdPressureTestPausePlay
	CmdPressureTestConfirm
	CmdPressureTestStop

	idCount // keep last
)

// All returns every whitelisted tag in declaration order.
func All() []ID {
	ids := make([]ID, idCount)
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

func (id ID) String() string {
	switch id {
	case OperationMode:
		return "OPERATION_MODE"
	case MachineMode:
		return "MACHINE_MODE"
	case CrunchValid:
		return "CRUNCH_VALID"
	case TFR:
		return "r_TFR"
	case FRR:
		return "i_FRR"
	case TargetVolume:
		return "r_TARGET_VOLUME"
	case Temperature:
		return "r_TEMPERATURE"
	case ChipID:
		return "i_CHIP_ID"
	case ManifoldID:
		return "i_MANIFOLD_ID"
	case OrgSolventID:
		return "i_ORG_SOLVENT_ID"
	case CustomOrgSolvent:
		return "s_CUSTOM_ORG_SOLVENT"
	case LabPressure:
		return "r_LAB_PRESSURE"
	case Viscosity:
		return "r_VISCOSITY"
	case Sensitivity:
		return "r_SENSITIVITY"
	case MolarVolume:
		return "r_MOLAR_VOLUME"
	case CmdRunStart:
		return "COMMANDS_RUN.b_START"
	case CmdRunPausePlay:
		return "COMMANDS_RUN.b_PAUSE_PLAY"
	case CmdRunConfirm:
		return "COMMANDS_RUN.b_CONFIRM"
	case CmdRunStop:
		return "COMMANDS_RUN.b_STOP"
	case CmdCleanStart:
		return "COMMANDS_CLEAN.b_START"
	case CmdCleanPausePlay:
		return "COMMANDS_CLEAN.b_PAUSE_PLAY"
	case CmdCleanConfirm:
		return "COMMANDS_CLEAN.b_CONFIRM"
	case CmdCleanStop:
		return "COMMANDS_CLEAN.b_STOP"
	case CmdPressureTestStart:
		return "COMMANDS_PRESSURE_TEST.b_START"
	case CmdPressureTestPausePlay:
		return "COMMANDS_PRESSURE_TEST.b_PAUSE_PLAY"
	case CmdPressureTestConfirm:
		return "COMMANDS_PRESSURE_TEST.b_CONFIRM"
	case CmdPressureTestStop:
		return "COMMANDS_PRESSURE_TEST.b_STOP"
	default:
		return fmt.Sprintf("tag(%d)", int(id))
	}
}

// Resolve maps a tag to its descriptor. The match is exhaustive over the
// closed ID set; an ID outside the set is a programming error.
//
// Layout revision note: this is the per-mode command scheme (command bytes at
// 258/260/262, CRUNCH_VALID at 202.0). The retired scheme with four flag bits
// at byte 218 is deliberately not representable here.
func Resolve(id ID) Descriptor {
	switch id {
	case OperationMode:
		return Descriptor{DB: ExperimentDB, Offset: 198, Bit: NoBit, Kind: Int}
	case MachineMode:
		return Descriptor{DB: ExperimentDB, Offset: 200, Bit: NoBit, Kind: Int}
	case CrunchValid:
		return Descriptor{DB: ExperimentDB, Offset: 202, Bit: 0, Kind: Bool}
	case TFR:
		return Descriptor{DB: ExperimentDB, Offset: 204, Bit: NoBit, Kind: Real}
	case FRR:
		return Descriptor{DB: ExperimentDB, Offset: 208, Bit: NoBit, Kind: Int}
	case TargetVolume:
		return Descriptor{DB: ExperimentDB, Offset: 210, Bit: NoBit, Kind: Real}
	case Temperature:
		return Descriptor{DB: ExperimentDB, Offset: 214, Bit: NoBit, Kind: Real}
	case ChipID:
		return Descriptor{DB: ExperimentDB, Offset: 218, Bit: NoBit, Kind: Int}
	case ManifoldID:
		return Descriptor{DB: ExperimentDB, Offset: 220, Bit: NoBit, Kind: Int}
	case OrgSolventID:
		return Descriptor{DB: ExperimentDB, Offset: 222, Bit: NoBit, Kind: Int}
	case CustomOrgSolvent:
		return Descriptor{DB: ExperimentDB, Offset: 224, Bit: NoBit, Kind: Str, MaxLen: params.MaxSolventNameLen}
	case LabPressure:
		return Descriptor{DB: ExperimentDB, Offset: 242, Bit: NoBit, Kind: Real}
	case Viscosity:
		return Descriptor{DB: ExperimentDB, Offset: 246, Bit: NoBit, Kind: Real}
	case Sensitivity:
		return Descriptor{DB: ExperimentDB, Offset: 250, Bit: NoBit, Kind: Real}
	case MolarVolume:
		return Descriptor{DB: ExperimentDB, Offset: 254, Bit: NoBit, Kind: Real}
	case CmdRunStart:
		return Descriptor{DB: ExperimentDB, Offset: 258, Bit: 0, Kind: Bool}
	case CmdRunPausePlay:
		return Descriptor{DB: ExperimentDB, Offset: 258, Bit: 1, Kind: Bool}
	case CmdRunConfirm:
		return Descriptor{DB: ExperimentDB, Offset: 258, Bit: 2, Kind: Bool}
	case CmdRunStop:
		return Descriptor{DB: ExperimentDB, Offset: 258, Bit: 3, Kind: Bool}
	case CmdCleanStart:
		return Descriptor{DB: ExperimentDB, Offset: 260, Bit: 0, Kind: Bool}
	case CmdCleanPausePlay:
		return Descriptor{DB: ExperimentDB, Offset: 260, Bit: 1, Kind: Bool}
	case CmdCleanConfirm:
		return Descriptor{DB: ExperimentDB, Offset: 260, Bit: 2, Kind: Bool}
	case CmdCleanStop:
		return Descriptor{DB: ExperimentDB, Offset: 260, Bit: 3, Kind: Bool}
	case CmdPressureTestStart:
		return Descriptor{DB: ExperimentDB, Offset: 262, Bit: 0, Kind: Bool}
	case CmdPressureTestPausePlay:
		return Descriptor{DB: ExperimentDB, Offset: 262, Bit: 1, Kind: Bool}
	case CmdPressureTestConfirm:
		return Descriptor{DB: ExperimentDB, Offset: 262, Bit: 2, Kind: Bool}
	case CmdPressureTestStop:
		return Descriptor{DB: ExperimentDB, Offset: 262, Bit: 3, Kind: Bool}
	default:
		panic(fmt.Sprintf("tags: resolve of unknown tag %d", int(id)))
	}
}

// Command maps a (mode, bit) pair from the command matrix to its tag.
func Command(mode params.MachineMode, bit params.CommandBit) (ID, error) {
	var base ID
	switch mode {
	case params.Run:
		base = CmdRunStart
	case params.Clean:
		base = CmdCleanStart
	case params.PressureTest:
		base = CmdPressureTestStart
	default:
		return 0, fmt.Errorf("no command tags for machine mode %d", int16(mode))
	}
	switch bit {
	case params.Start, params.PausePlay, params.Confirm, params.Stop:
		return base + ID(bit), nil
	default:
		return 0, fmt.Errorf("unknown command bit %d", int(bit))
	}
}
