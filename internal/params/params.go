// Package params defines the experiment parameter model shared by the CLI
// and the PLC link: operating-mode enums, the solvent presets, and the
// validated payload that gets written to the controller.
package params

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxSolventNameLen is the PLC-side STRING[16] capacity for custom solvent names.
const MaxSolventNameLen = 16

// OperationMode selects who is driving the instrument.
type OperationMode int16

const (
	Conventional OperationMode = 1
	Agentic      OperationMode = 2
)

// MachineMode is the controller's top-level operating mode.
type MachineMode int16

const (
	Run          MachineMode = 2
	Clean        MachineMode = 3
	PressureTest MachineMode = 4
)

// Modes lists all machine modes in a stable order.
func Modes() []MachineMode {
	return []MachineMode{Run, Clean, PressureTest}
}

// CommandBit is one of the four per-mode control flags.
type CommandBit int

const (
	Start CommandBit = iota
	PausePlay
	Confirm
	Stop
)

// CommandBits lists all command bits in bit-offset order.
func CommandBits() []CommandBit {
	return []CommandBit{Start, PausePlay, Confirm, Stop}
}

// ChipID selects the microfluidic chip geometry.
type ChipID int16

const (
	Baffle      ChipID = 0
	Herringbone ChipID = 1
)

// ManifoldID selects the manifold size.
type ManifoldID int16

const (
	Small ManifoldID = 0
	Large ManifoldID = 1
)

// OrgSolventID selects the organic solvent preset.
type OrgSolventID int16

const (
	Ethanol  OrgSolventID = 0
	IPA      OrgSolventID = 1
	Acetone  OrgSolventID = 2
	Methanol OrgSolventID = 3
	Custom   OrgSolventID = 4
)

// CustomSolvent carries the physical properties of a non-preset solvent.
type CustomSolvent struct {
	Name        string  `yaml:"name"`
	Viscosity   float64 `yaml:"viscosity"`    // at 20 degC (uPa*s)
	Sensitivity float64 `yaml:"sensitivity"`  // vs. temperature (uPa*s/degC)
	MolarVolume float64 `yaml:"molar_volume"` // mL/mol
}

// Payload is the complete set of user inputs for one operation.
type Payload struct {
	TFR          float64 `yaml:"tfr"`           // total flow rate (mL/min)
	FRR          int16   `yaml:"frr"`           // flow rate ratio
	TargetVolume float64 `yaml:"target_volume"` // mL
	Temperature  float64 `yaml:"temperature"`   // degC
	LabPressure  float64 `yaml:"lab_pressure"`  // mbar

	Chip     ChipID       `yaml:"chip"`
	Manifold ManifoldID   `yaml:"manifold"`
	Solvent  OrgSolventID `yaml:"solvent"`

	OperationMode OperationMode  `yaml:"operation_mode"`
	MachineMode   MachineMode    `yaml:"machine_mode"`
	CustomSolvent *CustomSolvent `yaml:"custom_solvent,omitempty"`
}

// ApplyDefaults fills the optional fields the way the instrument expects them
// when a payload file leaves them out.
func (p *Payload) ApplyDefaults() {
	if p.OperationMode == 0 {
		p.OperationMode = Agentic
	}
	if p.MachineMode == 0 {
		p.MachineMode = Run
	}
}

// Validate checks cross-field consistency. Physical range checking is the
// collaborating validator's job; this only enforces what the wire format and
// the solvent selection require.
func (p *Payload) Validate() error {
	switch p.OperationMode {
	case Conventional, Agentic:
	default:
		return fmt.Errorf("invalid operation mode %d", int16(p.OperationMode))
	}
	switch p.MachineMode {
	case Run, Clean, PressureTest:
	default:
		return fmt.Errorf("invalid machine mode %d", int16(p.MachineMode))
	}
	if p.Solvent == Custom {
		if p.CustomSolvent == nil {
			return fmt.Errorf("custom solvent parameters required when solvent is CUSTOM")
		}
		if p.CustomSolvent.Name == "" {
			return fmt.Errorf("custom solvent name must not be empty")
		}
		if len(p.CustomSolvent.Name) > MaxSolventNameLen {
			return fmt.Errorf("custom solvent name %q exceeds %d characters", p.CustomSolvent.Name, MaxSolventNameLen)
		}
	}
	return nil
}

// --- string forms and parsing (CLI flags and YAML payload files) ---

func (m OperationMode) String() string {
	switch m {
	case Conventional:
		return "conventional"
	case Agentic:
		return "agentic"
	default:
		return fmt.Sprintf("operation-mode(%d)", int16(m))
	}
}

// ParseOperationMode parses a flag/YAML spelling of an operation mode.
func ParseOperationMode(s string) (OperationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "conventional":
		return Conventional, nil
	case "agentic":
		return Agentic, nil
	default:
		return 0, fmt.Errorf("unknown operation mode %q (want conventional or agentic)", s)
	}
}

func (m MachineMode) String() string {
	switch m {
	case Run:
		return "run"
	case Clean:
		return "clean"
	case PressureTest:
		return "pressure-test"
	default:
		return fmt.Sprintf("machine-mode(%d)", int16(m))
	}
}

// ParseMachineMode parses a flag/YAML spelling of a machine mode.
func ParseMachineMode(s string) (MachineMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "run":
		return Run, nil
	case "clean":
		return Clean, nil
	case "pressure-test", "pressure_test", "pressuretest":
		return PressureTest, nil
	default:
		return 0, fmt.Errorf("unknown machine mode %q (want run, clean, or pressure-test)", s)
	}
}

func (b CommandBit) String() string {
	switch b {
	case Start:
		return "start"
	case PausePlay:
		return "pause-play"
	case Confirm:
		return "confirm"
	case Stop:
		return "stop"
	default:
		return fmt.Sprintf("command-bit(%d)", int(b))
	}
}

func (c ChipID) String() string {
	switch c {
	case Baffle:
		return "baffle"
	case Herringbone:
		return "herringbone"
	default:
		return fmt.Sprintf("chip(%d)", int16(c))
	}
}

// ParseChipID parses a flag/YAML spelling of a chip geometry.
func ParseChipID(s string) (ChipID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "baffle":
		return Baffle, nil
	case "herringbone":
		return Herringbone, nil
	default:
		return 0, fmt.Errorf("unknown chip %q (want baffle or herringbone)", s)
	}
}

func (m ManifoldID) String() string {
	switch m {
	case Small:
		return "small"
	case Large:
		return "large"
	default:
		return fmt.Sprintf("manifold(%d)", int16(m))
	}
}

// ParseManifoldID parses a flag/YAML spelling of a manifold size.
func ParseManifoldID(s string) (ManifoldID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "small":
		return Small, nil
	case "large":
		return Large, nil
	default:
		return 0, fmt.Errorf("unknown manifold %q (want small or large)", s)
	}
}

func (s OrgSolventID) String() string {
	switch s {
	case Ethanol:
		return "ethanol"
	case IPA:
		return "ipa"
	case Acetone:
		return "acetone"
	case Methanol:
		return "methanol"
	case Custom:
		return "custom"
	default:
		return fmt.Sprintf("solvent(%d)", int16(s))
	}
}

// ParseOrgSolventID parses a flag/YAML spelling of a solvent preset.
func ParseOrgSolventID(s string) (OrgSolventID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ethanol":
		return Ethanol, nil
	case "ipa", "isopropanol":
		return IPA, nil
	case "acetone":
		return Acetone, nil
	case "methanol":
		return Methanol, nil
	case "custom":
		return Custom, nil
	default:
		return 0, fmt.Errorf("unknown solvent %q (want ethanol, ipa, acetone, methanol, or custom)", s)
	}
}

// --- YAML support: enums are spelled by name in payload files ---

func (m *OperationMode) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := ParseOperationMode(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m OperationMode) MarshalYAML() (interface{}, error) { return m.String(), nil }

func (m *MachineMode) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := ParseMachineMode(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m MachineMode) MarshalYAML() (interface{}, error) { return m.String(), nil }

func (c *ChipID) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := ParseChipID(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (c ChipID) MarshalYAML() (interface{}, error) { return c.String(), nil }

func (m *ManifoldID) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := ParseManifoldID(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m ManifoldID) MarshalYAML() (interface{}, error) { return m.String(), nil }

func (s *OrgSolventID) UnmarshalYAML(node *yaml.Node) error {
	var str string
	if err := node.Decode(&str); err != nil {
		return err
	}
	v, err := ParseOrgSolventID(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s OrgSolventID) MarshalYAML() (interface{}, error) { return s.String(), nil }

// LoadPayload reads and validates a payload from YAML bytes.
func LoadPayload(data []byte) (Payload, error) {
	var p Payload
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("parse payload: %w", err)
	}
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return Payload{}, err
	}
	return p, nil
}
