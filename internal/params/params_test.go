package params

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func validPayload() Payload {
	return Payload{
		TFR:           1.0,
		FRR:           5,
		TargetVolume:  10.0,
		Temperature:   25.0,
		LabPressure:   1000.0,
		Chip:          Baffle,
		Manifold:      Small,
		Solvent:       Ethanol,
		OperationMode: Agentic,
		MachineMode:   Run,
	}
}

func TestValidateAcceptsPresetPayload(t *testing.T) {
	p := validPayload()
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidateCustomSolventRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Payload)
		wantErr bool
	}{
		{"custom without parameters", func(p *Payload) {
			p.Solvent = Custom
		}, true},
		{"custom with empty name", func(p *Payload) {
			p.Solvent = Custom
			p.CustomSolvent = &CustomSolvent{Name: ""}
		}, true},
		{"custom name too long", func(p *Payload) {
			p.Solvent = Custom
			p.CustomSolvent = &CustomSolvent{Name: strings.Repeat("x", MaxSolventNameLen+1)}
		}, true},
		{"custom name at limit", func(p *Payload) {
			p.Solvent = Custom
			p.CustomSolvent = &CustomSolvent{Name: strings.Repeat("x", MaxSolventNameLen), Viscosity: 1}
		}, false},
		{"bad machine mode", func(p *Payload) {
			p.MachineMode = MachineMode(9)
		}, true},
		{"bad operation mode", func(p *Payload) {
			p.OperationMode = OperationMode(3)
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			tt.mutate(&p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	var p Payload
	p.ApplyDefaults()
	if p.OperationMode != Agentic {
		t.Errorf("OperationMode = %v, want agentic default", p.OperationMode)
	}
	if p.MachineMode != Run {
		t.Errorf("MachineMode = %v, want run default", p.MachineMode)
	}
}

func TestParseMachineMode(t *testing.T) {
	tests := []struct {
		in      string
		want    MachineMode
		wantErr bool
	}{
		{"run", Run, false},
		{"RUN", Run, false},
		{"clean", Clean, false},
		{"pressure-test", PressureTest, false},
		{"pressure_test", PressureTest, false},
		{"standby", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMachineMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMachineMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseMachineMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWireCodes(t *testing.T) {
	// These are controller-side constants; changing them breaks the protocol.
	if Conventional != 1 || Agentic != 2 {
		t.Error("operation mode codes drifted")
	}
	if Run != 2 || Clean != 3 || PressureTest != 4 {
		t.Error("machine mode codes drifted")
	}
	if Baffle != 0 || Herringbone != 1 {
		t.Error("chip codes drifted")
	}
	if Ethanol != 0 || IPA != 1 || Acetone != 2 || Methanol != 3 || Custom != 4 {
		t.Error("solvent codes drifted")
	}
}

func TestLoadPayloadYAML(t *testing.T) {
	doc := `
tfr: 1.0
frr: 5
target_volume: 10.0
temperature: 25.0
lab_pressure: 1000.0
chip: baffle
manifold: small
solvent: ethanol
`
	p, err := LoadPayload([]byte(doc))
	if err != nil {
		t.Fatalf("LoadPayload() error = %v", err)
	}
	if p.TFR != 1.0 || p.FRR != 5 || p.Chip != Baffle || p.Solvent != Ethanol {
		t.Errorf("LoadPayload() = %+v", p)
	}
	// Unspecified optional fields get their defaults.
	if p.OperationMode != Agentic || p.MachineMode != Run {
		t.Errorf("defaults not applied: %+v", p)
	}
}

func TestLoadPayloadCustomSolvent(t *testing.T) {
	doc := `
tfr: 0.5
frr: 3
target_volume: 5.0
temperature: 20.0
lab_pressure: 1013.0
chip: herringbone
manifold: large
solvent: custom
machine_mode: clean
custom_solvent:
  name: DMSO
  viscosity: 1996.0
  sensitivity: -45.2
  molar_volume: 71.3
`
	p, err := LoadPayload([]byte(doc))
	if err != nil {
		t.Fatalf("LoadPayload() error = %v", err)
	}
	if p.Solvent != Custom || p.CustomSolvent == nil || p.CustomSolvent.Name != "DMSO" {
		t.Errorf("LoadPayload() = %+v", p)
	}
	if p.MachineMode != Clean {
		t.Errorf("MachineMode = %v, want clean", p.MachineMode)
	}
}

func TestLoadPayloadRejectsUnknownEnum(t *testing.T) {
	doc := "tfr: 1.0\nfrr: 5\nchip: spiral\nmanifold: small\nsolvent: ethanol\n"
	if _, err := LoadPayload([]byte(doc)); err == nil {
		t.Error("LoadPayload() with unknown chip: expected error")
	}
}

func TestEnumYAMLRoundTrip(t *testing.T) {
	p := validPayload()
	out, err := yaml.Marshal(&p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(out), "chip: baffle") {
		t.Errorf("enums not spelled by name:\n%s", out)
	}
	var back Payload
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back.Chip != p.Chip || back.Solvent != p.Solvent || back.MachineMode != p.MachineMode {
		t.Errorf("round trip = %+v, want %+v", back, p)
	}
}
