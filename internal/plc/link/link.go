// Package link is the single entry point collaborators use to talk to the
// controller. It owns the connection lifecycle (including the one-time
// downgrade to the simulator), the transaction guard, and the whitelisted
// high-level operations; nothing outside this package addresses the tag
// registry or the transport directly.
package link

import (
	"fmt"
	"time"

	"github.com/tamaralab/plclink/internal/config"
	"github.com/tamaralab/plclink/internal/logging"
	"github.com/tamaralab/plclink/internal/params"
	"github.com/tamaralab/plclink/internal/plc/codec"
	"github.com/tamaralab/plclink/internal/plc/command"
	"github.com/tamaralab/plclink/internal/plc/tags"
	"github.com/tamaralab/plclink/internal/plc/transport"
	"github.com/tamaralab/plclink/internal/plc/txn"
)

// State describes what the link is connected to.
type State int

const (
	Disconnected State = iota
	ConnectedReal
	ConnectedSim
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case ConnectedReal:
		return "connected (plc)"
	case ConnectedSim:
		return "connected (simulator)"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Link is the facade over one controller connection. Callers open it, defer
// Close, and use only the operations below. Not safe for concurrent use;
// the underlying link has no isolation between writers.
type Link struct {
	cfg   config.Config
	log   *logging.Logger
	tr    transport.Transport
	sim   *transport.Sim // non-nil when tr is the simulator
	state State
	guard txn.Guard
	cmds  *command.Matrix
}

// Open connects per the configuration. With simulation off it tries the
// physical controller once; if that connect fails it performs exactly one
// fallback to the simulator, logs the downgrade, and never retries the
// physical link. Callers must Close the link on every exit path.
func Open(cfg config.Config, log *logging.Logger) (*Link, error) {
	var real transport.Transport
	if !cfg.Simulate {
		real = transport.NewS7(cfg.IP, cfg.Rack, cfg.Slot, tags.ExperimentDB)
	}
	return open(cfg, log, real)
}

// open is the injectable core of Open; tests pass a fake physical transport.
func open(cfg config.Config, log *logging.Logger, real transport.Transport) (*Link, error) {
	l := &Link{cfg: cfg, log: log, state: Disconnected}
	log.LogStartup(cfg.IP, cfg.Rack, cfg.Slot, cfg.Simulate)

	if real != nil {
		if err := real.Connect(); err != nil {
			log.LogDowngrade(cfg.IP, err)
		} else {
			l.tr = real
			l.state = ConnectedReal
		}
	}

	if l.tr == nil {
		var simLog *logging.Logger
		if cfg.SimDebug {
			simLog = log
		}
		sim := transport.NewSim(tags.ExperimentDB, simLog)
		if err := sim.Connect(); err != nil {
			return nil, err
		}
		l.tr = sim
		l.sim = sim
		l.state = ConnectedSim
	}

	l.cmds = command.New(l.tr, log)
	log.Info("PLC link open: %s", l.tr)
	return l, nil
}

// Close disconnects. Safe to call more than once.
func (l *Link) Close() error {
	if l.state == Disconnected {
		return nil
	}
	err := l.tr.Disconnect()
	l.state = Disconnected
	l.log.Info("PLC link closed")
	return err
}

// State reports what the link is currently connected to. A downgrade to the
// simulator is recorded here and never silently reverted.
func (l *Link) State() State { return l.state }

// Simulator returns the in-memory transport when the link is simulated, nil
// otherwise. Fixtures use it to emulate controller-side behavior.
func (l *Link) Simulator() *transport.Sim { return l.sim }

// --- parameter writes ---

// WriteParameters writes the operation mode and every experiment field in
// one transaction. It deliberately does not touch the machine-mode tag or
// any command bit, so the controller can evaluate the parameters before a
// mode transition is armed.
func (l *Link) WriteParameters(p params.Payload) error {
	return l.writePayload(p, false)
}

// WriteFullPayload writes everything WriteParameters writes plus the
// machine-mode tag, all in the same transaction.
func (l *Link) WriteFullPayload(p params.Payload) error {
	return l.writePayload(p, true)
}

func (l *Link) writePayload(p params.Payload, includeMachineMode bool) error {
	if err := p.Validate(); err != nil {
		return err
	}

	tx, err := l.guard.Begin(l.tr, l.log)
	if err != nil {
		return err
	}
	if err := queuePayload(tx, p, includeMachineMode); err != nil {
		tx.Discard()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	l.log.Info("experiment parameters written: tfr=%g frr=%d vol=%g temp=%g chip=%s manifold=%s solvent=%s",
		p.TFR, p.FRR, p.TargetVolume, p.Temperature, p.Chip, p.Manifold, p.Solvent)
	return nil
}

func queuePayload(tx *txn.Tx, p params.Payload, includeMachineMode bool) error {
	if err := tx.WriteInt(tags.OperationMode, int(p.OperationMode)); err != nil {
		return err
	}
	if includeMachineMode {
		if err := tx.WriteInt(tags.MachineMode, int(p.MachineMode)); err != nil {
			return err
		}
	}

	if err := tx.WriteReal(tags.TFR, p.TFR); err != nil {
		return err
	}
	if err := tx.WriteInt(tags.FRR, int(p.FRR)); err != nil {
		return err
	}
	if err := tx.WriteReal(tags.TargetVolume, p.TargetVolume); err != nil {
		return err
	}
	if err := tx.WriteReal(tags.Temperature, p.Temperature); err != nil {
		return err
	}
	if err := tx.WriteInt(tags.ChipID, int(p.Chip)); err != nil {
		return err
	}
	if err := tx.WriteInt(tags.ManifoldID, int(p.Manifold)); err != nil {
		return err
	}
	if err := tx.WriteReal(tags.LabPressure, p.LabPressure); err != nil {
		return err
	}
	if err := tx.WriteInt(tags.OrgSolventID, int(p.Solvent)); err != nil {
		return err
	}

	if p.Solvent == params.Custom {
		cs := p.CustomSolvent
		if err := tx.WriteString(tags.CustomOrgSolvent, cs.Name); err != nil {
			return err
		}
		if err := tx.WriteReal(tags.Viscosity, cs.Viscosity); err != nil {
			return err
		}
		if err := tx.WriteReal(tags.Sensitivity, cs.Sensitivity); err != nil {
			return err
		}
		return tx.WriteReal(tags.MolarVolume, cs.MolarVolume)
	}

	// Preset solvent: clear the custom fields so stale values never leak
	// into a later run.
	if err := tx.WriteString(tags.CustomOrgSolvent, ""); err != nil {
		return err
	}
	if err := tx.WriteReal(tags.Viscosity, 0); err != nil {
		return err
	}
	if err := tx.WriteReal(tags.Sensitivity, 0); err != nil {
		return err
	}
	return tx.WriteReal(tags.MolarVolume, 0)
}

// SetMachineMode writes the machine-mode tag alone, in its own transaction.
func (l *Link) SetMachineMode(mode params.MachineMode) error {
	tx, err := l.guard.Begin(l.tr, l.log)
	if err != nil {
		return err
	}
	if err := tx.WriteInt(tags.MachineMode, int(mode)); err != nil {
		tx.Discard()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	l.log.Info("machine mode set to %s", mode)
	return nil
}

// --- commands ---

// StartOperation arms the given mode: all command bits are cleared and
// verified, then the mode's Start bit is set. Cross-mode exclusion holds by
// construction afterwards.
func (l *Link) StartOperation(mode params.MachineMode) error {
	if err := l.cmds.ClearAll(); err != nil {
		return err
	}
	if err := l.cmds.Set(mode, params.Start, true); err != nil {
		return err
	}
	l.log.Info("operation started: %s", mode)
	return nil
}

// Pause sets or clears the mode's PausePlay bit.
func (l *Link) Pause(mode params.MachineMode, value bool) error {
	return l.cmds.Set(mode, params.PausePlay, value)
}

// Confirm sets the mode's Confirm bit.
func (l *Link) Confirm(mode params.MachineMode) error {
	return l.cmds.Set(mode, params.Confirm, true)
}

// Stop raises the mode's Stop bit, cancelling that mode's pending intents.
func (l *Link) Stop(mode params.MachineMode) error {
	return l.cmds.Set(mode, params.Stop, true)
}

// ClearCommands clears all twelve command bits. Exposed for fault recovery.
func (l *Link) ClearCommands() error {
	return l.cmds.ClearAll()
}

// Command reads back one command bit.
func (l *Link) Command(mode params.MachineMode, bit params.CommandBit) (bool, error) {
	return l.cmds.Get(mode, bit)
}

// --- typed reads (no transaction needed) ---

// ReadStatus returns the raw machine-mode cell: one of the MachineMode codes
// during normal operation, anything else is a controller fault code.
func (l *Link) ReadStatus() (int16, error) {
	return l.readInt(tags.MachineMode)
}

// ReadOperationMode returns the operation mode, rejecting unknown codes.
func (l *Link) ReadOperationMode() (params.OperationMode, error) {
	v, err := l.readInt(tags.OperationMode)
	if err != nil {
		return 0, err
	}
	mode := params.OperationMode(v)
	switch mode {
	case params.Conventional, params.Agentic:
		return mode, nil
	default:
		return 0, fmt.Errorf("invalid operation mode value %d", v)
	}
}

// ReadValidationBit reads CRUNCH_VALID, the controller-side acceptance flag.
func (l *Link) ReadValidationBit() (bool, error) {
	return l.readBool(tags.CrunchValid)
}

// WaitForValidation polls CRUNCH_VALID until it reads true or the budget is
// exhausted. Exhausting the budget is a normal negative result, not an
// error.
func (l *Link) WaitForValidation(interval, budget time.Duration) (bool, error) {
	deadline := time.Now().Add(budget)
	for {
		ok, err := l.ReadValidationBit()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if !time.Now().Before(deadline) {
			return false, nil
		}
		time.Sleep(interval)
	}
}

// ReadBackParameters reconstructs the experiment payload from the
// controller, field by field. Used to confirm what the instrument will
// actually run with.
func (l *Link) ReadBackParameters() (params.Payload, error) {
	var p params.Payload
	var err error

	var iv int16
	if iv, err = l.readInt(tags.OperationMode); err != nil {
		return p, err
	}
	p.OperationMode = params.OperationMode(iv)
	if iv, err = l.readInt(tags.MachineMode); err != nil {
		return p, err
	}
	p.MachineMode = params.MachineMode(iv)

	if p.TFR, err = l.readReal(tags.TFR); err != nil {
		return p, err
	}
	if p.FRR, err = l.readInt(tags.FRR); err != nil {
		return p, err
	}
	if p.TargetVolume, err = l.readReal(tags.TargetVolume); err != nil {
		return p, err
	}
	if p.Temperature, err = l.readReal(tags.Temperature); err != nil {
		return p, err
	}
	if iv, err = l.readInt(tags.ChipID); err != nil {
		return p, err
	}
	p.Chip = params.ChipID(iv)
	if iv, err = l.readInt(tags.ManifoldID); err != nil {
		return p, err
	}
	p.Manifold = params.ManifoldID(iv)
	if p.LabPressure, err = l.readReal(tags.LabPressure); err != nil {
		return p, err
	}
	if iv, err = l.readInt(tags.OrgSolventID); err != nil {
		return p, err
	}
	p.Solvent = params.OrgSolventID(iv)

	if p.Solvent == params.Custom {
		cs := &params.CustomSolvent{}
		if cs.Name, err = l.readString(tags.CustomOrgSolvent); err != nil {
			return p, err
		}
		if cs.Viscosity, err = l.readReal(tags.Viscosity); err != nil {
			return p, err
		}
		if cs.Sensitivity, err = l.readReal(tags.Sensitivity); err != nil {
			return p, err
		}
		if cs.MolarVolume, err = l.readReal(tags.MolarVolume); err != nil {
			return p, err
		}
		p.CustomSolvent = cs
	}
	return p, nil
}

// --- low-level typed reads ---

func (l *Link) readReal(id tags.ID) (float64, error) {
	d := tags.Resolve(id)
	data, err := l.tr.Read(d.DB, d.Offset, codec.RealSize)
	if err != nil {
		return 0, err
	}
	l.log.LogHex(id.String(), data)
	return codec.DecodeReal(data)
}

func (l *Link) readInt(id tags.ID) (int16, error) {
	d := tags.Resolve(id)
	data, err := l.tr.Read(d.DB, d.Offset, codec.IntSize)
	if err != nil {
		return 0, err
	}
	l.log.LogHex(id.String(), data)
	return codec.DecodeInt(data)
}

func (l *Link) readBool(id tags.ID) (bool, error) {
	d := tags.Resolve(id)
	data, err := l.tr.Read(d.DB, d.Offset, 1)
	if err != nil {
		return false, err
	}
	return codec.GetBit(data[0], uint8(d.Bit))
}

func (l *Link) readString(id tags.ID) (string, error) {
	d := tags.Resolve(id)
	data, err := l.tr.Read(d.DB, d.Offset, codec.StringSize(d.MaxLen))
	if err != nil {
		return "", err
	}
	return codec.DecodeString(data)
}
