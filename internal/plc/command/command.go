// Package command drives the controller's 3x4 command matrix: one
// Start/PausePlay/Confirm/Stop bit per machine mode. It enforces the two
// safety rules the instrument depends on: at most one mode is armed at a
// time, and stopping a mode cancels that mode's pending intents. Every bit
// mutation is written and read back before the next one.
package command

import (
	"fmt"

	"github.com/tamaralab/plclink/internal/logging"
	"github.com/tamaralab/plclink/internal/plc/codec"
	"github.com/tamaralab/plclink/internal/params"
	"github.com/tamaralab/plclink/internal/plc/tags"
	"github.com/tamaralab/plclink/internal/plc/transport"
)

// CommandError reports a command bit whose read-back did not match the value
// just written.
type CommandError struct {
	Tag  tags.ID
	Want bool
	Got  bool
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command bit %s: wrote %v, read back %v", e.Tag, e.Want, e.Got)
}

// Matrix mutates the command bits through a transport. The zero state of the
// controller-side matrix is all-false; ClearAll restores it.
type Matrix struct {
	tr  transport.Transport
	log *logging.Logger
}

// New creates a matrix over the given transport.
func New(tr transport.Transport, log *logging.Logger) *Matrix {
	return &Matrix{tr: tr, log: log}
}

// Set applies one command intent, first applying the exclusivity rules:
//
//   - Start=true clears Start in both other modes (cross-mode exclusion).
//   - Stop=true clears Start, PausePlay, and Confirm in the same mode; the
//     Stop bit itself stays set as the terminal record.
//   - Everything else touches only the targeted bit.
func (m *Matrix) Set(mode params.MachineMode, bit params.CommandBit, value bool) error {
	target, err := tags.Command(mode, bit)
	if err != nil {
		return err
	}

	switch {
	case bit == params.Start && value:
		for _, other := range params.Modes() {
			if other == mode {
				continue
			}
			otherStart, err := tags.Command(other, params.Start)
			if err != nil {
				return err
			}
			if err := m.setBit(otherStart, false); err != nil {
				return err
			}
		}
	case bit == params.Stop && value:
		for _, cancelled := range []params.CommandBit{params.Start, params.PausePlay, params.Confirm} {
			id, err := tags.Command(mode, cancelled)
			if err != nil {
				return err
			}
			if err := m.setBit(id, false); err != nil {
				return err
			}
		}
	}

	if err := m.setBit(target, value); err != nil {
		return err
	}
	m.log.Verbose("command %s set to %v", target, value)
	return nil
}

// ClearAll sets all twelve command bits false and verifies each. Used on
// connect and on fault recovery.
func (m *Matrix) ClearAll() error {
	for _, mode := range params.Modes() {
		for _, bit := range params.CommandBits() {
			id, err := tags.Command(mode, bit)
			if err != nil {
				return err
			}
			if err := m.setBit(id, false); err != nil {
				return err
			}
		}
	}
	m.log.Verbose("all command bits cleared and verified")
	return nil
}

// Get reads one command bit.
func (m *Matrix) Get(mode params.MachineMode, bit params.CommandBit) (bool, error) {
	id, err := tags.Command(mode, bit)
	if err != nil {
		return false, err
	}
	return m.readBit(id)
}

// setBit is one verified single-bit mutation: read byte, flip bit, write
// byte, read back.
func (m *Matrix) setBit(id tags.ID, value bool) error {
	d := tags.Resolve(id)
	cur, err := m.tr.Read(d.DB, d.Offset, 1)
	if err != nil {
		return fmt.Errorf("read %s: %w", id, err)
	}
	b, err := codec.SetBit(cur[0], uint8(d.Bit), value)
	if err != nil {
		return err
	}
	if err := m.tr.Write(d.DB, d.Offset, []byte{b}); err != nil {
		return fmt.Errorf("write %s: %w", id, err)
	}

	got, err := m.readBit(id)
	if err != nil {
		return fmt.Errorf("verify %s: %w", id, err)
	}
	if got != value {
		return &CommandError{Tag: id, Want: value, Got: got}
	}
	return nil
}

func (m *Matrix) readBit(id tags.ID) (bool, error) {
	d := tags.Resolve(id)
	data, err := m.tr.Read(d.DB, d.Offset, 1)
	if err != nil {
		return false, err
	}
	return codec.GetBit(data[0], uint8(d.Bit))
}
