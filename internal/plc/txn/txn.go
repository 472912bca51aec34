// Package txn batches typed tag writes into a single verified commit.
// Writes are queued without I/O, then Commit pushes every cell, reads each
// one back, and compares. On any mismatch the whole batch is rolled back to
// neutral values so no partial write survives. A transaction is single-use
// and non-nestable; the Guard enforces that at most one is open at a time.
package txn

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/tamaralab/plclink/internal/logging"
	"github.com/tamaralab/plclink/internal/plc/codec"
	"github.com/tamaralab/plclink/internal/plc/tags"
	"github.com/tamaralab/plclink/internal/plc/transport"
)

// RealTolerance is the comparison tolerance for REAL verification. The
// controller stores single precision, so exact float64 equality is not
// meaningful.
const RealTolerance = 1e-6

// State tracks the transaction lifecycle. A transaction is terminal after
// Commit returns, whether it succeeded or rolled back.
type State int

const (
	Open State = iota
	Committed
	RolledBack
)

// Guard serializes transactions on a link. The underlying controller has no
// isolation between writers, so interleaved batches are a programming error.
type Guard struct {
	mu   sync.Mutex
	open bool
}

// Begin opens a transaction. It fails fast if another one is still open.
func (g *Guard) Begin(tr transport.Transport, log *logging.Logger) (*Tx, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		return nil, fmt.Errorf("transaction already open, commit or discard it first")
	}
	g.open = true
	return &Tx{guard: g, tr: tr, log: log, state: Open}, nil
}

func (g *Guard) release() {
	g.mu.Lock()
	g.open = false
	g.mu.Unlock()
}

// Mismatch is one cell whose read-back differed from the queued value.
type Mismatch struct {
	Tag  tags.ID
	Want interface{}
	Got  interface{}
}

// RollbackFailure is one cell that could not be restored to its neutral
// value. Data behind it is inconsistent on the controller.
type RollbackFailure struct {
	Tag    tags.ID
	Reason string
}

// TransactionError reports a failed commit in full: the original failure and
// whether the rollback restored every touched cell.
type TransactionError struct {
	Cause            error      // I/O error that aborted the commit, if any
	Mismatches       []Mismatch // verification failures
	RollbackFailures []RollbackFailure
}

func (e *TransactionError) Error() string {
	var b strings.Builder
	b.WriteString("transaction failed")
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	for _, m := range e.Mismatches {
		fmt.Fprintf(&b, "\n  verify %s: wrote %v, read back %v", m.Tag, m.Want, m.Got)
	}
	if len(e.RollbackFailures) == 0 {
		b.WriteString("\n  all touched tags rolled back to neutral values")
	} else {
		for _, r := range e.RollbackFailures {
			fmt.Fprintf(&b, "\n  ROLLBACK FAILED for %s: %s (data left inconsistent)", r.Tag, r.Reason)
		}
	}
	return b.String()
}

func (e *TransactionError) Unwrap() error { return e.Cause }

type pending struct {
	tag  tags.ID
	desc tags.Descriptor

	realVal float64
	intVal  int16
	boolVal bool
	strVal  string
}

// Tx is one open transaction. Not safe for concurrent use.
type Tx struct {
	guard  *Guard
	tr     transport.Transport
	log    *logging.Logger
	writes []pending
	state  State
}

// State returns the lifecycle state.
func (t *Tx) State() State { return t.state }

func (t *Tx) queue(tag tags.ID, want tags.Kind) (*pending, error) {
	if t.state != Open {
		return nil, fmt.Errorf("transaction is closed")
	}
	desc := tags.Resolve(tag)
	if desc.Kind != want {
		return nil, fmt.Errorf("tag %s is %s, cannot queue a %s write", tag, desc.Kind, want)
	}
	t.writes = append(t.writes, pending{tag: tag, desc: desc})
	return &t.writes[len(t.writes)-1], nil
}

// WriteReal queues a REAL write. No I/O happens until Commit.
func (t *Tx) WriteReal(tag tags.ID, v float64) error {
	p, err := t.queue(tag, tags.Real)
	if err != nil {
		return err
	}
	p.realVal = v
	return nil
}

// WriteInt queues an INT write. Range errors surface here, before any I/O.
func (t *Tx) WriteInt(tag tags.ID, v int) error {
	if _, err := codec.EncodeInt(v); err != nil {
		return err
	}
	p, err := t.queue(tag, tags.Int)
	if err != nil {
		return err
	}
	p.intVal = int16(v)
	return nil
}

// WriteBool queues a single-bit write.
func (t *Tx) WriteBool(tag tags.ID, v bool) error {
	p, err := t.queue(tag, tags.Bool)
	if err != nil {
		return err
	}
	p.boolVal = v
	return nil
}

// WriteString queues a STRING write. Length errors surface here, before any I/O.
func (t *Tx) WriteString(tag tags.ID, v string) error {
	if t.state != Open {
		return fmt.Errorf("transaction is closed")
	}
	desc := tags.Resolve(tag)
	if desc.Kind != tags.Str {
		return fmt.Errorf("tag %s is %s, cannot queue a STRING write", tag, desc.Kind)
	}
	if _, err := codec.EncodeString(v, desc.MaxLen); err != nil {
		return err
	}
	t.writes = append(t.writes, pending{tag: tag, desc: desc, strVal: v})
	return nil
}

// Discard abandons the transaction without touching the controller. Used on
// error paths where queueing failed before Commit.
func (t *Tx) Discard() {
	if t.state != Open {
		return
	}
	t.state = RolledBack
	t.writes = nil
	t.guard.release()
}

// Commit pushes every queued write, verifies each by reading it back, and on
// any failure rolls every touched tag back to its neutral value. Once Commit
// starts it runs to completion; the transaction is terminal afterwards.
func (t *Tx) Commit() error {
	if t.state != Open {
		return fmt.Errorf("transaction is closed")
	}
	defer t.guard.release()

	txErr := &TransactionError{}

	// Phase 1: push all writes.
	for i := range t.writes {
		if err := t.apply(&t.writes[i], false); err != nil {
			txErr.Cause = fmt.Errorf("write %s: %w", t.writes[i].tag, err)
			break
		}
	}

	// Phase 2: verify by reading back.
	if txErr.Cause == nil {
		for i := range t.writes {
			p := &t.writes[i]
			ok, got, err := t.verify(p, false)
			if err != nil {
				txErr.Cause = fmt.Errorf("verify %s: %w", p.tag, err)
				break
			}
			if !ok {
				txErr.Mismatches = append(txErr.Mismatches, Mismatch{Tag: p.tag, Want: p.value(false), Got: got})
			}
		}
	}

	if txErr.Cause == nil && len(txErr.Mismatches) == 0 {
		t.state = Committed
		for i := range t.writes {
			t.log.LogTagWrite(t.writes[i].tag.String(), t.writes[i].value(false))
		}
		return nil
	}

	// Phase 3: roll back every touched tag to its neutral value and verify
	// the rollback too. Failures here mean the controller is left
	// inconsistent; that is never silent.
	for i := range t.writes {
		p := &t.writes[i]
		if err := t.apply(p, true); err != nil {
			txErr.RollbackFailures = append(txErr.RollbackFailures, RollbackFailure{Tag: p.tag, Reason: err.Error()})
			continue
		}
		ok, got, err := t.verify(p, true)
		if err != nil {
			txErr.RollbackFailures = append(txErr.RollbackFailures, RollbackFailure{Tag: p.tag, Reason: err.Error()})
			continue
		}
		if !ok {
			txErr.RollbackFailures = append(txErr.RollbackFailures,
				RollbackFailure{Tag: p.tag, Reason: fmt.Sprintf("still reads %v after neutral write", got)})
		}
	}

	t.state = RolledBack
	if len(txErr.RollbackFailures) > 0 {
		t.log.Error("transaction rollback incomplete: %v", txErr)
	} else {
		t.log.Info("transaction failed, rollback verified")
	}
	return txErr
}

// value returns the queued value, or the kind's neutral value for rollback.
func (p *pending) value(neutral bool) interface{} {
	if neutral {
		switch p.desc.Kind {
		case tags.Real:
			return 0.0
		case tags.Int:
			return int16(0)
		case tags.Bool:
			return false
		default:
			return ""
		}
	}
	switch p.desc.Kind {
	case tags.Real:
		return p.realVal
	case tags.Int:
		return p.intVal
	case tags.Bool:
		return p.boolVal
	default:
		return p.strVal
	}
}

// apply writes one cell (the queued value, or the neutral value on rollback).
func (t *Tx) apply(p *pending, neutral bool) error {
	d := p.desc
	switch d.Kind {
	case tags.Real:
		v := p.realVal
		if neutral {
			v = 0
		}
		return t.tr.Write(d.DB, d.Offset, codec.EncodeReal(v))
	case tags.Int:
		v := int(p.intVal)
		if neutral {
			v = 0
		}
		buf, err := codec.EncodeInt(v)
		if err != nil {
			return err
		}
		return t.tr.Write(d.DB, d.Offset, buf)
	case tags.Bool:
		v := p.boolVal
		if neutral {
			v = false
		}
		// Read-modify-write of the containing byte. Safe because the guard
		// holds the link for the duration of the commit.
		cur, err := t.tr.Read(d.DB, d.Offset, 1)
		if err != nil {
			return err
		}
		b, err := codec.SetBit(cur[0], uint8(d.Bit), v)
		if err != nil {
			return err
		}
		return t.tr.Write(d.DB, d.Offset, []byte{b})
	case tags.Str:
		v := p.strVal
		if neutral {
			v = ""
		}
		buf, err := codec.EncodeString(v, d.MaxLen)
		if err != nil {
			return err
		}
		return t.tr.Write(d.DB, d.Offset, buf)
	default:
		return fmt.Errorf("unknown kind %v", d.Kind)
	}
}

// verify reads one cell back and compares it to the expected value.
func (t *Tx) verify(p *pending, neutral bool) (ok bool, got interface{}, err error) {
	d := p.desc
	switch d.Kind {
	case tags.Real:
		want := p.realVal
		if neutral {
			want = 0
		}
		data, err := t.tr.Read(d.DB, d.Offset, codec.RealSize)
		if err != nil {
			return false, nil, err
		}
		v, err := codec.DecodeReal(data)
		if err != nil {
			return false, nil, err
		}
		return math.Abs(v-want) <= RealTolerance, v, nil
	case tags.Int:
		want := p.intVal
		if neutral {
			want = 0
		}
		data, err := t.tr.Read(d.DB, d.Offset, codec.IntSize)
		if err != nil {
			return false, nil, err
		}
		v, err := codec.DecodeInt(data)
		if err != nil {
			return false, nil, err
		}
		return v == want, v, nil
	case tags.Bool:
		want := p.boolVal
		if neutral {
			want = false
		}
		data, err := t.tr.Read(d.DB, d.Offset, 1)
		if err != nil {
			return false, nil, err
		}
		v, err := codec.GetBit(data[0], uint8(d.Bit))
		if err != nil {
			return false, nil, err
		}
		return v == want, v, nil
	case tags.Str:
		want := p.strVal
		if neutral {
			want = ""
		}
		data, err := t.tr.Read(d.DB, d.Offset, codec.StringSize(d.MaxLen))
		if err != nil {
			return false, nil, err
		}
		v, err := codec.DecodeString(data)
		if err != nil {
			return false, nil, err
		}
		return v == want, v, nil
	default:
		return false, nil, fmt.Errorf("unknown kind %v", d.Kind)
	}
}
