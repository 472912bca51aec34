package app

import (
	"fmt"
	"io"

	uerrors "github.com/tamaralab/plclink/internal/errors"
	"github.com/tamaralab/plclink/internal/params"
	"github.com/tamaralab/plclink/internal/plc/link"
)

// Start arms the given machine mode: clears every command bit, then raises
// the mode's Start bit.
func Start(l *link.Link, out io.Writer, mode params.MachineMode) error {
	if err := l.StartOperation(mode); err != nil {
		return uerrors.WrapWriteError(err, fmt.Sprintf("start %s", mode))
	}
	fmt.Fprintf(out, "%s started.\n", mode)
	return nil
}

// Pause toggles the mode's pause/play bit. resume=true clears it.
func Pause(l *link.Link, out io.Writer, mode params.MachineMode, resume bool) error {
	if err := l.Pause(mode, !resume); err != nil {
		return uerrors.WrapWriteError(err, fmt.Sprintf("pause %s", mode))
	}
	if resume {
		fmt.Fprintf(out, "%s resumed.\n", mode)
	} else {
		fmt.Fprintf(out, "%s paused.\n", mode)
	}
	return nil
}

// Confirm raises the mode's confirm bit, acknowledging a controller prompt.
func Confirm(l *link.Link, out io.Writer, mode params.MachineMode) error {
	if err := l.Confirm(mode); err != nil {
		return uerrors.WrapWriteError(err, fmt.Sprintf("confirm %s", mode))
	}
	fmt.Fprintf(out, "%s confirmed.\n", mode)
	return nil
}

// Stop raises the mode's stop bit; the other intent bits for that mode are
// cleared first so the controller sees a clean cancellation.
func Stop(l *link.Link, out io.Writer, mode params.MachineMode) error {
	if err := l.Stop(mode); err != nil {
		return uerrors.WrapWriteError(err, fmt.Sprintf("stop %s", mode))
	}
	fmt.Fprintf(out, "%s stopped.\n", mode)
	return nil
}

// ClearCommands zeroes all twelve command bits. Recovery hatch for a matrix
// left in a bad state.
func ClearCommands(l *link.Link, out io.Writer) error {
	if err := l.ClearCommands(); err != nil {
		return uerrors.WrapWriteError(err, "clear command bits")
	}
	fmt.Fprintln(out, "All command bits cleared.")
	return nil
}
