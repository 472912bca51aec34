package app

import (
	"fmt"
	"io"
	"os"
	"time"

	uerrors "github.com/tamaralab/plclink/internal/errors"
	"github.com/tamaralab/plclink/internal/params"
	"github.com/tamaralab/plclink/internal/plc/link"
)

// WriteOptions controls the write command.
type WriteOptions struct {
	ParamsFile string
	// Full also writes the machine-mode tag from the payload.
	Full bool
	// Wait polls the validation bit after the write.
	Wait    bool
	Poll    time.Duration
	Timeout time.Duration
}

// Write loads a payload file, writes it to the controller in one verified
// transaction, and optionally waits for the controller to validate it.
func Write(l *link.Link, out io.Writer, opts WriteOptions) error {
	p, err := loadPayloadFile(opts.ParamsFile)
	if err != nil {
		return err
	}

	if opts.Full {
		err = l.WriteFullPayload(p)
	} else {
		err = l.WriteParameters(p)
	}
	if err != nil {
		return uerrors.WrapWriteError(err, "experiment parameters")
	}
	fmt.Fprintf(out, "Parameters from %s written and verified.\n", opts.ParamsFile)

	if !opts.Wait {
		return nil
	}
	return reportValidation(l, out, opts.Poll, opts.Timeout)
}

func loadPayloadFile(path string) (params.Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return params.Payload{}, uerrors.WrapPayloadError(err, path)
	}
	p, err := params.LoadPayload(data)
	if err != nil {
		return params.Payload{}, uerrors.WrapPayloadError(err, path)
	}
	return p, nil
}

// reportValidation waits for CRUNCH_VALID and tells the operator the outcome.
// A timeout is reported but is not an error; the controller may simply still
// be evaluating.
func reportValidation(l *link.Link, out io.Writer, poll, timeout time.Duration) error {
	fmt.Fprintf(out, "Waiting up to %s for the controller to validate...\n", timeout)
	ok, err := l.WaitForValidation(poll, timeout)
	if err != nil {
		return fmt.Errorf("poll validation bit: %w", err)
	}
	if ok {
		fmt.Fprintln(out, "Controller accepted the parameters.")
	} else {
		fmt.Fprintf(out, "Controller did not validate within %s; check the parameters on the HMI.\n", timeout)
	}
	return nil
}
