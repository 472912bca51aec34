package app

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"

	uerrors "github.com/tamaralab/plclink/internal/errors"
	"github.com/tamaralab/plclink/internal/params"
	"github.com/tamaralab/plclink/internal/plc/link"
	"github.com/tamaralab/plclink/internal/plc/tags"
)

// DemoOptions controls the interactive demo.
type DemoOptions struct {
	Poll    time.Duration
	Timeout time.Duration
}

// Demo walks an operator through a full cycle: collect parameters in a form,
// write them, wait for controller validation, start the run, and stop it on
// request. Against the simulator it also plays the controller's side and
// raises the validation bit itself.
func Demo(l *link.Link, out io.Writer, opts DemoOptions) error {
	p, err := collectPayload()
	if err != nil {
		return err
	}

	if err := l.WriteFullPayload(p); err != nil {
		return uerrors.WrapWriteError(err, "demo parameters")
	}
	fmt.Fprintln(out, "Parameters written and verified.")

	if sim := l.Simulator(); sim != nil {
		// Play the controller: accept the parameters after a short delay.
		d := tags.Resolve(tags.CrunchValid)
		go func() {
			time.Sleep(250 * time.Millisecond)
			sim.SetBit(d.DB, d.Offset, uint8(d.Bit), true)
		}()
	}

	if err := reportValidation(l, out, opts.Poll, opts.Timeout); err != nil {
		return err
	}

	var proceed bool
	confirm := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Start %s now?", p.MachineMode)).
			Value(&proceed),
	))
	if err := confirm.Run(); err != nil {
		return err
	}
	if !proceed {
		fmt.Fprintln(out, "Demo aborted before start; controller left armed with the written parameters.")
		return nil
	}

	if err := Start(l, out, p.MachineMode); err != nil {
		return err
	}

	var stop bool
	stopForm := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Run in progress. Stop it?").
			Affirmative("Stop").
			Negative("Leave running").
			Value(&stop),
	))
	if err := stopForm.Run(); err != nil {
		return err
	}
	if !stop {
		fmt.Fprintln(out, "Leaving the run in progress.")
		return nil
	}
	if err := Stop(l, out, p.MachineMode); err != nil {
		return err
	}
	return ClearCommands(l, out)
}

// collectPayload builds the demo form. Enum fields are selects over the
// preset names; numeric fields validate as they are typed.
func collectPayload() (params.Payload, error) {
	var p params.Payload
	p.ApplyDefaults()

	var (
		tfr     = "1.0"
		frr     = "5"
		volume  = "10.0"
		temp    = "25.0"
		pressur = "1013.0"
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Total flow rate (mL/min)").
				Value(&tfr).
				Validate(validateFloat),
			huh.NewInput().
				Title("Flow rate ratio").
				Value(&frr).
				Validate(validateInt),
			huh.NewInput().
				Title("Target volume (mL)").
				Value(&volume).
				Validate(validateFloat),
			huh.NewInput().
				Title("Temperature (degC)").
				Value(&temp).
				Validate(validateFloat),
			huh.NewInput().
				Title("Lab pressure (mbar)").
				Value(&pressur).
				Validate(validateFloat),
		),
		huh.NewGroup(
			huh.NewSelect[params.ChipID]().
				Title("Chip").
				Options(
					huh.NewOption("Baffle", params.Baffle),
					huh.NewOption("Herringbone", params.Herringbone),
				).
				Value(&p.Chip),
			huh.NewSelect[params.ManifoldID]().
				Title("Manifold").
				Options(
					huh.NewOption("Small", params.Small),
					huh.NewOption("Large", params.Large),
				).
				Value(&p.Manifold),
			huh.NewSelect[params.OrgSolventID]().
				Title("Organic solvent").
				Options(
					huh.NewOption("Ethanol", params.Ethanol),
					huh.NewOption("IPA", params.IPA),
					huh.NewOption("Acetone", params.Acetone),
					huh.NewOption("Methanol", params.Methanol),
				).
				Value(&p.Solvent),
			huh.NewSelect[params.MachineMode]().
				Title("Machine mode").
				Options(
					huh.NewOption("Run", params.Run),
					huh.NewOption("Clean", params.Clean),
					huh.NewOption("Pressure test", params.PressureTest),
				).
				Value(&p.MachineMode),
		),
	)
	if err := form.Run(); err != nil {
		return params.Payload{}, err
	}

	p.TFR, _ = strconv.ParseFloat(tfr, 64)
	p.TargetVolume, _ = strconv.ParseFloat(volume, 64)
	p.Temperature, _ = strconv.ParseFloat(temp, 64)
	p.LabPressure, _ = strconv.ParseFloat(pressur, 64)
	f, _ := strconv.ParseInt(frr, 10, 16)
	p.FRR = int16(f)

	return p, p.Validate()
}

func validateFloat(s string) error {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return fmt.Errorf("enter a number")
	}
	return nil
}

func validateInt(s string) error {
	if _, err := strconv.ParseInt(s, 10, 16); err != nil {
		return fmt.Errorf("enter a whole number")
	}
	return nil
}
