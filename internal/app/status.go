package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"

	"github.com/tamaralab/plclink/internal/params"
	"github.com/tamaralab/plclink/internal/plc/link"
)

var (
	statusTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(16)
	statusWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	statusOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	statusPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("8")).
				Padding(0, 1)
)

// StatusOptions controls the status command.
type StatusOptions struct {
	// Copy puts the rendered report on the system clipboard as well.
	Copy bool
}

// Status reads the controller state and the parameter cells, renders a
// report to out, and optionally copies it to the clipboard.
func Status(l *link.Link, out io.Writer, opts StatusOptions) error {
	report, err := buildStatusReport(l)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, statusPanelStyle.Render(report))

	if opts.Copy {
		if err := clipboard.WriteAll(stripANSI(report)); err != nil {
			return fmt.Errorf("copy status to clipboard: %w", err)
		}
		fmt.Fprintln(out, "Status copied to clipboard.")
	}
	return nil
}

func buildStatusReport(l *link.Link) (string, error) {
	status, err := l.ReadStatus()
	if err != nil {
		return "", fmt.Errorf("read machine mode: %w", err)
	}
	valid, err := l.ReadValidationBit()
	if err != nil {
		return "", fmt.Errorf("read validation bit: %w", err)
	}
	p, err := l.ReadBackParameters()
	if err != nil {
		return "", fmt.Errorf("read back parameters: %w", err)
	}

	var b strings.Builder
	b.WriteString(statusTitleStyle.Render("Controller status") + "\n")
	row(&b, "Link", l.State().String())
	row(&b, "Machine mode", describeStatus(status))
	row(&b, "Operation mode", describeOperationMode(p.OperationMode))
	if valid {
		row(&b, "Parameters", statusOKStyle.Render("accepted (CRUNCH_VALID set)"))
	} else {
		row(&b, "Parameters", statusWarnStyle.Render("not validated"))
	}

	b.WriteString("\n" + statusTitleStyle.Render("Experiment parameters") + "\n")
	row(&b, "TFR", fmt.Sprintf("%g mL/min", p.TFR))
	row(&b, "FRR", fmt.Sprintf("%d", p.FRR))
	row(&b, "Target volume", fmt.Sprintf("%g mL", p.TargetVolume))
	row(&b, "Temperature", fmt.Sprintf("%g degC", p.Temperature))
	row(&b, "Lab pressure", fmt.Sprintf("%g mbar", p.LabPressure))
	row(&b, "Chip", p.Chip.String())
	row(&b, "Manifold", p.Manifold.String())
	row(&b, "Solvent", p.Solvent.String())
	if p.Solvent == params.Custom && p.CustomSolvent != nil {
		cs := p.CustomSolvent
		row(&b, "  Name", cs.Name)
		row(&b, "  Viscosity", fmt.Sprintf("%g uPa*s", cs.Viscosity))
		row(&b, "  Sensitivity", fmt.Sprintf("%g uPa*s/degC", cs.Sensitivity))
		row(&b, "  Molar volume", fmt.Sprintf("%g mL/mol", cs.MolarVolume))
	}

	b.WriteString("\n" + statusTitleStyle.Render("Command bits") + "\n")
	for _, mode := range params.Modes() {
		var set []string
		for _, bit := range params.CommandBits() {
			on, err := l.Command(mode, bit)
			if err != nil {
				return "", fmt.Errorf("read %s/%s: %w", mode, bit, err)
			}
			if on {
				set = append(set, bit.String())
			}
		}
		if len(set) == 0 {
			row(&b, mode.String(), "idle")
		} else {
			row(&b, mode.String(), statusWarnStyle.Render(strings.Join(set, ", ")))
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(statusLabelStyle.Render(label) + " " + value + "\n")
}

// describeStatus spells the machine-mode cell: known codes by name, anything
// else as a raw fault code.
func describeStatus(v int16) string {
	mode := params.MachineMode(v)
	switch mode {
	case params.Run, params.Clean, params.PressureTest:
		return mode.String()
	case 0:
		return "idle (0)"
	default:
		return statusWarnStyle.Render(fmt.Sprintf("fault code %d", v))
	}
}

func describeOperationMode(m params.OperationMode) string {
	switch m {
	case params.Conventional, params.Agentic:
		return m.String()
	default:
		return statusWarnStyle.Render(fmt.Sprintf("invalid (%d)", int16(m)))
	}
}

// stripANSI drops styling escape sequences so clipboard content is plain text.
func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
