// Package errors decorates low-level failures with the context an operator
// at the instrument needs: what went wrong, the likely reason, and what to
// try next. The underlying error stays reachable through Unwrap.
package errors

import (
	"fmt"
	"strings"
)

// UserFriendlyError carries a message plus optional reason/hint/try lines.
type UserFriendlyError struct {
	Message string
	Reason  string
	Hint    string
	Try     string
	Err     error
}

func (e UserFriendlyError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Message)
	if e.Reason != "" {
		buf.WriteString("\n  Reason: " + e.Reason)
	}
	if e.Hint != "" {
		buf.WriteString("\n  Hint: " + e.Hint)
	}
	if e.Try != "" {
		buf.WriteString("\n  Try: " + e.Try)
	}
	if e.Err != nil {
		buf.WriteString("\n  Details: " + e.Err.Error())
	}
	return buf.String()
}

func (e UserFriendlyError) Unwrap() error { return e.Err }

// WrapConnectionError explains a failed controller connection.
func WrapConnectionError(err error, ip string, rack, slot int) error {
	if err == nil {
		return nil
	}
	return UserFriendlyError{
		Message: fmt.Sprintf("Failed to reach the controller at %s (rack %d, slot %d)", ip, rack, slot),
		Reason:  extractConnectionReason(err),
		Hint:    "The controller listens on TCP port 102; check cabling, addressing, and that PUT/GET access is enabled on the CPU",
		Try:     "PLC_SIM=1 plclink status   (runs against the simulator)",
		Err:     err,
	}
}

// WrapPayloadError explains a parameter file that could not be loaded.
func WrapPayloadError(err error, path string) error {
	if err == nil {
		return nil
	}
	return UserFriendlyError{
		Message: fmt.Sprintf("Parameter file %s rejected", path),
		Reason:  err.Error(),
		Hint:    "Payload files are YAML; enums are spelled by name (chip: baffle, solvent: ethanol, machine_mode: run)",
		Try:     "plclink write --params " + path + " after fixing the field named above",
		Err:     err,
	}
}

// WrapWriteError explains a failed verified write so the operator knows
// whether the controller was left consistent.
func WrapWriteError(err error, operation string) error {
	if err == nil {
		return nil
	}
	return UserFriendlyError{
		Message: fmt.Sprintf("Controller write failed: %s", operation),
		Reason:  "A value read back from the controller did not match what was written",
		Hint:    "The details below state whether the rollback restored every touched tag",
		Err:     err,
	}
}

func extractConnectionReason(err error) string {
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded"):
		return "Connection timeout, controller may be offline or unreachable"
	case strings.Contains(errStr, "connection refused"):
		return "Connection refused, nothing is listening on port 102 at that address"
	case strings.Contains(errStr, "no route to host"):
		return "No route to host, network routing issue or controller unreachable"
	case strings.Contains(errStr, "connection reset"):
		return "Connection reset, the controller closed the session unexpectedly"
	default:
		return errStr
	}
}
