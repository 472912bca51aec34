// Package transport abstracts the byte-level link to the controller's data
// block. Two implementations exist: S7 drives a physical S7-1200 over
// ISO-on-TCP, and Sim is a safe in-memory stand-in used for development and
// as the default. Both enforce the same whitelist: only the experiment block
// may be addressed.
package transport

import "fmt"

// Transport is a raw byte link to controller memory. Every Read and Write is
// a single synchronous round trip; implementations never buffer across calls.
type Transport interface {
	Connect() error
	Disconnect() error
	Connected() bool

	// Read returns size bytes starting at start within the data block.
	Read(db, start, size int) ([]byte, error)
	// Write stores data starting at start within the data block.
	Write(db, start int, data []byte) error

	// String describes the link for logs.
	String() string
}

// PermissionError reports an attempt to address memory outside the
// whitelisted experiment block.
type PermissionError struct {
	DB      int
	Allowed int
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("access to DB%d blocked by whitelist, only DB%d is allowed", e.DB, e.Allowed)
}

// ConnectionError reports an unreachable or dropped link.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("PLC link %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// checkDB is the whitelist shared by both implementations.
func checkDB(db, allowed int) error {
	if db != allowed {
		return &PermissionError{DB: db, Allowed: allowed}
	}
	return nil
}
