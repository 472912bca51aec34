package transport

import (
	"fmt"
	"sync"

	"github.com/tamaralab/plclink/internal/logging"
)

// Sim is the in-memory controller memory image. The region starts zeroed and
// grows transparently when a read or write lands past the current end, so
// the memory map never needs pre-sizing. It honors the same DB whitelist as
// the physical link.
type Sim struct {
	mu        sync.Mutex
	db        []byte
	allowedDB int
	connected bool
	log       *logging.Logger // debug tracing, nil for silent
}

// NewSim creates a simulator for the given data block.
func NewSim(allowedDB int, log *logging.Logger) *Sim {
	return &Sim{
		db:        make([]byte, 264), // spans the experiment block layout
		allowedDB: allowedDB,
		log:       log,
	}
}

// Connect marks the simulator connected. It cannot fail.
func (s *Sim) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	s.log.Debug("SIM: connected")
	return nil
}

// Disconnect marks the simulator disconnected.
func (s *Sim) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	s.log.Debug("SIM: disconnected")
	return nil
}

// Connected reports the connection flag.
func (s *Sim) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Read returns size bytes from the region, extending it with zeros if the
// span reaches past the current end.
func (s *Sim) Read(db, start, size int) ([]byte, error) {
	if err := checkDB(db, s.allowedDB); err != nil {
		return nil, err
	}
	if start < 0 || size < 0 {
		return nil, fmt.Errorf("negative read span (start %d, size %d)", start, size)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.grow(start + size)
	out := make([]byte, size)
	copy(out, s.db[start:start+size])
	s.log.Debug("SIM: read DB%d.DBB%d % x", db, start, out)
	return out, nil
}

// Write stores data into the region, extending it with zeros as needed.
func (s *Sim) Write(db, start int, data []byte) error {
	if err := checkDB(db, s.allowedDB); err != nil {
		return err
	}
	if start < 0 {
		return fmt.Errorf("negative write offset %d", start)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.grow(start + len(data))
	copy(s.db[start:], data)
	s.log.Debug("SIM: write DB%d.DBB%d % x", db, start, data)
	return nil
}

func (s *Sim) grow(end int) {
	if end > len(s.db) {
		s.db = append(s.db, make([]byte, end-len(s.db))...)
	}
}

func (s *Sim) String() string { return "simulator" }

// SetBit flips a single bit in the region. Test fixtures use this to emulate
// controller-side behavior such as raising the acceptance flag.
func (s *Sim) SetBit(db, start int, bit uint8, v bool) error {
	cur, err := s.Read(db, start, 1)
	if err != nil {
		return err
	}
	if bit > 7 {
		return fmt.Errorf("bit offset %d not in [0, 7]", bit)
	}
	b := cur[0]
	if v {
		b |= 1 << bit
	} else {
		b &^= 1 << bit
	}
	return s.Write(db, start, []byte{b})
}
