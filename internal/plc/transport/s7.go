package transport

import (
	"fmt"
	"sync"
	"time"

	"github.com/robinson/gos7"
)

// S7 drives a physical S7-1200 through gos7 (ISO-on-TCP, port 102). The
// whitelist check runs before any request reaches the wire.
type S7 struct {
	mu        sync.Mutex
	ip        string
	rack      int
	slot      int
	allowedDB int

	handler *gos7.TCPClientHandler
	client  gos7.Client
}

// connectTimeout bounds the initial ISO-on-TCP handshake. Failures inside
// this window trigger the caller's one-time simulator fallback.
const connectTimeout = 5 * time.Second

// NewS7 creates an unconnected physical link.
func NewS7(ip string, rack, slot, allowedDB int) *S7 {
	return &S7{ip: ip, rack: rack, slot: slot, allowedDB: allowedDB}
}

// Connect establishes the ISO-on-TCP session.
func (s *S7) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return &ConnectionError{Addr: s.ip, Err: fmt.Errorf("already connected")}
	}

	handler := gos7.NewTCPClientHandler(s.ip, s.rack, s.slot)
	handler.Timeout = connectTimeout
	if err := handler.Connect(); err != nil {
		return &ConnectionError{Addr: s.ip, Err: err}
	}
	s.handler = handler
	s.client = gos7.NewClient(handler)
	return nil
}

// Disconnect closes the session. Safe to call when not connected.
func (s *S7) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handler == nil {
		return nil
	}
	err := s.handler.Close()
	s.handler = nil
	s.client = nil
	if err != nil {
		return &ConnectionError{Addr: s.ip, Err: err}
	}
	return nil
}

// Connected reports whether a session is open.
func (s *S7) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil
}

// Read fetches size bytes from the data block in one round trip.
func (s *S7) Read(db, start, size int) ([]byte, error) {
	if err := checkDB(db, s.allowedDB); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil, &ConnectionError{Addr: s.ip, Err: fmt.Errorf("not connected")}
	}
	buf := make([]byte, size)
	if err := s.client.AGReadDB(db, start, size, buf); err != nil {
		return nil, &ConnectionError{Addr: s.ip, Err: fmt.Errorf("read DB%d.DBB%d+%d: %w", db, start, size, err)}
	}
	return buf, nil
}

// Write stores data into the data block in one round trip.
func (s *S7) Write(db, start int, data []byte) error {
	if err := checkDB(db, s.allowedDB); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return &ConnectionError{Addr: s.ip, Err: fmt.Errorf("not connected")}
	}
	if err := s.client.AGWriteDB(db, start, len(data), data); err != nil {
		return &ConnectionError{Addr: s.ip, Err: fmt.Errorf("write DB%d.DBB%d+%d: %w", db, start, len(data), err)}
	}
	return nil
}

func (s *S7) String() string {
	return fmt.Sprintf("s7://%s rack=%d slot=%d", s.ip, s.rack, s.slot)
}
