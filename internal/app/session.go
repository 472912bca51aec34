// Package app implements the plclink subcommands: session setup, status
// rendering, payload writes, command-bit control, and the interactive demo.
// The cmd layer only parses flags and delegates here.
package app

import (
	"github.com/tamaralab/plclink/internal/config"
	uerrors "github.com/tamaralab/plclink/internal/errors"
	"github.com/tamaralab/plclink/internal/logging"
	"github.com/tamaralab/plclink/internal/plc/link"
)

// Session bundles one open link with its configuration and logger. Every
// subcommand opens a session, does its work, and closes it.
type Session struct {
	Cfg  config.Config
	Log  *logging.Logger
	Link *link.Link
}

// NewSession validates the configuration, builds the logger, and opens the
// link. A failed physical connect is not an error here; the link downgrades
// to the simulator and the session proceeds.
func NewSession(cfg config.Config, level logging.Level, logFile string) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logging.New(level, logFile)
	if err != nil {
		return nil, err
	}

	l, err := link.Open(cfg, log)
	if err != nil {
		log.Close()
		return nil, uerrors.WrapConnectionError(err, cfg.IP, cfg.Rack, cfg.Slot)
	}
	return &Session{Cfg: cfg, Log: log, Link: l}, nil
}

// Close releases the link and the logger's file sink.
func (s *Session) Close() error {
	err := s.Link.Close()
	if cerr := s.Log.Close(); err == nil {
		err = cerr
	}
	return err
}
