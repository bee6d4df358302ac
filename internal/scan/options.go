package scan

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring Scanner
type Option func(*Scanner)

// WithTimeout sets the timeout for the entire scan
func WithTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithSkipHostDiscovery treats all hosts as online (-Pn).
// Useful for networks that block ICMP.
func WithSkipHostDiscovery(skip bool) Option {
	return func(s *Scanner) {
		s.skipHostDiscovery = skip
	}
}

// WithBinaryPath uses an nmap binary outside PATH
func WithBinaryPath(path string) Option {
	return func(s *Scanner) {
		s.binaryPath = path
	}
}

// WithLogger sets the logger
func WithLogger(log *slog.Logger) Option {
	return func(s *Scanner) {
		if log != nil {
			s.log = log
		}
	}
}
