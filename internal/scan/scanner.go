// Package scan runs live nmap host discovery for seeding a topology.
//
// It drives the nmap binary through github.com/Ullaakut/nmap/v3 and hands the
// parsed result to codec.NmapImporter.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"strings"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"
)

// ErrNoTargets is returned by Run when no targets are configured
var ErrNoTargets = errors.New("no scan targets")

// Scanner performs nmap ping scans over a set of targets
type Scanner struct {
	targets           []string
	timeout           time.Duration
	skipHostDiscovery bool
	binaryPath        string
	log               *slog.Logger
}

// New creates a scanner for targets, each a CIDR range, address or hostname
func New(targets []string, opts ...Option) *Scanner {
	s := &Scanner{
		targets: targets,
		timeout: 2 * time.Minute,
		log:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Targets returns the configured targets
func (s *Scanner) Targets() []string {
	return s.targets
}

// Available reports whether the nmap binary can be run
func (s *Scanner) Available(ctx context.Context) bool {
	scanner, err := nmap.NewScanner(ctx, s.baseOptions("localhost", nmap.WithListScan())...)
	if err != nil {
		return false
	}

	_, _, err = scanner.Run()
	return err == nil
}

// Run scans every target and merges the hosts into one result
func (s *Scanner) Run(ctx context.Context) (*nmap.Run, error) {
	if len(s.targets) == 0 {
		return nil, ErrNoTargets
	}
	for _, t := range s.targets {
		if err := ValidateTarget(t); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := []nmap.Option{nmap.WithPingScan()}
	if s.skipHostDiscovery {
		opts = append(opts, nmap.WithSkipHostDiscovery())
	}

	s.log.Info("starting nmap scan", "targets", s.targets)

	merged := &nmap.Run{}
	for _, target := range s.targets {
		scanner, err := nmap.NewScanner(ctx, s.baseOptions(target, opts...)...)
		if err != nil {
			return nil, fmt.Errorf("failed to create scanner: %w", err)
		}

		result, warnings, err := scanner.Run()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", target, err)
		}
		if warnings != nil && len(*warnings) > 0 {
			s.log.Warn("nmap warnings", "target", target, "warnings", *warnings)
		}

		merged.Hosts = append(merged.Hosts, result.Hosts...)
		s.log.Debug("scanned target", "target", target, "hosts", len(result.Hosts))
	}

	s.log.Info("nmap scan complete", "hosts", len(merged.Hosts))
	return merged, nil
}

func (s *Scanner) baseOptions(target string, extra ...nmap.Option) []nmap.Option {
	opts := []nmap.Option{nmap.WithTargets(target)}
	if s.binaryPath != "" {
		opts = append(opts, nmap.WithBinaryPath(s.binaryPath))
	}
	return append(opts, extra...)
}

// ValidateTarget rejects anything that is not a CIDR prefix, an address or
// a plain hostname, so targets never reach nmap as extra flags
func ValidateTarget(target string) error {
	if target == "" || strings.HasPrefix(target, "-") {
		return fmt.Errorf("invalid scan target %q", target)
	}
	if _, err := netip.ParsePrefix(target); err == nil {
		return nil
	}
	if _, err := netip.ParseAddr(target); err == nil {
		return nil
	}
	for _, r := range target {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
		default:
			return fmt.Errorf("invalid scan target %q", target)
		}
	}
	return nil
}
