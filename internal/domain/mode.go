package domain

import (
	"fmt"
	"strings"
)

// Mode is the interpretation context for pointer input
type Mode string

const (
	ModeNavigate    Mode = "navigate"
	ModePlaceRouter Mode = "place-router"
	ModePlacePC     Mode = "place-pc"
	ModeConnect     Mode = "connect"
)

// Modes lists every mode in toolbar order
var Modes = []Mode{ModeNavigate, ModePlaceRouter, ModePlacePC, ModeConnect}

// ParseMode converts a string to Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "navigate":
		return ModeNavigate, nil
	case "place-router", "router":
		return ModePlaceRouter, nil
	case "place-pc", "pc":
		return ModePlacePC, nil
	case "connect", "connection":
		return ModeConnect, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// PlacementKind returns the kind of node a placement mode creates
func (m Mode) PlacementKind() (Kind, bool) {
	switch m {
	case ModePlaceRouter:
		return KindRouter, true
	case ModePlacePC:
		return KindPC, true
	default:
		return "", false
	}
}
