package controller

import (
	"fmt"
	"strings"
)

// Mode selects how every controller decides between sequential and parallel execution.
type Mode int32

// Decision modes.
const (
	ForceSequential Mode = iota
	ForceParallel
	CutoffWithReporting
	CutoffWithoutReporting
	ByPrediction
)

var modeNames = [...]string{
	ForceSequential:        "by_force_sequential",
	ForceParallel:          "by_force_parallel",
	CutoffWithReporting:    "by_cutoff_with_reporting",
	CutoffWithoutReporting: "by_cutoff_without_reporting",
	ByPrediction:           "by_prediction",
}

// Modes lists every mode in declaration order.
func Modes() []Mode {
	return []Mode{ForceSequential, ForceParallel, CutoffWithReporting, CutoffWithoutReporting, ByPrediction}
}

// String returns the canonical mode name.
func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int32(m))
	}
	return modeNames[m]
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m >= 0 && int(m) < len(modeNames)
}

// Reporting reports whether sequential runs are timed and decisions logged in this mode.
func (m Mode) Reporting() bool {
	return m == CutoffWithReporting || m == ByPrediction
}

// ParseMode converts a mode name to a Mode.
// Accepted: the canonical names, the same without the "by_" prefix,
// and kebab-case spellings ("force-parallel", "cutoff-with-reporting", ...).
func ParseMode(name string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.TrimPrefix(key, "by_")
	for m, canonical := range modeNames {
		if key == strings.TrimPrefix(canonical, "by_") {
			return Mode(m), nil
		}
	}
	switch key {
	case "sequential", "seq":
		return ForceSequential, nil
	case "parallel", "par":
		return ForceParallel, nil
	case "prediction", "predict", "oracle":
		return ByPrediction, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// ModeSource supplies the active mode. Controllers consult it at every decision.
type ModeSource interface {
	Mode() Mode
}

// Fixed is a ModeSource that always returns the same mode.
type Fixed Mode

// Mode implements ModeSource.
func (f Fixed) Mode() Mode {
	return Mode(f)
}
