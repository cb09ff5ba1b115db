package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spiffcs/codewatch/internal/tui"
)

// ProgressMode selects when the lookup progress display runs. It
// implements pflag.Value.
type ProgressMode string

const (
	// ProgressAuto shows progress when stdout is a terminal outside CI.
	ProgressAuto ProgressMode = "auto"
	// ProgressAlways shows progress even when output is redirected.
	ProgressAlways ProgressMode = "always"
	// ProgressNever prints results only.
	ProgressNever ProgressMode = "never"
)

func (m *ProgressMode) String() string {
	if *m == "" {
		return string(ProgressAuto)
	}
	return string(*m)
}

// Set accepts a mode name or any boolean strconv understands, so a bare
// --progress forces the display and --progress=false turns it off.
func (m *ProgressMode) Set(s string) error {
	switch mode := ProgressMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case ProgressAuto, ProgressAlways, ProgressNever:
		*m = mode
		return nil
	}

	on, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid progress mode %q: use auto, always or never", s)
	}
	*m = ProgressNever
	if on {
		*m = ProgressAlways
	}
	return nil
}

func (m *ProgressMode) Type() string {
	return "mode"
}

func (m *ProgressMode) IsBoolFlag() bool {
	return true
}

// showProgress reports whether lookups run under the progress display.
func showProgress(opts *Options) bool {
	// -v logs to stderr, which the display would draw over
	if opts.Verbosity > 0 {
		return false
	}
	switch opts.Progress {
	case ProgressAlways:
		return true
	case ProgressNever:
		return false
	default:
		return tui.ShouldUseTUI()
	}
}
