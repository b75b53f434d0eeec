package strategy

import (
	"strings"

	"github.com/jmgilman/go/scopedfs/errors"
)

// Mode selects between native platform access and the privileged
// execution channel.
type Mode int

const (
	// ModeNative uses the platform's own file and document APIs.
	ModeNative Mode = iota
	// ModePrivileged runs shell commands through an elevated channel.
	ModePrivileged
)

func (m Mode) String() string {
	switch m {
	case ModeNative:
		return "native"
	case ModePrivileged:
		return "privileged"
	default:
		return "unknown"
	}
}

// ParseMode parses the name of a mode, ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "native":
		return ModeNative, nil
	case "privileged":
		return ModePrivileged, nil
	default:
		return ModeNative, errors.WithContext(
			errors.Newf(errors.CodeInvalidInput, "unknown mode %q", s),
			"mode", s)
	}
}
