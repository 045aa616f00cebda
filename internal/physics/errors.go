package physics

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is returned when a World cannot be built from its Config.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInvalidBody is returned for bodies with non-positive mass or radius.
	ErrInvalidBody = errors.New("invalid body")
)

// Diagnostics receives one line per locally corrected numeric problem. *logger.Logger
// satisfies it. A nil Diagnostics discards everything.
type Diagnostics interface {
	Log(line string)
}

func report(d Diagnostics, format string, args ...any) {
	if d == nil {
		return
	}
	d.Log(fmt.Sprintf(format, args...))
}
