package automaxprocs

import (
	"fmt"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/orbit-network/launchpad-engine/pkg/logger"
	"github.com/orbit-network/launchpad-engine/pkg/logger/slogx"
	"go.uber.org/automaxprocs/maxprocs"
)

// undo is the undo function returned by maxprocs.Set
var undo func()

// Init sets GOMAXPROCS to match the Linux container CPU quota (if any).
//
// Set is a no-op on non-Linux systems and in Linux environments without a
// configured CPU quota.
func Init() error {
	log := logger.With(
		slogx.String("package", "automaxprocs"),
		slogx.Int("prev_maxprocs", Current()),
	)

	setMaxProcLogger := func(format string, v ...any) {
		log.Info(fmt.Sprintf(format, v...))
	}

	revert, err := maxprocs.Set(maxprocs.Logger(setMaxProcLogger), maxprocs.Min(1))
	if err != nil {
		return errors.WithStack(err)
	}
	undo = revert
	return nil
}

// Undo restores GOMAXPROCS to its previous value.
func Undo() {
	if undo != nil {
		undo()
	}
}

// Current returns the current value of GOMAXPROCS.
func Current() int {
	return runtime.GOMAXPROCS(0)
}
