package bench

import (
	"errors"
	"runtime"

	"github.com/rs/zerolog"
)

// ErrInvalidCore is returned for a negative core index.
var ErrInvalidCore = errors.New("invalid cpu core")

// coreFor maps worker i to a core, wrapping around the available CPUs.
// Producers and consumers are numbered independently, so producer 0 and
// consumer 0 share core 0.
func coreFor(i int) int {
	return i % runtime.NumCPU()
}

// pinWorker pins the calling goroutine if enabled. Failures are logged and
// the worker keeps running unpinned.
func pinWorker(log zerolog.Logger, enabled bool, role string, i int) {
	if !enabled {
		return
	}
	core := coreFor(i)
	if err := PinToCore(core); err != nil {
		log.Warn().Err(err).Str("role", role).Int("worker", i).Int("core", core).Msg("cpu pinning failed")
	}
}
