//go:build linux

package bench

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// PinToCore locks the calling goroutine to its OS thread and binds that
// thread to the given CPU core.
//
// The thread stays locked; when the goroutine exits the runtime discards
// the thread rather than returning a pinned thread to the pool.
func PinToCore(core int) error {
	if core < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCore, core)
	}

	// Lock goroutine to OS thread
	runtime.LockOSThread()

	var cpuSet unix.CPUSet
	cpuSet.Set(core)

	// Set CPU affinity for current thread
	if err := unix.SchedSetaffinity(0, &cpuSet); err != nil {
		return fmt.Errorf("sched_setaffinity core %d: %w", core, err)
	}
	return nil
}
