//go:build !linux

package bench

import "fmt"

// PinToCore is a no-op on non-Linux platforms.
func PinToCore(core int) error {
	if core < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCore, core)
	}
	return nil
}
