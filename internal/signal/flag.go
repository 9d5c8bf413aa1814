package signal

import "sync/atomic"

// Flag is a one-shot atomic.Bool signal.
type Flag struct {
	done atomic.Bool
}

// NewFlag creates a lowered Flag.
func NewFlag() *Flag {
	return &Flag{}
}

// Done returns true if the flag has been raised.
func (f *Flag) Done() bool {
	return f.done.Load()
}

// Set raises the flag. Safe to call multiple times.
func (f *Flag) Set() {
	f.done.Store(true)
}

// Reset lowers the flag.
// Not safe to call concurrently with Done() or Set().
func (f *Flag) Reset() {
	f.done.Store(false)
}
