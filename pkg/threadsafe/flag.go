package threadsafe

import "sync/atomic"

// Flag is a boolean that can be claimed by exactly one caller at a time.
type Flag struct {
	value atomic.Bool
}

// TrySet sets the flag and reports true only if it was not already set.
func (f *Flag) TrySet() bool {
	return f.value.CompareAndSwap(false, true)
}

func (f *Flag) Reset() {
	f.value.Store(false)
}

func (f *Flag) IsSet() bool {
	return f.value.Load()
}
