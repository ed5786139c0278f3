//go:build !tinygo

package hal

import "sync"

// NewLocker returns the critical-section guard for host builds.
func NewLocker() Locker { return &sync.Mutex{} }
