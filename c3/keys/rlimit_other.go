//go:build !linux && !darwin

package keys

const minMlockKB = 64

// SecureMemoryAvailable is false on platforms without an mlock limit probe.
func SecureMemoryAvailable() bool {
	return false
}

func mlockLimitKB() int64 {
	return 0
}
