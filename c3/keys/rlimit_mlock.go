//go:build linux || darwin

package keys

import (
	"sync"

	"golang.org/x/sys/unix"
)

// minMlockKB is the mlock headroom needed before keys go into locked memory.
// memguard locks whole pages per buffer, plus its own canary and key pages.
const minMlockKB = 64

var (
	probeOnce    sync.Once
	mlockLimit   int64 // KB, -1 = unlimited
	mlockEnabled bool
)

func probe() {
	probeOnce.Do(func() {
		var rl unix.Rlimit
		if err := unix.Getrlimit(unix.RLIMIT_MEMLOCK, &rl); err != nil {
			return
		}
		if rl.Cur == ^uint64(0) {
			mlockLimit = -1
			mlockEnabled = true
			return
		}
		mlockLimit = int64(rl.Cur / 1024)
		mlockEnabled = mlockLimit >= minMlockKB
	})
}

// SecureMemoryAvailable reports whether the process may mlock enough memory
// for locked key buffers.
func SecureMemoryAvailable() bool {
	probe()
	return mlockEnabled
}

func mlockLimitKB() int64 {
	probe()
	return mlockLimit
}
