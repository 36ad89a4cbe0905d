//go:build unix

package pipeline

import "golang.org/x/sys/unix"

// fdBudget raises the soft RLIMIT_NOFILE toward the hard limit where
// permitted and returns how many decoder children may run at once. Each
// child costs a handful of descriptors (pipes plus the media file), so the
// budget divides what remains after a reserve for the process itself.
func fdBudget() int64 {
	var lim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &lim); err != nil {
		return 64
	}
	if lim.Cur < lim.Max {
		raised := lim
		raised.Cur = lim.Max
		if unix.Setrlimit(unix.RLIMIT_NOFILE, &raised) == nil {
			lim = raised
		}
	}

	const (
		reserved   = 64
		perDecoder = 8
	)
	if uint64(lim.Cur) <= reserved+perDecoder {
		return 1
	}
	budget := (uint64(lim.Cur) - reserved) / perDecoder
	if budget > 1024 {
		budget = 1024
	}
	return int64(budget)
}
