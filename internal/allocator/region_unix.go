//go:build linux || darwin || freebsd || netbsd || openbsd

package allocator

import "golang.org/x/sys/unix"

// defaultRegionCapacity reports how large a Region HeapCreate/
// HeapMTCreate should reserve when the caller does not specify one
// explicitly, by probing the process's address-space limit
// (RLIMIT_AS). This mirrors the teacher's platform-split convention in
// internal/runtime/asyncio (zerocopy_unix_file.go / _windows_file.go):
// one real syscall-backed implementation per OS family behind a
// build-tagged file, not a portability shim.
func defaultRegionCapacity() uintptr {
	const fallback = 64 * 1024 * 1024

	var rlim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_AS, &rlim); err != nil {
		return fallback
	}

	// RLIM_INFINITY or an implausibly small limit both fall back to a
	// fixed reservation; we only want a *hint*, not the whole address
	// space.
	if rlim.Cur == 0 || rlim.Cur > 1<<34 {
		return fallback
	}

	// Reserve a conservative slice of the limit: enough for realistic
	// workloads without actually committing that much resident memory
	// (the Region's backing slice is zero-filled and typically stays
	// mostly unmapped by the OS until touched).
	hint := uintptr(rlim.Cur) / 16
	if hint < fallback {
		return fallback
	}

	return hint
}
