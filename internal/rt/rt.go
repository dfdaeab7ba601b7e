// Package rt holds the best-effort real-time setup both tools request at
// startup: SCHED_FIFO to dodge preemption, locked memory to dodge page
// faults. Being denied either is degraded timing accuracy, never a reason
// to abort, so callers log the returned errors and carry on.
package rt

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// MaxFIFOPriority is the top SCHED_FIFO priority on Linux.
const MaxFIFOPriority = 99

// SetRealtime moves the calling process to SCHED_FIFO at the given
// priority (1..99). Needs CAP_SYS_NICE.
func SetRealtime(priority int) error {
	if priority < 1 || priority > MaxFIFOPriority {
		return fmt.Errorf("SCHED_FIFO priority %d out of range 1-%d", priority, MaxFIFOPriority)
	}
	attr := unix.SchedAttr{
		Size:     unix.SizeofSchedAttr,
		Policy:   unix.SCHED_FIFO,
		Priority: uint32(priority),
	}
	if err := unix.SchedSetAttr(0, &attr, 0); err != nil {
		return fmt.Errorf("sched_setattr(SCHED_FIFO, %d): %w", priority, err)
	}
	return nil
}

// LockMemory pins current and future pages so the hot loops never fault.
func LockMemory() error {
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		return fmt.Errorf("mlockall: %w", err)
	}
	return nil
}
