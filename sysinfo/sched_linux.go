//go:build linux

package sysinfo

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Cores returns the cores the process may run on.
func Cores() []int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		cores := make([]int, runtime.NumCPU())
		for i := range cores {
			cores[i] = i
		}
		return cores
	}
	cores := make([]int, 0, set.Count())
	for i := 0; len(cores) < set.Count(); i++ {
		if set.IsSet(i) {
			cores = append(cores, i)
		}
	}
	return cores
}

// PinThread restricts the calling OS thread to core. The caller must
// hold runtime.LockOSThread.
func PinThread(core int) error {
	var set unix.CPUSet
	set.Set(core)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("sched_setaffinity core %d: %w", core, err)
	}
	return nil
}
