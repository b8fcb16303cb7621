package sysinfo

import (
	"fmt"

	"github.com/shirou/gopsutil/mem"

	db "membench/debug"
)

// Available amount of memory, in bytes.
func AvailableMem() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("virtual memory: %w", err)
	}
	db.DPrintf(db.SYSINFO, "Mem total %v available %v", vm.Total, vm.Available)
	return vm.Available, nil
}

// Total amount of memory, in bytes.
func TotalMem() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("virtual memory: %w", err)
	}
	return vm.Total, nil
}
