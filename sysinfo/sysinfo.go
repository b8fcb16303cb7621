// Package sysinfo reports host memory, cores, and per-process fault
// counters, and pins OS threads to cores.
package sysinfo

func NCores() int {
	return len(Cores())
}
