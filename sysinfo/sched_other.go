//go:build !linux

package sysinfo

import (
	"errors"
	"runtime"
)

var ErrNoAffinity = errors.New("thread affinity not supported")

func Cores() []int {
	cores := make([]int, runtime.NumCPU())
	for i := range cores {
		cores[i] = i
	}
	return cores
}

func PinThread(core int) error {
	return ErrNoAffinity
}
