package sysinfo

import (
	"os"

	"github.com/shirou/gopsutil/process"
)

type Faults struct {
	Minor uint64
	Major uint64
}

// Sub returns the faults taken between f0 and f.
func (f Faults) Sub(f0 Faults) Faults {
	return Faults{Minor: f.Minor - f0.Minor, Major: f.Major - f0.Major}
}

// PageFaults returns the page-fault counters of the calling process.
func PageFaults() (Faults, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return Faults{}, err
	}
	pf, err := p.PageFaults()
	if err != nil {
		return Faults{}, err
	}
	return Faults{Minor: pf.MinorFaults, Major: pf.MajorFaults}, nil
}
