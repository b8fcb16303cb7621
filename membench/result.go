package membench

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"membench/config"
	"membench/results"
	"membench/sysinfo"
)

type Result struct {
	Cfg     *config.Config
	Total   uint64        // Bytes of traffic implied, summed over workers.
	Elapsed time.Duration // From before spawning the workers until all joined.
	Workers []WorkerStat
	Faults  sysinfo.Faults
}

func (r *Result) GB() float64 {
	return float64(r.Total) / float64(config.GBYTE)
}

// GBps is the aggregate throughput of the run.
func (r *Result) GBps() float64 {
	return r.GB() / r.Elapsed.Seconds()
}

// WorkerResults returns each worker's own throughput, measured over its
// write loop only.
func (r *Result) WorkerResults() *results.Results {
	res := results.NewResults(len(r.Workers), "GB")
	for _, w := range r.Workers {
		res.Append(w.Dur, float64(w.Bytes)/float64(config.GBYTE))
	}
	return res
}

func (r *Result) String() string {
	return fmt.Sprintf("&{ Total:%v Elapsed:%v Tpt:%.2f GB/s NWorker:%d Faults:%d/%d }",
		humanize.IBytes(r.Total), r.Elapsed, r.GBps(), len(r.Workers), r.Faults.Minor, r.Faults.Major)
}
