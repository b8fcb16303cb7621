package main

import (
	"flag"
	"fmt"
	"time"

	"membench/config"
	db "membench/debug"
	"membench/membench"
)

// Command-line overrides of the file or default configuration. Zero values
// leave the configuration alone.
type overrides struct {
	total   string
	chunk   string
	nthread int
	dur     time.Duration
	stride  int
	pin     bool
	trials  int
}

var (
	cfgPath = flag.String("config", "", "YAML config file (default $"+config.MEMBENCHCONFIG+" or built-in defaults)")
	ovr     overrides
)

func init() {
	flag.StringVar(&ovr.total, "total", "", "Total working set, e.g. 4GiB")
	flag.StringVar(&ovr.chunk, "chunk", "", "Per-worker chunk, e.g. 512MiB")
	flag.IntVar(&ovr.nthread, "nthread", 0, "Number of worker threads")
	flag.DurationVar(&ovr.dur, "dur", 0, "Test duration")
	flag.IntVar(&ovr.stride, "stride", 0, "Write stride in bytes")
	flag.BoolVar(&ovr.pin, "pin", false, "Pin workers to cores")
	flag.IntVar(&ovr.trials, "trials", 0, "Number of runs")
}

// apply merges o into cfg. A size given alone re-derives the other one; two
// sizes are kept as given and left for Validate to check against each
// other. A new thread count with no size re-derives the chunk from the
// current total.
func (o *overrides) apply(cfg *config.Config) error {
	if o.nthread > 0 {
		cfg.NThread = o.nthread
	}
	var total, chunk config.Tsize
	var err error
	if o.total != "" {
		if total, err = config.ParseSize(o.total); err != nil {
			return fmt.Errorf("total %q: %w", o.total, err)
		}
	}
	if o.chunk != "" {
		if chunk, err = config.ParseSize(o.chunk); err != nil {
			return fmt.Errorf("chunk %q: %w", o.chunk, err)
		}
	}
	switch {
	case o.total != "" || o.chunk != "":
		cfg.TotalSize = total
		cfg.ChunkSize = chunk
	case o.nthread > 0:
		cfg.ChunkSize = 0
	}
	if o.dur > 0 {
		cfg.Duration = o.dur
	}
	if o.stride > 0 {
		cfg.Stride = o.stride
	}
	if o.pin {
		cfg.Pin = true
	}
	if o.trials > 0 {
		cfg.Trials = o.trials
	}
	cfg.Normalize()
	return nil
}

func readConfig() *config.Config {
	var cfg *config.Config
	var err error
	if *cfgPath != "" {
		cfg, err = config.ReadConfigFile(*cfgPath)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		db.DFatalf("Error config: %v", err)
	}
	if err := ovr.apply(cfg); err != nil {
		db.DFatalf("Error flags: %v", err)
	}
	return cfg
}

func main() {
	flag.Parse()
	cfg := readConfig()
	b, err := membench.New(cfg)
	if err != nil {
		db.DFatalf("Error New: %v", err)
	}
	db.DPrintf(db.ALWAYS, "Config %v", b.Config())

	if cfg.Trials <= 1 {
		r, err := b.Run()
		if err != nil {
			db.DFatalf("Error Run: %v", err)
		}
		_, tsum, err := r.WorkerResults().Summary()
		if err != nil {
			db.DFatalf("Error Summary: %v", err)
		}
		fmt.Printf("%v\n= Per-worker%v\n", r, tsum)
		return
	}

	start := time.Now()
	res, err := b.RunTrials(cfg.Trials)
	if err != nil {
		db.DFatalf("Error RunTrials: %v", err)
	}
	_, tsum, err := res.Summary()
	if err != nil {
		db.DFatalf("Error Summary: %v", err)
	}
	fmt.Printf("%v trials in %v\n%v%v\n", res.Len(), time.Since(start), res, tsum)
}
