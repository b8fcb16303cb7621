// Package membench measures sustained parallel memory-write throughput.
//
// A run starts NThread workers, each on its own OS thread with a private,
// zero-filled chunk of ChunkSize bytes. Every worker repeatedly writes the
// fill byte into every Stride-th byte of its chunk until Duration has
// passed, then adds its byte count to a shared total. Throughput is the
// total divided by the wall-clock time of the whole run.
//
// A completed pass is credited with the full chunk size, although only one
// byte per stride is stored: the number reported is the memory traffic the
// pass implies (every cache line of the chunk is dirtied), not the number
// of bytes physically written.
package membench

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"membench/config"
	db "membench/debug"
	"membench/results"
	"membench/sysinfo"
)

var (
	ErrAlloc      = errors.New("allocation failed")
	ErrWorker     = errors.New("worker failed")
	ErrAccounting = errors.New("byte count mismatch")
)

type Bench struct {
	cfg      *config.Config
	out      io.Writer
	memCheck bool
	availMem func() (uint64, error)
	pass     passFn
}

func New(cfg *config.Config) (*Bench, error) {
	c := *cfg
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Bench{
		cfg:      &c,
		out:      os.Stdout,
		memCheck: true,
		availMem: sysinfo.AvailableMem,
		pass:     pass,
	}, nil
}

// SetOutput redirects the progress lines, which go to stdout by default.
func (b *Bench) SetOutput(w io.Writer) {
	b.out = w
}

func (b *Bench) Config() *config.Config {
	return b.cfg
}

// counter is the shared byte total. Each worker adds to it exactly once.
type counter struct {
	mu sync.Mutex
	n  uint64
}

func (c *counter) add(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n += n
}

func (c *counter) get() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func (b *Bench) checkMem() error {
	if !b.memCheck {
		return nil
	}
	avail, err := b.availMem()
	if err != nil {
		db.DPrintf(db.ALWAYS, "Skip memory check for %v: %v", b.cfg.TotalSize, err)
		return nil
	}
	if uint64(b.cfg.TotalSize) > avail {
		return fmt.Errorf("%w: need %v, available %v", ErrAlloc, b.cfg.TotalSize, config.Tsize(avail))
	}
	return nil
}

// Run performs one benchmark run. Any allocation failure or worker fault
// fails the whole run; no partial result is returned.
func (b *Bench) Run() (*Result, error) {
	cfg := b.cfg
	db.DPrintf(db.BENCH, "Allocating %v", cfg)
	if err := b.checkMem(); err != nil {
		return nil, err
	}
	var cores []int
	if cfg.Pin {
		cores = sysinfo.Cores()
	}
	f0, ferr := sysinfo.PageFaults()

	fmt.Fprintf(b.out, "[membench] Starting parallel write test: %v, %d threads, %v...\n",
		cfg.TotalSize, cfg.NThread, cfg.Duration)

	cnt := &counter{}
	ws := make([]*worker, cfg.NThread)
	var wg sync.WaitGroup
	start := time.Now()
	wg.Add(cfg.NThread)
	for i := range ws {
		ws[i] = newWorker(i, cfg, b.pass)
		if cores != nil {
			ws[i].core = cores[i%len(cores)]
		}
		go ws[i].run(cnt, &wg)
	}
	db.DPrintf(db.BENCH, "Running %d workers", len(ws))
	wg.Wait()
	elapsed := time.Since(start)
	db.DPrintf(db.BENCH, "Aggregating after %v", elapsed)

	var errs []error
	var sum uint64
	r := &Result{
		Cfg:     cfg,
		Elapsed: elapsed,
		Workers: make([]WorkerStat, len(ws)),
	}
	for i, w := range ws {
		if w.err != nil {
			errs = append(errs, w.err)
		}
		r.Workers[i] = w.stat
		sum += w.stat.Bytes
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	r.Total = cnt.get()
	if sum != r.Total {
		return nil, fmt.Errorf("%w: workers %d counter %d", ErrAccounting, sum, r.Total)
	}
	if ferr == nil {
		if f1, err := sysinfo.PageFaults(); err == nil {
			r.Faults = f1.Sub(f0)
		}
	}

	fmt.Fprintf(b.out, "[membench] Finished. Speed: %.2f GB/s\n", r.GBps())
	db.DPrintf(db.BENCH, "Completed %v", r)
	return r, nil
}

// RunTrials runs the benchmark n times and returns one throughput sample,
// in GB, per run.
func (b *Bench) RunTrials(n int) (*results.Results, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: trials %d", config.ErrInvalid, n)
	}
	res := results.NewResults(n, "GB")
	for i := 0; i < n; i++ {
		r, err := b.Run()
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", i, err)
		}
		res.Append(r.Elapsed, r.GB())
		db.DPrintf(db.THROUGHPUT, "Trial %d: %.2f GB/s", i, r.GBps())
	}
	return res, nil
}

// RamTest runs the benchmark with the configuration named by
// $MEMBENCHCONFIG, or the defaults, and returns the throughput in GB/s.
// Any failure terminates the process.
func RamTest() float64 {
	cfg, err := config.FromEnv()
	if err != nil {
		db.DFatalf("Error config: %v", err)
	}
	b, err := New(cfg)
	if err != nil {
		db.DFatalf("Error New: %v", err)
	}
	r, err := b.Run()
	if err != nil {
		db.DFatalf("Error Run: %v", err)
	}
	return r.GBps()
}
