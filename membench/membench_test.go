package membench_test

import (
	"bytes"
	"errors"
	"io"
	"math"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"membench/config"
	db "membench/debug"
	"membench/membench"
	"membench/sysinfo"
)

func mkConfig(nthread int, chunk config.Tsize, dur time.Duration) *config.Config {
	c := config.Default()
	c.NThread = nthread
	c.ChunkSize = chunk
	c.TotalSize = 0
	c.Duration = dur
	c.Normalize()
	return c
}

func run(t *testing.T, cfg *config.Config) *membench.Result {
	b, err := membench.New(cfg)
	if !assert.Nil(t, err, "New") {
		t.FailNow()
	}
	b.SetOutput(io.Discard)
	r, err := b.Run()
	if !assert.Nil(t, err, "Run") {
		t.FailNow()
	}
	return r
}

func TestNewInvalid(t *testing.T) {
	c := mkConfig(0, config.MBYTE, time.Second)
	_, err := membench.New(c)
	assert.True(t, errors.Is(err, config.ErrInvalid))

	c = mkConfig(1, 32, time.Second)
	_, err = membench.New(c)
	assert.True(t, errors.Is(err, config.ErrChunkTooSmall))
}

func TestNewRejectsInconsistentTotal(t *testing.T) {
	c := &config.Config{TotalSize: config.GBYTE, ChunkSize: 16 * config.MBYTE, NThread: 2, Duration: time.Second, Stride: 64}
	_, err := membench.New(c)
	assert.True(t, errors.Is(err, config.ErrInvalid), "err %v", err)
}

func TestNewCopiesConfig(t *testing.T) {
	c := mkConfig(2, config.MBYTE, time.Second)
	b, err := membench.New(c)
	assert.Nil(t, err)
	c.NThread = 100
	assert.Equal(t, 2, b.Config().NThread)
}

func TestCountersConsistent(t *testing.T) {
	cfg := mkConfig(4, config.MBYTE, 200*time.Millisecond)
	r := run(t, cfg)
	assert.Equal(t, 4, len(r.Workers))
	sum := uint64(0)
	for _, w := range r.Workers {
		assert.Equal(t, w.Passes*uint64(cfg.ChunkSize), w.Bytes, "worker %d", w.Id)
		assert.True(t, w.Passes > 0, "worker %d idle", w.Id)
		sum += w.Bytes
	}
	assert.Equal(t, sum, r.Total)
}

func TestThroughputPositive(t *testing.T) {
	r := run(t, mkConfig(2, config.MBYTE, 100*time.Millisecond))
	gbps := r.GBps()
	assert.True(t, gbps > 0, "gbps %v", gbps)
	assert.False(t, math.IsInf(gbps, 0) || math.IsNaN(gbps), "gbps %v", gbps)
}

func TestTinyDuration(t *testing.T) {
	r := run(t, mkConfig(2, 16*config.MBYTE, time.Nanosecond))
	for _, w := range r.Workers {
		assert.Equal(t, uint64(1), w.Passes, "worker %d", w.Id)
		assert.Equal(t, uint64(16*config.MBYTE), w.Bytes, "worker %d", w.Id)
	}
	gbps := r.GBps()
	assert.True(t, gbps > 0, "gbps %v", gbps)
	assert.False(t, math.IsInf(gbps, 0) || math.IsNaN(gbps), "gbps %v", gbps)
}

func TestElapsedBounds(t *testing.T) {
	const dur = 200 * time.Millisecond
	start := time.Now()
	r := run(t, mkConfig(2, config.MBYTE, dur))
	total := time.Since(start)
	assert.True(t, r.Elapsed >= dur, "elapsed %v", r.Elapsed)
	assert.True(t, r.Elapsed <= dur*3/2+250*time.Millisecond, "elapsed %v", r.Elapsed)
	assert.True(t, total >= r.Elapsed)
	for _, w := range r.Workers {
		assert.True(t, w.Dur >= dur, "worker %d dur %v", w.Id, w.Dur)
	}
}

func TestScenario(t *testing.T) {
	cfg := mkConfig(2, 16*config.MBYTE, time.Second)
	b, err := membench.New(cfg)
	assert.Nil(t, err)
	var out bytes.Buffer
	b.SetOutput(&out)
	r, err := b.Run()
	assert.Nil(t, err)
	assert.True(t, r.GBps() > 0.0)
	s := out.String()
	i := strings.Index(s, "Starting parallel write test")
	j := strings.Index(s, "Finished. Speed:")
	assert.True(t, i >= 0, "no start marker: %q", s)
	assert.True(t, j > i, "no completion marker: %q", s)
	assert.Contains(t, s, "GB/s")
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	assert.Equal(t, 2, len(lines), "output %q", s)
	assert.True(t, strings.HasPrefix(lines[0], "[membench] Starting parallel write test:"), "%q", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "[membench] Finished. Speed: "), "%q", lines[1])
	db.DPrintf(db.TEST, "Scenario: %v", r)
}

func TestWorkerResults(t *testing.T) {
	r := run(t, mkConfig(3, config.MBYTE, 100*time.Millisecond))
	wr := r.WorkerResults()
	assert.Equal(t, 3, wr.Len())
	lo, hi, err := wr.Range()
	assert.Nil(t, err)
	assert.True(t, lo > 0 && lo <= hi)
	_, tsum, err := wr.Summary()
	assert.Nil(t, err)
	db.DPrintf(db.TEST, "Workers: %v", tsum)
}

func TestRunTrials(t *testing.T) {
	b, err := membench.New(mkConfig(2, config.MBYTE, 100*time.Millisecond))
	assert.Nil(t, err)
	b.SetOutput(io.Discard)
	res, err := b.RunTrials(2)
	assert.Nil(t, err)
	assert.Equal(t, 2, res.Len())
	_, mean, err := res.Mean()
	assert.Nil(t, err)
	assert.True(t, mean > 0)

	_, err = b.RunTrials(0)
	assert.True(t, errors.Is(err, config.ErrInvalid))
}

func TestInsufficientMem(t *testing.T) {
	cfg := mkConfig(1, 1<<50, time.Second)
	b, err := membench.New(cfg)
	assert.Nil(t, err)
	b.SetOutput(io.Discard)
	r, err := b.Run()
	assert.Nil(t, r)
	assert.True(t, errors.Is(err, membench.ErrAlloc), "err %v", err)
}

func TestPinned(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("affinity only on linux")
	}
	cfg := mkConfig(2, config.MBYTE, 100*time.Millisecond)
	cfg.Pin = true
	r := run(t, cfg)
	cores := sysinfo.Cores()
	for _, w := range r.Workers {
		assert.Equal(t, cores[w.Id%len(cores)], w.Core)
	}
}

func TestScaling(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping scaling test in short mode")
	}
	if sysinfo.NCores() < 4 {
		t.Skip("need 4 cores")
	}
	const dur = 500 * time.Millisecond
	one := run(t, mkConfig(1, 32*config.MBYTE, dur)).GBps()
	four := run(t, mkConfig(4, 32*config.MBYTE, dur)).GBps()
	db.DPrintf(db.TEST, "1 thread %.2f GB/s 4 threads %.2f GB/s", one, four)
	assert.True(t, four >= 0.8*one, "1 thread %.2f GB/s 4 threads %.2f GB/s", one, four)
}

func TestRepeatable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping repeatability test in short mode")
	}
	cfg := mkConfig(2, 16*config.MBYTE, 500*time.Millisecond)
	a := run(t, cfg).GBps()
	b := run(t, cfg).GBps()
	db.DPrintf(db.TEST, "Run 1 %.2f GB/s run 2 %.2f GB/s", a, b)
	assert.True(t, a/b > 0.5 && a/b < 2.0, "run 1 %.2f run 2 %.2f", a, b)
}
