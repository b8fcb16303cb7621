package membench

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"membench/config"
	db "membench/debug"
	"membench/sysinfo"
)

type passFn func(buf []byte, stride int, fill byte)

// pass writes fill into every stride-th byte of buf, starting at 0. A buf
// shorter than stride gets only its first byte written.
func pass(buf []byte, stride int, fill byte) {
	for i := 0; i < len(buf); i += stride {
		buf[i] = fill
	}
}

func alloc(n int) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %d bytes: %v", ErrAlloc, n, r)
		}
	}()
	return make([]byte, n), nil
}

type WorkerStat struct {
	Id     int
	Core   int // -1 if not pinned
	Passes uint64
	Bytes  uint64
	Dur    time.Duration // Time spent in the write loop.
}

func (ws WorkerStat) GBps() float64 {
	return float64(ws.Bytes) / float64(config.GBYTE) / ws.Dur.Seconds()
}

type worker struct {
	cfg  *config.Config
	pass passFn
	core int
	stat WorkerStat
	err  error
}

func newWorker(id int, cfg *config.Config, pf passFn) *worker {
	return &worker{
		cfg:  cfg,
		pass: pf,
		core: -1,
		stat: WorkerStat{Id: id, Core: -1},
	}
}

// run owns its chunk for its whole lifetime. w.stat and w.err are set
// before wg.Done, so the coordinator may read them after wg.Wait.
func (w *worker) run(cnt *counter, wg *sync.WaitGroup) {
	defer wg.Done()
	defer func() {
		if r := recover(); r != nil {
			w.err = fmt.Errorf("%w: worker %d: %v", ErrWorker, w.stat.Id, r)
		}
	}()

	runtime.LockOSThread()
	if w.core >= 0 {
		// A pinned thread is not returned to the scheduler; it exits with
		// the goroutine.
		if err := sysinfo.PinThread(w.core); err != nil {
			w.err = fmt.Errorf("%w: worker %d: %v", ErrWorker, w.stat.Id, err)
			return
		}
		w.stat.Core = w.core
	} else {
		defer runtime.UnlockOSThread()
	}

	chunk, err := alloc(int(w.cfg.ChunkSize))
	if err != nil {
		w.err = err
		return
	}

	sz := uint64(len(chunk))
	var n uint64
	t := time.Now()
	// At least one pass, so any positive duration yields a non-zero count.
	for {
		w.pass(chunk, w.cfg.Stride, w.cfg.Fill)
		n += sz
		w.stat.Passes++
		if time.Since(t) >= w.cfg.Duration {
			break
		}
	}
	w.stat.Dur = time.Since(t)
	w.stat.Bytes = n
	db.DPrintf(db.WORKER, "Worker %d core %d passes %d bytes %d in %v", w.stat.Id, w.stat.Core, w.stat.Passes, n, w.stat.Dur)

	cnt.add(n)
}
