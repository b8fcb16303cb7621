package debug

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

func init() {
	log.SetFlags(log.Ltime | log.Lmicroseconds)
}

//
// Debug output is controled by MEMBENCHDEBUG environment variable, which
// can be a list of labels (e.g., "BENCH;WORKER").
//

var (
	once   sync.Once
	labels map[Tselector]bool
)

func debugLabels() map[Tselector]bool {
	once.Do(func() {
		labels = make(map[Tselector]bool)
		s := os.Getenv("MEMBENCHDEBUG")
		if s == "" {
			return
		}
		for _, l := range strings.Split(s, ";") {
			labels[Tselector(l)] = true
		}
	})
	return labels
}

func name() string {
	return filepath.Base(os.Args[0])
}

// WillBePrinted reports whether DPrintf with this label produces output.
func WillBePrinted(label Tselector) bool {
	if label == ALWAYS {
		return true
	}
	return debugLabels()[label]
}

func DPrintf(label Tselector, format string, v ...interface{}) {
	if WillBePrinted(label) {
		log.Printf("%v %v %v", name(), label, fmt.Sprintf(format, v...))
	}
}

func DFatalf(format string, v ...interface{}) {
	// Get info for the caller.
	pc, file, line, ok := runtime.Caller(1)
	fnDetails := runtime.FuncForPC(pc)
	if ok && fnDetails != nil {
		log.Fatalf("FATAL %v %v %v:%v %v", name(), fnDetails.Name(), file, line, fmt.Sprintf(format, v...))
	} else {
		log.Fatalf("FATAL %v (missing details) %v", name(), fmt.Sprintf(format, v...))
	}
}
