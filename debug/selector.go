package debug

type Tselector string

// ALWAYS
const (
	ALWAYS Tselector = "ALWAYS"
	ERROR  Tselector = "ERROR"
	NEVER  Tselector = "NEVER"
)

// Benchmarks
const (
	BENCH      Tselector = "BENCH"
	WORKER     Tselector = "WORKER"
	THROUGHPUT Tselector = "THROUGHPUT"
	CONFIG     Tselector = "CONFIG"
	SYSINFO    Tselector = "SYSINFO"
)

// Tests
const (
	TEST Tselector = "TEST"
)
