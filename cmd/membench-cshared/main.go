// Build with -buildmode=c-shared to call the benchmark from C:
//
//	double membench_ram_test(void);
package main

import "C"

import (
	"membench/membench"
)

//export membench_ram_test
func membench_ram_test() C.double {
	return C.double(membench.RamTest())
}

func main() {}
