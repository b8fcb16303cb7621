package config

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Tsize is a byte count. In YAML it may be written as an integer or as a
// human readable size ("512MiB", "4 GB").
type Tsize uint64

const (
	KBYTE Tsize = 1 << 10
	MBYTE Tsize = 1 << 20
	GBYTE Tsize = 1 << 30
)

func ParseSize(s string) (Tsize, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return Tsize(n), nil
}

func (sz Tsize) String() string {
	return humanize.IBytes(uint64(sz))
}

func (sz *Tsize) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: size must be a scalar", n.Line)
	}
	v, err := ParseSize(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*sz = v
	return nil
}

// MarshalYAML writes the exact size, using the largest IEC unit that
// divides it.
func (sz Tsize) MarshalYAML() (interface{}, error) {
	for _, u := range []struct {
		sz   Tsize
		name string
	}{{GBYTE, "GiB"}, {MBYTE, "MiB"}, {KBYTE, "KiB"}} {
		if sz != 0 && sz%u.sz == 0 {
			return fmt.Sprintf("%d%s", sz/u.sz, u.name), nil
		}
	}
	return uint64(sz), nil
}
