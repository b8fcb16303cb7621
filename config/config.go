package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	db "membench/debug"
)

const (
	MEMBENCHCONFIG = "MEMBENCHCONFIG"
	MEMBENCHDEBUG  = "MEMBENCHDEBUG"
)

var (
	ErrInvalid       = errors.New("invalid config")
	ErrChunkTooSmall = errors.New("chunk smaller than stride")
)

// Default parameters. A pass over a chunk writes one byte per cache line.
var defaults = `
total_size: 4GiB
nthread: 8
duration: 20s
stride: 64
fill: 1
pin: false
trials: 1
`

type Config struct {
	// Total working set across all workers.
	TotalSize Tsize `yaml:"total_size"`
	// Number of worker threads.
	NThread int `yaml:"nthread"`
	// Private chunk per worker. If zero, TotalSize / NThread. If both are
	// set, TotalSize must equal ChunkSize * NThread.
	ChunkSize Tsize `yaml:"chunk_size"`
	// How long each worker keeps writing.
	Duration time.Duration `yaml:"duration"`
	// Distance in bytes between successive writes within a pass.
	Stride int `yaml:"stride"`
	// Value written at every stride.
	Fill byte `yaml:"fill"`
	// Pin worker i to core i % ncores.
	Pin bool `yaml:"pin"`
	// Number of runs for RunTrials.
	Trials int `yaml:"trials"`
}

var Conf *Config

func init() {
	c := &Config{}
	if err := decode(c, defaults); err != nil {
		db.DFatalf("Yaml decode defaults err %v", err)
	}
	c.Normalize()
	Conf = c
}

// Default returns a fresh copy of the default configuration.
func Default() *Config {
	c := *Conf
	return &c
}

func decode(cfg *Config, params string) error {
	d := yaml.NewDecoder(strings.NewReader(params))
	d.KnownFields(true)
	if err := d.Decode(cfg); err != nil && err != io.EOF {
		return fmt.Errorf("yaml decode: %w", err)
	}
	return nil
}

// ReadConfig decodes params on top of the defaults.
func ReadConfig(params string) (*Config, error) {
	c := Default()
	// Sizes in params are resolved against each other, not the defaults.
	c.ChunkSize = 0
	c.TotalSize = 0
	if err := decode(c, params); err != nil {
		return nil, err
	}
	if c.ChunkSize == 0 && c.TotalSize == 0 {
		c.TotalSize = Conf.TotalSize
	}
	c.Normalize()
	return c, nil
}

func ReadConfigFile(pn string) (*Config, error) {
	b, err := os.ReadFile(pn)
	if err != nil {
		return nil, err
	}
	c, err := ReadConfig(string(b))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", pn, err)
	}
	db.DPrintf(db.CONFIG, "ReadConfigFile %v: %v", pn, c)
	return c, nil
}

// FromEnv reads the file named by MEMBENCHCONFIG, or returns the defaults
// if the variable is unset.
func FromEnv() (*Config, error) {
	pn := os.Getenv(MEMBENCHCONFIG)
	if pn == "" {
		return Default(), nil
	}
	return ReadConfigFile(pn)
}

// Normalize fills in whichever of ChunkSize and TotalSize is zero from the
// other. A zero chunk is TotalSize / NThread and the total is rounded down
// to a multiple of NThread. Two non-zero sizes are left alone for Validate
// to check.
func (cfg *Config) Normalize() {
	if cfg.NThread <= 0 {
		return
	}
	n := Tsize(cfg.NThread)
	switch {
	case cfg.ChunkSize == 0:
		cfg.ChunkSize = cfg.TotalSize / n
		cfg.TotalSize = cfg.ChunkSize * n
	case cfg.TotalSize == 0:
		if cfg.ChunkSize <= Tsize(math.MaxUint64)/n {
			cfg.TotalSize = cfg.ChunkSize * n
		}
	}
}

func (cfg *Config) Validate() error {
	if cfg.NThread <= 0 {
		return fmt.Errorf("%w: nthread %d", ErrInvalid, cfg.NThread)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration %v", ErrInvalid, cfg.Duration)
	}
	if cfg.Stride <= 0 {
		return fmt.Errorf("%w: stride %d", ErrInvalid, cfg.Stride)
	}
	if cfg.ChunkSize == 0 {
		return fmt.Errorf("%w: chunk size 0", ErrInvalid)
	}
	if cfg.ChunkSize > Tsize(math.MaxInt) {
		return fmt.Errorf("%w: chunk size %v", ErrInvalid, cfg.ChunkSize)
	}
	if cfg.ChunkSize > Tsize(math.MaxUint64)/Tsize(cfg.NThread) {
		return fmt.Errorf("%w: %d x %v overflows", ErrInvalid, cfg.NThread, cfg.ChunkSize)
	}
	if cfg.TotalSize != cfg.ChunkSize*Tsize(cfg.NThread) {
		return fmt.Errorf("%w: total %v != %d x %v", ErrInvalid, cfg.TotalSize, cfg.NThread, cfg.ChunkSize)
	}
	if cfg.ChunkSize < Tsize(cfg.Stride) {
		return fmt.Errorf("%w: chunk %d stride %d", ErrChunkTooSmall, cfg.ChunkSize, cfg.Stride)
	}
	if cfg.Trials < 0 {
		return fmt.Errorf("%w: trials %d", ErrInvalid, cfg.Trials)
	}
	return nil
}

func (cfg *Config) Marshal() (string, error) {
	var buf bytes.Buffer
	e := yaml.NewEncoder(&buf)
	e.SetIndent(2)
	if err := e.Encode(cfg); err != nil {
		return "", err
	}
	if err := e.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (cfg *Config) String() string {
	return fmt.Sprintf("&{ TotalSize:%v NThread:%v ChunkSize:%v Duration:%v Stride:%v Fill:%v Pin:%v Trials:%v }",
		cfg.TotalSize, cfg.NThread, cfg.ChunkSize, cfg.Duration, cfg.Stride, cfg.Fill, cfg.Pin, cfg.Trials)
}
