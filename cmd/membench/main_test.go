package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"membench/config"
)

func TestApplyNone(t *testing.T) {
	cfg := config.Default()
	o := &overrides{}
	assert.Nil(t, o.apply(cfg))
	assert.Equal(t, config.Default().String(), cfg.String())
}

func TestApplyNThreadRederivesChunk(t *testing.T) {
	cfg := config.Default()
	o := &overrides{nthread: 4}
	assert.Nil(t, o.apply(cfg))
	assert.Equal(t, 4*config.GBYTE, cfg.TotalSize)
	assert.Equal(t, config.GBYTE, cfg.ChunkSize)
	assert.Nil(t, cfg.Validate())
}

func TestApplyTotalOnly(t *testing.T) {
	cfg := config.Default()
	o := &overrides{total: "64MiB", nthread: 2}
	assert.Nil(t, o.apply(cfg))
	assert.Equal(t, 32*config.MBYTE, cfg.ChunkSize)
	assert.Equal(t, 64*config.MBYTE, cfg.TotalSize)
}

func TestApplyChunkOnly(t *testing.T) {
	cfg := config.Default()
	o := &overrides{chunk: "16MiB"}
	assert.Nil(t, o.apply(cfg))
	assert.Equal(t, 16*config.MBYTE, cfg.ChunkSize)
	assert.Equal(t, 8*16*config.MBYTE, cfg.TotalSize)
	assert.Nil(t, cfg.Validate())
}

func TestApplyChunkAndTotal(t *testing.T) {
	cfg := config.Default()
	o := &overrides{total: "32MiB", chunk: "16MiB", nthread: 2}
	assert.Nil(t, o.apply(cfg))
	assert.Equal(t, 32*config.MBYTE, cfg.TotalSize)
	assert.Equal(t, 16*config.MBYTE, cfg.ChunkSize)
	assert.Nil(t, cfg.Validate())

	cfg = config.Default()
	o = &overrides{total: "1GiB", chunk: "16MiB", nthread: 2}
	assert.Nil(t, o.apply(cfg))
	assert.Equal(t, config.GBYTE, cfg.TotalSize)
	assert.True(t, errors.Is(cfg.Validate(), config.ErrInvalid))
}

func TestApplyScalars(t *testing.T) {
	cfg := config.Default()
	o := &overrides{dur: time.Second, stride: 128, pin: true, trials: 3}
	assert.Nil(t, o.apply(cfg))
	assert.Equal(t, time.Second, cfg.Duration)
	assert.Equal(t, 128, cfg.Stride)
	assert.True(t, cfg.Pin)
	assert.Equal(t, 3, cfg.Trials)
	assert.Equal(t, 512*config.MBYTE, cfg.ChunkSize)
}

func TestApplyBadSize(t *testing.T) {
	cfg := config.Default()
	o := &overrides{chunk: "huge"}
	assert.NotNil(t, o.apply(cfg))
}
