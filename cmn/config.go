// Package cmn carries the handful of process-wide tunables the spec names
// as constants. It deliberately does not parse a config file (config
// parsing is out of scope per spec.md SS1) -- GCO ("global config owner")
// just holds a swappable snapshot the way the teacher's cmn.GCO does,
// minus the file-watcher and REST reload endpoint.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cmn

import (
	"sync/atomic"
	"time"
)

type Config struct {
	// spec.md SS4.H: interval between ConcurrentSearchCtx lock releases.
	ConcurrentTimeout time.Duration
	// spec.md SS4.F: cursor registry idle-GC cadence (op-count) and throttle.
	CursorSweepInterval  int
	CursorSweepThrottle  time.Duration
	CursorDefaultTimeout time.Duration
	// spec.md SS3 Sortable vector: max sortable fields per document.
	MaxSortables int
	// spec.md SS5: MRIterator manual-trigger drain threshold.
	IterDrainThreshold int
}

func defaultConfig() *Config {
	return &Config{
		ConcurrentTimeout:    5 * time.Millisecond,
		CursorSweepInterval:  1000,
		CursorSweepThrottle:  500 * time.Millisecond,
		CursorDefaultTimeout: time.Minute,
		MaxSortables:         1024,
		IterDrainThreshold:   32,
	}
}

type gco struct {
	cur atomic.Pointer[Config]
}

// GCO is the process-wide config owner; Get() is lock-free (atomic
// pointer load), Put() swaps the whole snapshot -- same shape as the
// teacher's cmn.GCO, without the on-disk reload machinery.
var GCO = &gco{}

func init() { GCO.cur.Store(defaultConfig()) }

func (g *gco) Get() *Config { return g.cur.Load() }

func (g *gco) Put(c *Config) { g.cur.Store(c) }
