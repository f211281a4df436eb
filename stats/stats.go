// Package stats is a small facade over prometheus/client_golang
// (spec.md SS4.R): per-index cursor-registry gauges, in-flight
// map-reduce counters, and the tracked key-space-version gauge. Shaped
// after the teacher's stats.Tracker interface (stats/target_stats.go,
// cluster/mock/stats_mock.go) but backed by real prometheus collectors
// instead of a StatsD client, since the rest of the pack (e.g.
// vjache-cie/cmd/cie/index.go) wires client_golang directly rather than
// through a StatsD bridge.
//
// Metrics are registered against a private *prometheus.Registry, never
// prometheus.DefaultRegisterer -- a library must not mutate global state
// on import.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package stats

import "github.com/prometheus/client_golang/prometheus"

// Stats owns one private registry and every collector this package
// exposes. The zero value is not usable; construct with New.
type Stats struct {
	reg *prometheus.Registry

	cursorUsed     *prometheus.GaugeVec
	cursorCapacity *prometheus.GaugeVec
	mrCtxInflight  prometheus.Gauge
	mrIterPending  prometheus.Gauge
	ksverTracked   prometheus.Gauge
}

// New creates a Stats facade with a fresh, private registry and
// registers all collectors against it.
func New() *Stats {
	reg := prometheus.NewRegistry()
	s := &Stats{
		reg: reg,
		cursorUsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cursor_registry_used",
			Help: "Number of cursors currently reserved, per index.",
		}, []string{"index"}),
		cursorCapacity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cursor_registry_capacity",
			Help: "Cursor quota capacity, per index.",
		}, []string{"index"}),
		mrCtxInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mr_ctx_inflight",
			Help: "Number of map-reduce contexts awaiting shard replies.",
		}),
		mrIterPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mr_iterator_pending",
			Help: "Number of cursor iterators with an outstanding round in flight.",
		}),
		ksverTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ksver_versions_tracked",
			Help: "Number of distinct key-space versions with a nonzero in-flight query count.",
		}),
	}
	reg.MustRegister(s.cursorUsed, s.cursorCapacity, s.mrCtxInflight, s.mrIterPending, s.ksverTracked)
	return s
}

// Registry returns the private prometheus.Registry a host process can
// mount under /metrics (e.g. via promhttp.HandlerFor).
func (s *Stats) Registry() *prometheus.Registry { return s.reg }

func (s *Stats) SetCursorUsed(indexName string, used int) {
	s.cursorUsed.WithLabelValues(indexName).Set(float64(used))
}

func (s *Stats) SetCursorCapacity(indexName string, capacity int) {
	s.cursorCapacity.WithLabelValues(indexName).Set(float64(capacity))
}

func (s *Stats) DeleteIndex(indexName string) {
	s.cursorUsed.DeleteLabelValues(indexName)
	s.cursorCapacity.DeleteLabelValues(indexName)
}

func (s *Stats) IncMRCtxInflight()   { s.mrCtxInflight.Inc() }
func (s *Stats) DecMRCtxInflight()   { s.mrCtxInflight.Dec() }
func (s *Stats) SetMRIterPending(n int) { s.mrIterPending.Set(float64(n)) }
func (s *Stats) SetKsverTracked(n int)  { s.ksverTracked.Set(float64(n)) }
