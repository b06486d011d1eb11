// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics is a process wide meter registry. It is a no-op until
// EnablePrometheus is called.
package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"
)

// Registry creates meters by name. Asking twice for the same name returns the same meter.
type Registry interface {
	Counter(name string) CountMeter
	CounterVec(name string, labels []string) CountVecMeter
	Gauge(name string) GaugeMeter
	GaugeVec(name string, labels []string) GaugeVecMeter
	Histogram(name string, buckets []int64) HistogramMeter
	Handler() http.Handler
}

var active atomic.Pointer[registryHolder]

type registryHolder struct{ Registry }

func init() {
	active.Store(&registryHolder{noopRegistry{}})
}

func current() Registry { return active.Load().Registry }

// Enabled reports whether a non-noop registry is installed.
func Enabled() bool {
	_, noop := current().(noopRegistry)
	return !noop
}

// HTTPHandler serves the installed registry, or nil when metrics are disabled.
func HTTPHandler() http.Handler {
	return current().Handler()
}

// BucketMillis suits request and instruction latencies in milliseconds.
var BucketMillis = []int64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

// CountMeter only goes up.
type CountMeter interface {
	Add(int64)
}

// CountVecMeter is a CountMeter partitioned by labels.
type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

// GaugeMeter holds a value that moves both ways.
type GaugeMeter interface {
	Add(int64)
	Set(int64)
}

// GaugeVecMeter is a GaugeMeter partitioned by labels.
type GaugeVecMeter interface {
	SetWithLabel(int64, map[string]string)
}

// HistogramMeter aggregates observations into buckets.
type HistogramMeter interface {
	Observe(int64)
}

func Counter(name string) CountMeter { return current().Counter(name) }

func CounterVec(name string, labels []string) CountVecMeter {
	return current().CounterVec(name, labels)
}

func Gauge(name string) GaugeMeter { return current().Gauge(name) }

func GaugeVec(name string, labels []string) GaugeVecMeter {
	return current().GaugeVec(name, labels)
}

func Histogram(name string, buckets []int64) HistogramMeter {
	return current().Histogram(name, buckets)
}

// LazyLoad defers meter creation to first use, so meters can be declared as
// package variables before the registry is chosen.
func LazyLoad[T any](f func() T) func() T {
	var (
		once   sync.Once
		result T
	)
	return func() T {
		once.Do(func() { result = f() })
		return result
	}
}

func LazyLoadCounter(name string) func() CountMeter {
	return LazyLoad(func() CountMeter { return Counter(name) })
}

func LazyLoadCounterVec(name string, labels []string) func() CountVecMeter {
	return LazyLoad(func() CountVecMeter { return CounterVec(name, labels) })
}

func LazyLoadGauge(name string) func() GaugeMeter {
	return LazyLoad(func() GaugeMeter { return Gauge(name) })
}

func LazyLoadGaugeVec(name string, labels []string) func() GaugeVecMeter {
	return LazyLoad(func() GaugeVecMeter { return GaugeVec(name, labels) })
}

func LazyLoadHistogram(name string, buckets []int64) func() HistogramMeter {
	return LazyLoad(func() HistogramMeter { return Histogram(name, buckets) })
}
