// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nezha-labs/staking/log"
)

var logger = log.WithContext("pkg", "metrics")

// EnablePrometheus installs a Prometheus backed registry whose meters are
// prefixed with namespace. Later calls keep the first registry.
func EnablePrometheus(namespace string) {
	if Enabled() {
		return
	}
	active.Store(&registryHolder{newPromRegistry(namespace)})
}

type promRegistry struct {
	namespace string
	reg       *prometheus.Registry

	mu     sync.Mutex
	meters map[string]any
}

func newPromRegistry(namespace string) *promRegistry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
		collectors.NewGoCollector(),
	)
	return &promRegistry{
		namespace: namespace,
		reg:       reg,
		meters:    make(map[string]any),
	}
}

// getOrCreate returns the meter registered under name, creating it with build
// when absent. A collector that fails to register is still returned so callers
// never see a nil meter.
func (r *promRegistry) getOrCreate(name string, build func() (prometheus.Collector, any)) any {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.meters[name]; ok {
		return m
	}
	c, m := build()
	if err := r.reg.Register(c); err != nil {
		logger.Warn("unable to register metric", "name", name, "err", err)
	}
	r.meters[name] = m
	return m
}

func (r *promRegistry) Counter(name string) CountMeter {
	return r.getOrCreate(name, func() (prometheus.Collector, any) {
		c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: r.namespace, Name: name})
		return c, promCounter{c}
	}).(CountMeter)
}

func (r *promRegistry) CounterVec(name string, labels []string) CountVecMeter {
	return r.getOrCreate(name, func() (prometheus.Collector, any) {
		c := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: r.namespace, Name: name}, labels)
		return c, promCounterVec{c}
	}).(CountVecMeter)
}

func (r *promRegistry) Gauge(name string) GaugeMeter {
	return r.getOrCreate(name, func() (prometheus.Collector, any) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: r.namespace, Name: name})
		return g, promGauge{g}
	}).(GaugeMeter)
}

func (r *promRegistry) GaugeVec(name string, labels []string) GaugeVecMeter {
	return r.getOrCreate(name, func() (prometheus.Collector, any) {
		g := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: r.namespace, Name: name}, labels)
		return g, promGaugeVec{g}
	}).(GaugeVecMeter)
}

func (r *promRegistry) Histogram(name string, buckets []int64) HistogramMeter {
	return r.getOrCreate(name, func() (prometheus.Collector, any) {
		fb := make([]float64, 0, len(buckets))
		for _, b := range buckets {
			fb = append(fb, float64(b))
		}
		h := prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: r.namespace, Name: name, Buckets: fb})
		return h, promHistogram{h}
	}).(HistogramMeter)
}

func (r *promRegistry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

type promCounter struct{ c prometheus.Counter }

func (m promCounter) Add(i int64) { m.c.Add(float64(i)) }

type promCounterVec struct{ c *prometheus.CounterVec }

func (m promCounterVec) AddWithLabel(i int64, labels map[string]string) {
	m.c.With(labels).Add(float64(i))
}

type promGauge struct{ g prometheus.Gauge }

func (m promGauge) Add(i int64) { m.g.Add(float64(i)) }
func (m promGauge) Set(i int64) { m.g.Set(float64(i)) }

type promGaugeVec struct{ g *prometheus.GaugeVec }

func (m promGaugeVec) SetWithLabel(i int64, labels map[string]string) {
	m.g.With(labels).Set(float64(i))
}

type promHistogram struct{ h prometheus.Histogram }

func (m promHistogram) Observe(i int64) { m.h.Observe(float64(i)) }
