// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop(t *testing.T) {
	reg := noopRegistry{}
	assert.Nil(t, reg.Handler())

	reg.Counter("c").Add(1)
	reg.CounterVec("cv", []string{"code"}).AddWithLabel(1, map[string]string{"code": "1"})
	reg.Gauge("g").Set(5)
	reg.GaugeVec("gv", []string{"status"}).SetWithLabel(1, map[string]string{"status": "running"})
	reg.Histogram("h", BucketMillis).Observe(3)
}

func gather(t *testing.T, r *promRegistry) map[string]*dto.MetricFamily {
	families, err := r.reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func TestPrometheusRegistry(t *testing.T) {
	r := newPromRegistry("test")

	r.Counter("instructions").Add(2)
	r.Counter("instructions").Add(3)
	r.CounterVec("failures", []string{"code"}).AddWithLabel(1, map[string]string{"code": "27"})
	r.CounterVec("failures", []string{"code"}).AddWithLabel(1, map[string]string{"code": "27"})

	g := r.Gauge("epoch_index")
	g.Set(7)
	g.Add(1)

	r.GaugeVec("epoch_status", []string{"status"}).SetWithLabel(1, map[string]string{"status": "yielding"})

	h := r.Histogram("duration_ms", BucketMillis)
	h.Observe(4)
	h.Observe(6)

	families := gather(t, r)

	assert.Equal(t, float64(5), families["test_instructions"].Metric[0].GetCounter().GetValue())
	assert.Equal(t, float64(2), families["test_failures"].Metric[0].GetCounter().GetValue())
	assert.Equal(t, float64(8), families["test_epoch_index"].Metric[0].GetGauge().GetValue())
	assert.Equal(t, float64(1), families["test_epoch_status"].Metric[0].GetGauge().GetValue())
	assert.Equal(t, float64(10), families["test_duration_ms"].Metric[0].GetHistogram().GetSampleSum())
	assert.Equal(t, uint64(2), families["test_duration_ms"].Metric[0].GetHistogram().GetSampleCount())
	assert.NotNil(t, r.Handler())
}

func TestLazyLoad(t *testing.T) {
	calls := 0
	get := LazyLoad(func() int {
		calls++
		return calls
	})
	assert.Equal(t, 1, get())
	assert.Equal(t, 1, get())
	assert.Equal(t, 1, calls)
}
