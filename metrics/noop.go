// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "net/http"

type noopRegistry struct{}

func (noopRegistry) Counter(string) CountMeter                 { return noopMeter{} }
func (noopRegistry) CounterVec(string, []string) CountVecMeter { return noopMeter{} }
func (noopRegistry) Gauge(string) GaugeMeter                   { return noopMeter{} }
func (noopRegistry) GaugeVec(string, []string) GaugeVecMeter   { return noopMeter{} }
func (noopRegistry) Histogram(string, []int64) HistogramMeter  { return noopMeter{} }
func (noopRegistry) Handler() http.Handler                     { return nil }

type noopMeter struct{}

func (noopMeter) Add(int64)                             {}
func (noopMeter) Set(int64)                             {}
func (noopMeter) Observe(int64)                         {}
func (noopMeter) AddWithLabel(int64, map[string]string) {}
func (noopMeter) SetWithLabel(int64, map[string]string) {}
