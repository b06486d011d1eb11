// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import "sync/atomic"

// Stats counts cache hits and misses.
type Stats struct {
	hit, miss atomic.Int64
	permille  atomic.Int32
}

func (s *Stats) Hit() int64  { return s.hit.Add(1) }
func (s *Stats) Miss() int64 { return s.miss.Add(1) }

// HitRate returns hits over lookups, zero before the first lookup.
func (s *Stats) HitRate() float64 {
	hit, miss := s.hit.Load(), s.miss.Load()
	if hit+miss == 0 {
		return 0
	}
	return float64(hit) / float64(hit+miss)
}

// Changed returns the counters and whether the hit rate, in permille, moved
// since the previous call.
func (s *Stats) Changed() (changed bool, hit, miss int64) {
	hit, miss = s.hit.Load(), s.miss.Load()
	var rate int32
	if hit+miss > 0 {
		rate = int32(hit * 1000 / (hit + miss))
	}
	return s.permille.Swap(rate) != rate, hit, miss
}
