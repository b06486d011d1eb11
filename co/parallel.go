// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"runtime"
)

// Enqueue hands one unit of work to the pool.
type Enqueue func(work func())

// Parallel runs the work queued by cb on one worker per CPU and returns once
// all of it has finished. Enqueue blocks while the queue is full.
func Parallel(cb func(Enqueue)) {
	workers := runtime.NumCPU()
	queue := make(chan func(), workers*2)

	var goes Goes
	for range workers {
		goes.Go(func() {
			for work := range queue {
				work()
			}
		})
	}

	cb(func(work func()) { queue <- work })
	close(queue)
	goes.Wait()
}
