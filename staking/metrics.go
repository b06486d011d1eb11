// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"strconv"
	"time"

	"github.com/holiman/uint256"

	"github.com/nezha-labs/staking/instruction"
	"github.com/nezha-labs/staking/metrics"
	"github.com/nezha-labs/staking/staking/epoch"
	"github.com/nezha-labs/staking/staking/reverts"
)

var (
	metricInstructions = metrics.LazyLoadCounterVec("staking_instructions_count", []string{"instruction"})
	metricFailures     = metrics.LazyLoadCounterVec("staking_failures_count", []string{"instruction", "code"})
	metricDuration     = metrics.LazyLoadHistogram("staking_instruction_duration_ms", metrics.BucketMillis)
	metricEpochIndex   = metrics.LazyLoadGauge("staking_epoch_index")
	metricEpochStatus  = metrics.LazyLoadGaugeVec("staking_epoch_status", []string{"status"})
	metricTotalShares  = metrics.LazyLoadGauge("staking_total_shares")
)

var usdcUnit = uint256.NewInt(1_000_000)

var allStatuses = []epoch.Status{epoch.StatusRunning, epoch.StatusYielding, epoch.StatusFinalising, epoch.StatusEnded}

func observeFailure(tag instruction.Tag, err error) {
	code := "internal"
	if c, ok := reverts.CodeOf(err); ok {
		code = strconv.FormatUint(uint64(c), 10)
	}
	metricFailures().AddWithLabel(1, map[string]string{"instruction": tag.String(), "code": code})
}

func observeSuccess(tag instruction.Tag, latest *epoch.LatestEpoch, elapsed time.Duration) {
	metricInstructions().AddWithLabel(1, map[string]string{"instruction": tag.String()})
	metricDuration().Observe(elapsed.Milliseconds())
	if latest == nil {
		return
	}
	metricEpochIndex().Set(int64(latest.Index))
	for _, s := range allStatuses {
		var v int64
		if s == latest.Status {
			v = 1
		}
		metricEpochStatus().SetWithLabel(v, map[string]string{"status": s.String()})
	}
	// whole units only
	shares := latest.TotalShares.Raw()
	shares.Div(shares, usdcUnit)
	if shares.IsUint64() && shares.Uint64() <= 1<<62 {
		metricTotalShares().Set(int64(shares.Uint64()))
	}
}
