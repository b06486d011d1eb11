// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package epochs

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/nezha-labs/staking/fixedpoint"
	"github.com/nezha-labs/staking/staking/epoch"
	"github.com/nezha-labs/staking/staking/returnrate"
)

type LatestEpoch struct {
	Index       uint64             `json:"index"`
	Status      epoch.Status       `json:"status"`
	Rate        returnrate.Rate    `json:"rate"`
	TotalShares fixedpoint.USDC    `json:"totalShares"`
	Pending     epoch.PendingFunds `json:"pending"`
	Keys        epoch.Keys         `json:"keys"`
}

func convertLatest(l *epoch.LatestEpoch) *LatestEpoch {
	return &LatestEpoch{
		Index:       l.Index,
		Status:      l.Status,
		Rate:        l.Rate,
		TotalShares: l.TotalShares,
		Pending:     l.Pending,
		Keys:        l.Keys,
	}
}

type Draw struct {
	Combination string        `json:"combination"`
	Output      hexutil.Bytes `json:"output"`
}

type Epoch struct {
	Index         uint64              `json:"index"`
	Status        epoch.Status        `json:"status"`
	Cfg           epoch.YieldSplitCfg `json:"cfg"`
	StartAt       uint64              `json:"startAt"`
	ExpectedEndAt uint64              `json:"expectedEndAt"`
	Tickets       *epoch.TicketsInfo  `json:"tickets"`
	TotalInvested *fixedpoint.USDC    `json:"totalInvested"`
	Returns       *epoch.Returns      `json:"returns"`
	Draw          *Draw               `json:"draw"`
	EndAt         uint64              `json:"endAt,omitempty"`
}

func convertEpoch(e *epoch.Epoch) *Epoch {
	out := &Epoch{
		Index:         e.Index,
		Status:        e.Status,
		Cfg:           e.Cfg,
		StartAt:       e.StartAt,
		ExpectedEndAt: e.ExpectedEndAt,
		Returns:       e.Returns,
		EndAt:         e.EndAt,
	}
	if e.Investment != nil {
		tickets, invested := e.Investment.Tickets, e.Investment.TotalInvested
		out.Tickets, out.TotalInvested = &tickets, &invested
	}
	if e.Draw != nil {
		out.Draw = &Draw{
			Combination: e.Draw.Combination.String(),
			Output:      e.Draw.Output[:],
		}
	}
	return out
}
