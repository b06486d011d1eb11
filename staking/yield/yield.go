// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package yield splits the funds an investor returns at the end of an epoch.
package yield

import (
	"github.com/nezha-labs/staking/fixedpoint"
	"github.com/nezha-labs/staking/staking/epoch"
	"github.com/nezha-labs/staking/staking/returnrate"
	"github.com/nezha-labs/staking/staking/reverts"
)

// Split is the outcome of distributing one epoch's returns.
type Split struct {
	Returns epoch.Returns
	Rate    returnrate.Rate
	Pending epoch.PendingFunds
	// Premium is the full insurance premium owed to the insurer this epoch,
	// whether paid from yield or from the pending reserve. Zero when the draw is disabled.
	Premium fixedpoint.USDC
}

// Distribute splits returned against invested. The insurance premium is
// insuranceAmount; the pending insurance reserve counts towards it.
func Distribute(
	returned, invested fixedpoint.USDC,
	rate returnrate.Rate,
	pending epoch.PendingFunds,
	cfg epoch.YieldSplitCfg,
	insuranceAmount fixedpoint.USDC,
) (*Split, error) {
	split := &Split{
		Rate:    rate,
		Pending: pending,
	}
	split.Returns.Total = returned

	switch {
	case invested.IsZero():
		if !returned.IsZero() {
			return nil, reverts.New(reverts.ReturnAmountIsNonZeroButInvestedIsZero)
		}
		return split, nil
	case returned.IsZero():
		return nil, reverts.New(reverts.ReturnAmountIsZero)
	case returned.Cmp(invested) < 0:
		return distributeLoss(split, returned, invested, insuranceAmount)
	}

	gain, err := returned.Sub(invested)
	if err != nil {
		return nil, reverts.Arithmetic(err)
	}
	split.Returns.DepositBack = invested
	if err := distributeGain(split, gain, cfg, insuranceAmount); err != nil {
		return nil, err
	}
	return split, nil
}

func distributeLoss(split *Split, returned, invested, insuranceAmount fixedpoint.USDC) (*Split, error) {
	rate, err := split.Rate.Mul(returned, invested)
	if err != nil {
		return nil, reverts.Arithmetic(err)
	}
	if split.Pending.Insurance.Cmp(insuranceAmount) < 0 {
		return nil, reverts.New(reverts.InsuranceReserveShortfall)
	}
	split.Rate = rate
	split.Returns.DepositBack = returned
	split.Pending.Insurance = split.Pending.Insurance.SaturatingSub(insuranceAmount)
	split.Premium = insuranceAmount
	split.Returns.DrawEnabled = true
	return split, nil
}

func distributeGain(split *Split, gain fixedpoint.USDC, cfg epoch.YieldSplitCfg, insuranceAmount fixedpoint.USDC) error {
	needed := insuranceAmount.SaturatingSub(split.Pending.Insurance)

	if gain.Cmp(needed) < 0 {
		reserve, err := split.Pending.Insurance.Add(gain)
		if err != nil {
			return reverts.Arithmetic(err)
		}
		split.Pending.Insurance = reserve
		split.Returns.Insurance = gain
		return nil
	}

	rest := gain.SaturatingSub(needed)
	treasury, err := fixedpoint.MulRatio(rest, cfg.TreasuryRatio, fixedpoint.One[fixedpoint.D3]())
	if err != nil {
		return reverts.Arithmetic(err)
	}
	prizes, err := rest.Sub(treasury)
	if err != nil {
		return reverts.Arithmetic(err)
	}
	weights := uint64(cfg.Tier2PrizeShare) + uint64(cfg.Tier3PrizeShare)
	tier2, err := prizes.MulDivUint64(uint64(cfg.Tier2PrizeShare), weights)
	if err != nil {
		return reverts.Arithmetic(err)
	}
	tier3 := prizes.SaturatingSub(tier2)

	pendingTier2, err := split.Pending.Tier2Prize.Add(tier2)
	if err != nil {
		return reverts.Arithmetic(err)
	}
	pendingTier3, err := split.Pending.Tier3Prize.Add(tier3)
	if err != nil {
		return reverts.Arithmetic(err)
	}

	split.Returns.Insurance = needed
	split.Returns.Treasury = treasury
	split.Returns.Tier2Prize = tier2
	split.Returns.Tier3Prize = tier3
	split.Returns.DrawEnabled = true
	split.Pending = epoch.PendingFunds{
		Insurance:  split.Pending.Insurance.SaturatingSub(insuranceAmount),
		Tier2Prize: pendingTier2,
		Tier3Prize: pendingTier3,
	}
	split.Premium = insuranceAmount
	return nil
}
