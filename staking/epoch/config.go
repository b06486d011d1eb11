// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package epoch

import (
	"github.com/nezha-labs/staking/fixedpoint"
	"github.com/nezha-labs/staking/staking/records"
	"github.com/nezha-labs/staking/staking/reverts"
)

// InsuranceCfg prices the jackpot insurance.
type InsuranceCfg struct {
	Premium     fixedpoint.USDC     `yaml:"premium" json:"premium"`
	Probability fixedpoint.Internal `yaml:"probability" json:"probability"`
}

// Amount returns premium x tickets x jackpot x probability, rounded down to USDC.
func (c InsuranceCfg) Amount(tickets uint64, jackpot fixedpoint.USDC) (fixedpoint.USDC, error) {
	premium, err := fixedpoint.Convert[fixedpoint.D18](c.Premium)
	if err != nil {
		return fixedpoint.USDC{}, err
	}
	amount, err := premium.MulDivUint64(tickets, 1)
	if err != nil {
		return fixedpoint.USDC{}, err
	}
	wideJackpot, err := fixedpoint.Convert[fixedpoint.D18](jackpot)
	if err != nil {
		return fixedpoint.USDC{}, err
	}
	if amount, err = amount.Mul(wideJackpot); err != nil {
		return fixedpoint.USDC{}, err
	}
	if amount, err = amount.Mul(c.Probability); err != nil {
		return fixedpoint.USDC{}, err
	}
	return fixedpoint.Convert[fixedpoint.D6](amount)
}

// YieldSplitCfg decides how an epoch's yield is distributed.
type YieldSplitCfg struct {
	Jackpot         fixedpoint.USDC  `yaml:"jackpot" json:"jackpot"`
	Insurance       InsuranceCfg     `yaml:"insurance" json:"insurance"`
	TreasuryRatio   fixedpoint.Ratio `yaml:"treasuryRatio" json:"treasuryRatio"`
	Tier2PrizeShare uint8            `yaml:"tier2PrizeShare" json:"tier2PrizeShare"`
	Tier3PrizeShare uint8            `yaml:"tier3PrizeShare" json:"tier3PrizeShare"`
}

func (YieldSplitCfg) maxLen() int {
	insurance := records.ListSize(2 * records.SizeFixedPoint)
	return records.ListSize(2*records.SizeFixedPoint + insurance + 2*records.SizeUint8)
}

// Policy bounds the values an admin may configure for an epoch.
type Policy struct {
	MaxJackpot     fixedpoint.USDC     `yaml:"maxJackpot"`
	MinPremium     fixedpoint.USDC     `yaml:"minPremium"`
	MaxPremium     fixedpoint.USDC     `yaml:"maxPremium"`
	MaxProbability fixedpoint.Internal `yaml:"maxProbability"`
	MaxTreasury    fixedpoint.Ratio    `yaml:"maxTreasuryRatio"`
}

// DefaultPolicy returns the stock limits.
func DefaultPolicy() Policy {
	return Policy{
		MaxJackpot:     fixedpoint.MustParse[fixedpoint.D6]("1_000_000_000"),
		MinPremium:     fixedpoint.MustParse[fixedpoint.D6]("1.1"),
		MaxPremium:     fixedpoint.MustParse[fixedpoint.D6]("5"),
		MaxProbability: fixedpoint.MustParse[fixedpoint.D18]("0.001"),
		MaxTreasury:    fixedpoint.One[fixedpoint.D3](),
	}
}

// Validate checks cfg against the policy.
func (p Policy) Validate(cfg YieldSplitCfg) error {
	if cfg.Jackpot.IsZero() || cfg.Jackpot.Cmp(p.MaxJackpot) > 0 {
		return reverts.InvalidConstant(reverts.ConstJackpotAmount)
	}
	if cfg.Insurance.Premium.Cmp(p.MinPremium) < 0 || cfg.Insurance.Premium.Cmp(p.MaxPremium) > 0 {
		return reverts.InvalidConstant(reverts.ConstInsurancePremium)
	}
	if cfg.Insurance.Probability.IsZero() || cfg.Insurance.Probability.Cmp(p.MaxProbability) >= 0 {
		return reverts.InvalidConstant(reverts.ConstInsuranceProbability)
	}
	if cfg.TreasuryRatio.Cmp(p.MaxTreasury) > 0 {
		return reverts.InvalidConstant(reverts.ConstTreasuryRatio)
	}
	if cfg.Tier2PrizeShare == 0 || cfg.Tier3PrizeShare == 0 ||
		uint16(cfg.Tier2PrizeShare)+uint16(cfg.Tier3PrizeShare) > 255 {
		return reverts.InvalidConstant(reverts.ConstPrizeShare)
	}
	return nil
}
