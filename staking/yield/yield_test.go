// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package yield

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nezha-labs/staking/fixedpoint"
	"github.com/nezha-labs/staking/staking/epoch"
	"github.com/nezha-labs/staking/staking/returnrate"
	"github.com/nezha-labs/staking/staking/reverts"
)

func usdc(s string) fixedpoint.USDC { return fixedpoint.MustParse[fixedpoint.D6](s) }

func testCfg() epoch.YieldSplitCfg {
	return epoch.YieldSplitCfg{
		Jackpot: usdc("100000"),
		Insurance: epoch.InsuranceCfg{
			Premium:     usdc("3"),
			Probability: fixedpoint.MustParse[fixedpoint.D18]("0.0000000001"),
		},
		TreasuryRatio:   fixedpoint.MustParse[fixedpoint.D3]("0.5"),
		Tier2PrizeShare: 2,
		Tier3PrizeShare: 1,
	}
}

func premium(t *testing.T, cfg epoch.YieldSplitCfg) fixedpoint.USDC {
	amount, err := cfg.Insurance.Amount(100_000, cfg.Jackpot)
	require.NoError(t, err)
	return amount
}

func TestScenario(t *testing.T) {
	cfg := testCfg()
	insurance := premium(t, cfg)
	assert.Equal(t, usdc("3"), insurance)

	split, err := Distribute(usdc("11000"), usdc("10000"), returnrate.Unity(), epoch.PendingFunds{}, cfg, insurance)
	require.NoError(t, err)

	assert.Equal(t, usdc("11000"), split.Returns.Total)
	assert.Equal(t, usdc("10000"), split.Returns.DepositBack)
	assert.Equal(t, usdc("3"), split.Returns.Insurance)
	assert.Equal(t, "498.500000", split.Returns.Treasury.String())
	assert.Equal(t, "332.333333", split.Returns.Tier2Prize.String())
	assert.Equal(t, "166.166667", split.Returns.Tier3Prize.String())
	assert.True(t, split.Returns.DrawEnabled)
	assert.Equal(t, usdc("3"), split.Premium)

	assert.Equal(t, 0, split.Rate.Cmp(returnrate.Unity()))
	assert.Equal(t, split.Returns.Tier2Prize, split.Pending.Tier2Prize)
	assert.Equal(t, split.Returns.Tier3Prize, split.Pending.Tier3Prize)
	assert.True(t, split.Pending.Insurance.IsZero())
}

func TestGainAccumulatesPending(t *testing.T) {
	cfg := testCfg()
	pending := epoch.PendingFunds{
		Insurance:  usdc("1"),
		Tier2Prize: usdc("10"),
		Tier3Prize: usdc("5"),
	}
	split, err := Distribute(usdc("1300"), usdc("1000"), returnrate.Unity(), pending, cfg, usdc("3"))
	require.NoError(t, err)

	// the reserve covers one unit of the premium
	assert.Equal(t, usdc("2"), split.Returns.Insurance)
	assert.Equal(t, usdc("149"), split.Returns.Treasury)
	assert.Equal(t, "99.333333", split.Returns.Tier2Prize.String())
	assert.Equal(t, "49.666667", split.Returns.Tier3Prize.String())
	assert.Equal(t, "109.333333", split.Pending.Tier2Prize.String())
	assert.Equal(t, "54.666667", split.Pending.Tier3Prize.String())
	assert.True(t, split.Pending.Insurance.IsZero())
	assert.Equal(t, usdc("3"), split.Premium)
}

func TestYieldBelowPremium(t *testing.T) {
	split, err := Distribute(usdc("1002"), usdc("1000"), returnrate.Unity(), epoch.PendingFunds{}, testCfg(), usdc("3"))
	require.NoError(t, err)

	assert.False(t, split.Returns.DrawEnabled)
	assert.Equal(t, usdc("2"), split.Returns.Insurance)
	assert.Equal(t, usdc("2"), split.Pending.Insurance)
	assert.True(t, split.Returns.Treasury.IsZero())
	assert.True(t, split.Premium.IsZero())

	// next epoch the reserve tops up the premium
	split, err = Distribute(usdc("1001"), usdc("1000"), returnrate.Unity(), split.Pending, testCfg(), usdc("3"))
	require.NoError(t, err)
	assert.True(t, split.Returns.DrawEnabled)
	assert.Equal(t, usdc("1"), split.Returns.Insurance)
	assert.True(t, split.Pending.Insurance.IsZero())
	assert.True(t, split.Returns.Tier2Prize.IsZero())
}

func TestLoss(t *testing.T) {
	pending := epoch.PendingFunds{Insurance: usdc("5"), Tier2Prize: usdc("7")}
	split, err := Distribute(usdc("900"), usdc("1000"), returnrate.Unity(), pending, testCfg(), usdc("3"))
	require.NoError(t, err)

	assert.True(t, split.Returns.DrawEnabled)
	assert.Equal(t, usdc("900"), split.Returns.DepositBack)
	assert.True(t, split.Returns.Treasury.IsZero())
	assert.True(t, split.Returns.Tier2Prize.IsZero())
	assert.Equal(t, usdc("2"), split.Pending.Insurance)
	assert.Equal(t, usdc("7"), split.Pending.Tier2Prize)
	assert.Equal(t, "0.900000000000000000", split.Rate.String())

	_, err = Distribute(usdc("900"), usdc("1000"), returnrate.Unity(), epoch.PendingFunds{Insurance: usdc("1")}, testCfg(), usdc("3"))
	code, ok := reverts.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, reverts.InsuranceReserveShortfall, code)
}

func TestEdgeAmounts(t *testing.T) {
	zero := fixedpoint.Zero[fixedpoint.D6]()

	split, err := Distribute(zero, zero, returnrate.Unity(), epoch.PendingFunds{Insurance: usdc("1")}, testCfg(), usdc("3"))
	require.NoError(t, err)
	assert.False(t, split.Returns.DrawEnabled)
	assert.Equal(t, usdc("1"), split.Pending.Insurance)
	assert.Equal(t, epoch.Returns{}, split.Returns)

	tests := []struct {
		returned, invested fixedpoint.USDC
		code               reverts.Code
	}{
		{usdc("1"), zero, reverts.ReturnAmountIsNonZeroButInvestedIsZero},
		{zero, usdc("1"), reverts.ReturnAmountIsZero},
	}
	for _, tt := range tests {
		_, err := Distribute(tt.returned, tt.invested, returnrate.Unity(), epoch.PendingFunds{}, testCfg(), usdc("3"))
		code, ok := reverts.CodeOf(err)
		require.True(t, ok)
		assert.Equal(t, tt.code, code)
	}
}
