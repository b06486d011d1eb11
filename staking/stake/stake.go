// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/nezha-labs/staking/fixedpoint"
	"github.com/nezha-labs/staking/staking/records"
	"github.com/nezha-labs/staking/staking/returnrate"
)

// GetAmount returns the value of shares at rate, rounded down.
func GetAmount(shares fixedpoint.USDC, rate returnrate.Rate) (fixedpoint.USDC, error) {
	wide, err := fixedpoint.Convert[fixedpoint.D18](shares)
	if err != nil {
		return fixedpoint.USDC{}, err
	}
	value, err := wide.Mul(rate.Value())
	if err != nil {
		return fixedpoint.USDC{}, err
	}
	return fixedpoint.Convert[fixedpoint.D6](value)
}

// SharesForDeposit returns the shares minted for amount at rate, rounded down.
func SharesForDeposit(amount fixedpoint.USDC, rate returnrate.Rate) (fixedpoint.USDC, error) {
	wide, err := fixedpoint.Convert[fixedpoint.D18](amount)
	if err != nil {
		return fixedpoint.USDC{}, err
	}
	shares, err := wide.Div(rate.Value())
	if err != nil {
		return fixedpoint.USDC{}, err
	}
	return fixedpoint.Convert[fixedpoint.D6](shares)
}

// SharesForWithdraw returns the shares burned to pay out amount at rate, rounded up.
func SharesForWithdraw(amount fixedpoint.USDC, rate returnrate.Rate) (fixedpoint.USDC, error) {
	wide, err := fixedpoint.Convert[fixedpoint.D18](amount)
	if err != nil {
		return fixedpoint.USDC{}, err
	}
	shares, err := wide.DivCeil(rate.Value())
	if err != nil {
		return fixedpoint.USDC{}, err
	}
	return fixedpoint.ConvertCeil[fixedpoint.D6](shares)
}

// Stake is the share balance of one owner.
type Stake struct {
	Owner      common.Address
	Shares     fixedpoint.USDC
	EpochIndex uint64 // epoch at which the balance was last reconciled
}

func (Stake) MaxLen() int {
	return records.ListSize(records.SizeAddress + records.SizeFixedPoint + records.SizeUint64)
}

// Amount returns the current value of the stake.
func (s *Stake) Amount(rate returnrate.Rate) (fixedpoint.USDC, error) {
	return GetAmount(s.Shares, rate)
}

// Deposit mints shares for amount and returns them.
func (s *Stake) Deposit(amount fixedpoint.USDC, rate returnrate.Rate, epoch uint64) (fixedpoint.USDC, error) {
	minted, err := SharesForDeposit(amount, rate)
	if err != nil {
		return fixedpoint.USDC{}, err
	}
	total, err := s.Shares.Add(minted)
	if err != nil {
		return fixedpoint.USDC{}, err
	}
	s.Shares = total
	s.EpochIndex = epoch
	return minted, nil
}

// Withdraw burns the shares backing amount. Asking for at least the full value
// burns every share and pays the floor value. It returns the amount paid and
// the shares burned.
func (s *Stake) Withdraw(amount fixedpoint.USDC, rate returnrate.Rate, epoch uint64) (paid, burned fixedpoint.USDC, err error) {
	value, err := GetAmount(s.Shares, rate)
	if err != nil {
		return
	}
	if amount.Cmp(value) >= 0 {
		paid, burned = value, s.Shares
		s.Shares = fixedpoint.USDC{}
		s.EpochIndex = epoch
		return
	}
	burn, err := SharesForWithdraw(amount, rate)
	if err != nil {
		return
	}
	// ceil rounding can exceed the balance only for amounts within a unit of the full value
	burn = fixedpoint.Min(burn, s.Shares)
	s.Shares = s.Shares.SaturatingSub(burn)
	s.EpochIndex = epoch
	return amount, burn, nil
}
