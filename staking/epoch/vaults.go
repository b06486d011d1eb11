// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package epoch

import (
	"github.com/pkg/errors"

	"github.com/nezha-labs/staking/fixedpoint"
	"github.com/nezha-labs/staking/staking/reverts"
)

// Vault selects one of the vault balances.
type Vault uint8

const (
	VaultTreasury Vault = iota
	VaultInsurance
)

func (v Vault) String() string {
	switch v {
	case VaultTreasury:
		return "treasury"
	case VaultInsurance:
		return "insurance"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (v Vault) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Vault) UnmarshalText(text []byte) error {
	switch string(text) {
	case "treasury":
		*v = VaultTreasury
	case "insurance":
		*v = VaultInsurance
	default:
		return errors.Errorf("unknown vault %q", text)
	}
	return nil
}

func (v *Vaults) balance(kind Vault) (*fixedpoint.USDC, error) {
	switch kind {
	case VaultTreasury:
		return &v.Treasury, nil
	case VaultInsurance:
		return &v.Insurance, nil
	}
	return nil, reverts.New(reverts.InvalidInstruction)
}

// Credit adds amount to a vault.
func (v *Vaults) Credit(kind Vault, amount fixedpoint.USDC) error {
	bal, err := v.balance(kind)
	if err != nil {
		return err
	}
	sum, err := bal.Add(amount)
	if err != nil {
		return reverts.Arithmetic(err)
	}
	*bal = sum
	return nil
}

// Withdraw removes amount from a vault.
func (v *Vaults) Withdraw(kind Vault, amount fixedpoint.USDC) error {
	bal, err := v.balance(kind)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return reverts.New(reverts.InsufficientBalance)
	}
	*bal = bal.SaturatingSub(amount)
	return nil
}
