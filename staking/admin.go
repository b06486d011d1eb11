// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/nezha-labs/staking/instruction"
	"github.com/nezha-labs/staking/staking/reverts"
)

var keyConstants = map[reverts.Role]reverts.Constant{
	reverts.RoleAdmin:      reverts.ConstAdminKey,
	reverts.RoleInvestor:   reverts.ConstInvestorKey,
	reverts.RoleSuperAdmin: reverts.ConstSuperAdminKey,
	reverts.RoleVRF:        reverts.ConstVRFKey,
}

func (p *processor) rotateKey(v *instruction.RotateKey) error {
	c, ok := keyConstants[v.Target]
	if !ok {
		return reverts.Newf(reverts.InvalidInstruction, "role %v has no key", v.Target)
	}
	if v.Key == (common.Address{}) {
		return reverts.InvalidConstant(c)
	}
	if err := p.latest.Keys.Set(v.Target, v.Key); err != nil {
		return err
	}
	logger.Info("key rotated", "role", v.Target, "key", v.Key)
	return nil
}

func (p *processor) withdrawVault(v *instruction.WithdrawVault) error {
	vaults, err := p.epochs.Vaults()
	if err != nil {
		return err
	}
	if err := vaults.Withdraw(v.Vault, v.Amount); err != nil {
		return err
	}
	if err := p.epochs.SetVaults(vaults); err != nil {
		return err
	}
	logger.Debug("vault withdrawn", "vault", v.Vault, "amount", v.Amount)
	return nil
}

func (p *processor) fundJackpot(v *instruction.FundJackpot) error {
	if _, err := p.epochs.Get(v.Epoch); err != nil {
		return err
	}
	_, err := p.winners.FundJackpot(v.Epoch)
	return err
}

func (p *processor) claimWinning(v *instruction.ClaimWinning) error {
	owner, err := p.owner()
	if err != nil {
		return err
	}
	_, err = p.winners.Claim(p.latest, owner, v.Epoch, v.Page, v.Index, v.Tier)
	return err
}
