// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/nezha-labs/staking/instruction"
	"github.com/nezha-labs/staking/staking/epoch"
	"github.com/nezha-labs/staking/staking/records"
	"github.com/nezha-labs/staking/staking/reverts"
	"github.com/nezha-labs/staking/staking/stake"
	"github.com/nezha-labs/staking/staking/updates"
	"github.com/nezha-labs/staking/staking/winners"
)

// processor executes a single call against one records context.
type processor struct {
	call   *Call
	policy epoch.Policy

	epochs  *epoch.Repository
	stakes  *stake.Repository
	updates *updates.Service
	winners *winners.Service

	latest *epoch.LatestEpoch
}

func newProcessor(ctx *records.Context, policy epoch.Policy, call *Call) *processor {
	stakes := stake.NewRepository(ctx)
	return &processor{
		call:    call,
		policy:  policy,
		epochs:  epoch.NewRepository(ctx),
		stakes:  stakes,
		updates: updates.NewService(ctx, stakes),
		winners: winners.NewService(ctx, stakes),
	}
}

func (p *processor) signed(addr common.Address) bool {
	if addr == (common.Address{}) {
		return false
	}
	for _, s := range p.call.Signers {
		if s == addr {
			return true
		}
	}
	return false
}

// owner is the first signer, the account an owner instruction acts for.
func (p *processor) owner() (common.Address, error) {
	if len(p.call.Signers) == 0 || p.call.Signers[0] == (common.Address{}) {
		return common.Address{}, reverts.MissingSignature(reverts.RoleOwner)
	}
	return p.call.Signers[0], nil
}

func (p *processor) requireRole(role reverts.Role) error {
	if role == reverts.RoleOwner {
		_, err := p.owner()
		return err
	}
	addr, ok := p.latest.Keys.Of(role)
	if !ok || !p.signed(addr) {
		return reverts.MissingSignature(role)
	}
	return nil
}

func (p *processor) dispatch(ins instruction.Instruction) error {
	if v, ok := ins.(*instruction.Init); ok {
		return p.init(v)
	}

	latest, err := p.epochs.Latest()
	if err != nil {
		return err
	}
	p.latest = latest

	if _, ok := ins.(*instruction.CancelStakeUpdate); !ok {
		if err := p.requireRole(ins.Role()); err != nil {
			return err
		}
	}

	switch v := ins.(type) {
	case *instruction.RequestStakeUpdate:
		err = p.requestStakeUpdate(v)
	case *instruction.ApproveStakeUpdate:
		_, err = p.updates.Approve(p.latest, v.Owner, v.Amount)
	case *instruction.CancelStakeUpdate:
		err = p.cancelStakeUpdate(v)
	case *instruction.CompleteStakeUpdate:
		_, err = p.updates.Complete(p.latest, v.Owner)
	case *instruction.CreateEpoch:
		err = p.createEpoch(v)
	case *instruction.YieldWithdrawByInvestor:
		err = p.yieldWithdraw(v)
	case *instruction.YieldDepositByInvestor:
		err = p.yieldDeposit(v)
	case *instruction.SetWinningCombination:
		err = p.setWinningCombination(v)
	case *instruction.CreateEpochWinnersMeta:
		err = p.createWinnersMeta(v)
	case *instruction.PublishWinners:
		err = p.publishWinners(v)
	case *instruction.FundJackpot:
		err = p.fundJackpot(v)
	case *instruction.ClaimWinning:
		err = p.claimWinning(v)
	case *instruction.RotateKey:
		err = p.rotateKey(v)
	case *instruction.WithdrawVault:
		err = p.withdrawVault(v)
	default:
		err = reverts.Newf(reverts.InvalidInstruction, "unsupported instruction %v", ins.Tag())
	}
	if err != nil {
		return err
	}
	return p.epochs.SetLatest(p.latest)
}

func (p *processor) requestStakeUpdate(v *instruction.RequestStakeUpdate) error {
	owner, err := p.owner()
	if err != nil {
		return err
	}
	_, err = p.updates.Request(p.latest, owner, v.Direction, v.Amount)
	return err
}

func (p *processor) cancelStakeUpdate(v *instruction.CancelStakeUpdate) error {
	if !p.signed(v.Owner) && !p.signed(p.latest.Keys.Admin) {
		return reverts.MissingSignature(reverts.RoleOwner)
	}
	_, err := p.updates.Cancel(v.Owner, v.Amount)
	return err
}
