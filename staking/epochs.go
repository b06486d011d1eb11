// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/nezha-labs/staking/instruction"
	"github.com/nezha-labs/staking/staking/draw"
	"github.com/nezha-labs/staking/staking/epoch"
	"github.com/nezha-labs/staking/staking/returnrate"
	"github.com/nezha-labs/staking/staking/reverts"
	"github.com/nezha-labs/staking/staking/stake"
	"github.com/nezha-labs/staking/staking/winners"
	"github.com/nezha-labs/staking/staking/yield"
)

func (p *processor) init(v *instruction.Init) error {
	initialized, err := p.epochs.Initialized()
	if err != nil {
		return err
	}
	if initialized {
		return reverts.New(reverts.ProgramAlreadyInitialized)
	}
	if len(p.call.Signers) == 0 || p.call.Signers[0] == (common.Address{}) {
		return reverts.MissingSignature(reverts.RoleSuperAdmin)
	}
	keys := []struct {
		addr common.Address
		c    reverts.Constant
	}{
		{v.Admin, reverts.ConstAdminKey},
		{v.Investor, reverts.ConstInvestorKey},
		{v.VRF, reverts.ConstVRFKey},
	}
	for _, k := range keys {
		if k.addr == (common.Address{}) {
			return reverts.InvalidConstant(k.c)
		}
	}

	p.latest = &epoch.LatestEpoch{
		Status: epoch.StatusEnded,
		Rate:   returnrate.Unity(),
		Keys: epoch.Keys{
			SuperAdmin: p.call.Signers[0],
			Admin:      v.Admin,
			Investor:   v.Investor,
			VRF:        v.VRF,
		},
	}
	if err := p.epochs.SetVaults(&epoch.Vaults{}); err != nil {
		return err
	}
	logger.Info("program initialized", "superAdmin", p.latest.Keys.SuperAdmin, "admin", v.Admin)
	return p.epochs.SetLatest(p.latest)
}

func (p *processor) createEpoch(v *instruction.CreateEpoch) error {
	status, err := p.latest.Status.Advance(epoch.StatusRunning)
	if err != nil {
		return err
	}
	queued, err := p.updates.QueueLen()
	if err != nil {
		return err
	}
	if queued > 0 {
		return reverts.Newf(reverts.StakeUpdateQueueNotDrained, "%d queued", queued)
	}
	if v.ExpectedEndAt <= p.call.Timestamp {
		return reverts.New(reverts.EpochExpectedEndIsInPast)
	}
	if err := p.policy.Validate(v.Cfg); err != nil {
		return err
	}

	p.latest.Index++
	p.latest.Status = status
	ep := &epoch.Epoch{
		Index:         p.latest.Index,
		Status:        status,
		Cfg:           v.Cfg,
		StartAt:       p.call.Timestamp,
		ExpectedEndAt: v.ExpectedEndAt,
	}
	if err := p.epochs.Set(ep); err != nil {
		return err
	}
	logger.Info("epoch created", "epoch", ep.Index, "expectedEndAt", ep.ExpectedEndAt, "jackpot", v.Cfg.Jackpot)
	return nil
}

// current loads the latest epoch, rejecting stale indices.
func (p *processor) current(index uint64) (*epoch.Epoch, error) {
	if err := p.latest.CheckIndex(index); err != nil {
		return nil, err
	}
	return p.epochs.Get(index)
}

func (p *processor) yieldWithdraw(v *instruction.YieldWithdrawByInvestor) error {
	ep, err := p.current(v.Epoch)
	if err != nil {
		return err
	}
	status, err := p.latest.Status.Advance(epoch.StatusYielding)
	if err != nil {
		return err
	}
	if err := v.Tickets.Validate(); err != nil {
		return err
	}
	invested, err := stake.GetAmount(p.latest.TotalShares, p.latest.Rate)
	if err != nil {
		return reverts.Arithmetic(err)
	}

	ep.Investment = &epoch.Investment{Tickets: v.Tickets, TotalInvested: invested}
	ep.Status = status
	p.latest.Status = status
	if err := p.epochs.Set(ep); err != nil {
		return err
	}
	logger.Info("epoch yielding", "epoch", ep.Index, "invested", invested, "tickets", v.Tickets.Count)
	return nil
}

func (p *processor) yieldDeposit(v *instruction.YieldDepositByInvestor) error {
	ep, err := p.current(v.Epoch)
	if err != nil {
		return err
	}
	status, err := p.latest.Status.Advance(epoch.StatusFinalising)
	if err != nil {
		return err
	}
	if ep.Investment == nil {
		return reverts.New(reverts.YieldNotWithdrawn)
	}
	insurance, err := ep.Cfg.Insurance.Amount(ep.Investment.Tickets.Count, ep.Cfg.Jackpot)
	if err != nil {
		return reverts.Arithmetic(err)
	}
	split, err := yield.Distribute(v.Amount, ep.Investment.TotalInvested, p.latest.Rate, p.latest.Pending, ep.Cfg, insurance)
	if err != nil {
		return err
	}

	vaults, err := p.epochs.Vaults()
	if err != nil {
		return err
	}
	if err := vaults.Credit(epoch.VaultTreasury, split.Returns.Treasury); err != nil {
		return err
	}
	if err := vaults.Credit(epoch.VaultInsurance, split.Premium); err != nil {
		return err
	}
	if err := p.epochs.SetVaults(vaults); err != nil {
		return err
	}

	returns := split.Returns
	ep.Returns = &returns
	ep.Status = status
	p.latest.Status = status
	p.latest.Rate = split.Rate
	p.latest.Pending = split.Pending
	if err := p.epochs.Set(ep); err != nil {
		return err
	}
	logger.Info("epoch finalising",
		"epoch", ep.Index,
		"returned", v.Amount,
		"invested", ep.Investment.TotalInvested,
		"rate", split.Rate,
		"drawEnabled", returns.DrawEnabled,
	)
	return nil
}

func (p *processor) setWinningCombination(v *instruction.SetWinningCombination) error {
	ep, err := p.current(v.Epoch)
	if err != nil {
		return err
	}
	if s := p.latest.Status; s != epoch.StatusYielding && s != epoch.StatusFinalising {
		return reverts.InvalidEpochStatus(epoch.StatusYielding, s)
	}
	if ep.Draw != nil {
		return reverts.New(reverts.WinningCombinationAlreadyPublished)
	}
	if _, found, err := p.winners.GetMeta(ep.Index); err != nil {
		return err
	} else if found {
		return reverts.New(reverts.WinnersAlreadyPublished)
	}
	if ep.Investment == nil {
		return reverts.New(reverts.YieldNotWithdrawn)
	}

	alpha := draw.Alpha(ep.Index, ep.Investment.Tickets.Hash)
	beta, signer, err := draw.Verify(v.PublicKey, alpha, v.Proof)
	if err != nil {
		return reverts.Newf(reverts.InvalidWinningCombination, "%v", err)
	}
	if signer != p.latest.Keys.VRF {
		return reverts.InvalidConstant(reverts.ConstVRFKey)
	}
	combination := draw.FromOutput(beta)
	if err := combination.Validate(); err != nil {
		return reverts.Newf(reverts.InvalidWinningCombination, "%v", err)
	}

	ep.Draw = &epoch.Draw{Combination: combination}
	copy(ep.Draw.Output[:], beta)
	if err := p.epochs.Set(ep); err != nil {
		return err
	}
	logger.Info("winning combination set", "epoch", ep.Index, "combination", combination)
	return nil
}

func (p *processor) createWinnersMeta(v *instruction.CreateEpochWinnersMeta) error {
	ep, err := p.current(v.Epoch)
	if err != nil {
		return err
	}
	meta, err := p.winners.CreateMeta(p.latest, ep, v.Tiers())
	if err != nil {
		return err
	}
	if meta.Status == winners.Completed {
		return p.endEpoch(ep)
	}
	return nil
}

func (p *processor) publishWinners(v *instruction.PublishWinners) error {
	ep, err := p.current(v.Epoch)
	if err != nil {
		return err
	}
	meta, err := p.winners.Publish(p.latest, ep, v.Page, v.Winners)
	if err != nil {
		return err
	}
	if meta.Status == winners.Completed {
		return p.endEpoch(ep)
	}
	return nil
}

func (p *processor) endEpoch(ep *epoch.Epoch) error {
	status, err := p.latest.Status.Advance(epoch.StatusEnded)
	if err != nil {
		return err
	}
	p.latest.Status = status
	ep.Status = status
	ep.EndAt = p.call.Timestamp
	if err := p.epochs.Set(ep); err != nil {
		return err
	}
	logger.Info("epoch ended", "epoch", ep.Index, "endAt", ep.EndAt)
	return nil
}
