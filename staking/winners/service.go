// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package winners

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/nezha-labs/staking/fixedpoint"
	"github.com/nezha-labs/staking/kv"
	"github.com/nezha-labs/staking/log"
	"github.com/nezha-labs/staking/staking/epoch"
	"github.com/nezha-labs/staking/staking/records"
	"github.com/nezha-labs/staking/staking/reverts"
	"github.com/nezha-labs/staking/staking/stake"
)

const (
	MetaBucket = kv.Bucket("winners-meta/")
	PageBucket = kv.Bucket("winners-page/")
)

var logger = log.WithContext("pkg", "winners")

// Service publishes the winners of an epoch and pays their prizes.
type Service struct {
	metas  *records.Mapping[records.Index, Meta]
	pages  *records.Mapping[records.PageKey, Page]
	stakes *stake.Repository
}

func NewService(ctx *records.Context, stakes *stake.Repository) *Service {
	return &Service{
		metas:  records.NewMapping[records.Index, Meta](ctx, MetaBucket),
		pages:  records.NewMapping[records.PageKey, Page](ctx, PageBucket),
		stakes: stakes,
	}
}

// GetMeta returns the winners meta of an epoch.
func (s *Service) GetMeta(epochIndex uint64) (*Meta, bool, error) {
	m, found, err := s.metas.Get(records.Index(epochIndex))
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to get winners meta")
	}
	return &m, found, nil
}

// GetPage returns one page of winners.
func (s *Service) GetPage(epochIndex uint64, page uint32) (*Page, bool, error) {
	p, found, err := s.pages.Get(records.PageKey{Epoch: epochIndex, Page: uint64(page)})
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to get winners page")
	}
	return &p, found, nil
}

func (s *Service) mustMeta(epochIndex uint64) (*Meta, error) {
	m, found, err := s.GetMeta(epochIndex)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, reverts.InvalidAccount(reverts.RecordEpochWinnersMeta)
	}
	return m, nil
}

// CreateMeta declares the winner tiers of the latest epoch. When the draw is
// disabled or nobody won, the meta is created completed with no pages.
func (s *Service) CreateMeta(latest *epoch.LatestEpoch, ep *epoch.Epoch, tiers [NumTiers]TierInput) (*Meta, error) {
	if err := latest.Status.Expect(epoch.StatusFinalising); err != nil {
		return nil, err
	}
	if ep.Returns == nil {
		return nil, reverts.InvalidEpochStatus(epoch.StatusFinalising, ep.Status)
	}
	if _, found, err := s.GetMeta(ep.Index); err != nil {
		return nil, err
	} else if found {
		return nil, reverts.New(reverts.WinnersAlreadyPublished)
	}
	if ep.DrawEnabled() && ep.Draw == nil {
		return nil, reverts.New(reverts.WinningCombinationNotPublished)
	}

	prizes := [NumTiers]fixedpoint.USDC{ep.Cfg.Jackpot, latest.Pending.Tier2Prize, latest.Pending.Tier3Prize}
	meta := &Meta{EpochIndex: ep.Index}

	var total uint64
	for i, in := range tiers {
		if (in.Winners == 0) != (in.Tickets == 0) || uint64(in.Winners) > in.Tickets {
			return nil, reverts.Newf(reverts.ProcessedWinnersMetaMismatch, "tier %d", i+1)
		}
		total += uint64(in.Winners)
		meta.Tiers[i] = TierMeta{Winners: in.Winners, Tickets: in.Tickets}
		if in.Tickets > 0 {
			meta.Tiers[i].Prize = prizes[i]
		}
	}
	if total > uint64(^uint32(0)) {
		return nil, reverts.New(reverts.NumericalOverflow)
	}

	if !ep.DrawEnabled() || total == 0 {
		meta = &Meta{EpochIndex: ep.Index, Status: Completed}
	} else {
		meta.TotalWinners = uint32(total)
		meta.TotalPages = PageCount(meta.TotalWinners)
	}

	if err := s.metas.Set(records.Index(ep.Index), *meta); err != nil {
		return nil, err
	}
	logger.Debug("winners meta created", "epoch", ep.Index, "winners", meta.TotalWinners, "pages", meta.TotalPages)
	return meta, nil
}

func ordered(tier uint8, owner common.Address, lastTier uint8, lastOwner common.Address) bool {
	if tier != lastTier {
		return tier > lastTier
	}
	return bytes.Compare(owner[:], lastOwner[:]) > 0
}

// Publish commits the next page of winners. The meta progress is written with
// the page. Once every winner is committed the meta completes and the tier
// rounding dust is carried over in latest's pending prize pools.
func (s *Service) Publish(latest *epoch.LatestEpoch, ep *epoch.Epoch, pageIndex uint32, inputs []WinnerInput) (*Meta, error) {
	if err := latest.Status.Expect(epoch.StatusFinalising); err != nil {
		return nil, err
	}
	if ep.Draw == nil {
		return nil, reverts.New(reverts.WinningCombinationNotPublished)
	}
	meta, err := s.mustMeta(ep.Index)
	if err != nil {
		return nil, err
	}
	if meta.Status == Completed {
		return nil, reverts.New(reverts.WinnersAlreadyPublished)
	}
	if pageIndex >= meta.TotalPages {
		return nil, reverts.New(reverts.PageIndexOutOfBounds)
	}
	if len(inputs) == 0 || len(inputs) > MaxPerPage ||
		(pageIndex < meta.TotalPages-1 && len(inputs) != MaxPerPage) {
		return nil, reverts.New(reverts.WrongNumberOfWinnersInPage)
	}
	if pageIndex != meta.PagesCommitted {
		return nil, reverts.Newf(reverts.PageIndexNotInSequence, "expected %d, got %d", meta.PagesCommitted, pageIndex)
	}

	page := Page{
		EpochIndex: ep.Index,
		PageIndex:  pageIndex,
		Winners:    make([]Winner, 0, len(inputs)),
	}
	for i, in := range inputs {
		expected := pageIndex*MaxPerPage + uint32(i)
		if in.Index != expected {
			return nil, reverts.Newf(reverts.UnexpectedWinnerIndex, "expected %d, got %d", expected, in.Index)
		}
		if in.Index >= meta.TotalWinners {
			return nil, reverts.New(reverts.WinnerIndexOutOfBounds)
		}
		if in.Tier < 1 || in.Tier > NumTiers {
			return nil, reverts.New(reverts.InvalidWinnerTier)
		}
		if !ordered(in.Tier, in.Owner, meta.LastTier, meta.LastOwner) {
			return nil, reverts.New(reverts.WinnersOutOfOrder)
		}

		tier := meta.Tier(in.Tier)
		progress := &meta.Committed[in.Tier-1]
		if in.Tickets == 0 || progress.Winners >= tier.Winners || tier.Tickets-progress.Tickets < in.Tickets {
			return nil, reverts.Newf(reverts.ProcessedWinnersMetaMismatch, "winner %d", in.Index)
		}
		prize, err := tier.Prize.MulDivUint64(in.Tickets, tier.Tickets)
		if err != nil {
			return nil, reverts.Arithmetic(err)
		}
		committed, err := progress.Prize.Add(prize)
		if err != nil {
			return nil, reverts.Arithmetic(err)
		}
		if committed.Cmp(tier.Prize) > 0 {
			return nil, reverts.Newf(reverts.ProcessedWinnersMetaMismatch, "winner %d", in.Index)
		}

		progress.Winners++
		progress.Tickets += in.Tickets
		progress.Prize = committed
		meta.LastTier, meta.LastOwner = in.Tier, in.Owner
		page.Winners = append(page.Winners, Winner{
			Index:   in.Index,
			Owner:   in.Owner,
			Tier:    in.Tier,
			Tickets: in.Tickets,
			Prize:   prize,
		})
	}
	meta.PagesCommitted++
	meta.WinnersCommitted += uint32(len(inputs))

	if meta.PagesCommitted == meta.TotalPages {
		if meta.WinnersCommitted != meta.TotalWinners {
			return nil, reverts.New(reverts.ProcessedWinnersMetaMismatch)
		}
		for i := range meta.Tiers {
			if meta.Committed[i].Winners != meta.Tiers[i].Winners || meta.Committed[i].Tickets != meta.Tiers[i].Tickets {
				return nil, reverts.Newf(reverts.ProcessedWinnersMetaMismatch, "tier %d", i+1)
			}
		}
		meta.Status = Completed
		if meta.Tiers[1].Tickets > 0 {
			latest.Pending.Tier2Prize = meta.Tiers[1].Prize.SaturatingSub(meta.Committed[1].Prize)
		}
		if meta.Tiers[2].Tickets > 0 {
			latest.Pending.Tier3Prize = meta.Tiers[2].Prize.SaturatingSub(meta.Committed[2].Prize)
		}
	}

	if err := s.pages.Set(records.PageKey{Epoch: ep.Index, Page: uint64(pageIndex)}, page); err != nil {
		return nil, err
	}
	if err := s.metas.Set(records.Index(ep.Index), *meta); err != nil {
		return nil, err
	}
	logger.Debug("winners page published", "epoch", ep.Index, "page", pageIndex, "winners", len(page.Winners), "status", meta.Status)
	return meta, nil
}

// FundJackpot marks the jackpot of an epoch claimable.
func (s *Service) FundJackpot(epochIndex uint64) (*Meta, error) {
	meta, err := s.mustMeta(epochIndex)
	if err != nil {
		return nil, err
	}
	if meta.Tiers[0].Winners == 0 {
		return nil, reverts.New(reverts.NoPrizeToClaim)
	}
	if meta.JackpotClaimable {
		return nil, reverts.New(reverts.JackpotAlreadyClaimable)
	}
	meta.JackpotClaimable = true
	if err := s.metas.Set(records.Index(epochIndex), *meta); err != nil {
		return nil, err
	}
	logger.Debug("jackpot funded", "epoch", epochIndex, "amount", meta.Tiers[0].Prize)
	return meta, nil
}

// Claim credits the prize of a winner to the owner's stake at the current rate.
func (s *Service) Claim(latest *epoch.LatestEpoch, owner common.Address, epochIndex uint64, pageIndex, index uint32, tier uint8) (*Winner, error) {
	if latest.Status == epoch.StatusYielding {
		return nil, reverts.InvalidEpochStatus(epoch.StatusEnded, latest.Status)
	}
	meta, err := s.mustMeta(epochIndex)
	if err != nil {
		return nil, err
	}
	if meta.Status != Completed {
		return nil, reverts.New(reverts.InvalidPrizeClaim)
	}
	page, found, err := s.GetPage(epochIndex, pageIndex)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, reverts.InvalidAccount(reverts.RecordEpochWinnersPage)
	}
	first := pageIndex * MaxPerPage
	if index < first || int(index-first) >= len(page.Winners) {
		return nil, reverts.New(reverts.InvalidPrizeClaim)
	}
	winner := &page.Winners[index-first]
	if winner.Tier != tier || winner.Owner != owner {
		return nil, reverts.New(reverts.InvalidPrizeClaim)
	}
	if tier == 1 && !meta.JackpotClaimable {
		return nil, reverts.New(reverts.JackpotNotClaimableYet)
	}
	if winner.Claimed {
		return nil, reverts.New(reverts.PrizeAlreadyClaimed)
	}
	if winner.Prize.IsZero() {
		return nil, reverts.New(reverts.NoPrizeToClaim)
	}

	st, err := s.stakes.Get(owner)
	if err != nil {
		return nil, err
	}
	minted, err := st.Deposit(winner.Prize, latest.Rate, latest.Index)
	if err != nil {
		return nil, reverts.Arithmetic(err)
	}
	totalShares, err := latest.TotalShares.Add(minted)
	if err != nil {
		return nil, reverts.Arithmetic(err)
	}
	if err := s.stakes.Set(st); err != nil {
		return nil, err
	}
	latest.TotalShares = totalShares
	winner.Claimed = true
	if err := s.pages.Set(records.PageKey{Epoch: epochIndex, Page: uint64(pageIndex)}, *page); err != nil {
		return nil, err
	}
	logger.Debug("prize claimed", "epoch", epochIndex, "owner", owner, "tier", tier, "prize", winner.Prize)
	return winner, nil
}
