// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package updates

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/nezha-labs/staking/fixedpoint"
	"github.com/nezha-labs/staking/kv"
	"github.com/nezha-labs/staking/log"
	"github.com/nezha-labs/staking/staking/epoch"
	"github.com/nezha-labs/staking/staking/linkedlist"
	"github.com/nezha-labs/staking/staking/records"
	"github.com/nezha-labs/staking/staking/reverts"
	"github.com/nezha-labs/staking/staking/stake"
)

// Bucket holds the stake update request records.
const Bucket = kv.Bucket("stake-update/")

var logger = log.WithContext("pkg", "updates")

// Service owns the stake update requests and the deferred queue they wait in
// while the pool is not accepting direct updates.
type Service struct {
	requests *records.Mapping[common.Address, Request]
	queue    *linkedlist.LinkedList
	stakes   *stake.Repository
}

func NewService(ctx *records.Context, stakes *stake.Repository) *Service {
	return &Service{
		requests: records.NewMapping[common.Address, Request](ctx, Bucket),
		queue:    linkedlist.New(ctx, "stake-update-queue"),
		stakes:   stakes,
	}
}

// Get returns the latest request of owner.
func (s *Service) Get(owner common.Address) (*Request, bool, error) {
	req, found, err := s.requests.Get(owner)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to get stake update request")
	}
	return &req, found, nil
}

// QueueLen returns the number of approved requests waiting for the epoch boundary.
func (s *Service) QueueLen() (uint64, error) {
	return s.queue.Len()
}

// Queued lists the owners in completion order.
func (s *Service) Queued() ([]common.Address, error) {
	var owners []common.Address
	err := s.queue.Iter(func(a common.Address) error {
		owners = append(owners, a)
		return nil
	})
	return owners, err
}

// Request records a new stake update for owner. Withdrawals are approved on
// submission: they apply at once while the epoch is running and queue otherwise.
// Deposits wait for admin approval.
func (s *Service) Request(latest *epoch.LatestEpoch, owner common.Address, dir Direction, amount fixedpoint.USDC) (*Request, error) {
	if amount.IsZero() {
		return nil, reverts.New(reverts.StakeUpdateAmountIsZero)
	}
	if dir > Withdraw {
		return nil, reverts.New(reverts.InvalidInstruction)
	}
	prev, found, err := s.Get(owner)
	if err != nil {
		return nil, err
	}
	if found && prev.State.Outstanding() {
		return nil, reverts.New(reverts.StakeUpdateRequestExists)
	}

	req := &Request{
		Owner:      owner,
		Direction:  dir,
		Amount:     amount,
		EpochIndex: latest.Index,
		State:      PendingApproval,
	}
	if dir == Withdraw {
		st, err := s.stakes.Get(owner)
		if err != nil {
			return nil, err
		}
		balance, err := st.Amount(latest.Rate)
		if err != nil {
			return nil, reverts.Arithmetic(err)
		}
		if amount.Cmp(balance) > 0 {
			return nil, reverts.New(reverts.NotEnoughStakeBalance)
		}
		if err := s.approve(latest, req); err != nil {
			return nil, err
		}
	}
	if err := s.requests.Set(owner, *req); err != nil {
		return nil, err
	}
	logger.Debug("stake update requested", "owner", owner, "direction", dir, "amount", amount, "state", req.State)
	return req, nil
}

// Approve accepts a pending deposit.
func (s *Service) Approve(latest *epoch.LatestEpoch, owner common.Address, amount fixedpoint.USDC) (*Request, error) {
	req, err := s.outstanding(owner)
	if err != nil {
		return nil, err
	}
	if req.State != PendingApproval {
		return nil, reverts.InvalidStakeUpdateState(req.State)
	}
	if !req.Amount.Eq(amount) {
		return nil, reverts.New(reverts.StakeUpdateAmountMismatch)
	}
	if err := s.approve(latest, req); err != nil {
		return nil, err
	}
	if err := s.requests.Set(owner, *req); err != nil {
		return nil, err
	}
	logger.Debug("stake update approved", "owner", owner, "state", req.State)
	return req, nil
}

// Cancel rejects an outstanding request and takes it out of the queue.
func (s *Service) Cancel(owner common.Address, amount fixedpoint.USDC) (*Request, error) {
	req, err := s.outstanding(owner)
	if err != nil {
		return nil, err
	}
	if !req.State.Outstanding() {
		return nil, reverts.InvalidStakeUpdateState(req.State)
	}
	if !req.Amount.Eq(amount) {
		return nil, reverts.New(reverts.StakeUpdateAmountMismatch)
	}
	if req.State == Approved {
		if err := s.queue.Remove(owner); err != nil {
			return nil, errors.Wrap(err, "failed to dequeue stake update")
		}
	}
	req.State = Rejected
	if err := s.requests.Set(owner, *req); err != nil {
		return nil, err
	}
	logger.Debug("stake update cancelled", "owner", owner)
	return req, nil
}

// Complete settles the request at the head of the queue using the current
// rate. The epoch must have ended and owner must be next in line.
func (s *Service) Complete(latest *epoch.LatestEpoch, owner common.Address) (*Request, error) {
	if err := latest.Status.Expect(epoch.StatusEnded); err != nil {
		return nil, err
	}
	head, err := s.queue.Head()
	if err != nil {
		return nil, err
	}
	if head == (common.Address{}) || head != owner {
		return nil, reverts.InvalidAccount(reverts.RecordStakeUpdateRequest)
	}
	req, err := s.outstanding(owner)
	if err != nil {
		return nil, err
	}
	if req.State != Approved {
		return nil, reverts.InvalidStakeUpdateState(req.State)
	}
	if _, err := s.queue.Pop(); err != nil {
		return nil, errors.Wrap(err, "failed to pop stake update queue")
	}
	if err := s.apply(latest, req); err != nil {
		return nil, err
	}
	if err := s.requests.Set(owner, *req); err != nil {
		return nil, err
	}
	logger.Debug("stake update completed", "owner", owner, "settled", req.Settled)
	return req, nil
}

func (s *Service) outstanding(owner common.Address) (*Request, error) {
	req, found, err := s.Get(owner)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, reverts.InvalidAccount(reverts.RecordStakeUpdateRequest)
	}
	return req, nil
}

// approve applies req immediately while the epoch runs, and queues it otherwise.
func (s *Service) approve(latest *epoch.LatestEpoch, req *Request) error {
	if latest.Status == epoch.StatusRunning {
		return s.apply(latest, req)
	}
	if err := s.queue.Add(req.Owner); err != nil {
		return errors.Wrap(err, "failed to queue stake update")
	}
	req.State = Approved
	return nil
}

func (s *Service) apply(latest *epoch.LatestEpoch, req *Request) error {
	st, err := s.stakes.Get(req.Owner)
	if err != nil {
		return err
	}
	switch req.Direction {
	case Deposit:
		minted, err := st.Deposit(req.Amount, latest.Rate, latest.Index)
		if err != nil {
			return reverts.Arithmetic(err)
		}
		total, err := latest.TotalShares.Add(minted)
		if err != nil {
			return reverts.Arithmetic(err)
		}
		latest.TotalShares = total
		req.Settled = req.Amount
	case Withdraw:
		paid, burned, err := st.Withdraw(req.Amount, latest.Rate, latest.Index)
		if err != nil {
			return reverts.Arithmetic(err)
		}
		total, err := latest.TotalShares.Sub(burned)
		if err != nil {
			return reverts.Arithmetic(err)
		}
		latest.TotalShares = total
		req.Settled = paid
	}
	req.State = Completed
	return s.stakes.Set(st)
}
