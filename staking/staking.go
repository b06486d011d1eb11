// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking executes the instructions of the staking lottery against a
// record store. Every instruction runs in its own buffered context and is
// committed in a single batch only when it succeeds.
package staking

import (
	"bytes"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/nezha-labs/staking/fixedpoint"
	"github.com/nezha-labs/staking/instruction"
	"github.com/nezha-labs/staking/kv"
	"github.com/nezha-labs/staking/log"
	"github.com/nezha-labs/staking/staking/epoch"
	"github.com/nezha-labs/staking/staking/records"
	"github.com/nezha-labs/staking/staking/stake"
	"github.com/nezha-labs/staking/staking/updates"
	"github.com/nezha-labs/staking/staking/winners"
)

var logger = log.WithContext("pkg", "staking")

// Call is one instruction together with its signers and the time it executes at.
type Call struct {
	Signers     []common.Address
	Timestamp   uint64
	Instruction instruction.Instruction
}

// Staking is the engine facade. Execute calls are serialised.
type Staking struct {
	mu     sync.Mutex
	store  kv.Store
	policy epoch.Policy
}

func New(store kv.Store, policy epoch.Policy) *Staking {
	return &Staking{store: store, policy: policy}
}

// Execute runs call atomically: either every record it touches is updated or,
// on error, none is.
func (s *Staking) Execute(call *Call) error {
	if call.Instruction == nil {
		return errors.New("nil instruction")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	tag := call.Instruction.Tag()

	ctx := records.NewContext(s.store)
	p := newProcessor(ctx, s.policy, call)
	if err := p.dispatch(call.Instruction); err != nil {
		observeFailure(tag, err)
		logger.Debug("instruction failed", "tag", tag, "err", err)
		return err
	}

	bulk := s.store.Bulk()
	if err := ctx.Commit(bulk); err != nil {
		return err
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "write records")
	}
	observeSuccess(tag, p.latest, time.Since(start))
	logger.Debug("instruction executed", "tag", tag, "writes", ctx.Dirty())
	return nil
}

// view runs fn over a consistent snapshot of the store.
func (s *Staking) view(fn func(p *processor) error) error {
	snap := s.store.Snapshot()
	defer snap.Release()
	return fn(newProcessor(records.NewContext(snap), s.policy, &Call{}))
}

// LatestEpoch returns the latest epoch singleton.
func (s *Staking) LatestEpoch() (latest *epoch.LatestEpoch, err error) {
	err = s.view(func(p *processor) error {
		latest, err = p.epochs.Latest()
		return err
	})
	return
}

// Epoch returns the record of one epoch.
func (s *Staking) Epoch(index uint64) (ep *epoch.Epoch, err error) {
	err = s.view(func(p *processor) error {
		ep, err = p.epochs.Get(index)
		return err
	})
	return
}

// Vaults returns the treasury and insurance balances.
func (s *Staking) Vaults() (v *epoch.Vaults, err error) {
	err = s.view(func(p *processor) error {
		v, err = p.epochs.Vaults()
		return err
	})
	return
}

// StakeBalance is a stake valued at the current rate.
type StakeBalance struct {
	Stake  *stake.Stake
	Amount fixedpoint.USDC
}

// Stake returns the stake of owner and its value at the current rate.
func (s *Staking) Stake(owner common.Address) (b *StakeBalance, err error) {
	err = s.view(func(p *processor) error {
		latest, err := p.epochs.Latest()
		if err != nil {
			return err
		}
		st, err := p.stakes.Get(owner)
		if err != nil {
			return err
		}
		amount, err := st.Amount(latest.Rate)
		if err != nil {
			return err
		}
		b = &StakeBalance{Stake: st, Amount: amount}
		return nil
	})
	return
}

// Stakes lists every non-empty stake valued at the current rate, ordered by owner.
func (s *Staking) Stakes() (list []*StakeBalance, err error) {
	latest, err := s.LatestEpoch()
	if err != nil {
		return nil, err
	}
	var valueErr error
	err = records.Scan(s.store, stake.Bucket, func(st stake.Stake) bool {
		if st.Shares.IsZero() {
			return true
		}
		amount, err := st.Amount(latest.Rate)
		if err != nil {
			valueErr = err
			return false
		}
		list = append(list, &StakeBalance{Stake: &st, Amount: amount})
		return true
	})
	if err != nil {
		return nil, err
	}
	if valueErr != nil {
		return nil, valueErr
	}
	slices.SortFunc(list, func(a, b *StakeBalance) int {
		return bytes.Compare(a.Stake.Owner[:], b.Stake.Owner[:])
	})
	return list, nil
}

// StakeUpdate returns the latest stake update request of owner.
func (s *Staking) StakeUpdate(owner common.Address) (req *updates.Request, found bool, err error) {
	err = s.view(func(p *processor) error {
		req, found, err = p.updates.Get(owner)
		return err
	})
	return
}

// QueuedUpdates lists the owners waiting in the deferred queue, in completion order.
func (s *Staking) QueuedUpdates() (owners []common.Address, err error) {
	err = s.view(func(p *processor) error {
		owners, err = p.updates.Queued()
		return err
	})
	return
}

// WinnersMeta returns the winners meta of an epoch.
func (s *Staking) WinnersMeta(epochIndex uint64) (meta *winners.Meta, found bool, err error) {
	err = s.view(func(p *processor) error {
		meta, found, err = p.winners.GetMeta(epochIndex)
		return err
	})
	return
}

// WinnersPage returns one page of an epoch's winners.
func (s *Staking) WinnersPage(epochIndex uint64, page uint32) (pg *winners.Page, found bool, err error) {
	err = s.view(func(p *processor) error {
		pg, found, err = p.winners.GetPage(epochIndex, page)
		return err
	})
	return
}
