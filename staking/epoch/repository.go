// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package epoch

import (
	"github.com/pkg/errors"

	"github.com/nezha-labs/staking/kv"
	"github.com/nezha-labs/staking/staking/records"
	"github.com/nezha-labs/staking/staking/reverts"
)

const (
	Bucket            = kv.Bucket("epoch/")
	LatestEpochBucket = kv.Bucket("latest-epoch")
	VaultsBucket      = kv.Bucket("vaults")
)

// Repository reads and writes the epoch records, the latest epoch singleton
// and the vaults.
type Repository struct {
	epochs *records.Mapping[records.Index, Epoch]
	latest *records.Slot[LatestEpoch]
	vaults *records.Slot[Vaults]
}

func NewRepository(ctx *records.Context) *Repository {
	return &Repository{
		epochs: records.NewMapping[records.Index, Epoch](ctx, Bucket),
		latest: records.NewSlot[LatestEpoch](ctx, LatestEpochBucket),
		vaults: records.NewSlot[Vaults](ctx, VaultsBucket),
	}
}

// Initialized reports whether the latest epoch singleton exists.
func (r *Repository) Initialized() (bool, error) {
	_, found, err := r.latest.Get()
	if err != nil {
		return false, errors.Wrap(err, "failed to get latest epoch")
	}
	return found, nil
}

// Latest returns the latest epoch singleton. It fails with
// InvalidAccount(LatestEpoch) before the program is initialized.
func (r *Repository) Latest() (*LatestEpoch, error) {
	l, found, err := r.latest.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get latest epoch")
	}
	if !found {
		return nil, reverts.InvalidAccount(reverts.RecordLatestEpoch)
	}
	return &l, nil
}

func (r *Repository) SetLatest(l *LatestEpoch) error {
	if err := r.latest.Set(*l); err != nil {
		return errors.Wrap(err, "failed to set latest epoch")
	}
	return nil
}

// Get returns the epoch at index, failing with InvalidAccount(Epoch) when absent.
func (r *Repository) Get(index uint64) (*Epoch, error) {
	e, found, err := r.epochs.Get(records.Index(index))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get epoch")
	}
	if !found {
		return nil, reverts.InvalidAccount(reverts.RecordEpoch)
	}
	return &e, nil
}

func (r *Repository) Set(e *Epoch) error {
	if err := r.epochs.Set(records.Index(e.Index), *e); err != nil {
		return errors.Wrap(err, "failed to set epoch")
	}
	return nil
}

// Vaults returns the vault balances. Missing vaults are empty.
func (r *Repository) Vaults() (*Vaults, error) {
	v, _, err := r.vaults.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get vaults")
	}
	return &v, nil
}

func (r *Repository) SetVaults(v *Vaults) error {
	if err := r.vaults.Set(*v); err != nil {
		return errors.Wrap(err, "failed to set vaults")
	}
	return nil
}
