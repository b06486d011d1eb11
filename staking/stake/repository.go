// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/nezha-labs/staking/kv"
	"github.com/nezha-labs/staking/staking/records"
)

// Bucket holds the stake records.
const Bucket = kv.Bucket("stake/")

// Repository reads and writes stake records.
type Repository struct {
	stakes *records.Mapping[common.Address, Stake]
}

func NewRepository(ctx *records.Context) *Repository {
	return &Repository{stakes: records.NewMapping[common.Address, Stake](ctx, Bucket)}
}

// Get returns the stake of owner. A missing stake is an empty balance.
func (r *Repository) Get(owner common.Address) (*Stake, error) {
	s, found, err := r.stakes.Get(owner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake")
	}
	if !found {
		s = Stake{Owner: owner}
	}
	return &s, nil
}

// Set stores s.
func (r *Repository) Set(s *Stake) error {
	if err := r.stakes.Set(s.Owner, *s); err != nil {
		return errors.Wrap(err, "failed to set stake")
	}
	return nil
}
