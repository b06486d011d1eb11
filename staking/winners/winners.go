// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package winners

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/nezha-labs/staking/fixedpoint"
	"github.com/nezha-labs/staking/staking/records"
)

// MaxPerPage is the number of winners in every page but the last.
const MaxPerPage = 10

// NumTiers is the number of prize tiers. Tier 1 is the jackpot.
const NumTiers = 3

// Status is the publishing progress of an epoch's winners.
type Status uint8

const (
	InProgress Status = iota
	Completed
)

func (s Status) String() string {
	if s == Completed {
		return "completed"
	}
	return "in-progress"
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TierInput declares the size of one tier before its winners are published.
type TierInput struct {
	Winners uint32 `json:"winners" yaml:"winners"`
	Tickets uint64 `json:"tickets" yaml:"tickets"`
}

// TierMeta is the declared size and prize of one tier.
type TierMeta struct {
	Prize   fixedpoint.USDC `json:"prize"`
	Winners uint32          `json:"winners"`
	Tickets uint64          `json:"tickets"`
}

// TierProgress is what has been committed to pages for one tier.
type TierProgress struct {
	Winners uint32          `json:"winners"`
	Tickets uint64          `json:"tickets"`
	Prize   fixedpoint.USDC `json:"prize"`
}

func tierLen() int {
	return records.ListSize(records.SizeFixedPoint + records.SizeUint32 + records.SizeUint64)
}

// Meta summarises the winners of an epoch and tracks how many of them have
// been committed. Committed totals always equal the sum over written pages.
type Meta struct {
	EpochIndex       uint64                 `json:"epochIndex"`
	Tiers            [NumTiers]TierMeta     `json:"tiers"`
	TotalPages       uint32                 `json:"totalPages"`
	TotalWinners     uint32                 `json:"totalWinners"`
	JackpotClaimable bool                   `json:"jackpotClaimable"`
	Status           Status                 `json:"status"`
	PagesCommitted   uint32                 `json:"pagesCommitted"`
	WinnersCommitted uint32                 `json:"winnersCommitted"`
	Committed        [NumTiers]TierProgress `json:"committed"`
	LastTier         uint8                  `json:"lastTier"`
	LastOwner        common.Address         `json:"lastOwner"`
}

func (Meta) MaxLen() int {
	return records.ListSize(
		records.SizeUint64 +
			records.ListSize(NumTiers*tierLen()) +
			records.SizeUint32 +
			records.SizeUint32 +
			records.SizeBool +
			records.SizeUint8 +
			records.SizeUint32 +
			records.SizeUint32 +
			records.ListSize(NumTiers*tierLen()) +
			records.SizeUint8 +
			records.SizeAddress,
	)
}

// Tier returns the meta of tier 1, 2 or 3.
func (m *Meta) Tier(tier uint8) *TierMeta {
	return &m.Tiers[tier-1]
}

// WinnerInput is one winner as submitted by the admin.
type WinnerInput struct {
	Index   uint32         `json:"index" yaml:"index"`
	Owner   common.Address `json:"owner" yaml:"owner"`
	Tier    uint8          `json:"tier" yaml:"tier"`
	Tickets uint64         `json:"tickets" yaml:"tickets"`
}

// Winner is a published winner with the prize it may claim.
type Winner struct {
	Index   uint32          `json:"index"`
	Owner   common.Address  `json:"owner"`
	Tier    uint8           `json:"tier"`
	Tickets uint64          `json:"tickets"`
	Prize   fixedpoint.USDC `json:"prize"`
	Claimed bool            `json:"claimed"`
}

func winnerLen() int {
	return records.ListSize(
		records.SizeUint32 +
			records.SizeAddress +
			records.SizeUint8 +
			records.SizeUint64 +
			records.SizeFixedPoint +
			records.SizeBool,
	)
}

// Page is one page of published winners.
type Page struct {
	EpochIndex uint64   `json:"epochIndex"`
	PageIndex  uint32   `json:"pageIndex"`
	Winners    []Winner `json:"winners"`
}

func (Page) MaxLen() int {
	return records.ListSize(
		records.SizeUint64 +
			records.SizeUint32 +
			records.ListSize(MaxPerPage*winnerLen()),
	)
}

// PageCount returns ceil(winners / MaxPerPage).
func PageCount(winners uint32) uint32 {
	if winners == 0 {
		return 0
	}
	return (winners-1)/MaxPerPage + 1
}
