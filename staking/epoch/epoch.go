// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package epoch

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/nezha-labs/staking/fixedpoint"
	"github.com/nezha-labs/staking/staking/draw"
	"github.com/nezha-labs/staking/staking/records"
	"github.com/nezha-labs/staking/staking/returnrate"
	"github.com/nezha-labs/staking/staking/reverts"
)

const (
	// TicketsURLMaxLen bounds the location of the published tickets file.
	TicketsURLMaxLen = 64
)

// TicketsInfo describes the tickets sold for an epoch, recorded when the pool
// is handed to the investor.
type TicketsInfo struct {
	Count   uint64      `json:"count" yaml:"count"`
	URL     string      `json:"url" yaml:"url"`
	Hash    common.Hash `json:"hash" yaml:"hash"`
	Version uint8       `json:"version" yaml:"version"`
}

func (TicketsInfo) maxLen() int {
	return records.ListSize(records.SizeUint64 + records.BytesSize(TicketsURLMaxLen) + records.SizeHash + records.SizeUint8)
}

// Validate checks the declared bounds.
func (t TicketsInfo) Validate() error {
	if len(t.URL) > TicketsURLMaxLen || t.URL == "" {
		return reverts.InvalidConstant(reverts.ConstTicketsInfo)
	}
	return nil
}

// Investment is set when the epoch moves to yielding.
type Investment struct {
	Tickets       TicketsInfo
	TotalInvested fixedpoint.USDC
}

// Returns records how the returned funds were distributed.
type Returns struct {
	Total       fixedpoint.USDC `json:"total"`
	DepositBack fixedpoint.USDC `json:"depositBack"`
	Insurance   fixedpoint.USDC `json:"insurance"`
	Treasury    fixedpoint.USDC `json:"treasury"`
	Tier2Prize  fixedpoint.USDC `json:"tier2Prize"`
	Tier3Prize  fixedpoint.USDC `json:"tier3Prize"`
	DrawEnabled bool            `json:"drawEnabled"`
}

// Draw holds the verified winning combination of an epoch.
type Draw struct {
	Combination draw.Combination
	Output      [32]byte
}

// Epoch is the record of one epoch.
type Epoch struct {
	Index         uint64
	Status        Status
	Cfg           YieldSplitCfg
	StartAt       uint64
	ExpectedEndAt uint64
	Investment    *Investment `rlp:"nil"`
	Returns       *Returns    `rlp:"nil"`
	Draw          *Draw       `rlp:"nil"`
	EndAt         uint64
}

func (Epoch) MaxLen() int {
	investment := records.ListSize(TicketsInfo{}.maxLen() + records.SizeFixedPoint)
	returns := records.ListSize(6*records.SizeFixedPoint + records.SizeBool)
	drawn := records.ListSize(records.BytesSize(len(draw.Combination{})) + records.SizeHash)

	return records.ListSize(
		records.SizeUint64 +
			records.SizeUint8 +
			YieldSplitCfg{}.maxLen() +
			records.SizeUint64 +
			records.SizeUint64 +
			records.OptionalSize(investment) +
			records.OptionalSize(returns) +
			records.OptionalSize(drawn) +
			records.SizeUint64,
	)
}

// DrawEnabled reports whether the returns funded a draw.
func (e *Epoch) DrawEnabled() bool {
	return e.Returns != nil && e.Returns.DrawEnabled
}

// PendingFunds are carried over from one epoch to the next.
type PendingFunds struct {
	Insurance  fixedpoint.USDC `json:"insurance"`
	Tier2Prize fixedpoint.USDC `json:"tier2Prize"`
	Tier3Prize fixedpoint.USDC `json:"tier3Prize"`
}

// Keys are the addresses holding each administrative role.
type Keys struct {
	SuperAdmin common.Address `json:"superAdmin"`
	Admin      common.Address `json:"admin"`
	Investor   common.Address `json:"investor"`
	VRF        common.Address `json:"vrf"`
}

// Of returns the address holding role. Owners are not a configured role.
func (k *Keys) Of(role reverts.Role) (common.Address, bool) {
	switch role {
	case reverts.RoleSuperAdmin:
		return k.SuperAdmin, true
	case reverts.RoleAdmin:
		return k.Admin, true
	case reverts.RoleInvestor:
		return k.Investor, true
	case reverts.RoleVRF:
		return k.VRF, true
	}
	return common.Address{}, false
}

// Set replaces the address holding role.
func (k *Keys) Set(role reverts.Role, addr common.Address) error {
	switch role {
	case reverts.RoleSuperAdmin:
		k.SuperAdmin = addr
	case reverts.RoleAdmin:
		k.Admin = addr
	case reverts.RoleInvestor:
		k.Investor = addr
	case reverts.RoleVRF:
		k.VRF = addr
	default:
		return reverts.New(reverts.InvalidInstruction)
	}
	return nil
}

// LatestEpoch is the singleton pointing at the current epoch.
type LatestEpoch struct {
	Index       uint64
	Status      Status
	Rate        returnrate.Rate
	TotalShares fixedpoint.USDC
	Pending     PendingFunds
	Keys        Keys
}

func (LatestEpoch) MaxLen() int {
	return records.ListSize(
		records.SizeUint64 +
			records.SizeUint8 +
			records.SizeFixedPoint +
			records.SizeFixedPoint +
			records.ListSize(3*records.SizeFixedPoint) +
			records.ListSize(4*records.SizeAddress),
	)
}

// CheckIndex fails when index does not name the latest epoch.
func (l *LatestEpoch) CheckIndex(index uint64) error {
	if index != l.Index {
		return reverts.InvalidAccount(reverts.RecordEpoch)
	}
	return nil
}

// Vaults accumulate the treasury cut and the premiums owed to the insurer.
type Vaults struct {
	Treasury  fixedpoint.USDC `json:"treasury"`
	Insurance fixedpoint.USDC `json:"insurance"`
}

func (Vaults) MaxLen() int {
	return records.ListSize(2 * records.SizeFixedPoint)
}
