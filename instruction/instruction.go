// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package instruction defines the closed set of instructions the staking
// engine executes. An instruction is RLP encoded as [tag, payload]; tags are
// stable and retired tags are never reused.
package instruction

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/nezha-labs/staking/fixedpoint"
	"github.com/nezha-labs/staking/staking/epoch"
	"github.com/nezha-labs/staking/staking/reverts"
	"github.com/nezha-labs/staking/staking/updates"
	"github.com/nezha-labs/staking/staking/winners"
)

// Tag is the stable discriminant of an instruction.
type Tag uint8

const (
	TagInit                    Tag = 0
	TagRequestStakeUpdate      Tag = 1
	TagApproveStakeUpdate      Tag = 2
	TagCancelStakeUpdate       Tag = 3
	TagCreateEpoch             Tag = 6
	TagClaimWinning            Tag = 9
	TagYieldWithdrawByInvestor Tag = 10
	TagYieldDepositByInvestor  Tag = 11
	TagFundJackpot             Tag = 12
	TagWithdrawVault           Tag = 17
	TagCompleteStakeUpdate     Tag = 18
	TagCreateEpochWinnersMeta  Tag = 19
	TagPublishWinners          Tag = 20
	TagRotateKey               Tag = 21
	TagSetWinningCombination   Tag = 22
)

// Instruction is implemented by every variant.
type Instruction interface {
	Tag() Tag
	// Role is the signer the instruction requires.
	Role() reverts.Role
}

// Init sets up the program. The signer becomes the super admin.
type Init struct {
	Admin    common.Address `yaml:"admin"`
	Investor common.Address `yaml:"investor"`
	VRF      common.Address `yaml:"vrf"`
}

type RequestStakeUpdate struct {
	Direction updates.Direction `yaml:"direction"`
	Amount    fixedpoint.USDC   `yaml:"amount"`
}

type ApproveStakeUpdate struct {
	Owner  common.Address  `yaml:"owner"`
	Amount fixedpoint.USDC `yaml:"amount"`
}

// CancelStakeUpdate may be signed by the owner or by the admin.
type CancelStakeUpdate struct {
	Owner  common.Address  `yaml:"owner"`
	Amount fixedpoint.USDC `yaml:"amount"`
}

type CreateEpoch struct {
	ExpectedEndAt uint64              `yaml:"expectedEndAt"`
	Cfg           epoch.YieldSplitCfg `yaml:"cfg"`
}

type ClaimWinning struct {
	Epoch uint64 `yaml:"epoch"`
	Page  uint32 `yaml:"page"`
	Index uint32 `yaml:"index"`
	Tier  uint8  `yaml:"tier"`
}

type YieldWithdrawByInvestor struct {
	Epoch   uint64            `yaml:"epoch"`
	Tickets epoch.TicketsInfo `yaml:"tickets"`
}

type YieldDepositByInvestor struct {
	Epoch  uint64          `yaml:"epoch"`
	Amount fixedpoint.USDC `yaml:"amount"`
}

type FundJackpot struct {
	Epoch uint64 `yaml:"epoch"`
}

type WithdrawVault struct {
	Vault  epoch.Vault     `yaml:"vault"`
	Amount fixedpoint.USDC `yaml:"amount"`
}

type CompleteStakeUpdate struct {
	Owner common.Address `yaml:"owner"`
}

type CreateEpochWinnersMeta struct {
	Epoch uint64            `yaml:"epoch"`
	Tier1 winners.TierInput `yaml:"tier1"`
	Tier2 winners.TierInput `yaml:"tier2"`
	Tier3 winners.TierInput `yaml:"tier3"`
}

// Tiers returns the tier inputs in tier order.
func (c *CreateEpochWinnersMeta) Tiers() [winners.NumTiers]winners.TierInput {
	return [winners.NumTiers]winners.TierInput{c.Tier1, c.Tier2, c.Tier3}
}

type PublishWinners struct {
	Epoch   uint64                `yaml:"epoch"`
	Page    uint32                `yaml:"page"`
	Winners []winners.WinnerInput `yaml:"winners"`
}

type RotateKey struct {
	Target reverts.Role   `yaml:"target"`
	Key    common.Address `yaml:"key"`
}

// SetWinningCombination carries the VRF proof for the epoch draw. PublicKey is
// the compressed secp256k1 key of the VRF role.
type SetWinningCombination struct {
	Epoch     uint64        `yaml:"epoch"`
	PublicKey hexutil.Bytes `yaml:"publicKey"`
	Proof     hexutil.Bytes `yaml:"proof"`
}

func (*Init) Tag() Tag                    { return TagInit }
func (*RequestStakeUpdate) Tag() Tag      { return TagRequestStakeUpdate }
func (*ApproveStakeUpdate) Tag() Tag      { return TagApproveStakeUpdate }
func (*CancelStakeUpdate) Tag() Tag       { return TagCancelStakeUpdate }
func (*CreateEpoch) Tag() Tag             { return TagCreateEpoch }
func (*ClaimWinning) Tag() Tag            { return TagClaimWinning }
func (*YieldWithdrawByInvestor) Tag() Tag { return TagYieldWithdrawByInvestor }
func (*YieldDepositByInvestor) Tag() Tag  { return TagYieldDepositByInvestor }
func (*FundJackpot) Tag() Tag             { return TagFundJackpot }
func (*WithdrawVault) Tag() Tag           { return TagWithdrawVault }
func (*CompleteStakeUpdate) Tag() Tag     { return TagCompleteStakeUpdate }
func (*CreateEpochWinnersMeta) Tag() Tag  { return TagCreateEpochWinnersMeta }
func (*PublishWinners) Tag() Tag          { return TagPublishWinners }
func (*RotateKey) Tag() Tag               { return TagRotateKey }
func (*SetWinningCombination) Tag() Tag   { return TagSetWinningCombination }

func (*Init) Role() reverts.Role                    { return reverts.RoleSuperAdmin }
func (*RequestStakeUpdate) Role() reverts.Role      { return reverts.RoleOwner }
func (*ApproveStakeUpdate) Role() reverts.Role      { return reverts.RoleAdmin }
func (*CancelStakeUpdate) Role() reverts.Role       { return reverts.RoleOwner }
func (*CreateEpoch) Role() reverts.Role             { return reverts.RoleAdmin }
func (*ClaimWinning) Role() reverts.Role            { return reverts.RoleOwner }
func (*YieldWithdrawByInvestor) Role() reverts.Role { return reverts.RoleInvestor }
func (*YieldDepositByInvestor) Role() reverts.Role  { return reverts.RoleInvestor }
func (*FundJackpot) Role() reverts.Role             { return reverts.RoleInvestor }
func (*WithdrawVault) Role() reverts.Role           { return reverts.RoleSuperAdmin }
func (*CompleteStakeUpdate) Role() reverts.Role     { return reverts.RoleAdmin }
func (*CreateEpochWinnersMeta) Role() reverts.Role  { return reverts.RoleAdmin }
func (*PublishWinners) Role() reverts.Role          { return reverts.RoleAdmin }
func (*RotateKey) Role() reverts.Role               { return reverts.RoleSuperAdmin }
func (*SetWinningCombination) Role() reverts.Role   { return reverts.RoleVRF }
