// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package instruction

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/nezha-labs/staking/staking/reverts"
)

type envelope struct {
	Tag     Tag
	Payload rlp.RawValue
}

var names = map[Tag]string{
	TagInit:                    "init",
	TagRequestStakeUpdate:      "requestStakeUpdate",
	TagApproveStakeUpdate:      "approveStakeUpdate",
	TagCancelStakeUpdate:       "cancelStakeUpdate",
	TagCreateEpoch:             "createEpoch",
	TagClaimWinning:            "claimWinning",
	TagYieldWithdrawByInvestor: "yieldWithdrawByInvestor",
	TagYieldDepositByInvestor:  "yieldDepositByInvestor",
	TagFundJackpot:             "fundJackpot",
	TagWithdrawVault:           "withdrawVault",
	TagCompleteStakeUpdate:     "completeStakeUpdate",
	TagCreateEpochWinnersMeta:  "createEpochWinnersMeta",
	TagPublishWinners:          "publishWinners",
	TagRotateKey:               "rotateKey",
	TagSetWinningCombination:   "setWinningCombination",
}

func (t Tag) String() string {
	if name, ok := names[t]; ok {
		return name
	}
	if t.Removed() {
		return "removed"
	}
	return "unknown"
}

// Removed reports whether t is a retired slot.
func (t Tag) Removed() bool {
	switch t {
	case 4, 5, 7, 8, 13, 14, 15, 16:
		return true
	}
	return false
}

// TagByName looks up a live tag by its String form.
func TagByName(name string) (Tag, bool) {
	for t, n := range names {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// New returns an empty instruction for t. Retired tags fail with
// RemovedInstruction and unknown tags with InvalidInstruction.
func New(t Tag) (Instruction, error) {
	switch t {
	case TagInit:
		return &Init{}, nil
	case TagRequestStakeUpdate:
		return &RequestStakeUpdate{}, nil
	case TagApproveStakeUpdate:
		return &ApproveStakeUpdate{}, nil
	case TagCancelStakeUpdate:
		return &CancelStakeUpdate{}, nil
	case TagCreateEpoch:
		return &CreateEpoch{}, nil
	case TagClaimWinning:
		return &ClaimWinning{}, nil
	case TagYieldWithdrawByInvestor:
		return &YieldWithdrawByInvestor{}, nil
	case TagYieldDepositByInvestor:
		return &YieldDepositByInvestor{}, nil
	case TagFundJackpot:
		return &FundJackpot{}, nil
	case TagWithdrawVault:
		return &WithdrawVault{}, nil
	case TagCompleteStakeUpdate:
		return &CompleteStakeUpdate{}, nil
	case TagCreateEpochWinnersMeta:
		return &CreateEpochWinnersMeta{}, nil
	case TagPublishWinners:
		return &PublishWinners{}, nil
	case TagRotateKey:
		return &RotateKey{}, nil
	case TagSetWinningCombination:
		return &SetWinningCombination{}, nil
	}
	if t.Removed() {
		return nil, reverts.New(reverts.RemovedInstruction)
	}
	return nil, reverts.Newf(reverts.InvalidInstruction, "unknown tag %d", t)
}

// Encode serialises ins as [tag, payload].
func Encode(ins Instruction) ([]byte, error) {
	payload, err := rlp.EncodeToBytes(ins)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %v", ins.Tag())
	}
	return rlp.EncodeToBytes(&envelope{Tag: ins.Tag(), Payload: payload})
}

// Decode parses data produced by Encode. Malformed input fails with InvalidInstruction.
func Decode(data []byte) (Instruction, error) {
	var env envelope
	if err := rlp.DecodeBytes(data, &env); err != nil {
		return nil, reverts.Newf(reverts.InvalidInstruction, "%v", err)
	}
	ins, err := New(env.Tag)
	if err != nil {
		return nil, err
	}
	if err := rlp.DecodeBytes(env.Payload, ins); err != nil {
		return nil, reverts.Newf(reverts.InvalidInstruction, "%v: %v", env.Tag, err)
	}
	return ins, nil
}
