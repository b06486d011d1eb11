// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/nezha-labs/staking/fixedpoint"
)

type testStatus uint8

func (s testStatus) String() string { return fmt.Sprintf("s%d", uint8(s)) }

func Test_Reverts(t *testing.T) {
	revert := New(NotEnoughStakeBalance)
	assert.Equal(t, "not enough stake balance (code 2)", revert.Error())
	assert.Equal(t, KindStaking, revert.Kind())

	assert.True(t, IsRevertErr(revert))
	assert.True(t, IsRevertErr(errors.Wrap(revert, "wrapped")))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))
}

func TestCodes(t *testing.T) {
	tests := []struct {
		err  *ErrRevert
		code Code
		kind Kind
	}{
		{New(InvalidInstruction), 0, KindInvalidInstruction},
		{New(RemovedInstruction), 18, KindInvalidInstruction},
		{New(InsufficientBalance), 26, KindStaking},
		{New(InvalidWinningCombination), 31, KindStaking},
		{New(DivisionByZero), 32, KindArithmetic},
		{MissingSignature(RoleInvestor), 102, KindMissingSignature},
		{InvalidConstant(ConstTreasuryRatio), 233, KindInvalidConstant},
		{InvalidAccount(RecordEpoch), 301, KindInvalidAccount},
		{InvalidEpochStatus(testStatus(0), testStatus(3)), 403, KindInvalidEpochStatus},
		{InvalidStakeUpdateState(testStatus(2)), 452, KindInvalidStakeUpdateState},
		{UnknownError(7), 10007, KindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.Code(), tt.err.Error())
		assert.Equal(t, tt.kind, tt.err.Kind(), tt.err.Error())

		decoded := FromCode(uint32(tt.code))
		assert.Equal(t, tt.code, decoded.Code())
		assert.Equal(t, tt.kind, decoded.Kind())
	}
}

func TestFromCodeUnknown(t *testing.T) {
	for _, code := range []uint32{64, 99, 150, 299, 377, 9999} {
		e := FromCode(code)
		assert.Equal(t, Code(code), e.Code())
		assert.Equal(t, KindUnknown, e.Kind())
	}
}

func TestArithmetic(t *testing.T) {
	assert.NoError(t, Arithmetic(nil))

	err := Arithmetic(fixedpoint.ErrOverflow)
	code, ok := CodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, NumericalOverflow, code)
	assert.ErrorIs(t, err, fixedpoint.ErrOverflow)

	err = Arithmetic(errors.Wrap(fixedpoint.ErrDivisionByZero, "rate"))
	code, ok = CodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, DivisionByZero, code)
	assert.Equal(t, KindArithmetic, FromCode(uint32(code)).Kind())
	assert.ErrorIs(t, err, fixedpoint.ErrDivisionByZero)

	already := New(NoPrizeToClaim)
	assert.Same(t, already, Arithmetic(already))

	_, ok = CodeOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestIs(t *testing.T) {
	err := errors.Wrap(New(PrizeAlreadyClaimed), "claim")
	assert.ErrorIs(t, err, New(PrizeAlreadyClaimed))
	assert.NotErrorIs(t, err, New(NoPrizeToClaim))
}
