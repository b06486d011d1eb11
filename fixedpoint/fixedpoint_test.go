// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fixedpoint

import (
	"encoding/json"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func maxValue[P Precision]() FixedPoint[P] {
	v := new(uint256.Int).Lsh(uint256.NewInt(1), MaxBits)
	v.SubUint64(v, 1)
	f, err := FromUint256[P](v)
	if err != nil {
		panic(err)
	}
	return f
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"1.234567890", 1_234_567},
		{"1_000.234_567", 1_000_234_567},
		{"0.000001", 1},
		{"0.0000009", 0},
		{"42", 42_000_000},
		{" 7.5 ", 7_500_000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := Parse[D6](tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Raw().Uint64())
		})
	}

	_, err := Parse[D6]("-1")
	assert.Error(t, err)
	_, err = Parse[D6]("abc")
	assert.Error(t, err)
	_, err = Parse[D18]("1" + strings.Repeat("0", 48))
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestString(t *testing.T) {
	assert.Equal(t, "1.000000", One[D6]().String())
	assert.Equal(t, "0.000001", FromRaw[D6](1).String())
	assert.Equal(t, "1000.234567", MustParse[D6]("1000.234567").String())
	assert.Equal(t, "0.500", MustParse[D3]("0.5").String())
	assert.Equal(t, "0.000000000100000000", MustParse[D18]("0.0000000001").String())
}

func TestMulDiv(t *testing.T) {
	a := MustParse[D6]("0.000015")

	v, err := a.Mul(MustParse[D6]("0.1"))
	require.NoError(t, err)
	assert.Equal(t, FromRaw[D6](1), v)

	v, err = FromRaw[D6](1).Mul(FromRaw[D6](1))
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	v, err = FromRaw[D6](1).MulCeil(FromRaw[D6](1))
	require.NoError(t, err)
	assert.Equal(t, FromRaw[D6](1), v)

	v, err = a.Div(MustParse[D6]("10"))
	require.NoError(t, err)
	assert.Equal(t, FromRaw[D6](1), v)

	v, err = a.DivCeil(MustParse[D6]("10"))
	require.NoError(t, err)
	assert.Equal(t, FromRaw[D6](2), v)

	_, err = a.Div(Zero[D6]())
	assert.ErrorIs(t, err, ErrDivisionByZero)
	_, err = a.DivCeil(Zero[D6]())
	assert.ErrorIs(t, err, ErrDivisionByZero)

	v, err = MustParse[D6]("997").Mul(One[D6]())
	require.NoError(t, err)
	assert.Equal(t, "997.000000", v.String())
}

func TestMulRatio(t *testing.T) {
	rate := One[D18]()
	v, err := MulRatio(rate, MustParse[D6]("1050"), MustParse[D6]("1000"))
	require.NoError(t, err)
	assert.Equal(t, "1.050000000000000000", v.String())

	_, err = MulRatio(rate, One[D6](), Zero[D6]())
	assert.ErrorIs(t, err, ErrDivisionByZero)

	prize, err := MustParse[D6]("100").MulDivUint64(1, 3)
	require.NoError(t, err)
	assert.Equal(t, "33.333333", prize.String())

	_, err = prize.MulDivUint64(1, 0)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestAddSubRoundTrip(t *testing.T) {
	for range 1000 {
		a := FromRaw[D6](rand.Uint64())
		b := FromRaw[D6](rand.Uint64())

		sum, err := a.Add(b)
		require.NoError(t, err)
		back, err := sum.Sub(b)
		require.NoError(t, err)
		assert.True(t, a.Eq(back))
	}
}

func TestOverflow(t *testing.T) {
	top := maxValue[D6]()

	_, err := top.Add(FromRaw[D6](1))
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Zero[D6]().Sub(FromRaw[D6](1))
	assert.ErrorIs(t, err, ErrOverflow)
	assert.True(t, Zero[D6]().SaturatingSub(FromRaw[D6](1)).IsZero())

	_, err = top.Mul(MustParse[D6]("2"))
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = top.Div(MustParse[D6]("0.5"))
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Convert[D18](top)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = FromUint256[D6](new(uint256.Int).Lsh(uint256.NewInt(1), MaxBits))
	assert.ErrorIs(t, err, ErrOverflow)

	v, err := FromUint64[D6](1_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, "1000000000.000000", v.String())
}

func TestConvert(t *testing.T) {
	usdc := MustParse[D6]("1.234567")

	internal, err := Convert[D18](usdc)
	require.NoError(t, err)
	assert.Equal(t, "1.234567000000000000", internal.String())

	back, err := Convert[D6](internal)
	require.NoError(t, err)
	assert.True(t, usdc.Eq(back))

	ratio, err := Convert[D3](usdc)
	require.NoError(t, err)
	assert.Equal(t, "1.234", ratio.String())

	ratio, err = ConvertCeil[D3](usdc)
	require.NoError(t, err)
	assert.Equal(t, "1.235", ratio.String())

	exact, err := ConvertCeil[D3](MustParse[D6]("1.5"))
	require.NoError(t, err)
	assert.Equal(t, "1.500", exact.String())
}

func TestOrdering(t *testing.T) {
	a, b := MustParse[D6]("1.5"), MustParse[D6]("2")
	assert.Equal(t, -1, a.Cmp(b))
	assert.Equal(t, 1, b.Cmp(a))
	assert.Equal(t, 0, a.Cmp(a))
	assert.Equal(t, a, Min(a, b))
	assert.Equal(t, a, Min(b, a))
}

func TestEncoding(t *testing.T) {
	type holder struct {
		Amount USDC
		Rate   Internal
	}
	in := holder{MustParse[D6]("123.456"), MustParse[D18]("1.05")}

	data, err := rlp.EncodeToBytes(&in)
	require.NoError(t, err)
	var out holder
	require.NoError(t, rlp.DecodeBytes(data, &out))
	assert.Equal(t, in, out)

	maxData, err := rlp.EncodeToBytes(maxValue[D6]())
	require.NoError(t, err)
	assert.Len(t, maxData, EncodedLen)

	js, err := json.Marshal(&in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Amount":"123.456000","Rate":"1.050000000000000000"}`, string(js))

	var fromJSON holder
	require.NoError(t, json.Unmarshal(js, &fromJSON))
	assert.Equal(t, in, fromJSON)
}
