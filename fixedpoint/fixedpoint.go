// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fixedpoint implements unsigned decimal fixed-point numbers with a
// precision fixed per type. Values of different precisions never combine
// directly: Convert and ConvertCeil are the only bridges between them.
package fixedpoint

import (
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// MaxBits is the width of the magnitude backing every fixed-point value.
const MaxBits = 192

// EncodedLen is the maximum RLP encoded length of any fixed-point value.
const EncodedLen = 1 + MaxBits/8

var (
	ErrOverflow       = errors.New("fixed point overflow")
	ErrDivisionByZero = errors.New("fixed point division by zero")
)

// Precision names the number of fractional decimal digits of a fixed-point type.
type Precision interface {
	Decimals() uint8
}

// D3 is three fractional digits.
type D3 struct{}

// D6 is six fractional digits, the precision of settlement amounts.
type D6 struct{}

// D18 is eighteen fractional digits, used for internal ratios and rates.
type D18 struct{}

func (D3) Decimals() uint8  { return 3 }
func (D6) Decimals() uint8  { return 6 }
func (D18) Decimals() uint8 { return 18 }

// FixedPoint is a magnitude scaled by 10^P.Decimals().
type FixedPoint[P Precision] struct {
	v uint256.Int
}

type (
	// USDC is the precision of amounts moved in and out of the pool.
	USDC = FixedPoint[D6]
	// Internal is the precision of rates and intermediate products.
	Internal = FixedPoint[D18]
	// Ratio is the precision of configured ratios such as the treasury cut.
	Ratio = FixedPoint[D3]
)

var pow10 [MaxBits/3 + 1]uint256.Int

func init() {
	pow10[0].SetOne()
	ten := uint256.NewInt(10)
	for i := 1; i < len(pow10); i++ {
		pow10[i].Mul(&pow10[i-1], ten)
	}
}

func decimals[P Precision]() uint8 {
	var p P
	return p.Decimals()
}

func scale[P Precision]() *uint256.Int {
	return &pow10[decimals[P]()]
}

func bounded[P Precision](z *uint256.Int) (FixedPoint[P], error) {
	if z.BitLen() > MaxBits {
		return FixedPoint[P]{}, ErrOverflow
	}
	var f FixedPoint[P]
	f.v.Set(z)
	return f, nil
}

// Zero returns the zero value.
func Zero[P Precision]() FixedPoint[P] {
	return FixedPoint[P]{}
}

// One returns 1.0.
func One[P Precision]() FixedPoint[P] {
	var f FixedPoint[P]
	f.v.Set(scale[P]())
	return f
}

// FromRaw builds a value from its scaled magnitude, e.g. FromRaw[D6](1) is 0.000001.
func FromRaw[P Precision](raw uint64) FixedPoint[P] {
	var f FixedPoint[P]
	f.v.SetUint64(raw)
	return f
}

// FromUint64 builds a value from a whole number.
func FromUint64[P Precision](whole uint64) (FixedPoint[P], error) {
	z, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(whole), scale[P]())
	if overflow {
		return FixedPoint[P]{}, ErrOverflow
	}
	return bounded[P](z)
}

// FromUint256 builds a value from a scaled magnitude.
func FromUint256[P Precision](raw *uint256.Int) (FixedPoint[P], error) {
	return bounded[P](raw)
}

// Raw returns a copy of the scaled magnitude.
func (f FixedPoint[P]) Raw() *uint256.Int {
	return new(uint256.Int).Set(&f.v)
}

// IsZero reports whether f is zero.
func (f FixedPoint[P]) IsZero() bool {
	return f.v.IsZero()
}

// Cmp compares scaled magnitudes, returning -1, 0 or +1.
func (f FixedPoint[P]) Cmp(o FixedPoint[P]) int {
	return f.v.Cmp(&o.v)
}

// Eq reports whether both values are equal.
func (f FixedPoint[P]) Eq(o FixedPoint[P]) bool {
	return f.v.Eq(&o.v)
}

// Add returns f + o.
func (f FixedPoint[P]) Add(o FixedPoint[P]) (FixedPoint[P], error) {
	z, overflow := new(uint256.Int).AddOverflow(&f.v, &o.v)
	if overflow {
		return FixedPoint[P]{}, ErrOverflow
	}
	return bounded[P](z)
}

// Sub returns f - o, failing when o is greater than f.
func (f FixedPoint[P]) Sub(o FixedPoint[P]) (FixedPoint[P], error) {
	z, underflow := new(uint256.Int).SubOverflow(&f.v, &o.v)
	if underflow {
		return FixedPoint[P]{}, ErrOverflow
	}
	return bounded[P](z)
}

// SaturatingSub returns f - o, or zero when o is greater than f.
func (f FixedPoint[P]) SaturatingSub(o FixedPoint[P]) FixedPoint[P] {
	if f.v.Lt(&o.v) {
		return FixedPoint[P]{}
	}
	var r FixedPoint[P]
	r.v.Sub(&f.v, &o.v)
	return r
}

// Mul returns f * o rounded down.
func (f FixedPoint[P]) Mul(o FixedPoint[P]) (FixedPoint[P], error) {
	return f.mulDiv(&o.v, scale[P](), false)
}

// MulCeil returns f * o rounded up.
func (f FixedPoint[P]) MulCeil(o FixedPoint[P]) (FixedPoint[P], error) {
	return f.mulDiv(&o.v, scale[P](), true)
}

// Div returns f / o rounded down.
func (f FixedPoint[P]) Div(o FixedPoint[P]) (FixedPoint[P], error) {
	if o.v.IsZero() {
		return FixedPoint[P]{}, ErrDivisionByZero
	}
	return f.mulDiv(scale[P](), &o.v, false)
}

// DivCeil returns f / o rounded up.
func (f FixedPoint[P]) DivCeil(o FixedPoint[P]) (FixedPoint[P], error) {
	if o.v.IsZero() {
		return FixedPoint[P]{}, ErrDivisionByZero
	}
	return f.mulDiv(scale[P](), &o.v, true)
}

// MulRatio returns f * num / den rounded down. The ratio's precision cancels out,
// so num and den may be of any precision as long as they share it.
func MulRatio[P, Q Precision](f FixedPoint[P], num, den FixedPoint[Q]) (FixedPoint[P], error) {
	if den.v.IsZero() {
		return FixedPoint[P]{}, ErrDivisionByZero
	}
	return f.mulDiv(&num.v, &den.v, false)
}

// MulDivUint64 returns f * num / den rounded down, for integer ratios such as ticket counts.
func (f FixedPoint[P]) MulDivUint64(num, den uint64) (FixedPoint[P], error) {
	if den == 0 {
		return FixedPoint[P]{}, ErrDivisionByZero
	}
	return f.mulDiv(uint256.NewInt(num), uint256.NewInt(den), false)
}

func (f FixedPoint[P]) mulDiv(y, d *uint256.Int, roundUp bool) (FixedPoint[P], error) {
	z, overflow := new(uint256.Int).MulDivOverflow(&f.v, y, d)
	if overflow {
		return FixedPoint[P]{}, ErrOverflow
	}
	if roundUp && !new(uint256.Int).MulMod(&f.v, y, d).IsZero() {
		if z, overflow = z.AddOverflow(z, uint256.NewInt(1)); overflow {
			return FixedPoint[P]{}, ErrOverflow
		}
	}
	return bounded[P](z)
}

// Convert changes the precision of f, rounding down when digits are dropped.
func Convert[To, From Precision](f FixedPoint[From]) (FixedPoint[To], error) {
	return convert[To](f, false)
}

// ConvertCeil changes the precision of f, rounding up when digits are dropped.
func ConvertCeil[To, From Precision](f FixedPoint[From]) (FixedPoint[To], error) {
	return convert[To](f, true)
}

func convert[To, From Precision](f FixedPoint[From], roundUp bool) (FixedPoint[To], error) {
	from, to := decimals[From](), decimals[To]()
	switch {
	case to > from:
		z, overflow := new(uint256.Int).MulOverflow(&f.v, &pow10[to-from])
		if overflow {
			return FixedPoint[To]{}, ErrOverflow
		}
		return bounded[To](z)
	case to < from:
		q, r := new(uint256.Int), new(uint256.Int)
		q.DivMod(&f.v, &pow10[from-to], r)
		if roundUp && !r.IsZero() {
			q.AddUint64(q, 1)
		}
		return bounded[To](q)
	default:
		var out FixedPoint[To]
		out.v.Set(&f.v)
		return out, nil
	}
}

// Min returns the smaller of a and b.
func Min[P Precision](a, b FixedPoint[P]) FixedPoint[P] {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// String formats f as "<int>.<frac>" with exactly P.Decimals() fractional digits.
func (f FixedPoint[P]) String() string {
	d := decimals[P]()
	q, r := new(uint256.Int), new(uint256.Int)
	q.DivMod(&f.v, scale[P](), r)
	if d == 0 {
		return q.Dec()
	}
	frac := r.Dec()
	return q.Dec() + "." + strings.Repeat("0", int(d)-len(frac)) + frac
}

// MarshalText implements encoding.TextMarshaler.
func (f FixedPoint[P]) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FixedPoint[P]) UnmarshalText(text []byte) error {
	v, err := Parse[P](string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// EncodeRLP implements rlp.Encoder.
func (f FixedPoint[P]) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &f.v)
}

// DecodeRLP implements rlp.Decoder.
func (f *FixedPoint[P]) DecodeRLP(s *rlp.Stream) error {
	var v uint256.Int
	if err := s.ReadUint256(&v); err != nil {
		return err
	}
	if v.BitLen() > MaxBits {
		return ErrOverflow
	}
	f.v = v
	return nil
}
