// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package returnrate holds the cumulative return rate: the product of every
// epoch's growth ratio since the first epoch. Balances are derived from shares
// and this single factor, so folding in a new epoch is O(1).
package returnrate

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/nezha-labs/staking/fixedpoint"
)

// ErrZeroRate is returned when a rate would become zero, the reserved
// uninitialised value.
var ErrZeroRate = errors.New("return rate is zero")

// Rate is a strictly positive compounding factor.
type Rate struct {
	v fixedpoint.Internal
}

// Unity returns the initial rate of 1.0.
func Unity() Rate {
	return Rate{fixedpoint.One[fixedpoint.D18]()}
}

// New wraps v, rejecting zero.
func New(v fixedpoint.Internal) (Rate, error) {
	if v.IsZero() {
		return Rate{}, ErrZeroRate
	}
	return Rate{v}, nil
}

// Value returns the underlying fixed-point factor.
func (r Rate) Value() fixedpoint.Internal {
	return r.v
}

// IsSet reports whether r was initialised.
func (r Rate) IsSet() bool {
	return !r.v.IsZero()
}

// Cmp compares two rates.
func (r Rate) Cmp(o Rate) int {
	return r.v.Cmp(o.v)
}

// Mul folds the growth ratio numerator/denominator into r. Both operands share
// a precision, so the ratio is applied without an intermediate rounding step.
func (r Rate) Mul(numerator, denominator fixedpoint.USDC) (Rate, error) {
	if !r.IsSet() {
		return Rate{}, ErrZeroRate
	}
	v, err := fixedpoint.MulRatio(r.v, numerator, denominator)
	if err != nil {
		return Rate{}, err
	}
	return New(v)
}

func (r Rate) String() string {
	return r.v.String()
}

// MarshalText implements encoding.TextMarshaler.
func (r Rate) MarshalText() ([]byte, error) {
	return r.v.MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rate) UnmarshalText(text []byte) error {
	var v fixedpoint.Internal
	if err := v.UnmarshalText(text); err != nil {
		return err
	}
	rate, err := New(v)
	if err != nil {
		return err
	}
	*r = rate
	return nil
}

// EncodeRLP implements rlp.Encoder.
func (r Rate) EncodeRLP(w io.Writer) error {
	return r.v.EncodeRLP(w)
}

// DecodeRLP implements rlp.Decoder.
func (r *Rate) DecodeRLP(s *rlp.Stream) error {
	var v fixedpoint.Internal
	if err := v.DecodeRLP(s); err != nil {
		return err
	}
	rate, err := New(v)
	if err != nil {
		return err
	}
	*r = rate
	return nil
}
