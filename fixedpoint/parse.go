// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fixedpoint

import (
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Parse reads a non-negative decimal string such as "1_000.25". Underscores are
// ignored and digits beyond the type's precision are truncated.
func Parse[P Precision](s string) (FixedPoint[P], error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return FixedPoint[P]{}, errors.Wrapf(err, "parse fixed point %q", s)
	}
	if d.IsNegative() {
		return FixedPoint[P]{}, errors.Errorf("parse fixed point %q: negative value", s)
	}
	scaled := d.Shift(int32(decimals[P]())).Truncate(0)
	v, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return FixedPoint[P]{}, ErrOverflow
	}
	return bounded[P](v)
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse[P Precision](s string) FixedPoint[P] {
	v, err := Parse[P](s)
	if err != nil {
		panic(err)
	}
	return v
}
