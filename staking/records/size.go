// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package records

import "github.com/nezha-labs/staking/fixedpoint"

// Maximum RLP encoded sizes of field kinds.
const (
	SizeBool       = 1
	SizeUint8      = 2
	SizeUint32     = 5
	SizeUint64     = 9
	SizeAddress    = 21
	SizeHash       = 33
	SizeFixedPoint = fixedpoint.EncodedLen
)

// ListSize returns the encoded size of a list whose items take payload bytes.
func ListSize(payload int) int {
	return headerSize(payload) + payload
}

// BytesSize returns the encoded size of a byte string of at most n bytes.
func BytesSize(n int) int {
	if n <= 1 {
		return 1
	}
	return headerSize(n) + n
}

// OptionalSize is the size of an optional nested struct, which encodes as an
// empty list when absent.
func OptionalSize(payload int) int {
	return max(1, ListSize(payload))
}

func headerSize(n int) int {
	switch {
	case n <= 55:
		return 1
	case n <= 0xff:
		return 2
	case n <= 0xffff:
		return 3
	default:
		return 4
	}
}
