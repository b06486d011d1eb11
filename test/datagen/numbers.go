// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	mathrand "math/rand/v2"

	"github.com/nezha-labs/staking/fixedpoint"
)

func RandInt() int {
	return mathrand.Int() //#nosec G404
}

func RandIntN(n int) int {
	return mathrand.N(n) //#nosec G404
}

// RandUSDC returns an amount in [0.000001, max] with max given in whole units.
func RandUSDC(max uint64) fixedpoint.USDC {
	return fixedpoint.FromRaw[fixedpoint.D6](mathrand.Uint64N(max*1_000_000) + 1) //#nosec G404
}
