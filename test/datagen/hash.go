// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/ethereum/go-ethereum/common"
)

func RandomHash() common.Hash {
	var h common.Hash

	rand.Read(h[:])
	return h
}

func RandAddress() common.Address {
	var a common.Address

	rand.Read(a[:])
	return a
}
