// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package draw derives an epoch's winning combination from an ECVRF proof.
// The prover cannot choose the combination: it is a deterministic function of
// the proof output, and the proof binds the epoch index and the tickets hash.
package draw

import (
	"crypto/ecdsa"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/vechain/go-ecvrf"
	"golang.org/x/crypto/blake2b"
)

const (
	// NumMain is the count of distinct main numbers.
	NumMain = 5
	// MainMax is the largest main number.
	MainMax = 56
	// BonusMax is the largest bonus number.
	BonusMax = 10
)

var alphaPrefix = []byte("nezha-draw")

// Combination is five distinct main numbers in [1, MainMax] followed by one
// bonus number in [1, BonusMax].
type Combination [NumMain + 1]uint8

// Validate checks the bounds and distinctness.
func (c Combination) Validate() error {
	var seen [MainMax + 1]bool
	for i := range NumMain {
		n := c[i]
		if n < 1 || n > MainMax {
			return errors.Errorf("main number %d out of range", n)
		}
		if seen[n] {
			return errors.Errorf("main number %d repeated", n)
		}
		seen[n] = true
	}
	if b := c[NumMain]; b < 1 || b > BonusMax {
		return errors.Errorf("bonus number %d out of range", b)
	}
	return nil
}

func (c Combination) String() string {
	parts := make([]string, len(c))
	for i, n := range c {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, "-")
}

// Alpha returns the VRF input of an epoch draw.
func Alpha(epochIndex uint64, ticketsHash common.Hash) []byte {
	h, _ := blake2b.New256(nil)
	h.Write(alphaPrefix)
	h.Write(binary.BigEndian.AppendUint64(nil, epochIndex))
	h.Write(ticketsHash[:])
	return h.Sum(nil)
}

// Prove produces the VRF output and proof for alpha.
func Prove(key *ecdsa.PrivateKey, alpha []byte) (beta, proof []byte, err error) {
	return ecvrf.Secp256k1Sha256Tai.Prove(key, alpha)
}

// Verify checks proof against the compressed public key and returns the VRF
// output together with the address of the key.
func Verify(compressedPub, alpha, proof []byte) (beta []byte, signer common.Address, err error) {
	pub, err := crypto.DecompressPubkey(compressedPub)
	if err != nil {
		return nil, common.Address{}, errors.Wrap(err, "decompress vrf key")
	}
	beta, err = ecvrf.Secp256k1Sha256Tai.Verify(pub, alpha, proof)
	if err != nil {
		return nil, common.Address{}, errors.Wrap(err, "verify vrf proof")
	}
	return beta, crypto.PubkeyToAddress(*pub), nil
}

// FromOutput maps a VRF output onto a combination. Numbers are drawn from a
// keccak stream seeded with beta; rejection sampling keeps every value
// uniformly distributed.
func FromOutput(beta []byte) Combination {
	var (
		c       Combination
		seen    [MainMax + 1]bool
		counter uint64
		buf     []byte
	)
	next := func(limit uint8) uint8 {
		// largest multiple of limit that fits in a byte
		bound := 256 - 256%int(limit)
		for {
			if len(buf) == 0 {
				buf = crypto.Keccak256(beta, binary.BigEndian.AppendUint64(nil, counter))
				counter++
			}
			b := int(buf[0])
			buf = buf[1:]
			if b < bound {
				return uint8(b%int(limit)) + 1
			}
		}
	}
	for i := 0; i < NumMain; {
		n := next(MainMax)
		if seen[n] {
			continue
		}
		seen[n] = true
		c[i] = n
		i++
	}
	c[NumMain] = next(BonusMax)
	return c
}
