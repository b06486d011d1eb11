// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package winners

import (
	"bytes"
	"slices"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nezha-labs/staking/staking/draw"
)

// Ticket is one ticket sold for an epoch.
type Ticket struct {
	Owner       common.Address   `json:"owner" yaml:"owner"`
	Combination draw.Combination `json:"combination" yaml:"combination"`
}

// TierOf returns the tier a ticket wins, or 0. The tier follows the length of
// the prefix the ticket shares with the winning combination: all six numbers
// win tier 1, five win tier 2 and four win tier 3.
func TierOf(ticket, winning draw.Combination) uint8 {
	n := 0
	for n < len(ticket) && ticket[n] == winning[n] {
		n++
	}
	switch n {
	case len(ticket):
		return 1
	case len(ticket) - 1:
		return 2
	case len(ticket) - 2:
		return 3
	}
	return 0
}

// Tally groups the winning tickets per tier and owner. Winners come out tier 1
// first, ordered by owner address within a tier, with gapless indices.
func Tally(tickets []Ticket, winning draw.Combination) ([NumTiers]TierInput, []WinnerInput) {
	type key struct {
		tier  uint8
		owner common.Address
	}
	counts := make(map[key]uint64)
	for _, t := range tickets {
		if tier := TierOf(t.Combination, winning); tier != 0 {
			counts[key{tier, t.Owner}]++
		}
	}

	keys := make([]key, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b key) int {
		if a.tier != b.tier {
			return int(a.tier) - int(b.tier)
		}
		return bytes.Compare(a.owner[:], b.owner[:])
	})

	var tiers [NumTiers]TierInput
	list := make([]WinnerInput, 0, len(keys))
	for i, k := range keys {
		n := counts[k]
		tiers[k.tier-1].Winners++
		tiers[k.tier-1].Tickets += n
		list = append(list, WinnerInput{
			Index:   uint32(i),
			Owner:   k.owner,
			Tier:    k.tier,
			Tickets: n,
		})
	}
	return tiers, list
}

// Paginate cuts winners into pages of MaxPerPage.
func Paginate(list []WinnerInput) [][]WinnerInput {
	pages := make([][]WinnerInput, 0, PageCount(uint32(len(list))))
	for start := 0; start < len(list); start += MaxPerPage {
		pages = append(pages, list[start:min(start+MaxPerPage, len(list))])
	}
	return pages
}
