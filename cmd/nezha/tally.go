// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"io"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	"gopkg.in/yaml.v3"

	"github.com/nezha-labs/staking/co"
	"github.com/nezha-labs/staking/instruction"
	"github.com/nezha-labs/staking/staking"
	"github.com/nezha-labs/staking/staking/draw"
	"github.com/nezha-labs/staking/staking/winners"
)

const tallyChunk = 4096

func decodeTickets(r io.Reader) ([]winners.Ticket, error) {
	var tickets []winners.Ticket
	if err := yaml.NewDecoder(r).Decode(&tickets); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decode tickets")
	}
	for i, t := range tickets {
		if err := t.Combination.Validate(); err != nil {
			return nil, errors.WithMessagef(err, "ticket %d", i)
		}
	}
	return tickets, nil
}

// winningTickets drops the tickets that win no tier. Chunks are classified in
// parallel, so the result is unordered.
func winningTickets(tickets []winners.Ticket, winning draw.Combination, bar *pb.ProgressBar) []winners.Ticket {
	var (
		lock sync.Mutex
		hits []winners.Ticket
	)
	co.Parallel(func(queue co.Enqueue) {
		for start := 0; start < len(tickets); start += tallyChunk {
			chunk := tickets[start:min(start+tallyChunk, len(tickets))]
			queue(func() {
				var found []winners.Ticket
				for _, t := range chunk {
					if winners.TierOf(t.Combination, winning) != 0 {
						found = append(found, t)
					}
				}
				lock.Lock()
				hits = append(hits, found...)
				lock.Unlock()
				if bar != nil {
					bar.Add(len(chunk))
				}
			})
		}
	})
	return hits
}

// tally returns the winners meta call followed by one publish call per page.
func tally(epochIndex uint64, tickets []winners.Ticket, winning draw.Combination, bar *pb.ProgressBar) []*staking.Call {
	tiers, list := winners.Tally(winningTickets(tickets, winning, bar), winning)

	calls := []*staking.Call{{Instruction: &instruction.CreateEpochWinnersMeta{
		Epoch: epochIndex,
		Tier1: tiers[0],
		Tier2: tiers[1],
		Tier3: tiers[2],
	}}}
	for i, page := range winners.Paginate(list) {
		calls = append(calls, &staking.Call{Instruction: &instruction.PublishWinners{
			Epoch:   epochIndex,
			Page:    uint32(i),
			Winners: page,
		}})
	}
	return calls
}
