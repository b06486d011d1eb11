// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package epoch

import (
	"github.com/nezha-labs/staking/staking/reverts"
)

// Status is the lifecycle stage of an epoch.
type Status uint8

const (
	StatusRunning Status = iota
	StatusYielding
	StatusFinalising
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusYielding:
		return "yielding"
	case StatusFinalising:
		return "finalising"
	case StatusEnded:
		return "ended"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// previous returns the only status from which target can be reached.
func (s Status) previous() Status {
	switch s {
	case StatusRunning:
		return StatusEnded
	case StatusYielding:
		return StatusRunning
	case StatusFinalising:
		return StatusYielding
	default:
		return StatusFinalising
	}
}

// Advance moves from s to target. Each status has exactly one legal successor;
// any other request fails naming the status target requires.
func (s Status) Advance(target Status) (Status, error) {
	if target > StatusEnded {
		return s, reverts.New(reverts.InvalidInstruction)
	}
	if expected := target.previous(); s != expected {
		return s, reverts.InvalidEpochStatus(expected, s)
	}
	return target, nil
}

// Expect fails unless s is the expected status.
func (s Status) Expect(expected Status) error {
	if s != expected {
		return reverts.InvalidEpochStatus(expected, s)
	}
	return nil
}
