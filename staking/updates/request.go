// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package updates

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/nezha-labs/staking/fixedpoint"
	"github.com/nezha-labs/staking/staking/records"
)

// Direction is the side of a stake update.
type Direction uint8

const (
	Deposit Direction = iota
	Withdraw
)

func (d Direction) String() string {
	switch d {
	case Deposit:
		return "deposit"
	case Withdraw:
		return "withdraw"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "deposit":
		*d = Deposit
	case "withdraw":
		*d = Withdraw
	default:
		return errors.Errorf("unknown direction %q", text)
	}
	return nil
}

// State is the progress of a stake update request.
type State uint8

const (
	PendingApproval State = iota
	Approved
	Completed
	Rejected
)

func (s State) String() string {
	switch s {
	case PendingApproval:
		return "pending-approval"
	case Approved:
		return "approved"
	case Completed:
		return "completed"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// Outstanding reports whether the request still blocks a new one.
func (s State) Outstanding() bool {
	return s == PendingApproval || s == Approved
}

// Request is the latest stake update request of an owner. Settled is the
// amount actually moved once the request completed.
type Request struct {
	Owner      common.Address
	Direction  Direction
	Amount     fixedpoint.USDC
	EpochIndex uint64
	State      State
	Settled    fixedpoint.USDC
}

func (Request) MaxLen() int {
	return records.ListSize(
		records.SizeAddress +
			records.SizeUint8 +
			records.SizeFixedPoint +
			records.SizeUint64 +
			records.SizeUint8 +
			records.SizeFixedPoint,
	)
}
