// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import "fmt"

// Error is the engine failure type.
type Error = ErrRevert

// Role identifies a signer authorised for a group of instructions.
type Role uint8

const (
	RoleAdmin Role = iota
	RoleOwner
	RoleInvestor
	RoleSuperAdmin
	RoleVRF

	numRoles
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleOwner:
		return "owner"
	case RoleInvestor:
		return "investor"
	case RoleSuperAdmin:
		return "super-admin"
	case RoleVRF:
		return "vrf"
	}
	return "unknown-role"
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	for role := RoleAdmin; role < numRoles; role++ {
		if role.String() == string(text) {
			*r = role
			return nil
		}
	}
	return fmt.Errorf("unknown role %q", text)
}

// Constant identifies a configured key or policy value.
type Constant uint8

const (
	ConstAdminKey      Constant = 0
	ConstInvestorKey   Constant = 1
	ConstSuperAdminKey Constant = 2
	ConstVRFKey        Constant = 3

	ConstJackpotAmount        Constant = 30
	ConstInsurancePremium     Constant = 31
	ConstInsuranceProbability Constant = 32
	ConstTreasuryRatio        Constant = 33
	ConstPrizeShare           Constant = 34
	ConstTicketsInfo          Constant = 35
)

var constantNames = map[Constant]string{
	ConstAdminKey:             "admin-key",
	ConstInvestorKey:          "investor-key",
	ConstSuperAdminKey:        "super-admin-key",
	ConstVRFKey:               "vrf-key",
	ConstJackpotAmount:        "jackpot-amount",
	ConstInsurancePremium:     "insurance-premium",
	ConstInsuranceProbability: "insurance-probability",
	ConstTreasuryRatio:        "treasury-ratio",
	ConstPrizeShare:           "prize-share",
	ConstTicketsInfo:          "tickets-info",
}

func (c Constant) known() bool {
	_, ok := constantNames[c]
	return ok
}

func (c Constant) String() string {
	if name, ok := constantNames[c]; ok {
		return name
	}
	return "unknown-constant"
}

// RecordType identifies a persisted record kind.
type RecordType uint8

const (
	RecordLatestEpoch RecordType = iota
	RecordEpoch
	RecordStake
	RecordStakeUpdateRequest
	RecordEpochWinnersMeta
	RecordEpochWinnersPage
	RecordVaults

	numRecordTypes
)

func (r RecordType) String() string {
	switch r {
	case RecordLatestEpoch:
		return "latest-epoch"
	case RecordEpoch:
		return "epoch"
	case RecordStake:
		return "stake"
	case RecordStakeUpdateRequest:
		return "stake-update-request"
	case RecordEpochWinnersMeta:
		return "epoch-winners-meta"
	case RecordEpochWinnersPage:
		return "epoch-winners-page"
	case RecordVaults:
		return "vaults"
	}
	return "unknown-record"
}
