// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/nezha-labs/staking/api/restutil"
	"github.com/nezha-labs/staking/fixedpoint"
	"github.com/nezha-labs/staking/staking"
	"github.com/nezha-labs/staking/staking/updates"
)

// Reader is the read surface of the staking engine served here.
type Reader interface {
	Stakes() ([]*staking.StakeBalance, error)
	Stake(owner common.Address) (*staking.StakeBalance, error)
	StakeUpdate(owner common.Address) (*updates.Request, bool, error)
	QueuedUpdates() ([]common.Address, error)
}

type Stake struct {
	Owner      common.Address  `json:"owner"`
	Shares     fixedpoint.USDC `json:"shares"`
	Amount     fixedpoint.USDC `json:"amount"`
	EpochIndex uint64          `json:"epochIndex"`
}

type StakeUpdate struct {
	Owner      common.Address    `json:"owner"`
	Direction  updates.Direction `json:"direction"`
	Amount     fixedpoint.USDC   `json:"amount"`
	EpochIndex uint64            `json:"epochIndex"`
	State      string            `json:"state"`
	Settled    fixedpoint.USDC   `json:"settled"`
}

type Stakes struct {
	reader Reader
}

func New(reader Reader) *Stakes {
	return &Stakes{reader}
}

func convertStake(b *staking.StakeBalance) *Stake {
	return &Stake{
		Owner:      b.Stake.Owner,
		Shares:     b.Stake.Shares,
		Amount:     b.Amount,
		EpochIndex: b.Stake.EpochIndex,
	}
}

func (s *Stakes) handleGetStakes(w http.ResponseWriter, _ *http.Request) error {
	list, err := s.reader.Stakes()
	if err != nil {
		return err
	}
	stakes := make([]*Stake, 0, len(list))
	for _, b := range list {
		stakes = append(stakes, convertStake(b))
	}
	return restutil.WriteJSON(w, stakes)
}

func (s *Stakes) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	owner, err := restutil.AddressVar(req, "owner")
	if err != nil {
		return err
	}
	b, err := s.reader.Stake(owner)
	if err != nil {
		return err
	}
	st := convertStake(b)
	st.Owner = owner
	return restutil.WriteJSON(w, st)
}

func (s *Stakes) handleGetUpdate(w http.ResponseWriter, req *http.Request) error {
	owner, err := restutil.AddressVar(req, "owner")
	if err != nil {
		return err
	}
	r, found, err := s.reader.StakeUpdate(owner)
	if err != nil {
		return err
	}
	if !found {
		return restutil.NotFound(errors.New("no stake update request"))
	}
	return restutil.WriteJSON(w, &StakeUpdate{
		Owner:      r.Owner,
		Direction:  r.Direction,
		Amount:     r.Amount,
		EpochIndex: r.EpochIndex,
		State:      r.State.String(),
		Settled:    r.Settled,
	})
}

func (s *Stakes) handleGetQueue(w http.ResponseWriter, _ *http.Request) error {
	owners, err := s.reader.QueuedUpdates()
	if err != nil {
		return err
	}
	if owners == nil {
		owners = []common.Address{}
	}
	return restutil.WriteJSON(w, owners)
}

func (s *Stakes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("stakes_get_stakes").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetStakes))
	sub.Path("/queue").
		Methods(http.MethodGet).
		Name("stakes_get_queue").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetQueue))
	sub.Path("/{owner}").
		Methods(http.MethodGet).
		Name("stakes_get_stake").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetStake))
	sub.Path("/{owner}/update").
		Methods(http.MethodGet).
		Name("stakes_get_update").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetUpdate))
}
