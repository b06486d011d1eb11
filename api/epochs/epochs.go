// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package epochs

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/nezha-labs/staking/api/restutil"
	"github.com/nezha-labs/staking/cache"
	"github.com/nezha-labs/staking/log"
	"github.com/nezha-labs/staking/staking/epoch"
	"github.com/nezha-labs/staking/staking/winners"
)

var logger = log.WithContext("pkg", "epochs-api")

// Reader is the read surface of the staking engine served here.
type Reader interface {
	LatestEpoch() (*epoch.LatestEpoch, error)
	Epoch(index uint64) (*epoch.Epoch, error)
	Vaults() (*epoch.Vaults, error)
	WinnersMeta(epochIndex uint64) (*winners.Meta, bool, error)
	WinnersPage(epochIndex uint64, page uint32) (*winners.Page, bool, error)
}

type Epochs struct {
	reader Reader
	// ended epochs never change again
	ended *cache.LRU[uint64, *epoch.Epoch]
}

func New(reader Reader, cacheSize int) (*Epochs, error) {
	ended, err := cache.NewLRU[uint64, *epoch.Epoch](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "epoch cache")
	}
	return &Epochs{reader: reader, ended: ended}, nil
}

func (e *Epochs) epoch(index uint64) (*epoch.Epoch, error) {
	ep, err := e.ended.GetOrLoad(index, e.reader.Epoch, func(ep *epoch.Epoch) bool {
		return ep.Status == epoch.StatusEnded
	})
	if changed, hit, miss := e.ended.Stats().Changed(); changed {
		logger.Debug("epoch cache stats", "hit", hit, "miss", miss, "rate", e.ended.Stats().HitRate())
	}
	return ep, err
}

func (e *Epochs) handleGetLatest(w http.ResponseWriter, _ *http.Request) error {
	latest, err := e.reader.LatestEpoch()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertLatest(latest))
}

func (e *Epochs) handleGetEpoch(w http.ResponseWriter, req *http.Request) error {
	index, err := restutil.Uint64Var(req, "index", 64)
	if err != nil {
		return err
	}
	ep, err := e.epoch(index)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertEpoch(ep))
}

func (e *Epochs) handleGetVaults(w http.ResponseWriter, _ *http.Request) error {
	vaults, err := e.reader.Vaults()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, vaults)
}

func (e *Epochs) handleGetWinnersMeta(w http.ResponseWriter, req *http.Request) error {
	index, err := restutil.Uint64Var(req, "index", 64)
	if err != nil {
		return err
	}
	meta, found, err := e.reader.WinnersMeta(index)
	if err != nil {
		return err
	}
	if !found {
		return restutil.NotFound(errors.New("winners not published"))
	}
	return restutil.WriteJSON(w, meta)
}

func (e *Epochs) handleGetWinnersPage(w http.ResponseWriter, req *http.Request) error {
	index, err := restutil.Uint64Var(req, "index", 64)
	if err != nil {
		return err
	}
	page, err := restutil.Uint64Var(req, "page", 32)
	if err != nil {
		return err
	}
	p, found, err := e.reader.WinnersPage(index, uint32(page))
	if err != nil {
		return err
	}
	if !found {
		return restutil.NotFound(errors.New("page not published"))
	}
	return restutil.WriteJSON(w, p)
}

func (e *Epochs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/latest").
		Methods(http.MethodGet).
		Name("epochs_get_latest").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleGetLatest))
	sub.Path("/vaults").
		Methods(http.MethodGet).
		Name("epochs_get_vaults").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleGetVaults))
	sub.Path("/{index:[0-9]+}").
		Methods(http.MethodGet).
		Name("epochs_get_epoch").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleGetEpoch))
	sub.Path("/{index:[0-9]+}/winners").
		Methods(http.MethodGet).
		Name("epochs_get_winners").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleGetWinnersMeta))
	sub.Path("/{index:[0-9]+}/winners/{page:[0-9]+}").
		Methods(http.MethodGet).
		Name("epochs_get_winners_page").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleGetWinnersPage))
}
