// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nezha-labs/staking/fixedpoint"
	"github.com/nezha-labs/staking/staking"
	"github.com/nezha-labs/staking/staking/stake"
	"github.com/nezha-labs/staking/staking/updates"
)

var (
	alice = common.HexToAddress("0xa11ce")
	bob   = common.HexToAddress("0xb0b")
)

func usdc(s string) fixedpoint.USDC { return fixedpoint.MustParse[fixedpoint.D6](s) }

type fakeReader struct {
	balances map[common.Address]*staking.StakeBalance
	requests map[common.Address]*updates.Request
	queue    []common.Address
}

func (f *fakeReader) Stakes() ([]*staking.StakeBalance, error) {
	return []*staking.StakeBalance{f.balances[alice], f.balances[bob]}, nil
}

func (f *fakeReader) Stake(owner common.Address) (*staking.StakeBalance, error) {
	if b, ok := f.balances[owner]; ok {
		return b, nil
	}
	return &staking.StakeBalance{Stake: &stake.Stake{Owner: owner}}, nil
}

func (f *fakeReader) StakeUpdate(owner common.Address) (*updates.Request, bool, error) {
	r, ok := f.requests[owner]
	return r, ok, nil
}

func (f *fakeReader) QueuedUpdates() ([]common.Address, error) {
	return f.queue, nil
}

func newRouter() http.Handler {
	reader := &fakeReader{
		balances: map[common.Address]*staking.StakeBalance{
			alice: {Stake: &stake.Stake{Owner: alice, Shares: usdc("100"), EpochIndex: 2}, Amount: usdc("105")},
			bob:   {Stake: &stake.Stake{Owner: bob, Shares: usdc("10"), EpochIndex: 1}, Amount: usdc("10.5")},
		},
		requests: map[common.Address]*updates.Request{
			bob: {Owner: bob, Direction: updates.Withdraw, Amount: usdc("5"), EpochIndex: 2, State: updates.Approved},
		},
		queue: []common.Address{bob},
	}
	router := mux.NewRouter()
	New(reader).Mount(router, "/stakes")
	return router
}

func get(t *testing.T, router http.Handler, path string, out any) int {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code == http.StatusOK && out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func TestStakes(t *testing.T) {
	router := newRouter()

	var list []map[string]any
	require.Equal(t, http.StatusOK, get(t, router, "/stakes", &list))
	require.Len(t, list, 2)
	assert.Equal(t, "105.000000", list[0]["amount"])
	assert.Equal(t, "10.500000", list[1]["amount"])

	var st map[string]any
	require.Equal(t, http.StatusOK, get(t, router, "/stakes/"+alice.Hex(), &st))
	assert.Equal(t, "100.000000", st["shares"])
	assert.Equal(t, float64(2), st["epochIndex"])

	require.Equal(t, http.StatusOK, get(t, router, "/stakes/"+common.HexToAddress("0x99").Hex(), &st))
	assert.Equal(t, "0.000000", st["shares"])

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/stakes/0xzz", nil))
}

func TestUpdatesAndQueue(t *testing.T) {
	router := newRouter()

	var req map[string]any
	require.Equal(t, http.StatusOK, get(t, router, "/stakes/"+bob.Hex()+"/update", &req))
	assert.Equal(t, "withdraw", req["direction"])
	assert.Equal(t, "approved", req["state"])
	assert.Equal(t, "5.000000", req["amount"])

	assert.Equal(t, http.StatusNotFound, get(t, router, "/stakes/"+alice.Hex()+"/update", nil))

	var queue []common.Address
	require.Equal(t, http.StatusOK, get(t, router, "/stakes/queue", &queue))
	assert.Equal(t, []common.Address{bob}, queue)
}
