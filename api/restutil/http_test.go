// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/nezha-labs/staking/staking/reverts"
)

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"ok", nil, http.StatusOK},
		{"bad request", BadRequest(errors.New("bad")), http.StatusBadRequest},
		{"missing record", reverts.InvalidAccount(reverts.RecordEpoch), http.StatusNotFound},
		{"other revert", reverts.New(reverts.NumericalOverflow), http.StatusInternalServerError},
		{"internal", errors.New("disk"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WrapHandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
				if tt.err != nil {
					return tt.err
				}
				return WriteJSON(w, M{"ok": true})
			})(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.status, rec.Code)
			if tt.err == nil {
				assert.Equal(t, JSONContentType, rec.Header().Get("Content-Type"))
				assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
			}
		})
	}
}

func TestRouteVars(t *testing.T) {
	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{
		"index": "12",
		"page":  "x",
		"owner": "0x00000000000000000000000000000000000000aa",
		"bad":   "0x1",
	})

	v, err := Uint64Var(req, "index", 64)
	assert.NoError(t, err)
	assert.Equal(t, uint64(12), v)

	_, err = Uint64Var(req, "page", 32)
	var he *httpError
	assert.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.status)

	a, err := AddressVar(req, "owner")
	assert.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xaa"), a)

	_, err = AddressVar(req, "bad")
	assert.Error(t, err)
}
