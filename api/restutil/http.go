// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package restutil holds the helpers shared by the HTTP handlers.
package restutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	pkgerrors "github.com/pkg/errors"

	"github.com/nezha-labs/staking/staking/reverts"
)

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

// HTTPError create an error with http status code.
func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

// BadRequest convenience method to create http bad request error.
func BadRequest(cause error) error {
	return HTTPError(cause, http.StatusBadRequest)
}

// NotFound convenience method to create http not found error.
func NotFound(cause error) error {
	return HTTPError(cause, http.StatusNotFound)
}

// HandlerFunc like http.HandlerFunc, but it returns an error.
// An httpError answers with its status. A revert naming a missing record
// answers 404, any other error 500.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc convert HandlerFunc to http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		var he *httpError
		if errors.As(err, &he) {
			http.Error(w, he.cause.Error(), he.status)
			return
		}
		var re *reverts.ErrRevert
		if errors.As(err, &re) && re.Kind() == reverts.KindInvalidAccount {
			http.Error(w, re.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// content types
const (
	JSONContentType = "application/json; charset=utf-8"
)

// ParseJSON parse a JSON object using strict mode.
func ParseJSON(r io.Reader, v any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON response an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// M shortcut for type map[string]any.
type M map[string]any

// Uint64Var parses the route variable name as an unsigned integer.
func Uint64Var(r *http.Request, name string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(mux.Vars(r)[name], 10, bits)
	if err != nil {
		return 0, BadRequest(pkgerrors.WithMessage(err, name))
	}
	return v, nil
}

// AddressVar parses the route variable name as an address.
func AddressVar(r *http.Request, name string) (common.Address, error) {
	s := mux.Vars(r)[name]
	if !common.IsHexAddress(s) {
		return common.Address{}, BadRequest(pkgerrors.Errorf("%s: invalid address %q", name, s))
	}
	return common.HexToAddress(s), nil
}
