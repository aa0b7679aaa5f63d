// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/bastionstake/bastion/vault/faults"
)

func serve(err error) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h := WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error {
		return err
	})
	h(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	return rr
}

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"no error", nil, http.StatusOK, ""},
		{"bad request", BadRequest(errors.New("must not be empty")), http.StatusBadRequest, "must not be empty\n"},
		{"forbidden", Forbidden(errors.New("not allowed")), http.StatusForbidden, "not allowed\n"},
		{"explicit status", HTTPError(errors.New("gone"), http.StatusGone), http.StatusGone, "gone\n"},
		{"status only", HTTPError(nil, http.StatusTeapot), http.StatusTeapot, ""},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "boom\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(tt.err)
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantBody, rr.Body.String())
		})
	}
}

func TestWrapHandlerFuncFaults(t *testing.T) {
	tests := []struct {
		kind       faults.Kind
		wantStatus int
	}{
		{faults.InsufficientAmount, http.StatusBadRequest},
		{faults.InvalidIdentity, http.StatusBadRequest},
		{faults.BelowFloor, http.StatusBadRequest},
		{faults.Unauthorized, http.StatusForbidden},
		{faults.SystemPaused, http.StatusForbidden},
		{faults.NoStake, http.StatusForbidden},
		{faults.DurationTooShort, http.StatusForbidden},
		{faults.InsufficientReserve, http.StatusForbidden},
		{faults.Reentrant, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			rr := serve(faults.New(tt.kind, "refused"))
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestParseJSON(t *testing.T) {
	var v struct {
		Amount string `json:"amount"`
	}
	assert.Nil(t, ParseJSON(strings.NewReader(`{"amount": "100"}`), &v))
	assert.Equal(t, "100", v.Amount)

	// unknown fields are rejected
	assert.Error(t, ParseJSON(strings.NewReader(`{"amount": "100", "extra": 1}`), &v))
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	assert.Nil(t, WriteJSON(rr, M{"ok": true}))
	assert.Equal(t, JSONContentType, rr.Header().Get("Content-Type"))
	assert.Equal(t, "{\"ok\":true}\n", rr.Body.String())
}
