// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package system

import (
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/bastionstake/bastion/api/utils"
	"github.com/bastionstake/bastion/vault"
)

// System exposes the administrator-controlled config over http. The
// caller identity travels in the request body; the vault, not this
// layer, decides whether it may act.
type System struct {
	vault *vault.Vault
	now   func() uint64
}

// New creates the system endpoint. A nil now falls back to the wall
// clock; tests inject a fixed one.
func New(v *vault.Vault, now func() uint64) *System {
	if now == nil {
		now = func() uint64 { return uint64(time.Now().Unix()) }
	}
	return &System{v, now}
}

func (s *System) handleGetConfig(w http.ResponseWriter, _ *http.Request) error {
	cfg, err := s.vault.Config()
	if err != nil {
		return err
	}
	minStake := s.vault.MinStake()
	return utils.WriteJSON(w, &Detail{
		Admin:            cfg.Admin,
		Paused:           cfg.Paused,
		MinStakeDuration: cfg.MinStakeDuration,
		MinStake:         math.HexOrDecimal256(*minStake),
	})
}

func (s *System) handleTogglePause(w http.ResponseWriter, req *http.Request) error {
	var body PauseBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	paused, err := s.vault.TogglePause(body.Caller, s.now())
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &PauseResult{Paused: paused})
}

func (s *System) handleSetAdmin(w http.ResponseWriter, req *http.Request) error {
	var body AdminBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.vault.SetAdmin(body.Caller, body.Admin, s.now()); err != nil {
		return err
	}
	return s.handleGetConfig(w, req)
}

func (s *System) handleSetMinStakeDuration(w http.ResponseWriter, req *http.Request) error {
	var body DurationBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.vault.SetMinStakeDuration(body.Caller, body.Duration, s.now()); err != nil {
		return err
	}
	return s.handleGetConfig(w, req)
}

func (s *System) handleDepositReserve(w http.ResponseWriter, req *http.Request) error {
	var body ReserveBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("amount: missing"))
	}
	if err := s.vault.DepositReserve(body.Caller, (*big.Int)(body.Amount), s.now()); err != nil {
		return err
	}
	custody, err := s.vault.Custody()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &ReserveResult{Custody: math.HexOrDecimal256(*custody)})
}

func (s *System) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /system").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetConfig))
	sub.Path("/pause").
		Methods(http.MethodPost).
		Name("POST /system/pause").
		HandlerFunc(utils.WrapHandlerFunc(s.handleTogglePause))
	sub.Path("/administrator").
		Methods(http.MethodPost).
		Name("POST /system/administrator").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSetAdmin))
	sub.Path("/min-stake-duration").
		Methods(http.MethodPost).
		Name("POST /system/min-stake-duration").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSetMinStakeDuration))
	sub.Path("/reserve").
		Methods(http.MethodPost).
		Name("POST /system/reserve").
		HandlerFunc(utils.WrapHandlerFunc(s.handleDepositReserve))
}
