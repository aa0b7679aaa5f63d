// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/bastionstake/bastion/api/utils"
	"github.com/bastionstake/bastion/bastion"
	"github.com/bastionstake/bastion/vault"
)

// Staking exposes the per-account ledger operations over http.
// The {address} path segment names the account acting on its own
// position.
type Staking struct {
	vault *vault.Vault
	now   func() uint64
}

// New creates the staking endpoint. A nil now falls back to the wall
// clock; tests inject a fixed one.
func New(v *vault.Vault, now func() uint64) *Staking {
	if now == nil {
		now = func() uint64 { return uint64(time.Now().Unix()) }
	}
	return &Staking{v, now}
}

func (s *Staking) handleGetSummary(w http.ResponseWriter, _ *http.Request) error {
	summary, err := s.vault.Summary()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertSummary(summary))
}

func (s *Staking) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	addr, err := s.parseAddress(req)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	info, err := s.vault.StakeOf(addr, s.now())
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertStakeInfo(info))
}

func (s *Staking) handleGetReward(w http.ResponseWriter, req *http.Request) error {
	addr, err := s.parseAddress(req)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	reward, err := s.vault.RewardOf(addr, s.now())
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Reward{Reward: toHexOrDecimal(reward)})
}

func (s *Staking) handleStake(w http.ResponseWriter, req *http.Request) error {
	return s.deposit(w, req, s.vault.Stake)
}

func (s *Staking) handleAddStake(w http.ResponseWriter, req *http.Request) error {
	return s.deposit(w, req, s.vault.AddStake)
}

// deposit is the shared shape of stake and add-stake: parse, mutate,
// respond with the resulting position.
func (s *Staking) deposit(w http.ResponseWriter, req *http.Request, op func(bastion.Address, *big.Int, uint64) error) error {
	addr, err := s.parseAddress(req)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	var body StakeBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("amount: missing"))
	}
	now := s.now()
	if err := op(addr, (*big.Int)(body.Amount), now); err != nil {
		return err
	}
	info, err := s.vault.StakeOf(addr, now)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertStakeInfo(info))
}

func (s *Staking) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	addr, err := s.parseAddress(req)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	payout, err := s.vault.Unstake(addr, s.now())
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertPayout(payout))
}

func (s *Staking) parseAddress(req *http.Request) (bastion.Address, error) {
	return bastion.ParseAddress(mux.Vars(req)["address"])
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /stakes").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetSummary))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /stakes/{address}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetStake))
	sub.Path("/{address}/reward").
		Methods(http.MethodGet).
		Name("GET /stakes/{address}/reward").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetReward))
	sub.Path("/{address}").
		Methods(http.MethodPost).
		Name("POST /stakes/{address}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleStake))
	sub.Path("/{address}/add").
		Methods(http.MethodPost).
		Name("POST /stakes/{address}/add").
		HandlerFunc(utils.WrapHandlerFunc(s.handleAddStake))
	sub.Path("/{address}/unstake").
		Methods(http.MethodPost).
		Name("POST /stakes/{address}/unstake").
		HandlerFunc(utils.WrapHandlerFunc(s.handleUnstake))
}
