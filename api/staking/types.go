// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/bastionstake/bastion/vault"
)

// StakeDetail is the marshalable position of one account.
type StakeDetail struct {
	Principal   math.HexOrDecimal256 `json:"principal,string"`
	Reward      math.HexOrDecimal256 `json:"reward,string"`
	DepositTime uint64               `json:"depositTime"`
}

// Reward carries just the accrued reward.
type Reward struct {
	Reward math.HexOrDecimal256 `json:"reward,string"`
}

// StakeBody is the request body of stake and add-stake.
type StakeBody struct {
	Amount *math.HexOrDecimal256 `json:"amount,string"`
}

// UnstakeResult reports what an unstake released.
type UnstakeResult struct {
	Principal math.HexOrDecimal256 `json:"principal,string"`
	Reward    math.HexOrDecimal256 `json:"reward,string"`
	Total     math.HexOrDecimal256 `json:"total,string"`
}

// LedgerSummary aggregates the whole ledger.
type LedgerSummary struct {
	TotalStaked      math.HexOrDecimal256 `json:"totalStaked,string"`
	Accounts         uint64               `json:"accounts"`
	Custody          math.HexOrDecimal256 `json:"custody,string"`
	Paused           bool                 `json:"paused"`
	MinStakeDuration uint64               `json:"minStakeDuration"`
}

func toHexOrDecimal(v *big.Int) math.HexOrDecimal256 {
	if v == nil {
		return math.HexOrDecimal256{}
	}
	return math.HexOrDecimal256(*v)
}

func convertStakeInfo(info *vault.StakeInfo) *StakeDetail {
	return &StakeDetail{
		Principal:   toHexOrDecimal(info.Principal),
		Reward:      toHexOrDecimal(info.Reward),
		DepositTime: info.DepositTime,
	}
}

func convertPayout(p *vault.Payout) *UnstakeResult {
	return &UnstakeResult{
		Principal: toHexOrDecimal(p.Principal),
		Reward:    toHexOrDecimal(p.Reward),
		Total:     toHexOrDecimal(p.Total()),
	}
}

func convertSummary(s *vault.Summary) *LedgerSummary {
	return &LedgerSummary{
		TotalStaked:      toHexOrDecimal(s.TotalStaked),
		Accounts:         s.Accounts,
		Custody:          toHexOrDecimal(s.Custody),
		Paused:           s.Paused,
		MinStakeDuration: s.MinStakeDuration,
	}
}
