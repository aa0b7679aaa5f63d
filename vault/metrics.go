// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"github.com/bastionstake/bastion/metrics"
	"github.com/bastionstake/bastion/vault/faults"
)

var (
	metricOperationCount = metrics.LazyLoadCounterVec("vault_operation_count", []string{"op", "result"})
	metricAccountsGauge  = metrics.LazyLoadGauge("vault_accounts")
	metricStakedGauge    = metrics.LazyLoadGauge("vault_total_staked") // whole units
)

func countOperation(op string, err error) {
	result := "ok"
	if err != nil {
		if kind, ok := faults.KindOf(err); ok {
			result = kind.String()
		} else {
			result = "error"
		}
	}
	metricOperationCount().AddWithLabel(1, map[string]string{"op": op, "result": result})
}
