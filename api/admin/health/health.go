// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"context"

	"github.com/bastionstake/bastion/journal"
	"github.com/bastionstake/bastion/vault"
)

type Status struct {
	Healthy           bool   `json:"healthy"`
	LedgerAccessible  bool   `json:"ledgerAccessible"`
	JournalAccessible bool   `json:"journalAccessible"`
	JournalHead       uint64 `json:"journalHead"`
}

// Health probes the two stores the service cannot run without. Checks
// are performed on demand so a dead store surfaces on the next request.
type Health struct {
	vault   *vault.Vault
	journal *journal.Journal
}

func New(vlt *vault.Vault, jrnl *journal.Journal) *Health {
	return &Health{
		vault:   vlt,
		journal: jrnl,
	}
}

func (h *Health) Status(ctx context.Context) (*Status, error) {
	_, serr := h.vault.Summary()

	_, jerr := h.journal.Filter(ctx, &journal.Filter{
		Options: &journal.Options{Limit: 1},
	})

	status := &Status{
		LedgerAccessible:  serr == nil,
		JournalAccessible: jerr == nil,
		JournalHead:       h.journal.MaxSequence(),
	}
	status.Healthy = status.LedgerAccessible && status.JournalAccessible
	return status, nil
}
