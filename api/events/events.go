// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/bastionstake/bastion/api/utils"
	"github.com/bastionstake/bastion/journal"
	"github.com/bastionstake/bastion/vault"
)

// Events serves filtered queries over the journaled ledger history.
type Events struct {
	journal *journal.Journal
	limit   uint64
}

// New creates the events endpoint. limit caps how many records one
// query may return.
func New(j *journal.Journal, limit uint64) *Events {
	return &Events{j, limit}
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var filter RecordFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}

	query, err := e.convertFilter(&filter)
	if err != nil {
		return err
	}
	defaulted := query.Options == nil
	if defaulted {
		// query one more than the cap to detect truncation
		query.Options = &journal.Options{Offset: 0, Limit: e.limit + 1}
	}

	records, err := e.journal.Filter(req.Context(), query)
	if err != nil {
		return err
	}
	if defaulted && len(records) > int(e.limit) {
		return utils.Forbidden(errors.Errorf("the number of filtered records exceeds the maximum allowed value of %d, please use pagination", e.limit))
	}

	converted := make([]*FilteredRecord, len(records))
	for i, rec := range records {
		converted[i] = convertRecord(rec)
	}
	return utils.WriteJSON(w, converted)
}

// convertFilter validates the wire filter and maps it onto the journal
// query. Validation failures come back already wrapped with a status.
func (e *Events) convertFilter(filter *RecordFilter) (*journal.Filter, error) {
	switch filter.Order {
	case "", journal.ASC, journal.DESC:
	default:
		return nil, utils.BadRequest(errors.New(`order: invalid value, must be "asc" or "desc"`))
	}

	query := &journal.Filter{Order: filter.Order}

	if filter.Options != nil {
		if filter.Options.Offset > math.MaxInt64 {
			return nil, utils.BadRequest(errors.New("options.offset: exceeds the maximum allowed value"))
		}
		limit := e.limit
		if filter.Options.Limit != nil {
			limit = *filter.Options.Limit
		}
		if limit > e.limit {
			return nil, utils.Forbidden(errors.Errorf("options.limit: exceeds the maximum allowed value of %d", e.limit))
		}
		query.Options = &journal.Options{Offset: filter.Options.Offset, Limit: limit}
	}

	if filter.Range != nil {
		r, err := convertRange(filter.Range)
		if err != nil {
			return nil, utils.BadRequest(err)
		}
		query.Range = r
	}

	for _, c := range filter.CriteriaSet {
		if c == nil {
			return nil, utils.BadRequest(errors.New("criteriaSet: null criteria not allowed"))
		}
		criteria := &journal.Criteria{Account: c.Account}
		if c.Kind != nil {
			kind, ok := vault.ParseEventKind(*c.Kind)
			if !ok {
				return nil, utils.BadRequest(errors.Errorf("criteriaSet: unknown kind %q", *c.Kind))
			}
			criteria.Kind = &kind
		}
		query.CriteriaSet = append(query.CriteriaSet, criteria)
	}

	return query, nil
}

func convertRange(r *Range) (*journal.Range, error) {
	switch r.Unit {
	case "", journal.Sequence, journal.Time:
	default:
		return nil, errors.Errorf(`range.unit: invalid value, must be "%v" or "%v"`, journal.Sequence, journal.Time)
	}
	unit := r.Unit
	if unit == "" {
		unit = journal.Sequence
	}

	// bounds beyond MaxInt64 cannot be bound as sql arguments; from
	// that high nothing can match anyway, and a higher to is no bound
	from := uint64(0)
	if r.From != nil {
		if *r.From > math.MaxInt64 {
			return nil, errors.New("range.from: exceeds the maximum allowed value")
		}
		from = *r.From
	}
	to := uint64(math.MaxInt64)
	if r.To != nil && *r.To < to {
		to = *r.To
	}
	if from > to {
		return nil, errors.New("range.from: must not be larger than range.to")
	}

	return &journal.Range{Unit: unit, From: from, To: to}, nil
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /events").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
