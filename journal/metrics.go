// Copyright (c) 2025 The Bastion developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package journal

import (
	"strings"

	"github.com/bastionstake/bastion/metrics"
)

var (
	metricAppendCount          = metrics.LazyLoadCounterVec("journal_append_count", []string{"kind"})
	metricCriteriaLengthBucket = metrics.LazyLoadHistogram("journal_criteria_length_bucket", []int64{0, 2, 5, 10, 25, 100, 1000})
	metricQueryParameters      = metrics.LazyLoadCounterVec("journal_query_parameters", []string{"parameters"})
	metricQueryOrderCounter    = metrics.LazyLoadCounterVec("journal_query_order", []string{"order"})
	metricOffsetBucket         = metrics.LazyLoadHistogram("journal_query_offset_bucket", []int64{
		0, 1_000, 5_000, 10_000, 25_000, 50_000, 100_000, 250_000, 500_000, 1_000_000,
	})
	metricLimitBucket = metrics.LazyLoadHistogram("journal_query_limit_bucket", []int64{
		0, 5, 10, 25, 50, 100, 250, 500, 1000,
	})
)

func metricsHandleFilter(filter *Filter) {
	if metrics.NoOp() {
		return
	}

	metricCriteriaLengthBucket().Observe(int64(len(filter.CriteriaSet)))

	for _, c := range filter.CriteriaSet {
		paramsUsed := make([]string, 0)
		if c.Account != nil {
			paramsUsed = append(paramsUsed, "account")
		}
		if c.Kind != nil {
			paramsUsed = append(paramsUsed, "kind")
		}
		metricQueryParameters().AddWithLabel(1, map[string]string{"parameters": strings.Join(paramsUsed, ",")})
	}

	if filter.Order == DESC {
		metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": "desc"})
	} else {
		metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": "asc"})
	}

	if filter.Options != nil {
		offset := filter.Options.Offset
		if offset > 1_000_000 {
			offset = 1_000_001
		}
		metricOffsetBucket().Observe(int64(offset))

		limit := filter.Options.Limit
		if limit > 1000 {
			limit = 1001
		}
		metricLimitBucket().Observe(int64(limit))
	}
}
