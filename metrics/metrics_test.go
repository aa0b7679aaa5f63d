// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func TestNoopMetricsByDefault(t *testing.T) {
	metrics = defaultNoopMetrics() // make sure it starts in the default state

	for _, a := range []any{
		Gauge("noopGauge"),
		GaugeVec("noopGaugeVec", nil),
		Counter("noopCounter"),
		CounterVec("noopCounterVec", nil),
		Histogram("noopHist", nil),
		HistogramVec("noopHistVec", nil, nil),
	} {
		require.IsType(t, &noopMeter, a)
	}
	require.Nil(t, HTTPHandler())
	require.True(t, NoOp())
}

func TestLazyLoading(t *testing.T) {
	metrics = defaultNoopMetrics()

	lazyGauge := LazyLoadGauge("lazyGauge")
	lazyGaugeVec := LazyLoadGaugeVec("lazyGaugeVec", nil)
	lazyCounter := LazyLoadCounter("lazyCounter")
	lazyCounterVec := LazyLoadCounterVec("lazyCounterVec", nil)
	lazyHistogram := LazyLoadHistogram("lazyHistogram", nil)
	lazyHistogramVec := LazyLoadHistogramVec("lazyHistogramVec", nil, nil)

	// after initialization, lazily created metrics become of the prometheus type
	InitializePrometheusMetrics()
	require.False(t, NoOp())

	require.IsType(t, &promGaugeMeter{}, lazyGauge())
	require.IsType(t, &promGaugeVecMeter{}, lazyGaugeVec())
	require.IsType(t, &promCountMeter{}, lazyCounter())
	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promHistogramMeter{}, lazyHistogram())
	require.IsType(t, &promHistogramVecMeter{}, lazyHistogramVec())
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	counter := Counter("count1")
	countVec := CounterVec("countVec1", []string{"parity"})
	hist := Histogram("hist1", Bucket10s)
	gauge := Gauge("gauge1")
	gaugeVec := GaugeVec("gaugeVec1", []string{"parity"})

	counter.Add(1)

	histTotal := 0
	for i := range 10 {
		hist.Observe(int64(i))
		histTotal += i
	}

	vecTotal := 0
	for i := range 10 {
		labels := map[string]string{"parity": strconv.Itoa(i % 2)}
		countVec.AddWithLabel(int64(i), labels)
		gaugeVec.AddWithLabel(int64(i), labels)
		gauge.Add(int64(i))
		vecTotal += i
	}

	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer}
	metricFamilies, err := gatherers.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily)
	for _, mf := range metricFamilies {
		byName[mf.GetName()] = mf
	}

	require.Equal(t, float64(1), byName["bastion_metrics_count1"].Metric[0].GetCounter().GetValue())
	require.Equal(t, float64(histTotal), byName["bastion_metrics_hist1"].Metric[0].GetHistogram().GetSampleSum())

	sumCountVec := byName["bastion_metrics_countVec1"].Metric[0].GetCounter().GetValue() +
		byName["bastion_metrics_countVec1"].Metric[1].GetCounter().GetValue()
	require.Equal(t, float64(vecTotal), sumCountVec)

	require.Equal(t, float64(vecTotal), byName["bastion_metrics_gauge1"].Metric[0].GetGauge().GetValue())
	sumGaugeVec := byName["bastion_metrics_gaugeVec1"].Metric[0].GetGauge().GetValue() +
		byName["bastion_metrics_gaugeVec1"].Metric[1].GetGauge().GetValue()
	require.Equal(t, float64(vecTotal), sumGaugeVec)
}
