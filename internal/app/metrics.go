package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/fabio1974/courier-offer-engine/internal/metrics"
)

// metricsSet bundles the engine instruments so dig can hand each consumer
// the counter it needs without named values.
type metricsSet struct {
	registry       *prometheus.Registry
	offerPolls     *prometheus.CounterVec
	cacheReads     *prometheus.CounterVec
	deadLetters    prometheus.Counter
	faults         prometheus.Counter
	gatewayRetries prometheus.Counter
}

func newMetricsSet() (*metricsSet, error) {
	set := &metricsSet{
		registry:       prometheus.NewRegistry(),
		offerPolls:     metrics.NewOfferPollsTotal(),
		cacheReads:     metrics.NewCacheReadsTotal(),
		deadLetters:    metrics.NewRejectNotifyDeadLettersTotal(),
		faults:         metrics.NewConsistencyFaultsTotal(),
		gatewayRetries: metrics.NewGatewayRetriesTotal(),
	}

	cs := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		set.offerPolls,
		set.cacheReads,
		set.deadLetters,
		set.faults,
		set.gatewayRetries,
	}
	for _, c := range cs {
		if err := set.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return set, nil
}
