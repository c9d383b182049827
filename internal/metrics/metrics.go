package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewOfferPollsTotal returns a counter of discovery polls partitioned by outcome
// (presented, busy, empty, error)
func NewOfferPollsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "offer_polls_total",
		Help: "Total number of offer discovery polls by outcome",
	}, []string{"outcome"})
}

// NewCacheReadsTotal returns a counter of delivery cache reads partitioned by result
// (hit, miss)
func NewCacheReadsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_cache_reads_total",
		Help: "Total number of delivery cache reads by result",
	}, []string{"result"})
}

// NewRejectNotifyDeadLettersTotal returns a counter of best-effort remote reject
// notifications that failed and were dead-lettered to the log
func NewRejectNotifyDeadLettersTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reject_notify_dead_letters_total",
		Help: "Total number of dead-lettered remote reject notifications",
	})
}

// NewConsistencyFaultsTotal returns a counter of guard consistency faults
// (more than one active delivery observed for a courier)
func NewConsistencyFaultsTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "active_delivery_consistency_faults_total",
		Help: "Total number of times the guard observed more than one active delivery",
	})
}

// NewGatewayRetriesTotal returns a counter of retry attempts performed by gateways
func NewGatewayRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_retries_total",
		Help: "Total number of retry attempts performed by gateways",
	})
}
