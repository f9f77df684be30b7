package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blocksIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cracker_blocks_issued_total",
		Help: "Work blocks handed out to workers",
	})

	blocksReclaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cracker_blocks_reclaimed_total",
		Help: "Work blocks returned to the pool after a worker disconnect",
	})

	workersConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cracker_workers_connected",
		Help: "Workers currently in the assignment registry",
	})

	nextOffsetGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cracker_next_offset",
		Help: "Lower bound of the first never-issued block",
	})

	foundGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cracker_match_found",
		Help: "1 once a worker has reported a match",
	})
)
