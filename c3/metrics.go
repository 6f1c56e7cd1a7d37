package c3

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	allocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "c3_allocations_total",
		Help: "Allocation attempts by result (ok, rejected).",
	}, []string{"result"})

	freesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "c3_frees_total",
		Help: "Successful frees.",
	})

	storesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "c3_stores_total",
		Help: "Store calls that wrote at least one byte.",
	})

	readsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "c3_reads_total",
		Help: "Read calls by result (ok, violation).",
	}, []string{"result"})

	violationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "c3_violations_total",
		Help: "Faulting bytes observed by reads, by reason.",
	}, []string{"reason"})

	monitorRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "c3_monitor_records",
		Help: "Records held by the most recently updated monitor.",
	})

	monitorCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "c3_monitor_collisions_total",
		Help: "Registrations that collided with a live record.",
	})
)
