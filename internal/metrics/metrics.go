// Package metrics exposes Prometheus counters for stock movements.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stockMovements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inventory",
		Name:      "stock_movements_total",
		Help:      "Committed stock movements by kind.",
	}, []string{"kind"})

	stockUnits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inventory",
		Name:      "stock_units_total",
		Help:      "Units moved by committed stock movements, by kind.",
	}, []string{"kind"})

	stockRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inventory",
		Name:      "stock_rejections_total",
		Help:      "Stock movements rejected before commit, by reason.",
	}, []string{"reason"})
)

// ObserveMovement counts one committed movement of quantity units.
func ObserveMovement(kind string, quantity int) {
	stockMovements.WithLabelValues(kind).Inc()
	stockUnits.WithLabelValues(kind).Add(float64(quantity))
}

// ObserveRejection counts a movement that was refused.
func ObserveRejection(reason string) {
	stockRejections.WithLabelValues(reason).Inc()
}
