package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CheckoutTotal counts checkout attempts by terminal outcome.
	CheckoutTotal *prometheus.CounterVec
	// CheckoutDuration records end-to-end checkout latency in milliseconds.
	CheckoutDuration prometheus.Histogram
	// InventoryCommitFailures counts per-line stock decrements that failed to persist.
	InventoryCommitFailures prometheus.Counter
	// LowStockProducts tracks how many products the worker found at or below the threshold.
	LowStockProducts prometheus.Gauge
)

// MustRegisterDomainMetrics initialises and registers checkout-domain Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Count of checkout attempts by outcome.",
		}, []string{"result"})
		CheckoutDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_duration_ms",
			Help:      "End-to-end checkout latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		})
		InventoryCommitFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_commit_failures_total",
			Help:      "Number of stock decrements that failed during receipt commit.",
		})
		LowStockProducts = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "low_stock_products",
			Help:      "Products at or below the configured low-stock threshold.",
		})

		mustRegisterCollector(reg, CheckoutTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckoutTotal = v
			}
		})
		mustRegisterCollector(reg, CheckoutDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				CheckoutDuration = v
			}
		})
		mustRegisterCollector(reg, InventoryCommitFailures, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				InventoryCommitFailures = v
			}
		})
		mustRegisterCollector(reg, LowStockProducts, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Gauge); ok {
				LowStockProducts = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register metric: %w", err))
	}
}
