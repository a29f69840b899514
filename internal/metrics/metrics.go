package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg                *prometheus.Registry
	OrdersCreated      prometheus.Counter
	OrderValue         prometheus.Histogram
	OrdersRejected     *prometheus.CounterVec
	ReservationsFailed prometheus.Counter
	ReleasesFailed     prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	created := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_orders_created_total"})
	value := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_order_value",
		Buckets: prometheus.ExponentialBuckets(5, 2, 10),
	})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "storefront_orders_rejected_total"}, []string{"reason"})
	reservations := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_reservations_failed_total"})
	releases := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_releases_failed_total"})

	r.MustRegister(
		created, value, rejected, reservations, releases,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{
		reg:                r,
		OrdersCreated:      created,
		OrderValue:         value,
		OrdersRejected:     rejected,
		ReservationsFailed: reservations,
		ReleasesFailed:     releases,
	}
}

func (r *Registry) OrderCreated(total float64) {
	r.OrdersCreated.Inc()
	r.OrderValue.Observe(total)
}

func (r *Registry) OrderRejected(reason string) { r.OrdersRejected.WithLabelValues(reason).Inc() }

func (r *Registry) ReservationFailed() { r.ReservationsFailed.Inc() }

func (r *Registry) CompensationFailed() { r.ReleasesFailed.Inc() }

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
