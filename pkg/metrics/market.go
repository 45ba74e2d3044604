package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ListingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gophermart",
			Name:      "listings_total",
			Help:      "Total number of successful list operations.",
		},
		[]string{"collection"},
	)

	SettlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gophermart",
			Name:      "settlements_total",
			Help:      "Total number of successful buy settlements.",
		},
		[]string{"collection"},
	)

	DelistsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gophermart",
			Name:      "delists_total",
			Help:      "Total number of successful delist operations.",
		},
		[]string{"collection"},
	)

	RejectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gophermart",
			Name:      "op_rejects_total",
			Help:      "Total number of rejected operations.",
		},
		[]string{"op", "reason"},
	)

	ActiveListings = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gophermart",
			Name:      "active_listings",
			Help:      "Listings currently escrowed across all registries.",
		},
	)
)

func MustRegister() {
	prometheus.MustRegister(ListingsTotal, SettlementsTotal, DelistsTotal, RejectsTotal, ActiveListings)
}
