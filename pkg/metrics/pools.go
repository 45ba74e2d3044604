package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Connection pool gauges, fed by periodic pollers in the app layer.
var (
	DbPoolOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gophermart_db_pool_open",
		Help: "Current open DB connections",
	})
	DbPoolIdle         = promauto.NewGauge(prometheus.GaugeOpts{Name: "gophermart_db_pool_idle"})
	DbPoolInuse        = promauto.NewGauge(prometheus.GaugeOpts{Name: "gophermart_db_pool_inuse"})
	DbPoolWaitCount    = promauto.NewCounter(prometheus.CounterOpts{Name: "gophermart_db_pool_wait_count"})
	DbPoolWaitDuration = promauto.NewCounter(prometheus.CounterOpts{Name: "gophermart_db_pool_wait_seconds"})

	RedisPoolOpen      = promauto.NewGauge(prometheus.GaugeOpts{Name: "gophermart_redis_pool_open"})
	RedisPoolIdle      = promauto.NewGauge(prometheus.GaugeOpts{Name: "gophermart_redis_pool_idle"})
	RedisPoolStale     = promauto.NewGauge(prometheus.GaugeOpts{Name: "gophermart_redis_pool_stale"})
	RedisPoolWaitCount = promauto.NewGauge(prometheus.GaugeOpts{Name: "gophermart_redis_pool_wait_count"})
)
