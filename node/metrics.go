package node

import (
	"math"
	"time"

	"github.com/NethermindEth/starknet-validator/core"
	"github.com/NethermindEth/starknet-validator/db"
	"github.com/NethermindEth/starknet-validator/db/pebble"
	"github.com/NethermindEth/starknet-validator/validator"
	"github.com/prometheus/client_golang/prometheus"
)

func makeDBMetrics(reg prometheus.Registerer) db.EventListener {
	latencyBuckets := []float64{
		25,
		50,
		75,
		100,
		250,
		500,
		1000, // 1ms
		2000,
		3000,
		4000,
		5000,
		10000,
		50000,
		500000,
		math.Inf(0),
	}
	readLatencyHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "db",
		Name:      "read_latency",
		Buckets:   latencyBuckets,
	})
	writeLatencyHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "db",
		Name:      "write_latency",
		Buckets:   latencyBuckets,
	})

	reg.MustRegister(readLatencyHistogram, writeLatencyHistogram)
	return &db.SelectiveListener{
		OnIOCb: func(write bool, duration time.Duration) {
			if write {
				writeLatencyHistogram.Observe(float64(duration.Microseconds()))
			} else {
				readLatencyHistogram.Observe(float64(duration.Microseconds()))
			}
		},
	}
}

func makeValidatorMetrics(reg prometheus.Registerer) validator.EventListener {
	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "validator",
		Name:      "validations",
	}, []string{"type", "result"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "validator",
		Name:      "skipped_validations",
	}, []string{"type"})
	latencies := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "validator",
		Name:      "validation_latency",
	}, []string{"type"})
	height := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "validator",
		Name:      "height",
	})
	live := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "validator",
		Name:      "live",
		Help:      "1 while a height is set up",
	})
	reg.MustRegister(validations, skipped, latencies, height, live)

	return &validator.SelectiveListener{
		OnSetupCb: func(h uint64) {
			height.Set(float64(h))
			live.Set(1)
		},
		OnTeardownCb: func(uint64) {
			live.Set(0)
		},
		OnValidationCb: func(txType core.TransactionType, skip bool, err error, took time.Duration) {
			result := "ok"
			if err != nil {
				result = validator.ToError(err).Kind.String()
			}
			validations.WithLabelValues(txType.String(), result).Inc()
			if skip {
				skipped.WithLabelValues(txType.String()).Inc()
			}
			latencies.WithLabelValues(txType.String()).Observe(took.Seconds())
		},
	}
}

func makeBuildInfoMetrics(reg prometheus.Registerer, version string) {
	reg.MustRegister(prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "validator",
		Name:        "info",
		Help:        "Information about the validator binary",
		ConstLabels: prometheus.Labels{"version": version},
	}))
}

func makePebbleMetrics(reg prometheus.Registerer, nodeDB *pebble.DB) {
	pebbleDB := nodeDB.Impl()

	blockCacheSize := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "pebble",
		Subsystem: "block_cache",
		Name:      "size",
	}, func() float64 {
		return float64(pebbleDB.Metrics().BlockCache.Size)
	})
	blockHitRate := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "pebble",
		Subsystem: "block_cache",
		Name:      "hit_rate",
	}, func() float64 {
		metrics := pebbleDB.Metrics()
		return hitRate(metrics.BlockCache.Hits, metrics.BlockCache.Misses)
	})
	tableCacheSize := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "pebble",
		Subsystem: "table_cache",
		Name:      "size",
	}, func() float64 {
		return float64(pebbleDB.Metrics().TableCache.Size)
	})
	tableHitRate := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "pebble",
		Subsystem: "table_cache",
		Name:      "hit_rate",
	}, func() float64 {
		metrics := pebbleDB.Metrics()
		return hitRate(metrics.TableCache.Hits, metrics.TableCache.Misses)
	})
	reg.MustRegister(blockCacheSize, blockHitRate, tableCacheSize, tableHitRate)
}

func hitRate(hits, misses int64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

func makeThrottlerMetrics(reg prometheus.Registerer, handler *ThrottledHandler) {
	jobs := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "validator",
		Subsystem: "server",
		Name:      "jobs",
	}, func() float64 {
		return float64(handler.JobsRunning())
	})
	queue := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "validator",
		Subsystem: "server",
		Name:      "queue",
	}, func() float64 {
		return float64(handler.QueueLen())
	})
	reg.MustRegister(jobs, queue)
}
