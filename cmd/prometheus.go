package main

import (
	"tradeauto/internal/usecasees/structs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Pipeline map[structs.MetricConst]prometheus.Counter
}

func (a *App) InitMetrics() {
	metrics := Metrics{Pipeline: map[structs.MetricConst]prometheus.Counter{}}

	for _, name := range []structs.MetricConst{
		structs.MetricTradeExecuted,
		structs.MetricTradeSimulated,
		structs.MetricTradeSkipped,
		structs.MetricTradeFailed,
		structs.MetricPublishPrimary,
		structs.MetricPublishFallback,
		structs.MetricPublishDirect,
		structs.MetricPublishLost,
	} {
		metrics.Pipeline[name] = promauto.NewCounter(prometheus.CounterOpts{
			Name: name.ToString(),
			Help: name.ToString(),
		})
	}

	a.Metrics = &metrics
}
