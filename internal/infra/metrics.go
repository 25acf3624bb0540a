package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MovimientosRegistradosTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movimientos_registrados_total",
		Help: "Total de movimientos de stock registrados",
	}, []string{"tipo"})

	MovimientosRechazadosTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movimientos_rechazados_total",
		Help: "Total de movimientos de stock rechazados",
	}, []string{"reason"})

	StockQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stock_query_latency_seconds",
		Help:    "Latencia de las consultas de stock derivado",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	AlertasStockBajoTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_alertas_bajo_minimo_total",
		Help: "Total de alertas de stock bajo emitidas",
	})

	JobsProcesadosTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_jobs_total",
		Help: "Jobs procesados por el worker pool",
	}, []string{"type", "result"})

	EventosPublicadosTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "broker_events_total",
		Help: "Eventos enviados al broker",
	}, []string{"event", "result"})

	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Estado del circuit breaker (0 closed, 1 open, 2 half-open)",
	}, []string{"name"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
