package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const promNamespace = "dexlyn_cycle_bot"

type promCounter struct {
	counter prometheus.Counter
}

func (p promCounter) Inc() {
	p.counter.Inc()
}

type Prometheus struct {
	Metrics *Metrics

	registry *prometheus.Registry
}

func NewPrometheus() *Prometheus {
	registry := prometheus.NewRegistry()
	ordersSubmitted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "orders_submitted_total",
		Help:      "Total number of order transactions submitted on chain.",
	})
	ordersFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "orders_failed_total",
		Help:      "Total number of order submissions that failed after retries.",
	})
	compileFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "compile_failed_total",
		Help:      "Total number of order intents rejected during compilation.",
	})
	cyclesCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "cycles_completed_total",
		Help:      "Total number of strategy cycles completed.",
	})
	txnRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "txn_retries_total",
		Help:      "Total number of transaction submission retries.",
	})

	registry.MustRegister(ordersSubmitted, ordersFailed, compileFailed, cyclesCompleted, txnRetries)

	m := &Metrics{
		OrdersSubmitted: promCounter{ordersSubmitted},
		OrdersFailed:    promCounter{ordersFailed},
		CompileFailed:   promCounter{compileFailed},
		CyclesCompleted: promCounter{cyclesCompleted},
		TxnRetries:      promCounter{txnRetries},
	}

	return &Prometheus{
		Metrics:  m,
		registry: registry,
	}
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
