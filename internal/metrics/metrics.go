package metrics

type Counter interface {
	Inc()
}

// Metrics holds the counters the runner and executor bump. Callers never
// check for nil counters, so every field must be populated.
type Metrics struct {
	OrdersSubmitted Counter
	OrdersFailed    Counter
	CompileFailed   Counter
	CyclesCompleted Counter
	TxnRetries      Counter
}

type noopCounter struct{}

func (noopCounter) Inc() {}

func NewNoop() *Metrics {
	n := noopCounter{}
	return &Metrics{
		OrdersSubmitted: n,
		OrdersFailed:    n,
		CompileFailed:   n,
		CyclesCompleted: n,
		TxnRetries:      n,
	}
}
