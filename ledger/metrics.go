package ledger

import (
	"sync"

	"github.com/iov-one/zkescrow/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Counters are the prometheus collectors of a ledger.
type Counters struct {
	instructions *prometheus.CounterVec
	transactions *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	counters    *Counters
)

// Metrics returns the collectors tracking executed instructions and
// transactions. They are registered with the default prometheus registry.
func Metrics() *Counters {
	metricsOnce.Do(func() {
		counters = &Counters{
			instructions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "zkescrow",
				Name:      "instructions_total",
				Help:      "Count of executed program instructions, including cross program invocations.",
			}, []string{"program", "result"}),
			transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "zkescrow",
				Name:      "transactions_total",
				Help:      "Count of submitted transactions by result.",
			}, []string{"result"}),
		}
		prometheus.MustRegister(counters.instructions, counters.transactions)
	})
	return counters
}

// InstructionCounter returns the counter of given program and result.
func (m *Counters) InstructionCounter(program, result string) prometheus.Counter {
	return m.instructions.WithLabelValues(program, result)
}

// TransactionCounter returns the counter of given result.
func (m *Counters) TransactionCounter(result string) prometheus.Counter {
	return m.transactions.WithLabelValues(result)
}

func (m *Counters) recordInstruction(program string, err error) {
	if m == nil {
		return
	}
	m.instructions.WithLabelValues(program, resultLabel(err)).Inc()
}

func (m *Counters) recordTransaction(err error) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(resultLabel(err)).Inc()
}

// resultLabel tells apart failures caused by a registered error from those
// that are not classified.
func resultLabel(err error) string {
	switch errors.Code(err) {
	case errors.SuccessCode:
		return "ok"
	case errors.InternalCode:
		return "internal"
	default:
		return "error"
	}
}
