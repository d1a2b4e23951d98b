package utils

import (
	"sync"
	"time"
)

// Metrics holds the application counters
type Metrics struct {
	mu sync.RWMutex

	// Request counters
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Billing counters
	TotalEnrollments    int64
	TotalTransfers      int64
	PaymentsGenerated   int64
	PaymentsPaid        int64
	PaymentsOverdue     int64
	PaymentsWaived      int64
	LastBillingRun      time.Time
	LastBillingRunCount int64

	// Error counters
	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics returns the metrics instance
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			ErrorTypes: make(map[string]int64),
		}
	})
	return metrics
}

// RecordRequest records request counters
func (m *Metrics) RecordRequest(duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.RequestLatency += duration
	m.AverageLatency = m.RequestLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()

	if err != nil {
		m.FailedRequests++
		m.recordErrorLocked(err)
	}
}

// RecordEnrollment records an enrollment operation
func (m *Metrics) RecordEnrollment(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch operation {
	case "enroll":
		m.TotalEnrollments++
	case "transfer":
		m.TotalTransfers++
	}
}

// RecordBillingRun records the outcome of a billing generator run
func (m *Metrics) RecordBillingRun(generated int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PaymentsGenerated += int64(generated)
	m.LastBillingRun = time.Now()
	m.LastBillingRunCount = int64(generated)
}

// RecordPaymentStatus records a payment status transition
func (m *Metrics) RecordPaymentStatus(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch status {
	case "paid":
		m.PaymentsPaid++
	case "overdue":
		m.PaymentsOverdue++
	case "waived":
		m.PaymentsWaived++
	}
}

// RecordError records an error
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordErrorLocked(err)
}

func (m *Metrics) recordErrorLocked(err error) {
	m.ErrorCount++
	m.LastErrorTime = time.Now()

	errorType := "unknown"
	if err != nil {
		errorType = err.Error()
	}
	m.ErrorTypes[errorType]++
}

// GetMetricsSnapshot returns a snapshot of the current counters
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	errorTypes := make(map[string]int64, len(m.ErrorTypes))
	for k, v := range m.ErrorTypes {
		errorTypes[k] = v
	}

	return map[string]interface{}{
		"total_requests":         m.TotalRequests,
		"failed_requests":        m.FailedRequests,
		"average_latency":        m.AverageLatency,
		"total_enrollments":      m.TotalEnrollments,
		"total_transfers":        m.TotalTransfers,
		"payments_generated":     m.PaymentsGenerated,
		"payments_paid":          m.PaymentsPaid,
		"payments_overdue":       m.PaymentsOverdue,
		"payments_waived":        m.PaymentsWaived,
		"last_billing_run":       m.LastBillingRun,
		"last_billing_run_count": m.LastBillingRunCount,
		"error_count":            m.ErrorCount,
		"last_error_time":        m.LastErrorTime,
		"error_types":            errorTypes,
	}
}

// ResetMetrics resets all counters
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests = 0
	m.FailedRequests = 0
	m.RequestLatency = 0
	m.AverageLatency = 0
	m.TotalEnrollments = 0
	m.TotalTransfers = 0
	m.PaymentsGenerated = 0
	m.PaymentsPaid = 0
	m.PaymentsOverdue = 0
	m.PaymentsWaived = 0
	m.LastBillingRunCount = 0
	m.ErrorCount = 0
	m.ErrorTypes = make(map[string]int64)
}
