package engine

import (
	"sync"
	"time"
)

// MetricsTracker keeps rolling timings that the atomic counters in
// domain.ExecutionMetrics cannot express.
type MetricsTracker struct {
	panicMetrics   PanicMetricsData
	attemptMetrics AttemptMetricsData
	mu             sync.RWMutex
}

type PanicMetricsData struct {
	TotalPanics    int64
	PanicsLastHour []time.Time
	RecoveryTimes  []time.Duration
	LastPanicAt    *time.Time
}

type AttemptMetricsData struct {
	Attempts       int64
	FailedAttempts int64
	Timeouts       int64
	AttemptTimes   []time.Duration
}

type PanicMetrics struct {
	TotalPanics         int64         `json:"total_panics"`
	PanicsLastHour      int64         `json:"panics_last_hour"`
	AverageRecoveryTime time.Duration `json:"average_recovery_time"`
	LastPanicAt         *time.Time    `json:"last_panic_at,omitempty"`
}

type AttemptMetrics struct {
	Attempts           int64         `json:"attempts"`
	FailedAttempts     int64         `json:"failed_attempts"`
	Timeouts           int64         `json:"timeouts"`
	AverageAttemptTime time.Duration `json:"average_attempt_time"`
}

func NewMetricsTracker() *MetricsTracker {
	return &MetricsTracker{
		panicMetrics: PanicMetricsData{
			PanicsLastHour: make([]time.Time, 0),
			RecoveryTimes:  make([]time.Duration, 0, 100),
		},
		attemptMetrics: AttemptMetricsData{
			AttemptTimes: make([]time.Duration, 0, 1000),
		},
	}
}

func (mt *MetricsTracker) RecordPanic(recoveryTime time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	now := time.Now()
	mt.panicMetrics.TotalPanics++
	mt.panicMetrics.LastPanicAt = &now
	mt.panicMetrics.PanicsLastHour = append(mt.panicMetrics.PanicsLastHour, now)

	mt.panicMetrics.RecoveryTimes = append(mt.panicMetrics.RecoveryTimes, recoveryTime)
	if len(mt.panicMetrics.RecoveryTimes) > 100 {
		mt.panicMetrics.RecoveryTimes = mt.panicMetrics.RecoveryTimes[1:]
	}

	mt.cleanupOldPanics()
}

func (mt *MetricsTracker) RecordAttempt(duration time.Duration, success bool) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.attemptMetrics.Attempts++
	if !success {
		mt.attemptMetrics.FailedAttempts++
	}

	mt.attemptMetrics.AttemptTimes = append(mt.attemptMetrics.AttemptTimes, duration)
	if len(mt.attemptMetrics.AttemptTimes) > 1000 {
		mt.attemptMetrics.AttemptTimes = mt.attemptMetrics.AttemptTimes[1:]
	}
}

func (mt *MetricsTracker) RecordTimeout() {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.attemptMetrics.Timeouts++
}

func (mt *MetricsTracker) GetPanicMetrics() PanicMetrics {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.cleanupOldPanics()

	var avgRecoveryTime time.Duration
	if len(mt.panicMetrics.RecoveryTimes) > 0 {
		var total time.Duration
		for _, t := range mt.panicMetrics.RecoveryTimes {
			total += t
		}
		avgRecoveryTime = total / time.Duration(len(mt.panicMetrics.RecoveryTimes))
	}

	return PanicMetrics{
		TotalPanics:         mt.panicMetrics.TotalPanics,
		PanicsLastHour:      int64(len(mt.panicMetrics.PanicsLastHour)),
		AverageRecoveryTime: avgRecoveryTime,
		LastPanicAt:         mt.panicMetrics.LastPanicAt,
	}
}

func (mt *MetricsTracker) GetAttemptMetrics() AttemptMetrics {
	mt.mu.RLock()
	defer mt.mu.RUnlock()

	var avg time.Duration
	if len(mt.attemptMetrics.AttemptTimes) > 0 {
		var total time.Duration
		for _, t := range mt.attemptMetrics.AttemptTimes {
			total += t
		}
		avg = total / time.Duration(len(mt.attemptMetrics.AttemptTimes))
	}

	return AttemptMetrics{
		Attempts:           mt.attemptMetrics.Attempts,
		FailedAttempts:     mt.attemptMetrics.FailedAttempts,
		Timeouts:           mt.attemptMetrics.Timeouts,
		AverageAttemptTime: avg,
	}
}

func (mt *MetricsTracker) cleanupOldPanics() {
	cutoff := time.Now().Add(-1 * time.Hour)
	filtered := make([]time.Time, 0, len(mt.panicMetrics.PanicsLastHour))

	for _, panicTime := range mt.panicMetrics.PanicsLastHour {
		if panicTime.After(cutoff) {
			filtered = append(filtered, panicTime)
		}
	}

	mt.panicMetrics.PanicsLastHour = filtered
}
