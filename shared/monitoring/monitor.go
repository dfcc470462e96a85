package monitoring

import (
	"fmt"
	"log"
	"sync"
	"time"

	"clipfinder/internal/models"
)

// Monitor tracks resolution outcomes for the health endpoint. Resolutions
// that degrade to the fallback search still count as successes; only
// resolutions that produced no clip at all count against health.
type Monitor struct {
	mu           sync.Mutex
	resolved     int
	fallbacks    int
	failed       int
	lastOutcome  string
	lastRunTime  time.Time
	lastSucceeded bool
}

func NewMonitor() *Monitor {
	return &Monitor{lastSucceeded: true}
}

func (m *Monitor) RecordResolved(source string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resolved++
	if source != models.SourceNBA {
		m.fallbacks++
	}
	m.lastSucceeded = true
	m.lastRunTime = time.Now()
	m.lastOutcome = fmt.Sprintf("resolved via %s", source)

	log.Printf("Resolution completed via %s (took %v)", source, duration)
}

func (m *Monitor) RecordFailure(reason string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failed++
	m.lastSucceeded = false
	m.lastRunTime = time.Now()
	m.lastOutcome = reason

	log.Printf("Resolution failed: %s (took %v)", reason, duration)
}

func (m *Monitor) IsHealthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastRunTime.IsZero() {
		return true // No resolutions yet, assume healthy
	}
	return m.lastSucceeded
}

func (m *Monitor) Summary() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastRunTime.IsZero() {
		return "no resolutions yet"
	}
	return fmt.Sprintf("%d resolved (%d via fallback), %d failed; last: %s at %s",
		m.resolved, m.fallbacks, m.failed, m.lastOutcome, m.lastRunTime.Format("Jan 2 15:04"))
}
