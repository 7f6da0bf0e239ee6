package alert

import (
	"fmt"
	"sort"
	"sync"
)

// Metric names tracked per pair.
const (
	MetricZScore = "zscore"
	MetricBeta   = "beta"
)

// Key identifies one tracked observation.
type Key struct {
	SymbolY string
	SymbolX string
	Metric  string
}

// Tracker records the most recent analytics observation per (pair, metric)
// and derives the current alert set by threshold comparison.
//
// The tracker is shared across concurrent query handlers, so access is
// mutex-guarded. Writes to the same key race last-write-wins, which is
// acceptable for monitoring state.
type Tracker struct {
	mu        sync.RWMutex
	threshold float64
	latest    map[Key]float64
}

// NewTracker creates a tracker that alerts when |z-score| exceeds threshold.
func NewTracker(threshold float64) *Tracker {
	return &Tracker{
		threshold: threshold,
		latest:    make(map[Key]float64),
	}
}

// Record overwrites the stored value for the pair/metric.
func (t *Tracker) Record(symbolY, symbolX, metric string, value float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest[Key{SymbolY: symbolY, SymbolX: symbolX, Metric: metric}] = value
}

// Get returns the stored value for the pair/metric, if any.
func (t *Tracker) Get(symbolY, symbolX, metric string) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.latest[Key{SymbolY: symbolY, SymbolX: symbolX, Metric: metric}]
	return v, ok
}

// CurrentAlerts returns a human-readable alert for every tracked z-score
// whose absolute value exceeds the threshold. Alerts reflect only the latest
// observation per pair; there is no history or expiry beyond overwrite.
func (t *Tracker) CurrentAlerts() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var alerts []string
	for key, value := range t.latest {
		if key.Metric != MetricZScore {
			continue
		}
		if value > t.threshold || value < -t.threshold {
			alerts = append(alerts,
				fmt.Sprintf("ALERT: Z-Score for %s_%s is at %.2f", key.SymbolY, key.SymbolX, value))
		}
	}
	sort.Strings(alerts) // stable output for consumers
	return alerts
}
