// Package metrics provides an in-memory statsd.Sink for tests.
package metrics

import (
	"sync"
	"time"

	"github.com/target/hrdesk/internal/observability/statsd"
)

var _ statsd.Sink = (*RecordingSink)(nil)

// Point is one recorded metric.
type Point struct {
	Kind  string // count, gauge or timing
	Name  string
	Value float64
	Tags  map[string]string
}

// RecordingSink stores every metric it receives.
type RecordingSink struct {
	mu     sync.Mutex
	points []Point
}

func (s *RecordingSink) record(p Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = append(s.points, p)
}

func (s *RecordingSink) Count(name string, value int64, tags map[string]string) {
	s.record(Point{Kind: "count", Name: name, Value: float64(value), Tags: tags})
}

func (s *RecordingSink) Gauge(name string, value float64, tags map[string]string) {
	s.record(Point{Kind: "gauge", Name: name, Value: value, Tags: tags})
}

func (s *RecordingSink) Timing(name string, value time.Duration, tags map[string]string) {
	s.record(Point{Kind: "timing", Name: name, Value: float64(value), Tags: tags})
}

// Named returns the recorded points with the given name, in order.
func (s *RecordingSink) Named(name string) []Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Point
	for _, p := range s.points {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return out
}
