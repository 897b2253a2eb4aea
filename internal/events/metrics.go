package events

import "github.com/danmuck/radiotest/internal/observability"

// MetricsSink mirrors session transitions into prometheus.
type MetricsSink struct{}

func (MetricsSink) Publish(ev Event) {
	switch ev.Type {
	case SessionStarted:
		observability.RecordSessionStarted(ev.KindName)
	case SessionCancelled:
		observability.RecordSessionEnded(ev.KindName, "cancelled")
	case SessionCompleted:
		observability.RecordSessionEnded(ev.KindName, "completed")
	}
}
