// Package metrics emits the session lifecycle metrics.
package metrics

import (
	"time"

	obserrors "github.com/target/hrdesk/internal/observability/errors"
	"github.com/target/hrdesk/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Forced logout reasons.
const (
	ReasonExpired      = "expired"
	ReasonRefreshReuse = "refresh_reused"
)

// Forced logout triggers.
const (
	TriggerRecovery = "recovery"
	TriggerExpiry   = "expiry_handler"
)

// EmitRecovery records the outcome of startup session recovery.
func EmitRecovery(sink statsd.Sink, outcome string, elapsed time.Duration) {
	if sink == nil {
		return
	}
	tags := map[string]string{"outcome": outcome}
	sink.Count("session.recovery", 1, tags)
	if elapsed > 0 {
		sink.Timing("session.recovery.duration", elapsed, CloneTags(tags))
	}
}

// EmitForcedLogout records a logout the user did not ask for.
func EmitForcedLogout(sink statsd.Sink, trigger, reason string) {
	if sink == nil {
		return
	}
	sink.Count("session.forced_logout", 1, map[string]string{
		"trigger": trigger,
		"reason":  reason,
	})
}

// EmitLogin records a login attempt that reached the backend.
func EmitLogin(sink statsd.Sink, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	tags := resultTags(err)
	sink.Count("auth.login", 1, tags)
	if elapsed > 0 {
		sink.Timing("auth.login.duration", elapsed, CloneTags(tags))
	}
}

// EmitProbe records one startup readiness check.
func EmitProbe(sink statsd.Sink, component string, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	tags := resultTags(err)
	tags["component"] = component
	ready := 0.0
	if err == nil {
		ready = 1
	}
	sink.Gauge("startup.ready", ready, map[string]string{"component": component})
	sink.Timing("startup.probe.duration", elapsed, tags)
}

func resultTags(err error) map[string]string {
	if err == nil {
		return map[string]string{"result": ResultSuccess}
	}
	tags := map[string]string{"result": ResultError}
	if class := obserrors.Classify(err); class != "" {
		tags["error_class"] = class
	}
	return tags
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
