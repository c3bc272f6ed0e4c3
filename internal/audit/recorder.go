package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder writes audit events best-effort. Writes run on their own
// goroutine with a detached timeout context, so a cancelled request or a
// failing sink never changes the decision already returned to the caller.
// This trades audit completeness for availability of the primary operation.
type Recorder struct {
	sink     Sink
	logger   *slog.Logger
	failures prometheus.Counter
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewRecorder constructs a fail-soft recorder. The failures counter is
// optional.
func NewRecorder(sink Sink, logger *slog.Logger, failures prometheus.Counter) *Recorder {
	return &Recorder{
		sink:     sink,
		logger:   logger,
		failures: failures,
		timeout:  5 * time.Second,
	}
}

// Denied records a denied attempt. The reason and any extra detail land in
// the structured details payload.
func (r *Recorder) Denied(actorID, action string, entityType, entityID, reason string, details map[string]any, prov Provenance) {
	merged := map[string]any{
		"reason":           reason,
		"attempted_action": action,
		"resource_type":    entityType,
	}
	for k, v := range details {
		merged[k] = v
	}
	r.submit(Event{
		ActorID:    actorID,
		Action:     "permission_denied_" + action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    merged,
		IPAddress:  prov.IPAddress,
		UserAgent:  prov.UserAgent,
	})
}

// Granted records a successful access for resources where the caller opts
// into success auditing.
func (r *Recorder) Granted(actorID, action string, entityType, entityID string, details map[string]any, prov Provenance) {
	merged := map[string]any{
		"action":        action,
		"resource_type": entityType,
	}
	for k, v := range details {
		merged[k] = v
	}
	r.submit(Event{
		ActorID:    actorID,
		Action:     action + "_" + entityType,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    merged,
		IPAddress:  prov.IPAddress,
		UserAgent:  prov.UserAgent,
	})
}

// Record writes an arbitrary event best-effort, for domain services that
// audit their own mutations.
func (r *Recorder) Record(event Event) {
	r.submit(event)
}

func (r *Recorder) submit(event Event) {
	if r == nil || r.sink == nil {
		return
	}
	event.At = time.Now().UTC()
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.sink.Append(ctx, event); err != nil {
			if r.failures != nil {
				r.failures.Inc()
			}
			if r.logger != nil {
				r.logger.Warn("audit write failed",
					slog.String("action", event.Action),
					slog.String("entity_type", event.EntityType),
					slog.Any("error", err))
			}
		}
	}()
}

// Flush waits for in-flight writes. Used on shutdown and in tests.
func (r *Recorder) Flush() {
	if r != nil {
		r.wg.Wait()
	}
}
