// internal/service/explore/events.go

package explore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/domain/location"
	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/logger"
)

// EventBus publishes engine events to interested subscribers. *nats.Conn
// satisfies it.
type EventBus interface {
	Publish(subject string, data []byte) error
}

// Event kinds published per session.
const (
	EventGlobal    = "global"
	EventViewport  = "viewport"
	EventSearch    = "search"
	EventLifecycle = "lifecycle"
)

// SessionSubject returns the event subject for one session and event kind,
// e.g. "explore.3f2a….viewport".
func SessionSubject(topic, sessionID, kind string) string {
	return fmt.Sprintf("%s.%s.%s", topic, sessionID, kind)
}

// stateEvent carries a state snapshot after an engine transition. Exactly one
// of the snapshot fields is set, matching the subject's event kind.
type stateEvent struct {
	Type      string                `json:"type"`
	SessionID string                `json:"sessionId"`
	Global    *location.FetchState  `json:"global,omitempty"`
	Viewport  *location.FetchState  `json:"viewport,omitempty"`
	Search    *location.SearchState `json:"search,omitempty"`
	Time      time.Time             `json:"time"`
}

// lifecycleEvent mirrors session create, close, and expire transitions.
type lifecycleEvent struct {
	Type      string    `json:"type"`
	SessionID string    `json:"sessionId"`
	Time      time.Time `json:"time"`
}

// eventPublisher fans engine transitions out to the event bus. Publishing is
// best-effort: a nil bus or a failed publish never affects engine state.
type eventPublisher struct {
	bus   EventBus
	topic string
}

func newEventPublisher(bus EventBus, topic string) *eventPublisher {
	if topic == "" {
		topic = "explore"
	}
	return &eventPublisher{bus: bus, topic: topic}
}

func (p *eventPublisher) publish(sessionID, kind string, payload interface{}) {
	if p == nil || p.bus == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// Log error but continue
		logger.L().Warn("event marshal failed", "session_id", sessionID, "kind", kind, "err", err)
		return
	}

	subject := SessionSubject(p.topic, sessionID, kind)
	if err := p.bus.Publish(subject, data); err != nil {
		// Log error but continue
		logger.L().Warn("event publish failed", "subject", subject, "err", err)
	}
}
