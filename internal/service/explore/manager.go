// internal/service/explore/manager.go

package explore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/domain/explore"
	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/domain/location"
	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/logger"
)

// SessionManagerConfig contains configuration for the session manager
type SessionManagerConfig struct {
	EventsTopic     string
	SessionTTL      time.Duration
	MonitorInterval time.Duration
	MaxSessions     int
	Session         SessionConfig
}

// SessionManager implements the explore.Manager interface. It owns every
// live session, expires the idle ones, and publishes lifecycle events.
type SessionManager struct {
	source   location.Source
	events   *eventPublisher
	config   SessionManagerConfig
	sessions sync.Map
	count    int64
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

var _ explore.Manager = (*SessionManager)(nil)

// NewSessionManager creates a session manager and starts its idle monitor
func NewSessionManager(source location.Source, bus EventBus, config SessionManagerConfig) *SessionManager {
	if config.SessionTTL <= 0 {
		config.SessionTTL = 30 * time.Minute
	}
	if config.MonitorInterval <= 0 {
		config.MonitorInterval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &SessionManager{
		source: source,
		events: newEventPublisher(bus, config.EventsTopic),
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}

	// Start background monitoring of idle sessions
	m.wg.Add(1)
	go m.monitorSessions()

	return m
}

// CreateSession creates a new session and starts its full-dataset load.
func (m *SessionManager) CreateSession() (explore.Session, error) {
	if n := atomic.AddInt64(&m.count, 1); m.config.MaxSessions > 0 && n > int64(m.config.MaxSessions) {
		atomic.AddInt64(&m.count, -1)
		return nil, explore.ErrTooManySessions
	}

	id := uuid.New().String()
	session := newSession(id, m.source, m.events, m.config.Session)
	m.sessions.Store(id, session)

	logger.L().Info("session created", "session_id", id)
	m.events.publish(id, EventLifecycle, lifecycleEvent{
		Type:      "session_created",
		SessionID: id,
		Time:      time.Now(),
	})

	return session, nil
}

// GetSession returns a live session by id.
func (m *SessionManager) GetSession(id string) (explore.Session, error) {
	value, ok := m.sessions.Load(id)
	if !ok {
		return nil, explore.ErrSessionNotFound
	}
	return value.(*Session), nil
}

// CloseSession closes a live session and removes it.
func (m *SessionManager) CloseSession(id string) error {
	value, ok := m.sessions.LoadAndDelete(id)
	if !ok {
		return explore.ErrSessionNotFound
	}
	atomic.AddInt64(&m.count, -1)

	value.(*Session).Close()

	logger.L().Info("session closed", "session_id", id)
	m.events.publish(id, EventLifecycle, lifecycleEvent{
		Type:      "session_closed",
		SessionID: id,
		Time:      time.Now(),
	})
	return nil
}

// Stop gracefully stops the manager and closes every live session
func (m *SessionManager) Stop(ctx context.Context) error {
	// Signal the monitor to stop
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.sessions.Range(func(key, value interface{}) bool {
			value.(*Session).Close()
			m.sessions.Delete(key)
			return true
		})
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// monitorSessions periodically expires sessions idle past the TTL.
func (m *SessionManager) monitorSessions() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.expireIdleSessions()
		}
	}
}

// expireIdleSessions closes and removes sessions whose last activity is
// older than the TTL.
func (m *SessionManager) expireIdleSessions() {
	cutoff := time.Now().Add(-m.config.SessionTTL)

	m.sessions.Range(func(key, value interface{}) bool {
		session := value.(*Session)
		if session.lastSeenTime().After(cutoff) {
			return true
		}

		// Someone else may have closed it between the check and here.
		if _, ok := m.sessions.LoadAndDelete(key); !ok {
			return true
		}
		atomic.AddInt64(&m.count, -1)
		session.Close()

		logger.L().Info("session expired", "session_id", session.ID())
		m.events.publish(session.ID(), EventLifecycle, lifecycleEvent{
			Type:      "session_expired",
			SessionID: session.ID(),
			Time:      time.Now(),
		})
		return true
	})
}
