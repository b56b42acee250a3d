package core

import (
	"strings"
	"sync"
	"time"
)

const (
	EventTypeConnectionCreated      = "connection.created"
	EventTypeConnectionDisconnected = "connection.disconnected"
	EventTypeConnectionDeleted      = "connection.deleted"
	EventTypeCredentialCreated      = "credential.created"
)

// LifecycleEvent records a connection lifecycle fact for external consumers
// (sync schedulers, audit sinks). Metadata never carries auth field values.
type LifecycleEvent struct {
	ID              string
	EventType       string
	ConnectionID    string
	CredentialID    string
	IntegrationType IntegrationType
	ShortName       string
	Owner           OwnerRef
	Metadata        map[string]any
	CreatedAt       time.Time
}

func NewLifecycleEvent(eventType string, conn Connection) LifecycleEvent {
	return LifecycleEvent{
		EventType:       strings.TrimSpace(eventType),
		ConnectionID:    conn.ID,
		CredentialID:    conn.CredentialID,
		IntegrationType: conn.IntegrationType,
		ShortName:       conn.ShortName,
		Owner:           conn.Owner,
		Metadata:        map[string]any{},
		CreatedAt:       time.Now().UTC(),
	}
}

type lifecycleProjectorRegistry struct {
	mu       sync.RWMutex
	names    []string
	handlers []LifecycleEventHandler
}

func NewLifecycleProjectorRegistry() ProjectorRegistry {
	return &lifecycleProjectorRegistry{}
}

func (r *lifecycleProjectorRegistry) Register(name string, handler LifecycleEventHandler) {
	if r == nil || handler == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, strings.TrimSpace(name))
	r.handlers = append(r.handlers, handler)
}

func (r *lifecycleProjectorRegistry) Handlers() []LifecycleEventHandler {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]LifecycleEventHandler, len(r.handlers))
	copy(out, r.handlers)
	return out
}
