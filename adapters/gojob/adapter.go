// Package gojob bridges connection lifecycle events to the go-job queue.
package gojob

import (
	"context"
	"fmt"
	"strings"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"

	"github.com/goliatone/go-connections/core"
)

const (
	JobIDSyncBootstrap = "connections.sync.bootstrap"

	// DedupPolicyIgnore drops a duplicate enqueue instead of failing it.
	DedupPolicyIgnore = "ignore"
)

// ToExecutionMessage maps the connections job contract to go-job.
func ToExecutionMessage(msg *core.JobExecutionMessage) *job.ExecutionMessage {
	if msg == nil {
		return nil
	}
	return &job.ExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		Parameters:     copyAnyMap(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    job.DeduplicationPolicy(strings.TrimSpace(msg.DedupPolicy)),
	}
}

type EnqueuerAdapter struct {
	enqueuer queue.Enqueuer
}

func NewEnqueuerAdapter(enqueuer queue.Enqueuer) *EnqueuerAdapter {
	return &EnqueuerAdapter{enqueuer: enqueuer}
}

func (a *EnqueuerAdapter) Enqueue(ctx context.Context, msg *core.JobExecutionMessage) error {
	if a == nil || a.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	if msg == nil {
		return fmt.Errorf("gojob: execution message is required")
	}
	_, err := a.enqueuer.Enqueue(ctx, ToExecutionMessage(msg))
	return err
}

// SyncTriggerProjector schedules an initial sync whenever a source connection
// becomes active. Other event types pass through untouched.
type SyncTriggerProjector struct {
	enqueuer core.JobEnqueuer
}

func NewSyncTriggerProjector(enqueuer core.JobEnqueuer) *SyncTriggerProjector {
	return &SyncTriggerProjector{enqueuer: enqueuer}
}

func (p *SyncTriggerProjector) Handle(ctx context.Context, event core.LifecycleEvent) error {
	if p == nil || p.enqueuer == nil {
		return fmt.Errorf("gojob: sync trigger enqueuer is not configured")
	}
	if event.EventType != core.EventTypeConnectionCreated {
		return nil
	}
	if event.IntegrationType != core.IntegrationTypeSource {
		return nil
	}
	connectionID := strings.TrimSpace(event.ConnectionID)
	if connectionID == "" {
		return fmt.Errorf("gojob: lifecycle event %q has no connection id", event.ID)
	}

	return p.enqueuer.Enqueue(ctx, &core.JobExecutionMessage{
		JobID: JobIDSyncBootstrap,
		Parameters: map[string]any{
			"connection_id":    connectionID,
			"credential_id":    strings.TrimSpace(event.CredentialID),
			"integration_type": string(event.IntegrationType),
			"short_name":       strings.TrimSpace(event.ShortName),
			"owner_user_id":    strings.TrimSpace(event.Owner.UserID),
			"owner_org_id":     strings.TrimSpace(event.Owner.OrgID),
		},
		IdempotencyKey: JobIDSyncBootstrap + ":" + connectionID,
		DedupPolicy:    DedupPolicyIgnore,
	})
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

var (
	_ core.JobEnqueuer           = (*EnqueuerAdapter)(nil)
	_ core.LifecycleEventHandler = (*SyncTriggerProjector)(nil)
)
