package sqlstore

import (
	"strings"
	"time"

	"github.com/goliatone/go-connections/core"
	"github.com/google/uuid"
)

func newConnectionRecord(in core.CreateConnectionInput, now time.Time) *connectionRecord {
	status := in.Status
	if strings.TrimSpace(string(status)) == "" {
		status = core.ConnectionStatusActive
	}
	return &connectionRecord{
		Name:            strings.TrimSpace(in.Name),
		IntegrationType: string(in.IntegrationType),
		ShortName:       strings.TrimSpace(in.ShortName),
		CredentialID:    strings.TrimSpace(in.CredentialID),
		Status:          string(status),
		OwnerUserID:     strings.TrimSpace(in.Owner.UserID),
		OwnerOrgID:      strings.TrimSpace(in.Owner.OrgID),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (r *connectionRecord) toDomain() core.Connection {
	if r == nil {
		return core.Connection{}
	}
	return core.Connection{
		ID:              r.ID,
		Name:            r.Name,
		IntegrationType: core.IntegrationType(r.IntegrationType),
		ShortName:       r.ShortName,
		CredentialID:    r.CredentialID,
		Status:          core.ConnectionStatus(r.Status),
		Owner: core.OwnerRef{
			UserID: r.OwnerUserID,
			OrgID:  r.OwnerOrgID,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func newCredentialRecord(in core.CreateCredentialInput, now time.Time) *credentialRecord {
	payloadFormat := in.PayloadFormat
	if payloadFormat == "" {
		payloadFormat = core.CredentialPayloadFormatAuthFieldsJSON
	}
	payloadVersion := in.PayloadVersion
	if payloadVersion <= 0 {
		payloadVersion = core.CredentialPayloadVersionV1
	}
	return &credentialRecord{
		IntegrationType:   string(in.IntegrationType),
		ShortName:         strings.TrimSpace(in.ShortName),
		EncryptedPayload:  append([]byte(nil), in.EncryptedPayload...),
		PayloadFormat:     payloadFormat,
		PayloadVersion:    payloadVersion,
		EncryptionKeyID:   strings.TrimSpace(in.EncryptionKeyID),
		EncryptionVersion: in.EncryptionVersion,
		OwnerUserID:       strings.TrimSpace(in.Owner.UserID),
		OwnerOrgID:        strings.TrimSpace(in.Owner.OrgID),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func (r *credentialRecord) toDomain() core.Credential {
	if r == nil {
		return core.Credential{}
	}
	return core.Credential{
		ID:                r.ID,
		IntegrationType:   core.IntegrationType(r.IntegrationType),
		ShortName:         r.ShortName,
		EncryptedPayload:  append([]byte(nil), r.EncryptedPayload...),
		PayloadFormat:     r.PayloadFormat,
		PayloadVersion:    r.PayloadVersion,
		EncryptionKeyID:   r.EncryptionKeyID,
		EncryptionVersion: r.EncryptionVersion,
		Owner: core.OwnerRef{
			UserID: r.OwnerUserID,
			OrgID:  r.OwnerOrgID,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func newOutboxRecord(event core.LifecycleEvent, now time.Time) *lifecycleOutboxRecord {
	eventID := strings.TrimSpace(event.ID)
	if eventID == "" {
		eventID = uuid.NewString()
	}
	occurredAt := event.CreatedAt.UTC()
	if occurredAt.IsZero() {
		occurredAt = now
	}
	record := &lifecycleOutboxRecord{
		ID:              uuid.NewString(),
		EventID:         eventID,
		EventType:       strings.TrimSpace(event.EventType),
		IntegrationType: string(event.IntegrationType),
		ShortName:       strings.TrimSpace(event.ShortName),
		OwnerUserID:     strings.TrimSpace(event.Owner.UserID),
		OwnerOrgID:      strings.TrimSpace(event.Owner.OrgID),
		Metadata:        copyAnyMap(event.Metadata),
		Status:          outboxStatusPending,
		Attempts:        0,
		LastError:       "",
		OccurredAt:      occurredAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if trimmed := strings.TrimSpace(event.ConnectionID); trimmed != "" {
		record.ConnectionID = &trimmed
	}
	if trimmed := strings.TrimSpace(event.CredentialID); trimmed != "" {
		record.CredentialID = &trimmed
	}
	return record
}

func outboxRecordToEvent(record lifecycleOutboxRecord) core.LifecycleEvent {
	event := core.LifecycleEvent{
		ID:              record.EventID,
		EventType:       record.EventType,
		IntegrationType: core.IntegrationType(record.IntegrationType),
		ShortName:       record.ShortName,
		Owner: core.OwnerRef{
			UserID: record.OwnerUserID,
			OrgID:  record.OwnerOrgID,
		},
		Metadata:  copyAnyMap(record.Metadata),
		CreatedAt: record.OccurredAt,
	}
	if record.ConnectionID != nil {
		event.ConnectionID = strings.TrimSpace(*record.ConnectionID)
	}
	if record.CredentialID != nil {
		event.CredentialID = strings.TrimSpace(*record.CredentialID)
	}
	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}
	event.Metadata[core.MetadataKeyOutboxAttempts] = record.Attempts
	return event
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
