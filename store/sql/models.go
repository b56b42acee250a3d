package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type connectionRecord struct {
	bun.BaseModel `bun:"table:connections,alias:cn"`

	ID              string    `bun:"id,pk"`
	Name            string    `bun:"name,notnull"`
	IntegrationType string    `bun:"integration_type,notnull"`
	ShortName       string    `bun:"short_name,notnull"`
	CredentialID    string    `bun:"credential_id,notnull"`
	Status          string    `bun:"status,notnull"`
	OwnerUserID     string    `bun:"owner_user_id,notnull"`
	OwnerOrgID      string    `bun:"owner_org_id"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type credentialRecord struct {
	bun.BaseModel `bun:"table:integration_credentials,alias:cr"`

	ID                string    `bun:"id,pk"`
	IntegrationType   string    `bun:"integration_type,notnull"`
	ShortName         string    `bun:"short_name,notnull"`
	EncryptedPayload  []byte    `bun:"encrypted_payload,notnull"`
	PayloadFormat     string    `bun:"payload_format,notnull"`
	PayloadVersion    int       `bun:"payload_version,notnull"`
	EncryptionKeyID   string    `bun:"encryption_key_id,notnull"`
	EncryptionVersion int       `bun:"encryption_version,notnull"`
	OwnerUserID       string    `bun:"owner_user_id,notnull"`
	OwnerOrgID        string    `bun:"owner_org_id"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type lifecycleOutboxRecord struct {
	bun.BaseModel `bun:"table:connection_lifecycle_outbox,alias:lo"`

	ID              string         `bun:"id,pk"`
	EventID         string         `bun:"event_id,notnull"`
	EventType       string         `bun:"event_type,notnull"`
	ConnectionID    *string        `bun:"connection_id"`
	CredentialID    *string        `bun:"credential_id"`
	IntegrationType string         `bun:"integration_type,notnull"`
	ShortName       string         `bun:"short_name,notnull"`
	OwnerUserID     string         `bun:"owner_user_id,notnull"`
	OwnerOrgID      string         `bun:"owner_org_id"`
	Metadata        map[string]any `bun:"metadata,type:jsonb,notnull"`
	Status          string         `bun:"status,notnull"`
	Attempts        int            `bun:"attempts,notnull"`
	NextAttemptAt   *time.Time     `bun:"next_attempt_at,nullzero"`
	LastError       string         `bun:"last_error"`
	OccurredAt      time.Time      `bun:"occurred_at,nullzero,notnull"`
	CreatedAt       time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
