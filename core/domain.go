package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidIntegrationType            = errors.New("core: invalid integration type")
	ErrInvalidOwner                      = errors.New("core: invalid owner reference")
	ErrInvalidConnectionStatusTransition = errors.New("core: invalid connection status transition")
)

type IntegrationType string

const (
	IntegrationTypeSource         IntegrationType = "source"
	IntegrationTypeDestination    IntegrationType = "destination"
	IntegrationTypeEmbeddingModel IntegrationType = "embedding_model"
)

// Validate accepts only the canonical lowercase values. Directory keys and
// store rows compare the raw string, so anything else would pass here and
// then miss every lookup.
func (t IntegrationType) Validate() error {
	switch t {
	case IntegrationTypeSource, IntegrationTypeDestination, IntegrationTypeEmbeddingModel:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidIntegrationType, t)
}

// OwnerRef identifies the user, and optionally the organization, a resource
// belongs to. Organization membership widens visibility; it never narrows it.
type OwnerRef struct {
	UserID string
	OrgID  string
}

func (o OwnerRef) Validate() error {
	if strings.TrimSpace(o.UserID) == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidOwner)
	}
	return nil
}

// Actor is the authenticated requester on whose behalf an operation runs.
type Actor struct {
	UserID string
	OrgID  string
}

func (a Actor) Validate() error {
	if strings.TrimSpace(a.UserID) == "" {
		return fmt.Errorf("%w: empty actor user id", ErrInvalidOwner)
	}
	return nil
}

type ConnectionStatus string

const (
	ConnectionStatusActive       ConnectionStatus = "active"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
)

type Connection struct {
	ID              string
	Name            string
	IntegrationType IntegrationType
	ShortName       string
	CredentialID    string
	Status          ConnectionStatus
	Owner           OwnerRef
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TransitionTo applies a status change. Re-applying the current status is a
// no-op so disconnect stays idempotent; there is no path back to active.
func (c *Connection) TransitionTo(status ConnectionStatus, now time.Time) error {
	if c == nil {
		return nil
	}
	if c.Status == status {
		c.UpdatedAt = now
		return nil
	}
	if !connectionTransitionAllowed(c.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidConnectionStatusTransition, c.Status, status)
	}
	c.Status = status
	c.UpdatedAt = now
	return nil
}

// ConnectionTransitionAllowed reports whether the status machine permits
// moving between the two statuses.
func ConnectionTransitionAllowed(current, next ConnectionStatus) bool {
	return connectionTransitionAllowed(current, next)
}

func connectionTransitionAllowed(current, next ConnectionStatus) bool {
	allowed := map[ConnectionStatus]map[ConnectionStatus]struct{}{
		ConnectionStatusActive: {
			ConnectionStatusDisconnected: {},
		},
		ConnectionStatusDisconnected: {},
	}
	_, ok := allowed[current][next]
	return ok
}

// Credential is encrypted secret material for a third-party integration. The
// plaintext auth fields only exist inside the decrypt path of the service.
type Credential struct {
	ID                string
	IntegrationType   IntegrationType
	ShortName         string
	EncryptedPayload  []byte
	PayloadFormat     string
	PayloadVersion    int
	EncryptionKeyID   string
	EncryptionVersion int
	Owner             OwnerRef
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// WithoutPayload returns a copy safe to hand back to callers: the ciphertext
// is dropped so no secret material, encrypted or not, is echoed.
func (c Credential) WithoutPayload() Credential {
	c.EncryptedPayload = nil
	return c
}
