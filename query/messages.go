package query

import (
	"strings"

	"github.com/goliatone/go-connections/core"
)

const (
	TypeGetConnection            = "connections.query.connection.get"
	TypeListConnections          = "connections.query.connection.list"
	TypeGetConnectionCredentials = "connections.query.connection.credentials"
	TypeListIntegrations         = "connections.query.integration.list"
)

type GetConnectionMessage struct {
	ConnectionID string
	Actor        core.Actor
}

func (GetConnectionMessage) Type() string { return TypeGetConnection }

func (m GetConnectionMessage) Validate() error {
	if strings.TrimSpace(m.ConnectionID) == "" {
		return queryValidationError("connection_id", "connection id is required")
	}
	return validateActor(m.Actor)
}

type ListConnectionsMessage struct {
	Actor core.Actor
	// IntegrationType narrows the listing when set; empty lists everything.
	IntegrationType core.IntegrationType
}

func (ListConnectionsMessage) Type() string { return TypeListConnections }

func (m ListConnectionsMessage) Validate() error {
	if err := validateActor(m.Actor); err != nil {
		return err
	}
	if strings.TrimSpace(string(m.IntegrationType)) == "" {
		return nil
	}
	if err := m.IntegrationType.Validate(); err != nil {
		return queryValidationError("integration_type", err.Error())
	}
	return nil
}

type GetConnectionCredentialsMessage struct {
	ConnectionID string
	Actor        core.Actor
}

func (GetConnectionCredentialsMessage) Type() string { return TypeGetConnectionCredentials }

func (m GetConnectionCredentialsMessage) Validate() error {
	if strings.TrimSpace(m.ConnectionID) == "" {
		return queryValidationError("connection_id", "connection id is required")
	}
	return validateActor(m.Actor)
}

type ListIntegrationsMessage struct{}

func (ListIntegrationsMessage) Type() string { return TypeListIntegrations }

func (ListIntegrationsMessage) Validate() error { return nil }

func validateActor(actor core.Actor) error {
	if err := actor.Validate(); err != nil {
		return queryValidationError("actor.user_id", "actor user id is required")
	}
	return nil
}
