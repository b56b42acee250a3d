package command

import (
	"strings"

	"github.com/goliatone/go-connections/core"
)

const (
	TypeCreateCredential     = "connections.command.credential.create"
	TypeCreateConnection     = "connections.command.connection.create"
	TypeConnectWithToken     = "connections.command.connection.connect_token"
	TypeDisconnectConnection = "connections.command.connection.disconnect"
	TypeDeleteConnection     = "connections.command.connection.delete"
)

type CreateCredentialMessage struct {
	Request core.CreateCredentialRequest
}

func (CreateCredentialMessage) Type() string { return TypeCreateCredential }

func (m CreateCredentialMessage) Validate() error {
	if err := validateActor(m.Request.Actor); err != nil {
		return err
	}
	if err := m.Request.IntegrationType.Validate(); err != nil {
		return commandValidationError("integration_type", err.Error())
	}
	if strings.TrimSpace(m.Request.ShortName) == "" {
		return commandValidationError("short_name", "integration short name is required")
	}
	if len(m.Request.AuthFields) == 0 {
		return commandValidationError("auth_fields", "auth fields are required")
	}
	return nil
}

type CreateConnectionMessage struct {
	Request core.CreateConnectionRequest
}

func (CreateConnectionMessage) Type() string { return TypeCreateConnection }

func (m CreateConnectionMessage) Validate() error {
	if err := validateActor(m.Request.Actor); err != nil {
		return err
	}
	if err := m.Request.IntegrationType.Validate(); err != nil {
		return commandValidationError("integration_type", err.Error())
	}
	if strings.TrimSpace(m.Request.ShortName) == "" {
		return commandValidationError("short_name", "integration short name is required")
	}
	if strings.TrimSpace(m.Request.CredentialID) == "" {
		return commandValidationError("credential_id", "credential id is required")
	}
	return nil
}

type ConnectWithTokenMessage struct {
	Request core.ConnectWithTokenRequest
}

func (ConnectWithTokenMessage) Type() string { return TypeConnectWithToken }

func (m ConnectWithTokenMessage) Validate() error {
	if err := validateActor(m.Request.Actor); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.ShortName) == "" {
		return commandValidationError("short_name", "integration short name is required")
	}
	if strings.TrimSpace(m.Request.Token) == "" {
		return commandValidationError("token", "token is required")
	}
	return nil
}

type DisconnectConnectionMessage struct {
	ConnectionID string
	Actor        core.Actor
}

func (DisconnectConnectionMessage) Type() string { return TypeDisconnectConnection }

func (m DisconnectConnectionMessage) Validate() error {
	if strings.TrimSpace(m.ConnectionID) == "" {
		return commandValidationError("connection_id", "connection id is required")
	}
	return validateActor(m.Actor)
}

type DeleteConnectionMessage struct {
	ConnectionID string
	Actor        core.Actor
}

func (DeleteConnectionMessage) Type() string { return TypeDeleteConnection }

func (m DeleteConnectionMessage) Validate() error {
	if strings.TrimSpace(m.ConnectionID) == "" {
		return commandValidationError("connection_id", "connection id is required")
	}
	return validateActor(m.Actor)
}

func validateActor(actor core.Actor) error {
	if err := actor.Validate(); err != nil {
		return commandValidationError("actor.user_id", "actor user id is required")
	}
	return nil
}
