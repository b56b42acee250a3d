package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-connections/core"
)

type MutatingService interface {
	CreateCredential(ctx context.Context, req core.CreateCredentialRequest) (core.Credential, error)
	CreateConnection(ctx context.Context, req core.CreateConnectionRequest) (core.Connection, error)
	ConnectWithToken(ctx context.Context, req core.ConnectWithTokenRequest) (core.Connection, error)
	DisconnectConnection(ctx context.Context, connectionID string, actor core.Actor) (core.Connection, error)
	DeleteConnection(ctx context.Context, connectionID string, actor core.Actor) (core.Connection, error)
}

type CreateCredentialCommand struct {
	service MutatingService
}

func NewCreateCredentialCommand(service MutatingService) *CreateCredentialCommand {
	return &CreateCredentialCommand{service: service}
}

func (c *CreateCredentialCommand) Execute(ctx context.Context, msg CreateCredentialMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: credential service is required")
	}
	out, err := c.service.CreateCredential(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateConnectionCommand struct {
	service MutatingService
}

func NewCreateConnectionCommand(service MutatingService) *CreateConnectionCommand {
	return &CreateConnectionCommand{service: service}
}

func (c *CreateConnectionCommand) Execute(ctx context.Context, msg CreateConnectionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: connection service is required")
	}
	out, err := c.service.CreateConnection(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ConnectWithTokenCommand struct {
	service MutatingService
}

func NewConnectWithTokenCommand(service MutatingService) *ConnectWithTokenCommand {
	return &ConnectWithTokenCommand{service: service}
}

func (c *ConnectWithTokenCommand) Execute(ctx context.Context, msg ConnectWithTokenMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: token connect service is required")
	}
	out, err := c.service.ConnectWithToken(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DisconnectConnectionCommand struct {
	service MutatingService
}

func NewDisconnectConnectionCommand(service MutatingService) *DisconnectConnectionCommand {
	return &DisconnectConnectionCommand{service: service}
}

func (c *DisconnectConnectionCommand) Execute(ctx context.Context, msg DisconnectConnectionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: disconnect service is required")
	}
	out, err := c.service.DisconnectConnection(ctx, msg.ConnectionID, msg.Actor)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeleteConnectionCommand struct {
	service MutatingService
}

func NewDeleteConnectionCommand(service MutatingService) *DeleteConnectionCommand {
	return &DeleteConnectionCommand{service: service}
}

func (c *DeleteConnectionCommand) Execute(ctx context.Context, msg DeleteConnectionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: delete service is required")
	}
	out, err := c.service.DeleteConnection(ctx, msg.ConnectionID, msg.Actor)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
