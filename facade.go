package connections

import (
	"fmt"

	connectionscommand "github.com/goliatone/go-connections/command"
	"github.com/goliatone/go-connections/core"
	connectionsquery "github.com/goliatone/go-connections/query"
)

type CommandQueryService interface {
	connectionscommand.MutatingService
	connectionsquery.ConnectionReader
	connectionsquery.CredentialReader
}

type Commands struct {
	CreateCredential *connectionscommand.CreateCredentialCommand
	CreateConnection *connectionscommand.CreateConnectionCommand
	ConnectWithToken *connectionscommand.ConnectWithTokenCommand
	Disconnect       *connectionscommand.DisconnectConnectionCommand
	Delete           *connectionscommand.DeleteConnectionCommand
}

type Queries struct {
	GetConnection            *connectionsquery.GetConnectionQuery
	ListConnections          *connectionsquery.ListConnectionsQuery
	GetConnectionCredentials *connectionsquery.GetConnectionCredentialsQuery
	ListIntegrations         *connectionsquery.ListIntegrationsQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	integrationReader connectionsquery.IntegrationReader
}

func WithIntegrationReader(reader connectionsquery.IntegrationReader) FacadeOption {
	return func(options *facadeOptions) {
		options.integrationReader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("connections: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	reader := cfg.integrationReader
	if reader == nil {
		reader = resolveIntegrationReader(service)
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		CreateCredential: connectionscommand.NewCreateCredentialCommand(service),
		CreateConnection: connectionscommand.NewCreateConnectionCommand(service),
		ConnectWithToken: connectionscommand.NewConnectWithTokenCommand(service),
		Disconnect:       connectionscommand.NewDisconnectConnectionCommand(service),
		Delete:           connectionscommand.NewDeleteConnectionCommand(service),
	}
	facade.queries = Queries{
		GetConnection:            connectionsquery.NewGetConnectionQuery(service),
		ListConnections:          connectionsquery.NewListConnectionsQuery(service),
		GetConnectionCredentials: connectionsquery.NewGetConnectionCredentialsQuery(service),
		ListIntegrations:         connectionsquery.NewListIntegrationsQuery(reader),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

func resolveIntegrationReader(service CommandQueryService) connectionsquery.IntegrationReader {
	if service == nil {
		return nil
	}
	if reader, ok := service.(connectionsquery.IntegrationReader); ok {
		return reader
	}
	provider, ok := service.(interface{ Directory() core.Directory })
	if !ok {
		return nil
	}
	directory := provider.Directory()
	if directory == nil {
		return nil
	}
	return directory
}
