package connections

import (
	"context"
	"testing"

	gocmd "github.com/goliatone/go-command"

	connectionscommand "github.com/goliatone/go-connections/command"
	"github.com/goliatone/go-connections/core"
	connectionsquery "github.com/goliatone/go-connections/query"
)

func TestNewFacade_WiresCommandsAndQueries(t *testing.T) {
	svc := &stubFacadeService{}
	directory := core.NewIntegrationDirectory()

	facade, err := NewFacade(svc, WithIntegrationReader(directory))
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	commands := facade.Commands()
	if commands.CreateCredential == nil || commands.ConnectWithToken == nil || commands.Delete == nil {
		t.Fatalf("expected command handlers to be wired")
	}
	queries := facade.Queries()
	if queries.GetConnection == nil || queries.GetConnectionCredentials == nil || queries.ListIntegrations == nil {
		t.Fatalf("expected query handlers to be wired")
	}
	if facade.Service() == nil {
		t.Fatalf("expected service accessor")
	}
}

func TestFacade_CommandAndQueryDelegation(t *testing.T) {
	svc := &stubFacadeService{}

	facade, err := NewFacade(svc, WithIntegrationReader(core.NewIntegrationDirectory()))
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	collector := gocmd.NewResult[core.Connection]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	if err := facade.Commands().Disconnect.Execute(ctx, connectionscommand.DisconnectConnectionMessage{
		ConnectionID: "conn_1",
		Actor:        core.Actor{UserID: "u1", OrgID: "org1"},
	}); err != nil {
		t.Fatalf("execute disconnect command: %v", err)
	}
	if svc.lastDisconnectID != "conn_1" {
		t.Fatalf("unexpected disconnect delegation payload: %q", svc.lastDisconnectID)
	}
	stored, ok := collector.Load()
	if !ok {
		t.Fatalf("expected disconnect result to be stored")
	}
	if stored.Status != core.ConnectionStatusDisconnected {
		t.Fatalf("unexpected disconnect result: %#v", stored)
	}

	connection, err := facade.Queries().GetConnection.Query(context.Background(), connectionsquery.GetConnectionMessage{
		ConnectionID: "conn_1",
		Actor:        core.Actor{UserID: "u1", OrgID: "org1"},
	})
	if err != nil {
		t.Fatalf("query get connection: %v", err)
	}
	if connection.ID != "conn_1" {
		t.Fatalf("unexpected connection query result: %#v", connection)
	}

	fields, err := facade.Queries().GetConnectionCredentials.Query(context.Background(), connectionsquery.GetConnectionCredentialsMessage{
		ConnectionID: "conn_1",
		Actor:        core.Actor{UserID: "u1", OrgID: "org1"},
	})
	if err != nil {
		t.Fatalf("query connection credentials: %v", err)
	}
	if fields["token"] != "xoxb-secret" {
		t.Fatalf("unexpected credential fields: %#v", fields)
	}
}

func TestNewFacade_ResolvesIntegrationReaderFromDirectory(t *testing.T) {
	directory := core.NewIntegrationDirectory()
	if err := directory.Register(core.IntegrationDefinition{
		IntegrationType: core.IntegrationTypeSource,
		ShortName:       "slack",
		DisplayName:     "Slack",
		AuthFields: []core.AuthField{
			{Name: "token", Type: core.AuthFieldTypeString, Required: true, Secret: true},
		},
	}); err != nil {
		t.Fatalf("register definition: %v", err)
	}
	svc := &stubDirectoryService{stubFacadeService: stubFacadeService{}, directory: directory}

	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	definitions, err := facade.Queries().ListIntegrations.Query(context.Background(), connectionsquery.ListIntegrationsMessage{})
	if err != nil {
		t.Fatalf("query list integrations: %v", err)
	}
	if len(definitions) != 1 || definitions[0].ShortName != "slack" {
		t.Fatalf("unexpected integrations listing: %#v", definitions)
	}
}

func TestNewFacade_RequiresService(t *testing.T) {
	facade, err := NewFacade(nil)
	if err == nil {
		t.Fatalf("expected nil service error")
	}
	if facade != nil {
		t.Fatalf("expected nil facade on error")
	}
}

type stubFacadeService struct {
	lastDisconnectID string
}

func (s *stubFacadeService) CreateCredential(context.Context, core.CreateCredentialRequest) (core.Credential, error) {
	return core.Credential{ID: "cred_1", ShortName: "slack"}, nil
}

func (s *stubFacadeService) CreateConnection(context.Context, core.CreateConnectionRequest) (core.Connection, error) {
	return core.Connection{ID: "conn_1", Status: core.ConnectionStatusActive}, nil
}

func (s *stubFacadeService) ConnectWithToken(context.Context, core.ConnectWithTokenRequest) (core.Connection, error) {
	return core.Connection{ID: "conn_token", Status: core.ConnectionStatusActive}, nil
}

func (s *stubFacadeService) DisconnectConnection(_ context.Context, connectionID string, _ core.Actor) (core.Connection, error) {
	s.lastDisconnectID = connectionID
	return core.Connection{ID: connectionID, Status: core.ConnectionStatusDisconnected}, nil
}

func (s *stubFacadeService) DeleteConnection(_ context.Context, connectionID string, _ core.Actor) (core.Connection, error) {
	return core.Connection{ID: connectionID}, nil
}

func (s *stubFacadeService) GetConnection(_ context.Context, connectionID string, _ core.Actor) (core.Connection, error) {
	return core.Connection{ID: connectionID, Status: core.ConnectionStatusActive}, nil
}

func (s *stubFacadeService) ListConnections(context.Context, core.Actor) ([]core.Connection, error) {
	return []core.Connection{{ID: "conn_1"}}, nil
}

func (s *stubFacadeService) ListConnectionsByType(context.Context, core.Actor, core.IntegrationType) ([]core.Connection, error) {
	return []core.Connection{{ID: "conn_1"}}, nil
}

func (s *stubFacadeService) GetConnectionCredentials(context.Context, string, core.Actor) (map[string]any, error) {
	return map[string]any{"token": "xoxb-secret"}, nil
}

type stubDirectoryService struct {
	stubFacadeService
	directory core.Directory
}

func (s *stubDirectoryService) Directory() core.Directory {
	return s.directory
}
