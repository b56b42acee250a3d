package query

import (
	"context"
	"strings"

	"github.com/goliatone/go-connections/core"
)

type ConnectionReader interface {
	GetConnection(ctx context.Context, connectionID string, actor core.Actor) (core.Connection, error)
	ListConnections(ctx context.Context, actor core.Actor) ([]core.Connection, error)
	ListConnectionsByType(ctx context.Context, actor core.Actor, integrationType core.IntegrationType) ([]core.Connection, error)
}

type CredentialReader interface {
	GetConnectionCredentials(ctx context.Context, connectionID string, actor core.Actor) (map[string]any, error)
}

type IntegrationReader interface {
	List() []core.IntegrationDefinition
}

type GetConnectionQuery struct {
	reader ConnectionReader
}

func NewGetConnectionQuery(reader ConnectionReader) *GetConnectionQuery {
	return &GetConnectionQuery{reader: reader}
}

func (q *GetConnectionQuery) Query(ctx context.Context, msg GetConnectionMessage) (core.Connection, error) {
	if q == nil || q.reader == nil {
		return core.Connection{}, queryDependencyError("query: connection reader is required")
	}
	return q.reader.GetConnection(ctx, msg.ConnectionID, msg.Actor)
}

type ListConnectionsQuery struct {
	reader ConnectionReader
}

func NewListConnectionsQuery(reader ConnectionReader) *ListConnectionsQuery {
	return &ListConnectionsQuery{reader: reader}
}

func (q *ListConnectionsQuery) Query(ctx context.Context, msg ListConnectionsMessage) ([]core.Connection, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: connection reader is required")
	}
	if strings.TrimSpace(string(msg.IntegrationType)) == "" {
		return q.reader.ListConnections(ctx, msg.Actor)
	}
	return q.reader.ListConnectionsByType(ctx, msg.Actor, msg.IntegrationType)
}

type GetConnectionCredentialsQuery struct {
	reader CredentialReader
}

func NewGetConnectionCredentialsQuery(reader CredentialReader) *GetConnectionCredentialsQuery {
	return &GetConnectionCredentialsQuery{reader: reader}
}

func (q *GetConnectionCredentialsQuery) Query(
	ctx context.Context,
	msg GetConnectionCredentialsMessage,
) (map[string]any, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: credential reader is required")
	}
	return q.reader.GetConnectionCredentials(ctx, msg.ConnectionID, msg.Actor)
}

type ListIntegrationsQuery struct {
	reader IntegrationReader
}

func NewListIntegrationsQuery(reader IntegrationReader) *ListIntegrationsQuery {
	return &ListIntegrationsQuery{reader: reader}
}

func (q *ListIntegrationsQuery) Query(_ context.Context, _ ListIntegrationsMessage) ([]core.IntegrationDefinition, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: integration reader is required")
	}
	return q.reader.List(), nil
}
