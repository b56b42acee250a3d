package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-connections/core"
)

var (
	_ gocmd.Querier[GetConnectionMessage, core.Connection]                  = (*GetConnectionQuery)(nil)
	_ gocmd.Querier[ListConnectionsMessage, []core.Connection]              = (*ListConnectionsQuery)(nil)
	_ gocmd.Querier[GetConnectionCredentialsMessage, map[string]any]        = (*GetConnectionCredentialsQuery)(nil)
	_ gocmd.Querier[ListIntegrationsMessage, []core.IntegrationDefinition]  = (*ListIntegrationsQuery)(nil)
)
