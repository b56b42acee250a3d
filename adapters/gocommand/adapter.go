// Package gocommand registers the connections command and query handlers on
// a go-command registry and subscribes them to the dispatcher.
package gocommand

import (
	"context"
	"fmt"
	"strings"

	gocmd "github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"

	connections "github.com/goliatone/go-connections"
	connectionscommand "github.com/goliatone/go-connections/command"
	"github.com/goliatone/go-connections/core"
	connectionsquery "github.com/goliatone/go-connections/query"
)

// ValidateMessageContract enforces Type() plus the optional Validate()
// contract before a message reaches the dispatcher.
func ValidateMessageContract(msg any) error {
	if err := gocmd.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(gocmd.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

type RegistryAdapter struct {
	registry *gocmd.Registry
}

func NewRegistryAdapter(registry *gocmd.Registry) *RegistryAdapter {
	if registry == nil {
		registry = gocmd.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) RegisterCommand(cmd any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(cmd)
}

func (a *RegistryAdapter) RegisterQuery(qry any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(qry)
}

// AddQueueResolver mirrors registered commands into a go-job queue registry
// so queued jobs can invoke them.
func (a *RegistryAdapter) AddQueueResolver(key string, queueRegistry *jobqueuecommand.Registry) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	return a.registry.AddResolver(strings.TrimSpace(key), jobqueuecommand.QueueResolver(queueRegistry))
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.Initialize()
}

// SubscribeFacade subscribes every facade command and query handler to the
// dispatcher and registers them on the adapter's registry. Either all nine
// handlers end up wired or none do.
func SubscribeFacade(
	adapter *RegistryAdapter,
	facade *connections.Facade,
	runnerOpts ...runner.Option,
) ([]commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if facade == nil {
		return nil, fmt.Errorf("gocommand: facade is required")
	}
	commands := facade.Commands()
	queries := facade.Queries()

	var subscriptions []commanddispatcher.Subscription
	abort := func(err error) ([]commanddispatcher.Subscription, error) {
		for _, subscription := range subscriptions {
			if subscription != nil {
				subscription.Unsubscribe()
			}
		}
		return nil, err
	}

	commandWiring := []struct {
		subscription commanddispatcher.Subscription
		handler      any
	}{
		{commanddispatcher.SubscribeCommand[connectionscommand.CreateCredentialMessage](commands.CreateCredential, runnerOpts...), commands.CreateCredential},
		{commanddispatcher.SubscribeCommand[connectionscommand.CreateConnectionMessage](commands.CreateConnection, runnerOpts...), commands.CreateConnection},
		{commanddispatcher.SubscribeCommand[connectionscommand.ConnectWithTokenMessage](commands.ConnectWithToken, runnerOpts...), commands.ConnectWithToken},
		{commanddispatcher.SubscribeCommand[connectionscommand.DisconnectConnectionMessage](commands.Disconnect, runnerOpts...), commands.Disconnect},
		{commanddispatcher.SubscribeCommand[connectionscommand.DeleteConnectionMessage](commands.Delete, runnerOpts...), commands.Delete},
	}
	for _, wiring := range commandWiring {
		subscriptions = append(subscriptions, wiring.subscription)
		if err := adapter.RegisterCommand(wiring.handler); err != nil {
			return abort(err)
		}
	}

	queryWiring := []struct {
		subscription commanddispatcher.Subscription
		handler      any
	}{
		{commanddispatcher.SubscribeQuery[connectionsquery.GetConnectionMessage, core.Connection](queries.GetConnection, runnerOpts...), queries.GetConnection},
		{commanddispatcher.SubscribeQuery[connectionsquery.ListConnectionsMessage, []core.Connection](queries.ListConnections, runnerOpts...), queries.ListConnections},
		{commanddispatcher.SubscribeQuery[connectionsquery.GetConnectionCredentialsMessage, map[string]any](queries.GetConnectionCredentials, runnerOpts...), queries.GetConnectionCredentials},
		{commanddispatcher.SubscribeQuery[connectionsquery.ListIntegrationsMessage, []core.IntegrationDefinition](queries.ListIntegrations, runnerOpts...), queries.ListIntegrations},
	}
	for _, wiring := range queryWiring {
		subscriptions = append(subscriptions, wiring.subscription)
		if err := adapter.RegisterQuery(wiring.handler); err != nil {
			return abort(err)
		}
	}

	return subscriptions, nil
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}
