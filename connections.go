package connections

import "github.com/goliatone/go-connections/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type Connection = core.Connection
type Credential = core.Credential
type IntegrationType = core.IntegrationType
type IntegrationDefinition = core.IntegrationDefinition
type Actor = core.Actor
type OwnerRef = core.OwnerRef
type LifecycleEvent = core.LifecycleEvent

type CreateCredentialRequest = core.CreateCredentialRequest
type CreateConnectionRequest = core.CreateConnectionRequest
type ConnectWithTokenRequest = core.ConnectWithTokenRequest

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithErrorFactory    = core.WithErrorFactory
	WithErrorMapper     = core.WithErrorMapper
	WithSecretProvider  = core.WithSecretProvider

	WithPersistenceClient = core.WithPersistenceClient
	WithRepositoryFactory = core.WithRepositoryFactory
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver

	WithDirectory       = core.WithDirectory
	WithAuthorizer      = core.WithAuthorizer
	WithCredentialCodec = core.WithCredentialCodec
	WithConnectionStore = core.WithConnectionStore
	WithCredentialStore = core.WithCredentialStore
	WithBindingStore    = core.WithBindingStore
	WithOutboxStore     = core.WithOutboxStore
	WithTokenVerifier   = core.WithTokenVerifier
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}
