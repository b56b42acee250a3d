package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type CreateCredentialInput struct {
	IntegrationType   IntegrationType
	ShortName         string
	Owner             OwnerRef
	EncryptedPayload  []byte
	PayloadFormat     string
	PayloadVersion    int
	EncryptionKeyID   string
	EncryptionVersion int
}

type CreateConnectionInput struct {
	Name            string
	IntegrationType IntegrationType
	ShortName       string
	CredentialID    string
	Owner           OwnerRef
	Status          ConnectionStatus
	Event           *LifecycleEvent
}

// CreateBindingInput persists a credential and its connection as one unit:
// either both rows (plus the outbox event) commit, or none are visible.
type CreateBindingInput struct {
	Credential CreateCredentialInput
	Connection CreateConnectionInput
	Event      *LifecycleEvent
}

type ConnectionStore interface {
	Create(ctx context.Context, in CreateConnectionInput) (Connection, error)
	Get(ctx context.Context, id string) (Connection, error)
	ListByOwner(ctx context.Context, owner OwnerRef) ([]Connection, error)
	ListByOwnerAndType(ctx context.Context, owner OwnerRef, integrationType IntegrationType) ([]Connection, error)
	FindActiveByCredential(ctx context.Context, credentialID string) (Connection, error)

	// UpdateStatus applies the transition only when the row is still in the
	// expected status; a lost race surfaces as ErrConflict.
	UpdateStatus(ctx context.Context, id string, from ConnectionStatus, to ConnectionStatus, event *LifecycleEvent) (Connection, error)

	// DeleteCascade removes the connection and its backing credential in one
	// transaction and returns the last-known state of the connection.
	DeleteCascade(ctx context.Context, id string, event *LifecycleEvent) (Connection, error)
}

type CredentialStore interface {
	Create(ctx context.Context, in CreateCredentialInput) (Credential, error)
	Get(ctx context.Context, id string) (Credential, error)
	Delete(ctx context.Context, id string) error
}

// BindingStore covers the direct-token connect flow where credential and
// connection must become visible atomically.
type BindingStore interface {
	CreateBinding(ctx context.Context, in CreateBindingInput) (Connection, Credential, error)
}

type StoreProvider interface {
	ConnectionStore() ConnectionStore
	CredentialStore() CredentialStore
	BindingStore() BindingStore
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

type SecretProvider interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// TokenVerifier performs the live capability probe for a direct-token
// integration. A rejected token must wrap ErrTokenInvalid.
type TokenVerifier interface {
	ShortName() string
	VerifyToken(ctx context.Context, token string) error
}

type Authorizer interface {
	Authorize(actor Actor, owner OwnerRef) error
}

type Directory interface {
	Get(integrationType IntegrationType, shortName string) (IntegrationDefinition, bool)
	List() []IntegrationDefinition
}

type CredentialCodec interface {
	Format() string
	Version() int
	Encode(fields map[string]any) ([]byte, error)
	Decode(payload []byte) (map[string]any, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type LifecycleEventHandler interface {
	Handle(ctx context.Context, event LifecycleEvent) error
}

type ProjectorRegistry interface {
	Register(name string, handler LifecycleEventHandler)
	Handlers() []LifecycleEventHandler
}

type OutboxStore interface {
	Enqueue(ctx context.Context, event LifecycleEvent) error
	ClaimBatch(ctx context.Context, limit int) ([]LifecycleEvent, error)
	Ack(ctx context.Context, eventID string) error
	Retry(ctx context.Context, eventID string, cause error, nextAttemptAt time.Time) error
}

type DispatchStats struct {
	Claimed   int
	Delivered int
	Retried   int
	Failed    int
}

type LifecycleDispatcher interface {
	DispatchPending(ctx context.Context, batchSize int) (DispatchStats, error)
}

type JobExecutionMessage struct {
	JobID          string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

// ConnectionService is the full logical surface exposed to collaborators; the
// transport layer that fronts it lives outside this module.
type ConnectionService interface {
	GetConnection(ctx context.Context, connectionID string, actor Actor) (Connection, error)
	ListConnections(ctx context.Context, actor Actor) ([]Connection, error)
	ListConnectionsByType(ctx context.Context, actor Actor, integrationType IntegrationType) ([]Connection, error)
	GetConnectionCredentials(ctx context.Context, connectionID string, actor Actor) (map[string]any, error)
	CreateCredential(ctx context.Context, req CreateCredentialRequest) (Credential, error)
	CreateConnection(ctx context.Context, req CreateConnectionRequest) (Connection, error)
	ConnectWithToken(ctx context.Context, req ConnectWithTokenRequest) (Connection, error)
	DisconnectConnection(ctx context.Context, connectionID string, actor Actor) (Connection, error)
	DeleteConnection(ctx context.Context, connectionID string, actor Actor) (Connection, error)
}

type CreateCredentialRequest struct {
	Actor           Actor
	IntegrationType IntegrationType
	ShortName       string
	AuthFields      map[string]any
}

type CreateConnectionRequest struct {
	Actor           Actor
	IntegrationType IntegrationType
	ShortName       string
	CredentialID    string
	Name            string
}

type ConnectWithTokenRequest struct {
	Actor     Actor
	ShortName string
	Token     string
	Name      string
	// Validate overrides DirectTokenConfig.ValidateByDefault; nil keeps the
	// configured behavior.
	Validate *bool
}
