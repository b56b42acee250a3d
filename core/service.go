package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

type Service struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	secretProvider  SecretProvider
	directory       Directory
	authorizer      Authorizer
	credentialCodec CredentialCodec
	connectionStore ConnectionStore
	credentialStore CredentialStore
	bindingStore    BindingStore
	outboxStore     OutboxStore
	tokenVerifiers  map[string]TokenVerifier
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("connections", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("connections"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.directory == nil {
		builder.directory = NewIntegrationDirectory()
	}
	if builder.authorizer == nil {
		builder.authorizer = OwnerGate{}
	}
	if builder.credentialCodec == nil {
		builder.credentialCodec = JSONFieldsCodec{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if needsStores(builder) && builder.repositoryFactory != nil {
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			provider, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			if provider != nil {
				adoptStores(&builder, provider)
			}
		} else if provider, ok := builder.repositoryFactory.(StoreProvider); ok {
			adoptStores(&builder, provider)
		}
	}
	if builder.outboxStore == nil && builder.repositoryFactory != nil {
		if provider, ok := builder.repositoryFactory.(interface{ OutboxStore() OutboxStore }); ok {
			builder.outboxStore = provider.OutboxStore()
		}
	}

	if builder.secretProvider == nil {
		return nil, mapBuildError(builder.errorMapper, fmt.Errorf("core: secret provider is required"))
	}

	service := &Service{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorFactory:    builder.errorFactory,
		errorMapper:     builder.errorMapper,
		secretProvider:  builder.secretProvider,
		directory:       builder.directory,
		authorizer:      builder.authorizer,
		credentialCodec: builder.credentialCodec,
		connectionStore: builder.connectionStore,
		credentialStore: builder.credentialStore,
		bindingStore:    builder.bindingStore,
		outboxStore:     builder.outboxStore,
		tokenVerifiers:  builder.tokenVerifiers,
	}
	return service, nil
}

func needsStores(builder serviceBuilder) bool {
	return builder.connectionStore == nil || builder.credentialStore == nil || builder.bindingStore == nil
}

func adoptStores(builder *serviceBuilder, provider StoreProvider) {
	if builder.connectionStore == nil {
		builder.connectionStore = provider.ConnectionStore()
	}
	if builder.credentialStore == nil {
		builder.credentialStore = provider.CredentialStore()
	}
	if builder.bindingStore == nil {
		builder.bindingStore = provider.BindingStore()
	}
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	if mapped := s.errorMapper(err); mapped != nil {
		return mapped
	}
	return err
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Directory() Directory {
	if s == nil {
		return nil
	}
	return s.directory
}

// GetConnection returns a single connection visible to the actor. An existing
// connection owned by someone else reports not-found, never forbidden, so the
// read path does not leak existence.
func (s *Service) GetConnection(ctx context.Context, connectionID string, actor Actor) (Connection, error) {
	startedAt := time.Now()
	connection, err := s.getVisibleConnection(ctx, connectionID, actor)
	s.observeOperation(ctx, startedAt, "connection.get", err, map[string]any{
		"connection_id": connectionID,
		"user_id":       actor.UserID,
	})
	if err != nil {
		return Connection{}, s.mapError(err)
	}
	return connection, nil
}

func (s *Service) ListConnections(ctx context.Context, actor Actor) ([]Connection, error) {
	startedAt := time.Now()
	connections, err := s.listConnections(ctx, actor, "")
	s.observeOperation(ctx, startedAt, "connection.list", err, map[string]any{
		"user_id": actor.UserID,
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	return connections, nil
}

func (s *Service) ListConnectionsByType(ctx context.Context, actor Actor, integrationType IntegrationType) ([]Connection, error) {
	startedAt := time.Now()
	connections, err := s.listConnections(ctx, actor, integrationType)
	s.observeOperation(ctx, startedAt, "connection.list_by_type", err, map[string]any{
		"user_id":          actor.UserID,
		"integration_type": string(integrationType),
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	return connections, nil
}

// GetConnectionCredentials decrypts the auth fields backing a connection.
// This is the only path where plaintext leaves the credential store boundary.
func (s *Service) GetConnectionCredentials(ctx context.Context, connectionID string, actor Actor) (map[string]any, error) {
	startedAt := time.Now()
	fields, connection, err := s.getConnectionCredentials(ctx, connectionID, actor)
	s.observeOperation(ctx, startedAt, "connection.credentials", err, map[string]any{
		"connection_id":    connectionID,
		"user_id":          actor.UserID,
		"integration_type": string(connection.IntegrationType),
		"short_name":       connection.ShortName,
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	return fields, nil
}

func (s *Service) CreateCredential(ctx context.Context, req CreateCredentialRequest) (Credential, error) {
	startedAt := time.Now()
	credential, err := s.createCredential(ctx, req)
	s.observeOperation(ctx, startedAt, "credential.create", err, map[string]any{
		"user_id":          req.Actor.UserID,
		"integration_type": string(req.IntegrationType),
		"short_name":       req.ShortName,
	})
	if err != nil {
		return Credential{}, s.mapError(err)
	}
	return credential, nil
}

func (s *Service) CreateConnection(ctx context.Context, req CreateConnectionRequest) (Connection, error) {
	startedAt := time.Now()
	connection, err := s.createConnection(ctx, req)
	s.observeOperation(ctx, startedAt, "connection.create", err, map[string]any{
		"user_id":          req.Actor.UserID,
		"integration_type": string(req.IntegrationType),
		"short_name":       req.ShortName,
		"credential_id":    req.CredentialID,
	})
	if err != nil {
		return Connection{}, s.mapError(err)
	}
	return connection, nil
}

func (s *Service) ConnectWithToken(ctx context.Context, req ConnectWithTokenRequest) (Connection, error) {
	startedAt := time.Now()
	connection, err := s.connectWithToken(ctx, req)
	s.observeOperation(ctx, startedAt, "connection.connect_with_token", err, map[string]any{
		"user_id":    req.Actor.UserID,
		"short_name": req.ShortName,
	})
	if err != nil {
		return Connection{}, s.mapError(err)
	}
	return connection, nil
}

func (s *Service) DisconnectConnection(ctx context.Context, connectionID string, actor Actor) (Connection, error) {
	startedAt := time.Now()
	connection, err := s.disconnectConnection(ctx, connectionID, actor)
	s.observeOperation(ctx, startedAt, "connection.disconnect", err, map[string]any{
		"connection_id": connectionID,
		"user_id":       actor.UserID,
	})
	if err != nil {
		return Connection{}, s.mapError(err)
	}
	return connection, nil
}

func (s *Service) DeleteConnection(ctx context.Context, connectionID string, actor Actor) (Connection, error) {
	startedAt := time.Now()
	connection, err := s.deleteConnection(ctx, connectionID, actor)
	s.observeOperation(ctx, startedAt, "connection.delete", err, map[string]any{
		"connection_id": connectionID,
		"user_id":       actor.UserID,
	})
	if err != nil {
		return Connection{}, s.mapError(err)
	}
	return connection, nil
}

func (s *Service) getVisibleConnection(ctx context.Context, connectionID string, actor Actor) (Connection, error) {
	if s == nil || s.connectionStore == nil {
		return Connection{}, fmt.Errorf("core: connection service is not configured")
	}
	if err := actor.Validate(); err != nil {
		return Connection{}, err
	}
	trimmedID := strings.TrimSpace(connectionID)
	if trimmedID == "" {
		return Connection{}, fmt.Errorf("core: connection id is required")
	}
	connection, err := s.connectionStore.Get(ctx, trimmedID)
	if err != nil {
		return Connection{}, err
	}
	if authErr := s.authorizer.Authorize(actor, connection.Owner); authErr != nil {
		// Invisible and absent are intentionally indistinguishable.
		return Connection{}, fmt.Errorf("%w: connection %q", ErrNotFound, trimmedID)
	}
	return connection, nil
}

func (s *Service) listConnections(ctx context.Context, actor Actor, integrationType IntegrationType) ([]Connection, error) {
	if s == nil || s.connectionStore == nil {
		return nil, fmt.Errorf("core: connection service is not configured")
	}
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	owner := OwnerRef{UserID: strings.TrimSpace(actor.UserID), OrgID: strings.TrimSpace(actor.OrgID)}
	if integrationType == "" {
		return s.connectionStore.ListByOwner(ctx, owner)
	}
	if err := integrationType.Validate(); err != nil {
		return nil, err
	}
	return s.connectionStore.ListByOwnerAndType(ctx, owner, integrationType)
}

func (s *Service) getConnectionCredentials(ctx context.Context, connectionID string, actor Actor) (map[string]any, Connection, error) {
	connection, err := s.getVisibleConnection(ctx, connectionID, actor)
	if err != nil {
		return nil, Connection{}, err
	}
	if s.credentialStore == nil || s.secretProvider == nil {
		return nil, connection, fmt.Errorf("core: credential store is not configured")
	}
	credential, err := s.credentialStore.Get(ctx, connection.CredentialID)
	if err != nil {
		return nil, connection, err
	}
	plaintext, err := s.secretProvider.Decrypt(ctx, credential.EncryptedPayload)
	if err != nil {
		return nil, connection, err
	}
	fields, err := s.credentialCodec.Decode(plaintext)
	if err != nil {
		return nil, connection, err
	}
	return fields, connection, nil
}

func (s *Service) createCredential(ctx context.Context, req CreateCredentialRequest) (Credential, error) {
	if s == nil || s.credentialStore == nil || s.secretProvider == nil {
		return Credential{}, fmt.Errorf("core: credential service is not configured")
	}
	if err := req.Actor.Validate(); err != nil {
		return Credential{}, err
	}
	if err := req.IntegrationType.Validate(); err != nil {
		return Credential{}, err
	}
	shortName := strings.TrimSpace(req.ShortName)
	definition, ok := s.directory.Get(req.IntegrationType, shortName)
	if !ok {
		return Credential{}, fmt.Errorf("%w: %s/%s", ErrUnknownIntegration, req.IntegrationType, shortName)
	}

	validated, err := ValidateAuthFields(definition, req.AuthFields)
	if err != nil {
		return Credential{}, err
	}

	encrypted, keyID, keyVersion, err := s.encryptFields(ctx, validated)
	if err != nil {
		return Credential{}, err
	}

	created, err := s.credentialStore.Create(ctx, CreateCredentialInput{
		IntegrationType:   req.IntegrationType,
		ShortName:         shortName,
		Owner:             OwnerRef{UserID: strings.TrimSpace(req.Actor.UserID), OrgID: strings.TrimSpace(req.Actor.OrgID)},
		EncryptedPayload:  encrypted,
		PayloadFormat:     s.credentialCodec.Format(),
		PayloadVersion:    s.credentialCodec.Version(),
		EncryptionKeyID:   keyID,
		EncryptionVersion: keyVersion,
	})
	if err != nil {
		return Credential{}, err
	}

	s.emitEvent(ctx, LifecycleEvent{
		EventType:       EventTypeCredentialCreated,
		CredentialID:    created.ID,
		IntegrationType: created.IntegrationType,
		ShortName:       created.ShortName,
		Owner:           created.Owner,
		Metadata:        map[string]any{},
		CreatedAt:       time.Now().UTC(),
	})

	return created.WithoutPayload(), nil
}

func (s *Service) createConnection(ctx context.Context, req CreateConnectionRequest) (Connection, error) {
	if s == nil || s.connectionStore == nil || s.credentialStore == nil {
		return Connection{}, fmt.Errorf("core: connection service is not configured")
	}
	if err := req.Actor.Validate(); err != nil {
		return Connection{}, err
	}
	if err := req.IntegrationType.Validate(); err != nil {
		return Connection{}, err
	}
	shortName := strings.TrimSpace(req.ShortName)
	definition, ok := s.directory.Get(req.IntegrationType, shortName)
	if !ok {
		return Connection{}, fmt.Errorf("%w: %s/%s", ErrUnknownIntegration, req.IntegrationType, shortName)
	}
	credentialID := strings.TrimSpace(req.CredentialID)
	if credentialID == "" {
		return Connection{}, fmt.Errorf("core: credential id is required")
	}

	credential, err := s.credentialStore.Get(ctx, credentialID)
	if err != nil {
		return Connection{}, err
	}
	if authErr := s.authorizer.Authorize(req.Actor, credential.Owner); authErr != nil {
		return Connection{}, fmt.Errorf("%w: credential %q", ErrNotFound, credentialID)
	}
	if credential.IntegrationType != req.IntegrationType || credential.ShortName != shortName {
		return Connection{}, fmt.Errorf("core: credential %q belongs to %s/%s, not %s/%s",
			credentialID, credential.IntegrationType, credential.ShortName, req.IntegrationType, shortName)
	}

	// One credential backs at most one live connection at a time.
	if existing, findErr := s.connectionStore.FindActiveByCredential(ctx, credentialID); findErr == nil {
		return Connection{}, fmt.Errorf("%w: credential %q already backs connection %q", ErrConflict, credentialID, existing.ID)
	} else if !errors.Is(findErr, ErrNotFound) {
		return Connection{}, findErr
	}

	owner := OwnerRef{UserID: strings.TrimSpace(req.Actor.UserID), OrgID: strings.TrimSpace(req.Actor.OrgID)}
	event := LifecycleEvent{
		EventType:       EventTypeConnectionCreated,
		CredentialID:    credentialID,
		IntegrationType: req.IntegrationType,
		ShortName:       shortName,
		Owner:           owner,
		Metadata:        map[string]any{},
		CreatedAt:       time.Now().UTC(),
	}
	created, err := s.connectionStore.Create(ctx, CreateConnectionInput{
		Name:            defaultConnectionName(req.Name, definition),
		IntegrationType: req.IntegrationType,
		ShortName:       shortName,
		CredentialID:    credentialID,
		Owner:           owner,
		Status:          ConnectionStatusActive,
		Event:           &event,
	})
	if err != nil {
		return Connection{}, err
	}
	return created, nil
}

func (s *Service) connectWithToken(ctx context.Context, req ConnectWithTokenRequest) (Connection, error) {
	if s == nil || s.bindingStore == nil || s.secretProvider == nil {
		return Connection{}, fmt.Errorf("core: connection service is not configured")
	}
	if err := req.Actor.Validate(); err != nil {
		return Connection{}, err
	}
	shortName := strings.TrimSpace(req.ShortName)
	definition, ok := s.directory.Get(IntegrationTypeSource, shortName)
	if !ok {
		return Connection{}, fmt.Errorf("%w: %s/%s", ErrUnknownIntegration, IntegrationTypeSource, shortName)
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return Connection{}, fmt.Errorf("core: token is required")
	}

	validated, err := ValidateAuthFields(definition, map[string]any{"token": token})
	if err != nil {
		return Connection{}, err
	}

	shouldValidate := s.config.DirectToken.ValidationEnabled()
	if req.Validate != nil {
		shouldValidate = *req.Validate
	}
	if shouldValidate {
		verifier := s.tokenVerifiers[shortName]
		if verifier == nil {
			return Connection{}, fmt.Errorf("core: no token verifier registered for %q", shortName)
		}
		if verifyErr := verifier.VerifyToken(ctx, token); verifyErr != nil {
			return Connection{}, verifyErr
		}
	}
	// Abort before persisting when the caller is already gone; nothing has
	// been written yet so all-or-nothing holds trivially.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Connection{}, ctxErr
	}

	encrypted, keyID, keyVersion, err := s.encryptFields(ctx, validated)
	if err != nil {
		return Connection{}, err
	}

	owner := OwnerRef{UserID: strings.TrimSpace(req.Actor.UserID), OrgID: strings.TrimSpace(req.Actor.OrgID)}
	event := LifecycleEvent{
		EventType:       EventTypeConnectionCreated,
		IntegrationType: IntegrationTypeSource,
		ShortName:       shortName,
		Owner:           owner,
		Metadata:        map[string]any{"direct_token": true},
		CreatedAt:       time.Now().UTC(),
	}
	connection, _, err := s.bindingStore.CreateBinding(ctx, CreateBindingInput{
		Credential: CreateCredentialInput{
			IntegrationType:   IntegrationTypeSource,
			ShortName:         shortName,
			Owner:             owner,
			EncryptedPayload:  encrypted,
			PayloadFormat:     s.credentialCodec.Format(),
			PayloadVersion:    s.credentialCodec.Version(),
			EncryptionKeyID:   keyID,
			EncryptionVersion: keyVersion,
		},
		Connection: CreateConnectionInput{
			Name:            defaultConnectionName(req.Name, definition),
			IntegrationType: IntegrationTypeSource,
			ShortName:       shortName,
			Owner:           owner,
			Status:          ConnectionStatusActive,
		},
		Event: &event,
	})
	if err != nil {
		return Connection{}, err
	}
	return connection, nil
}

func (s *Service) disconnectConnection(ctx context.Context, connectionID string, actor Actor) (Connection, error) {
	connection, err := s.getVisibleConnection(ctx, connectionID, actor)
	if err != nil {
		return Connection{}, err
	}
	if connection.Status == ConnectionStatusDisconnected {
		return connection, nil
	}

	event := NewLifecycleEvent(EventTypeConnectionDisconnected, connection)
	updated, err := s.connectionStore.UpdateStatus(ctx, connection.ID, ConnectionStatusActive, ConnectionStatusDisconnected, &event)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, ErrConflict) {
		return Connection{}, err
	}
	// Lost the race: either a concurrent disconnect won (idempotent success)
	// or a concurrent delete removed the row.
	current, getErr := s.connectionStore.Get(ctx, connection.ID)
	if getErr != nil {
		return Connection{}, getErr
	}
	if current.Status == ConnectionStatusDisconnected {
		return current, nil
	}
	return Connection{}, err
}

func (s *Service) deleteConnection(ctx context.Context, connectionID string, actor Actor) (Connection, error) {
	connection, err := s.getVisibleConnection(ctx, connectionID, actor)
	if err != nil {
		return Connection{}, err
	}
	event := NewLifecycleEvent(EventTypeConnectionDeleted, connection)
	deleted, err := s.connectionStore.DeleteCascade(ctx, connection.ID, &event)
	if err != nil {
		return Connection{}, err
	}
	return deleted, nil
}

func (s *Service) encryptFields(ctx context.Context, fields map[string]any) ([]byte, string, int, error) {
	plaintext, err := s.credentialCodec.Encode(fields)
	if err != nil {
		return nil, "", 0, err
	}
	encrypted, err := s.secretProvider.Encrypt(ctx, plaintext)
	if err != nil {
		return nil, "", 0, err
	}
	keyID := ""
	keyVersion := 0
	if meta, ok := s.secretProvider.(interface{ Metadata() (string, int) }); ok {
		keyID, keyVersion = meta.Metadata()
	}
	return encrypted, keyID, keyVersion, nil
}

func (s *Service) emitEvent(ctx context.Context, event LifecycleEvent) {
	if s == nil || s.outboxStore == nil {
		return
	}
	if err := s.outboxStore.Enqueue(ctx, event); err != nil {
		s.logError(ctx, "lifecycle event enqueue failed", map[string]any{
			"event_type": event.EventType,
			"error":      err.Error(),
		})
	}
}

func defaultConnectionName(name string, definition IntegrationDefinition) string {
	trimmed := strings.TrimSpace(name)
	if trimmed != "" {
		return trimmed
	}
	display := strings.TrimSpace(definition.DisplayName)
	if display == "" {
		display = strings.TrimSpace(definition.ShortName)
	}
	return display + " Connection"
}
