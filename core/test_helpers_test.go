package core

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

type testSecretProvider struct{}

func (testSecretProvider) Encrypt(_ context.Context, plaintext []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("test secret provider: plaintext is required")
	}
	encoded := base64.StdEncoding.EncodeToString(plaintext)
	return []byte("enc:" + encoded), nil
}

func (testSecretProvider) Decrypt(_ context.Context, ciphertext []byte) ([]byte, error) {
	value := strings.TrimSpace(string(ciphertext))
	if value == "" || !strings.HasPrefix(value, "enc:") {
		return nil, fmt.Errorf("test secret provider: invalid ciphertext")
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, "enc:"))
	if err != nil {
		return nil, fmt.Errorf("test secret provider: decode ciphertext: %w", err)
	}
	return decoded, nil
}

func (testSecretProvider) Metadata() (string, int) {
	return "test-key", 1
}

type memoryState struct {
	mu          sync.Mutex
	nextConn    int
	nextCred    int
	nextEvent   int
	connections map[string]Connection
	credentials map[string]Credential
	events      []LifecycleEvent
}

func newMemoryState() *memoryState {
	return &memoryState{
		connections: map[string]Connection{},
		credentials: map[string]Credential{},
	}
}

func (s *memoryState) createCredentialLocked(in CreateCredentialInput) Credential {
	s.nextCred++
	now := time.Now().UTC()
	credential := Credential{
		ID:                fmt.Sprintf("cred_%d", s.nextCred),
		IntegrationType:   in.IntegrationType,
		ShortName:         in.ShortName,
		EncryptedPayload:  append([]byte(nil), in.EncryptedPayload...),
		PayloadFormat:     in.PayloadFormat,
		PayloadVersion:    in.PayloadVersion,
		EncryptionKeyID:   in.EncryptionKeyID,
		EncryptionVersion: in.EncryptionVersion,
		Owner:             in.Owner,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.credentials[credential.ID] = credential
	return credential
}

func (s *memoryState) createConnectionLocked(in CreateConnectionInput) Connection {
	s.nextConn++
	now := time.Now().UTC()
	status := in.Status
	if strings.TrimSpace(string(status)) == "" {
		status = ConnectionStatusActive
	}
	connection := Connection{
		ID:              fmt.Sprintf("conn_%d", s.nextConn),
		Name:            in.Name,
		IntegrationType: in.IntegrationType,
		ShortName:       in.ShortName,
		CredentialID:    in.CredentialID,
		Status:          status,
		Owner:           in.Owner,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.connections[connection.ID] = connection
	return connection
}

func (s *memoryState) appendEventLocked(event LifecycleEvent) {
	s.nextEvent++
	event.ID = fmt.Sprintf("evt_%d", s.nextEvent)
	s.events = append(s.events, event)
}

func (s *memoryState) eventTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]string, 0, len(s.events))
	for _, event := range s.events {
		types = append(types, event.EventType)
	}
	return types
}

type memoryConnectionStore struct {
	state *memoryState
}

func (s *memoryConnectionStore) Create(_ context.Context, in CreateConnectionInput) (Connection, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if err := in.Owner.Validate(); err != nil {
		return Connection{}, err
	}
	connection := s.state.createConnectionLocked(in)
	if in.Event != nil {
		event := *in.Event
		event.ConnectionID = connection.ID
		if event.CredentialID == "" {
			event.CredentialID = connection.CredentialID
		}
		s.state.appendEventLocked(event)
	}
	return connection, nil
}

func (s *memoryConnectionStore) Get(_ context.Context, id string) (Connection, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	connection, ok := s.state.connections[strings.TrimSpace(id)]
	if !ok {
		return Connection{}, fmt.Errorf("%w: connection %q", ErrNotFound, id)
	}
	return connection, nil
}

func (s *memoryConnectionStore) ListByOwner(_ context.Context, owner OwnerRef) ([]Connection, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	return s.listLocked(owner, ""), nil
}

func (s *memoryConnectionStore) ListByOwnerAndType(_ context.Context, owner OwnerRef, integrationType IntegrationType) ([]Connection, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	return s.listLocked(owner, integrationType), nil
}

func (s *memoryConnectionStore) listLocked(owner OwnerRef, integrationType IntegrationType) []Connection {
	out := make([]Connection, 0)
	for _, connection := range s.state.connections {
		if !ownerVisible(owner, connection.Owner) {
			continue
		}
		if integrationType != "" && connection.IntegrationType != integrationType {
			continue
		}
		out = append(out, connection)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func ownerVisible(requester OwnerRef, owner OwnerRef) bool {
	if requester.UserID != "" && requester.UserID == owner.UserID {
		return true
	}
	if requester.OrgID != "" && requester.OrgID == owner.OrgID {
		return true
	}
	return false
}

func (s *memoryConnectionStore) FindActiveByCredential(_ context.Context, credentialID string) (Connection, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for _, connection := range s.state.connections {
		if connection.CredentialID == credentialID && connection.Status == ConnectionStatusActive {
			return connection, nil
		}
	}
	return Connection{}, fmt.Errorf("%w: no active connection for credential %q", ErrNotFound, credentialID)
}

func (s *memoryConnectionStore) UpdateStatus(_ context.Context, id string, from ConnectionStatus, to ConnectionStatus, event *LifecycleEvent) (Connection, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	connection, ok := s.state.connections[strings.TrimSpace(id)]
	if !ok {
		return Connection{}, fmt.Errorf("%w: connection %q", ErrNotFound, id)
	}
	if connection.Status != from {
		return Connection{}, fmt.Errorf("%w: connection %q is %q, expected %q", ErrConflict, id, connection.Status, from)
	}
	if err := connection.TransitionTo(to, time.Now().UTC()); err != nil {
		return Connection{}, err
	}
	s.state.connections[connection.ID] = connection
	if event != nil {
		s.state.appendEventLocked(*event)
	}
	return connection, nil
}

func (s *memoryConnectionStore) DeleteCascade(_ context.Context, id string, event *LifecycleEvent) (Connection, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	connection, ok := s.state.connections[strings.TrimSpace(id)]
	if !ok {
		return Connection{}, fmt.Errorf("%w: connection %q", ErrNotFound, id)
	}
	delete(s.state.connections, connection.ID)
	delete(s.state.credentials, connection.CredentialID)
	if event != nil {
		s.state.appendEventLocked(*event)
	}
	return connection, nil
}

type memoryCredentialStore struct {
	state *memoryState
}

func (s *memoryCredentialStore) Create(_ context.Context, in CreateCredentialInput) (Credential, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if err := in.Owner.Validate(); err != nil {
		return Credential{}, err
	}
	return s.state.createCredentialLocked(in), nil
}

func (s *memoryCredentialStore) Get(_ context.Context, id string) (Credential, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	credential, ok := s.state.credentials[strings.TrimSpace(id)]
	if !ok {
		return Credential{}, fmt.Errorf("%w: credential %q", ErrNotFound, id)
	}
	return credential, nil
}

func (s *memoryCredentialStore) Delete(_ context.Context, id string) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	delete(s.state.credentials, strings.TrimSpace(id))
	return nil
}

type memoryBindingStore struct {
	state   *memoryState
	failErr error
}

func (s *memoryBindingStore) CreateBinding(_ context.Context, in CreateBindingInput) (Connection, Credential, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if s.failErr != nil {
		return Connection{}, Credential{}, s.failErr
	}
	credential := s.state.createCredentialLocked(in.Credential)
	connectionInput := in.Connection
	connectionInput.CredentialID = credential.ID
	connection := s.state.createConnectionLocked(connectionInput)
	if in.Event != nil {
		event := *in.Event
		event.ConnectionID = connection.ID
		event.CredentialID = credential.ID
		s.state.appendEventLocked(event)
	}
	return connection, credential, nil
}

type stubTokenVerifier struct {
	shortName string
	err       error
	calls     int
}

func (v *stubTokenVerifier) ShortName() string { return v.shortName }

func (v *stubTokenVerifier) VerifyToken(_ context.Context, token string) error {
	v.calls++
	if v.err != nil {
		return v.err
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: empty token", ErrTokenInvalid)
	}
	return nil
}

func testDirectory(t *testing.T) *IntegrationDirectory {
	t.Helper()
	directory := NewIntegrationDirectory()
	definitions := []IntegrationDefinition{
		{
			IntegrationType: IntegrationTypeSource,
			ShortName:       "slack",
			DisplayName:     "Slack",
			AuthFields: []AuthField{
				{Name: "token", Type: AuthFieldTypeString, Required: true, Secret: true},
			},
		},
		{
			IntegrationType: IntegrationTypeDestination,
			ShortName:       "postgres",
			DisplayName:     "PostgreSQL",
			AuthFields: []AuthField{
				{Name: "host", Type: AuthFieldTypeString, Required: true},
				{Name: "port", Type: AuthFieldTypeInt, Required: true},
				{Name: "password", Type: AuthFieldTypeString, Required: true, Secret: true},
				{Name: "ssl", Type: AuthFieldTypeBool},
			},
		},
		{
			IntegrationType: IntegrationTypeEmbeddingModel,
			ShortName:       "openai",
			DisplayName:     "OpenAI",
			AuthFields: []AuthField{
				{Name: "api_key", Type: AuthFieldTypeString, Required: true, Secret: true},
			},
		},
	}
	for _, definition := range definitions {
		if err := directory.Register(definition); err != nil {
			t.Fatalf("register %s/%s: %v", definition.IntegrationType, definition.ShortName, err)
		}
	}
	return directory
}

func newTestService(t *testing.T, options ...Option) (*Service, *memoryState) {
	t.Helper()
	state := newMemoryState()
	base := []Option{
		WithSecretProvider(testSecretProvider{}),
		WithDirectory(testDirectory(t)),
		WithConnectionStore(&memoryConnectionStore{state: state}),
		WithCredentialStore(&memoryCredentialStore{state: state}),
		WithBindingStore(&memoryBindingStore{state: state}),
	}
	service, err := NewService(Config{}, append(base, options...)...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return service, state
}

func boolRef(value bool) *bool {
	return &value
}
