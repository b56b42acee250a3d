package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-connections/core"
)

// BindingStore persists a credential and the connection it backs in a single
// transaction, for flows where callers hand over raw secret material and
// expect one atomic outcome.
type BindingStore struct {
	db             *bun.DB
	credentialRepo repository.Repository[*credentialRecord]
	connectionRepo repository.Repository[*connectionRecord]
}

func (s *BindingStore) CreateBinding(ctx context.Context, in core.CreateBindingInput) (core.Connection, core.Credential, error) {
	if s == nil || s.db == nil || s.credentialRepo == nil || s.connectionRepo == nil {
		return core.Connection{}, core.Credential{}, fmt.Errorf("sqlstore: binding store is not configured")
	}
	if err := in.Credential.Owner.Validate(); err != nil {
		return core.Connection{}, core.Credential{}, err
	}
	if len(in.Credential.EncryptedPayload) == 0 {
		return core.Connection{}, core.Credential{}, fmt.Errorf("sqlstore: encrypted payload is required")
	}

	now := time.Now().UTC()
	var connection core.Connection
	var credential core.Credential
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		credentialRecord := newCredentialRecord(in.Credential, now)
		insertedCredential, createErr := s.credentialRepo.CreateTx(ctx, tx, credentialRecord)
		if createErr != nil {
			return createErr
		}

		connectionInput := in.Connection
		connectionInput.CredentialID = insertedCredential.ID
		connectionRecord := newConnectionRecord(connectionInput, now)
		insertedConnection, createErr := s.connectionRepo.CreateTx(ctx, tx, connectionRecord)
		if createErr != nil {
			return createErr
		}

		credential = insertedCredential.toDomain()
		connection = insertedConnection.toDomain()

		if in.Event != nil {
			event := *in.Event
			event.ConnectionID = insertedConnection.ID
			if strings.TrimSpace(event.CredentialID) == "" {
				event.CredentialID = insertedCredential.ID
			}
			return insertOutboxEvent(ctx, tx, event, now)
		}
		return nil
	})
	if err != nil {
		return core.Connection{}, core.Credential{}, err
	}
	return connection, credential, nil
}
