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

type CredentialStore struct {
	db   *bun.DB
	repo repository.Repository[*credentialRecord]
}

func (s *CredentialStore) Create(ctx context.Context, in core.CreateCredentialInput) (core.Credential, error) {
	if s == nil || s.repo == nil {
		return core.Credential{}, fmt.Errorf("sqlstore: credential store is not configured")
	}
	if err := in.Owner.Validate(); err != nil {
		return core.Credential{}, err
	}
	if err := in.IntegrationType.Validate(); err != nil {
		return core.Credential{}, err
	}
	if strings.TrimSpace(in.ShortName) == "" {
		return core.Credential{}, fmt.Errorf("sqlstore: integration short name is required")
	}
	if len(in.EncryptedPayload) == 0 {
		return core.Credential{}, fmt.Errorf("sqlstore: encrypted payload is required")
	}

	record := newCredentialRecord(in, time.Now().UTC())
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return core.Credential{}, err
	}
	return created.toDomain(), nil
}

func (s *CredentialStore) Get(ctx context.Context, id string) (core.Credential, error) {
	if s == nil || s.repo == nil {
		return core.Credential{}, fmt.Errorf("sqlstore: credential store is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return core.Credential{}, fmt.Errorf("sqlstore: credential id is required")
	}
	var record *credentialRecord
	err := withRetry(ctx, func() error {
		found, getErr := s.repo.GetByID(ctx, trimmedID)
		if getErr != nil {
			return mapNotFound(getErr, "credential", trimmedID)
		}
		record = found
		return nil
	})
	if err != nil {
		return core.Credential{}, err
	}
	return record.toDomain(), nil
}

func (s *CredentialStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: credential store is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return fmt.Errorf("sqlstore: credential id is required")
	}
	_, err := s.db.NewDelete().
		Model((*credentialRecord)(nil)).
		Where("id = ?", trimmedID).
		Exec(ctx)
	return err
}
