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

type ConnectionStore struct {
	db   *bun.DB
	repo repository.Repository[*connectionRecord]
}

func (s *ConnectionStore) Create(ctx context.Context, in core.CreateConnectionInput) (core.Connection, error) {
	if s == nil || s.repo == nil || s.db == nil {
		return core.Connection{}, fmt.Errorf("sqlstore: connection store is not configured")
	}
	if err := in.Owner.Validate(); err != nil {
		return core.Connection{}, err
	}
	if err := in.IntegrationType.Validate(); err != nil {
		return core.Connection{}, err
	}
	if strings.TrimSpace(in.ShortName) == "" {
		return core.Connection{}, fmt.Errorf("sqlstore: integration short name is required")
	}
	if strings.TrimSpace(in.CredentialID) == "" {
		return core.Connection{}, fmt.Errorf("sqlstore: credential id is required")
	}

	now := time.Now().UTC()
	record := newConnectionRecord(in, now)

	var created *connectionRecord
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		inserted, createErr := s.repo.CreateTx(ctx, tx, record)
		if createErr != nil {
			return createErr
		}
		created = inserted
		if in.Event != nil {
			event := *in.Event
			event.ConnectionID = inserted.ID
			if strings.TrimSpace(event.CredentialID) == "" {
				event.CredentialID = inserted.CredentialID
			}
			if insertErr := insertOutboxEvent(ctx, tx, event, now); insertErr != nil {
				return insertErr
			}
		}
		return nil
	})
	if err != nil {
		return core.Connection{}, err
	}
	return created.toDomain(), nil
}

func (s *ConnectionStore) Get(ctx context.Context, id string) (core.Connection, error) {
	if s == nil || s.repo == nil {
		return core.Connection{}, fmt.Errorf("sqlstore: connection store is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return core.Connection{}, fmt.Errorf("sqlstore: connection id is required")
	}
	var record *connectionRecord
	err := withRetry(ctx, func() error {
		found, getErr := s.repo.GetByID(ctx, trimmedID)
		if getErr != nil {
			return mapNotFound(getErr, "connection", trimmedID)
		}
		record = found
		return nil
	})
	if err != nil {
		return core.Connection{}, err
	}
	return record.toDomain(), nil
}

func (s *ConnectionStore) ListByOwner(ctx context.Context, owner core.OwnerRef) ([]core.Connection, error) {
	return s.list(ctx, owner, "")
}

func (s *ConnectionStore) ListByOwnerAndType(ctx context.Context, owner core.OwnerRef, integrationType core.IntegrationType) ([]core.Connection, error) {
	if err := integrationType.Validate(); err != nil {
		return nil, err
	}
	return s.list(ctx, owner, integrationType)
}

func (s *ConnectionStore) list(ctx context.Context, owner core.OwnerRef, integrationType core.IntegrationType) ([]core.Connection, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: connection store is not configured")
	}
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	userID := strings.TrimSpace(owner.UserID)
	orgID := strings.TrimSpace(owner.OrgID)

	criteria := []repository.SelectCriteria{
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			if orgID == "" {
				return q.Where("?TableAlias.owner_user_id = ?", userID)
			}
			return q.Where("(?TableAlias.owner_user_id = ? OR ?TableAlias.owner_org_id = ?)", userID, orgID)
		}),
		repository.OrderBy("created_at ASC"),
	}
	if integrationType != "" {
		criteria = append(criteria, repository.SelectBy("integration_type", "=", string(integrationType)))
	}

	var records []*connectionRecord
	err := withRetry(ctx, func() error {
		found, _, listErr := s.repo.List(ctx, criteria...)
		if listErr != nil {
			return listErr
		}
		records = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]core.Connection, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *ConnectionStore) FindActiveByCredential(ctx context.Context, credentialID string) (core.Connection, error) {
	if s == nil || s.repo == nil {
		return core.Connection{}, fmt.Errorf("sqlstore: connection store is not configured")
	}
	trimmedID := strings.TrimSpace(credentialID)
	if trimmedID == "" {
		return core.Connection{}, fmt.Errorf("sqlstore: credential id is required")
	}
	var records []*connectionRecord
	err := withRetry(ctx, func() error {
		found, _, listErr := s.repo.List(ctx,
			repository.SelectBy("credential_id", "=", trimmedID),
			repository.SelectBy("status", "=", string(core.ConnectionStatusActive)),
			repository.SelectPaginate(1, 0),
		)
		if listErr != nil {
			return listErr
		}
		records = found
		return nil
	})
	if err != nil {
		return core.Connection{}, err
	}
	if len(records) == 0 {
		return core.Connection{}, fmt.Errorf("%w: no active connection for credential %q", core.ErrNotFound, trimmedID)
	}
	return records[0].toDomain(), nil
}

// UpdateStatus applies the from -> to transition with a guarded update. Zero
// affected rows means either the row vanished or another writer moved it
// first; the two cases surface as ErrNotFound and ErrConflict respectively.
func (s *ConnectionStore) UpdateStatus(ctx context.Context, id string, from core.ConnectionStatus, to core.ConnectionStatus, event *core.LifecycleEvent) (core.Connection, error) {
	if s == nil || s.db == nil {
		return core.Connection{}, fmt.Errorf("sqlstore: connection store is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return core.Connection{}, fmt.Errorf("sqlstore: connection id is required")
	}
	if !core.ConnectionTransitionAllowed(from, to) {
		return core.Connection{}, fmt.Errorf("%w: %s -> %s", core.ErrInvalidConnectionStatusTransition, from, to)
	}

	now := time.Now().UTC()
	var updated core.Connection
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, execErr := tx.NewUpdate().
			Model((*connectionRecord)(nil)).
			Set("status = ?", string(to)).
			Set("updated_at = ?", now).
			Where("id = ?", trimmedID).
			Where("status = ?", string(from)).
			Exec(ctx)
		if execErr != nil {
			return execErr
		}
		affected, affectedErr := result.RowsAffected()
		if affectedErr != nil {
			return affectedErr
		}
		if affected == 0 {
			exists, existsErr := tx.NewSelect().
				Model((*connectionRecord)(nil)).
				Where("id = ?", trimmedID).
				Exists(ctx)
			if existsErr != nil {
				return existsErr
			}
			if !exists {
				return fmt.Errorf("%w: connection %q", core.ErrNotFound, trimmedID)
			}
			return fmt.Errorf("%w: connection %q is no longer %q", core.ErrConflict, trimmedID, from)
		}

		record := new(connectionRecord)
		if scanErr := tx.NewSelect().
			Model(record).
			Where("id = ?", trimmedID).
			Scan(ctx); scanErr != nil {
			return scanErr
		}
		updated = record.toDomain()

		if event != nil {
			outboxEvent := *event
			outboxEvent.ConnectionID = trimmedID
			if strings.TrimSpace(outboxEvent.CredentialID) == "" {
				outboxEvent.CredentialID = record.CredentialID
			}
			return insertOutboxEvent(ctx, tx, outboxEvent, now)
		}
		return nil
	})
	if err != nil {
		return core.Connection{}, err
	}
	return updated, nil
}

// DeleteCascade removes the connection row, its backing credential, and writes
// the lifecycle event in one transaction.
func (s *ConnectionStore) DeleteCascade(ctx context.Context, id string, event *core.LifecycleEvent) (core.Connection, error) {
	if s == nil || s.db == nil {
		return core.Connection{}, fmt.Errorf("sqlstore: connection store is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return core.Connection{}, fmt.Errorf("sqlstore: connection id is required")
	}

	now := time.Now().UTC()
	var deleted core.Connection
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record := new(connectionRecord)
		if scanErr := tx.NewSelect().
			Model(record).
			Where("id = ?", trimmedID).
			Scan(ctx); scanErr != nil {
			return mapNotFound(scanErr, "connection", trimmedID)
		}

		if _, execErr := tx.NewDelete().
			Model((*connectionRecord)(nil)).
			Where("id = ?", trimmedID).
			Exec(ctx); execErr != nil {
			return execErr
		}
		if strings.TrimSpace(record.CredentialID) != "" {
			if _, execErr := tx.NewDelete().
				Model((*credentialRecord)(nil)).
				Where("id = ?", record.CredentialID).
				Exec(ctx); execErr != nil {
				return execErr
			}
		}
		deleted = record.toDomain()

		if event != nil {
			outboxEvent := *event
			outboxEvent.ConnectionID = trimmedID
			if strings.TrimSpace(outboxEvent.CredentialID) == "" {
				outboxEvent.CredentialID = record.CredentialID
			}
			return insertOutboxEvent(ctx, tx, outboxEvent, now)
		}
		return nil
	})
	if err != nil {
		return core.Connection{}, err
	}
	return deleted, nil
}
