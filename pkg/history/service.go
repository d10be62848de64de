package history

import (
	"context"

	"github.com/google/uuid"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention"
)

// Service answers collaborator-facing history reads. Every read goes through
// the live-account guard: a tombstoned account and everything under it is
// indistinguishable from a missing one.
type Service struct {
	storage retention.Storage
}

// NewService creates a new history query service.
func NewService(storage retention.Storage) *Service {
	return &Service{storage: storage}
}

// AccountHistory returns an account's live call records, newest first.
// limit <= 0 returns all records from offset.
func (s *Service) AccountHistory(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*retention.CallRecord, error) {
	if err := s.requireLive(ctx, accountID); err != nil {
		return nil, err
	}
	return s.storage.ListCalls(ctx, accountID, retention.VisibilityLive, limit, offset)
}

// AccountStats aggregates an account's live call history.
func (s *Service) AccountStats(ctx context.Context, accountID uuid.UUID) (*retention.AccountStats, error) {
	if err := s.requireLive(ctx, accountID); err != nil {
		return nil, err
	}
	return s.storage.AccountStats(ctx, accountID)
}

// AccountConfigs returns an account's live hyperparameter configurations.
func (s *Service) AccountConfigs(ctx context.Context, accountID uuid.UUID) ([]*retention.UsageConfig, error) {
	if err := s.requireLive(ctx, accountID); err != nil {
		return nil, err
	}
	return s.storage.ListConfigs(ctx, accountID, retention.VisibilityLive)
}

// requireLive fails with a NotFoundError when the account does not exist or
// is tombstoned.
func (s *Service) requireLive(ctx context.Context, accountID uuid.UUID) error {
	account, err := s.storage.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if account.DeletedAt != nil {
		return retention.NewAccountNotFoundError(accountID)
	}
	return nil
}
