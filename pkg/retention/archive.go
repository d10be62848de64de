package retention

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Archive is the JSON document written for an account before it is purged.
// It captures the account and every dependent row, tombstoned or not, since
// all of them disappear with the purge.
type Archive struct {
	ArchivedAt time.Time      `json:"archived_at"`
	Account    *Account       `json:"account"`
	Configs    []*UsageConfig `json:"configs"`
	Calls      []*CallRecord  `json:"calls"`
}

// archiveAccount writes an account's archive file into dir. The file name
// carries the account ID and a timestamp, so repeated sweeps of a stuck
// account never overwrite an earlier archive.
func (s *Sweeper) archiveAccount(ctx context.Context, account *Account, dir string) error {
	configs, err := s.storage.ListConfigs(ctx, account.ID, VisibilityAll)
	if err != nil {
		return fmt.Errorf("failed to collect configurations: %w", err)
	}

	calls, err := s.storage.ListCalls(ctx, account.ID, VisibilityAll, 0, 0)
	if err != nil {
		return fmt.Errorf("failed to collect call history: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	archive := &Archive{
		ArchivedAt: time.Now().UTC(),
		Account:    account,
		Configs:    configs,
		Calls:      calls,
	}

	name := fmt.Sprintf("account-%s-%s.json", account.ID, archive.ArchivedAt.Format("2006-01-02-150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(archive); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}

	s.logger.Info("account archived before purge",
		"account_id", account.ID,
		"archive_file", path,
		"configs", len(configs),
		"calls", len(calls),
	)

	return nil
}
