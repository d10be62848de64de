package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/cli"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/config"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var retentionFlags struct {
	format string
	dryRun bool
}

var retentionCmd = &cobra.Command{
	Use:   "retention",
	Short: "Manage account deletion and recovery",
	Long: `Inspect and operate the account retention lifecycle directly on the
configured storage backend.

Accounts can be addressed by ID or, while they are still live, by
username. Tombstoned accounts are invisible to username lookup, so
recovery operations take the account ID printed at deletion time.

Subcommands:
  preview  - Show what deleting an account would take with it
  delete   - Soft-delete an account and its dependents
  restore  - Restore a tombstoned account within the recovery window
  pending  - List tombstoned accounts awaiting recovery or purge
  sweep    - Permanently purge accounts past their recovery deadline

Examples:
  # Inspect an account before deleting it
  mcla retention preview alice

  # Soft-delete, then change your mind
  mcla retention delete alice
  mcla retention restore 6ba7b810-9dad-11d1-80b4-00c04fd430c8

  # Export the pending list for review
  mcla retention pending --format csv > pending.csv

  # Purge expired accounts now instead of waiting for the schedule
  mcla retention sweep`,
}

var retentionPreviewCmd = &cobra.Command{
	Use:   "preview <account>",
	Short: "Show what deleting an account would take with it",
	Long: `Show the dependent configurations and call history records a deletion
would cascade over, without changing anything.

For a live account the preview describes a hypothetical deletion. For a
tombstoned account it describes the pending deletion, including the
recovery deadline.`,
	Args: cobra.ExactArgs(1),
	RunE: previewRetention,
}

var retentionDeleteCmd = &cobra.Command{
	Use:   "delete <account>",
	Short: "Soft-delete an account and its dependents",
	Long: `Tombstone an account together with its live configurations and call
history. The account stays recoverable until the recovery window
expires; after that, the next sweep removes it permanently.

The account ID needed for restore is printed on success.`,
	Args: cobra.ExactArgs(1),
	RunE: deleteRetention,
}

var retentionRestoreCmd = &cobra.Command{
	Use:   "restore <account-id>",
	Short: "Restore a tombstoned account",
	Long: `Clear an account's tombstone and those of the dependents deleted with
it. Dependents tombstoned separately before the account keep their own
tombstones.

Tombstoned accounts are invisible to username lookup, so restore takes
the account ID.`,
	Args: cobra.ExactArgs(1),
	RunE: restoreRetention,
}

var retentionPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List tombstoned accounts awaiting recovery or purge",
	Args:  cobra.NoArgs,
	RunE:  pendingRetention,
}

var retentionSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Permanently purge accounts past their recovery deadline",
	Long: `Run one sweep pass over tombstoned accounts whose recovery deadline has
passed, removing them and all their data permanently.

The pass continues past individual failures and reports them at the
end; a later sweep retries. Interrupting with Ctrl+C stops after the
account currently being purged.

Examples:
  # See what a sweep would remove
  mcla retention sweep --dry-run

  # Purge now
  mcla retention sweep`,
	Args: cobra.NoArgs,
	RunE: sweepRetention,
}

func init() {
	rootCmd.AddCommand(retentionCmd)
	retentionCmd.AddCommand(
		retentionPreviewCmd,
		retentionDeleteCmd,
		retentionRestoreCmd,
		retentionPendingCmd,
		retentionSweepCmd,
	)

	retentionPreviewCmd.Flags().StringVar(&retentionFlags.format, "format", "text", "output format: text, json")
	retentionDeleteCmd.Flags().StringVar(&retentionFlags.format, "format", "text", "output format: text, json")
	retentionRestoreCmd.Flags().StringVar(&retentionFlags.format, "format", "text", "output format: text, json")
	retentionPendingCmd.Flags().StringVar(&retentionFlags.format, "format", "text", "output format: text, json, csv")
	retentionSweepCmd.Flags().StringVar(&retentionFlags.format, "format", "text", "output format: text, json")
	retentionSweepCmd.Flags().BoolVar(&retentionFlags.dryRun, "dry-run", false, "list expired accounts without purging them")
}

// openRetention loads the configuration and opens the configured storage
// backend with a retention engine over it. The caller closes the storage.
func openRetention() (retention.Storage, *retention.Engine, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	storage, err := openStore(cfg)
	if err != nil {
		return nil, nil, cli.NewCommandError("retention", err)
	}

	return storage, retention.NewEngine(storage, retentionConfig(cfg)), nil
}

// resolveAccount resolves an account argument that is either an account ID
// or a live account's username. Tombstoned accounts only resolve by ID.
func resolveAccount(ctx context.Context, storage retention.Storage, arg string) (uuid.UUID, error) {
	if id, err := uuid.Parse(arg); err == nil {
		return id, nil
	}

	account, err := storage.GetAccountByUsername(ctx, arg)
	if err != nil {
		return uuid.Nil, err
	}
	return account.ID, nil
}

func previewRetention(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(retentionFlags.format)
	if err != nil {
		return err
	}

	storage, engine, err := openRetention()
	if err != nil {
		return err
	}
	defer storage.Close()

	ctx := context.Background()
	accountID, err := resolveAccount(ctx, storage, args[0])
	if err != nil {
		return cli.NewCommandError("retention", err)
	}

	preview, err := engine.Preview(ctx, accountID)
	if err != nil {
		return cli.NewCommandError("retention", err)
	}

	if format == cli.FormatText {
		return outputPreviewText(os.Stdout, preview)
	}
	return cli.NewFormatter(format).FormatTo(os.Stdout, preview)
}

func deleteRetention(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(retentionFlags.format)
	if err != nil {
		return err
	}

	storage, engine, err := openRetention()
	if err != nil {
		return err
	}
	defer storage.Close()

	ctx := context.Background()
	accountID, err := resolveAccount(ctx, storage, args[0])
	if err != nil {
		return cli.NewCommandError("retention", err)
	}

	result, err := engine.SoftDelete(ctx, accountID)
	if err != nil {
		return cli.NewCommandError("retention", err)
	}

	if format == cli.FormatText {
		return outputDeletionText(os.Stdout, result)
	}
	return cli.NewFormatter(format).FormatTo(os.Stdout, result)
}

func restoreRetention(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(retentionFlags.format)
	if err != nil {
		return err
	}

	storage, engine, err := openRetention()
	if err != nil {
		return err
	}
	defer storage.Close()

	ctx := context.Background()
	accountID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid account ID %q (tombstoned accounts resolve by ID only): %w", args[0], err)
	}

	result, err := engine.Restore(ctx, accountID)
	if err != nil {
		return cli.NewCommandError("retention", err)
	}

	if format == cli.FormatText {
		return outputRestoreText(os.Stdout, result)
	}
	return cli.NewFormatter(format).FormatTo(os.Stdout, result)
}

func pendingRetention(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(retentionFlags.format)
	if err != nil {
		return err
	}

	storage, engine, err := openRetention()
	if err != nil {
		return err
	}
	defer storage.Close()

	pending, err := engine.ListPendingDeletion(context.Background())
	if err != nil {
		return cli.NewCommandError("retention", err)
	}

	if format == cli.FormatText {
		return outputPendingText(os.Stdout, pending)
	}
	return cli.NewFormatter(format).FormatTo(os.Stdout, &pendingList{
		Total:   len(pending),
		Pending: pending,
	})
}

func sweepRetention(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(retentionFlags.format)
	if err != nil {
		return err
	}

	storage, engine, err := openRetention()
	if err != nil {
		return err
	}
	defer storage.Close()

	ctx, cancel := cli.SetupSignalHandler()
	defer cancel()

	if retentionFlags.dryRun {
		pending, err := engine.ListPendingDeletion(ctx)
		if err != nil {
			return cli.NewCommandError("retention", err)
		}
		expired := make([]*retention.PendingDeletion, 0, len(pending))
		for _, p := range pending {
			if p.Expired {
				expired = append(expired, p)
			}
		}

		if format == cli.FormatText {
			return outputDryRunText(os.Stdout, expired)
		}
		return cli.NewFormatter(format).FormatTo(os.Stdout, &pendingList{
			Total:   len(expired),
			Pending: expired,
		})
	}

	sweeper := retention.NewSweeper(storage, engine)

	var progress cli.ProgressReporter
	progressStarted := false
	if format == cli.FormatText {
		progress = cli.NewProgressReporter(os.Stdout)
		sweeper.OnProgress = func(done, total int) {
			if !progressStarted {
				progress.Start(int64(total))
				progressStarted = true
			}
			progress.Update(int64(done))
		}
	}

	result, err := sweeper.Sweep(ctx)

	var partial *retention.PartialSweepError
	isPartial := errors.As(err, &partial)
	if progressStarted {
		if err == nil || isPartial {
			progress.Finish()
		} else {
			progress.Error(err)
		}
	}

	if err != nil && !isPartial {
		return cli.NewCommandError("retention", err)
	}

	if format == cli.FormatText {
		if err := outputSweepText(os.Stdout, result); err != nil {
			return err
		}
	} else {
		if err := cli.NewFormatter(format).FormatTo(os.Stdout, result); err != nil {
			return err
		}
	}

	// A partial sweep still reports its results, but the exit code should
	// tell cron jobs that something needs attention.
	if isPartial {
		return cli.NewCommandError("retention", partial)
	}
	return nil
}

// pendingList is the result envelope for the pending and sweep --dry-run
// commands.
type pendingList struct {
	Total   int                          `json:"total"`
	Pending []*retention.PendingDeletion `json:"pending"`
}

func (l *pendingList) CSVHeader() []string {
	return []string{"account_id", "username", "email", "deleted_at", "recovery_deadline", "expired"}
}

func (l *pendingList) CSVRecords() [][]string {
	records := make([][]string, 0, len(l.Pending))
	for _, p := range l.Pending {
		records = append(records, []string{
			p.AccountID.String(),
			p.Username,
			p.Email,
			p.DeletedAt.Format(time.RFC3339),
			p.RecoveryDeadline.Format(time.RFC3339),
			strconv.FormatBool(p.Expired),
		})
	}
	return records
}

func outputPreviewText(w io.Writer, preview *retention.DeletionPreview) error {
	fmt.Fprintf(w, "Account: %s (%s)\n", preview.Username, preview.AccountID)
	fmt.Fprintf(w, "State: %s\n", preview.State)
	if preview.DeletedAt != nil {
		fmt.Fprintf(w, "Deleted At: %s\n", preview.DeletedAt.Format(time.RFC3339))
	}
	if preview.RecoveryDeadline != nil {
		fmt.Fprintf(w, "Recovery Deadline: %s\n", preview.RecoveryDeadline.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Dependents: %d calls, %d configurations\n", preview.Counts.Calls, preview.Counts.Configs)
	fmt.Fprintln(w)
	fmt.Fprintln(w, preview.Summary)
	return nil
}

func outputDeletionText(w io.Writer, result *retention.DeletionResult) error {
	fmt.Fprintf(w, "✓ Account %s soft-deleted\n", result.Username)
	fmt.Fprintf(w, "Deleted At: %s\n", result.DeletedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Recovery Deadline: %s\n", result.RecoveryDeadline.Format(time.RFC3339))
	fmt.Fprintf(w, "Cascaded: %d calls, %d configurations\n", result.Counts.Calls, result.Counts.Configs)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Restore before the deadline with: mcla retention restore %s\n", result.AccountID)
	return nil
}

func outputRestoreText(w io.Writer, result *retention.RestoreResult) error {
	fmt.Fprintf(w, "✓ Account %s restored\n", result.Username)
	fmt.Fprintf(w, "Restored At: %s\n", result.RestoredAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Recovered: %d calls, %d configurations\n", result.Counts.Calls, result.Counts.Configs)
	return nil
}

func outputPendingText(w io.Writer, pending []*retention.PendingDeletion) error {
	fmt.Fprintf(w, "Pending deletions: %d\n", len(pending))
	if len(pending) == 0 {
		return nil
	}
	fmt.Fprintln(w)

	for _, p := range pending {
		status := "recoverable until " + p.RecoveryDeadline.Format(time.RFC3339)
		if p.Expired {
			status = "expired, awaiting sweep"
		}
		fmt.Fprintf(w, "%s  %-20s deleted %s  (%s)\n",
			p.AccountID, p.Username, p.DeletedAt.Format(time.RFC3339), status)
	}
	return nil
}

func outputDryRunText(w io.Writer, expired []*retention.PendingDeletion) error {
	if len(expired) == 0 {
		fmt.Fprintln(w, "Nothing to purge.")
		return nil
	}

	fmt.Fprintf(w, "Would purge %d expired accounts:\n", len(expired))
	for _, p := range expired {
		fmt.Fprintf(w, "  %s  %-20s deleted %s\n",
			p.AccountID, p.Username, p.DeletedAt.Format(time.RFC3339))
	}
	return nil
}

func outputSweepText(w io.Writer, result *retention.SweepResult) error {
	if result.PurgedCount == 0 && len(result.Failures) == 0 {
		if result.Skipped > 0 {
			fmt.Fprintf(w, "Nothing to purge (%d accounts left the expired set).\n", result.Skipped)
		} else {
			fmt.Fprintln(w, "Nothing to purge.")
		}
		return nil
	}

	fmt.Fprintf(w, "Purged %d accounts", result.PurgedCount)
	if result.Skipped > 0 {
		fmt.Fprintf(w, " (%d skipped)", result.Skipped)
	}
	fmt.Fprintln(w)
	for _, id := range result.Purged {
		fmt.Fprintf(w, "  %s\n", id)
	}

	if len(result.Failures) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%d accounts failed to purge:\n", len(result.Failures))
		for _, f := range result.Failures {
			fmt.Fprintf(w, "  %s: %s\n", f.AccountID, f.Reason)
		}
	}
	return nil
}
