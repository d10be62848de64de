/*
Package cli provides command-line interface utilities for the mcla command.

The cli package includes output formatters, progress reporters, and common
CLI helpers used by the mcla command and its retention subcommands.

Output Formatting:

The cli package supports multiple output formats (text, JSON, CSV) for
displaying command results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

CSV output requires the data to implement CSVMarshaler; row-shaped results
such as pending-deletion listings do.

Progress Reporting:

Long-running operations such as a manual retention sweep report per-account
progress:

	progress := cli.NewProgressReporter(os.Stdout)
	progress.Start(totalAccounts)
	for i := int64(0); i < totalAccounts; i++ {
		// Purge one account
		progress.Update(i + 1)
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, cancel := cli.SetupSignalHandler()
	defer cancel()
	// ctx is cancelled on the first signal; a second signal exits
	// immediately without waiting for cleanup
*/
package cli
