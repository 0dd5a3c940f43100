/*
Package cli provides command-line interface utilities for the saturn
command: output formatters, typed command errors, and signal handling.

Output Formatting:

The cli package supports text and JSON output for command results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
