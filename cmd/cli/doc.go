// Package cli constructs the gitsync command-line interface. It wires the
// Cobra root command, the layered configuration loader, and the zap logger,
// and registers the sync subcommand.
package cli
