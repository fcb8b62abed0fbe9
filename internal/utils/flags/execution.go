// Package flags binds the shared gitsync command flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ExecutionDefaults describes default values for the execution flags.
type ExecutionDefaults struct {
	DryRun         bool
	AssumeYes      bool
	NonInteractive bool
}

// ExecutionFlagDefinition captures a single flag's configuration.
type ExecutionFlagDefinition struct {
	Name      string
	Usage     string
	Shorthand string
	Enabled   bool
}

// ExecutionFlagDefinitions groups execution flag definitions.
type ExecutionFlagDefinitions struct {
	DryRun         ExecutionFlagDefinition
	AssumeYes      ExecutionFlagDefinition
	NonInteractive ExecutionFlagDefinition
}

// ExecutionFlagValues reports the parsed execution flags of a command.
type ExecutionFlagValues struct {
	DryRun         bool
	AssumeYes      bool
	NonInteractive bool
}

// BindExecutionFlags attaches execution flags to the provided command using persistent scope.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults, definitions ExecutionFlagDefinitions) {
	if command == nil {
		return
	}

	persistentFlagSet := command.PersistentFlags()

	bindBoolFlag(persistentFlagSet, definitions.DryRun, defaults.DryRun)
	bindBoolFlag(persistentFlagSet, definitions.AssumeYes, defaults.AssumeYes)
	bindBoolFlag(persistentFlagSet, definitions.NonInteractive, defaults.NonInteractive)
}

// ReadExecutionFlags collects the execution flag values visible to the command.
// Flags the command never registered read as false.
func ReadExecutionFlags(command *cobra.Command) (ExecutionFlagValues, error) {
	if command == nil {
		return ExecutionFlagValues{}, nil
	}

	dryRun, dryRunError := lookupBool(command, DryRunFlagName)
	if dryRunError != nil {
		return ExecutionFlagValues{}, dryRunError
	}
	assumeYes, assumeYesError := lookupBool(command, AssumeYesFlagName)
	if assumeYesError != nil {
		return ExecutionFlagValues{}, assumeYesError
	}
	nonInteractive, nonInteractiveError := lookupBool(command, NonInteractiveFlagName)
	if nonInteractiveError != nil {
		return ExecutionFlagValues{}, nonInteractiveError
	}

	return ExecutionFlagValues{DryRun: dryRun, AssumeYes: assumeYes, NonInteractive: nonInteractive}, nil
}

func lookupBool(command *cobra.Command, flagName string) (bool, error) {
	flagSet := command.Flags()
	if flagSet.Lookup(flagName) == nil {
		flagSet = command.InheritedFlags()
		if flagSet.Lookup(flagName) == nil {
			return false, nil
		}
	}
	return flagSet.GetBool(flagName)
}

func bindBoolFlag(flagSet *pflag.FlagSet, definition ExecutionFlagDefinition, defaultValue bool) {
	if flagSet == nil {
		return
	}
	if !definition.Enabled || len(definition.Name) == 0 {
		return
	}
	if flagSet.Lookup(definition.Name) != nil {
		return
	}

	if len(definition.Shorthand) > 0 {
		flagSet.BoolP(definition.Name, definition.Shorthand, defaultValue, definition.Usage)
		return
	}

	flagSet.Bool(definition.Name, defaultValue, definition.Usage)
}
