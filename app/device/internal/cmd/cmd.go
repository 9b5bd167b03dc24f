package cmd

import (
	"os"
)

// Initialize registers every subcommand onto rootCmd.
func Initialize() {
	rootCmd.SilenceUsage = true
	rootCmd.AddCommand(newInitDeviceCommand())
	rootCmd.AddCommand(newInitUserCommand())
	rootCmd.AddCommand(newSignUpCommand())
	rootCmd.AddCommand(newJoinVaultCommand())
	rootCmd.AddCommand(newSplitCommand())
	rootCmd.AddCommand(newRecoverCommand())
	rootCmd.AddCommand(newShowCommand())
	rootCmd.AddCommand(newInfoCommand())
	rootCmd.AddCommand(newAcceptJoinCommand())
	rootCmd.AddCommand(newAcceptRecoveryCommand())
}

// Execute runs the root command. Any error returned by a subcommand's
// RunE has already been printed by cobra with its typed-error message;
// Execute's job is only to translate that into a non-zero exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
