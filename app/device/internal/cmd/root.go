package cmd

import (
	"github.com/spf13/cobra"

	"github.com/meta-secret/meta-secret/internal/config"
)

const appName = "msec"

// rootCmd is the root command for the meta-secret CLI. It performs no
// action itself; every operation lives in a subcommand registered by
// Initialize.
var rootCmd = &cobra.Command{
	Use:   "msec",
	Short: appName + " - decentralized, Shamir-sharded password manager",
	Long: appName + " v" + config.Version + `
>> A vault's secrets are split into shares and replicated across its
>> members' devices through an event-sourced relay; no party other
>> than the devices holding a quorum of shares can recover a secret.`,
}
