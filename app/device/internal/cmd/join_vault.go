package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meta-secret/meta-secret/app/device/internal/localstate"
	"github.com/meta-secret/meta-secret/internal/action"
)

func newJoinVaultCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "join-vault",
		Short: "request membership in the vault this device was initialized against",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.close()

			self, err := localstate.LoadUserData(sess.repository())
			if err != nil {
				return err
			}

			if err := action.RequestJoin(sess.repository(), self); err != nil {
				return err
			}

			ctx := backgroundCtx()
			if err := sess.sync(ctx, self); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "join request sent for vault %q, pending an existing member's accept-join\n", self.VaultName)
			return nil
		},
	}
}
