package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meta-secret/meta-secret/app/device/internal/localstate"
	"github.com/meta-secret/meta-secret/internal/action"
)

func newSignUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sign-up",
		Short: "create a brand-new vault with this device as its founding member",
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

			if err := action.SignUp(sess.repository(), self); err != nil {
				return err
			}

			ctx := backgroundCtx()
			if err := sess.sync(ctx, self); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "vault %q created\n", self.VaultName)
			return nil
		},
	}
}
