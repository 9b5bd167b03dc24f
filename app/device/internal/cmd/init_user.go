package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meta-secret/meta-secret/app/device/internal/localstate"
	"github.com/meta-secret/meta-secret/internal/model"
)

func newInitUserCommand() *cobra.Command {
	var vaultName string

	c := &cobra.Command{
		Use:   "init-user",
		Short: "associate this device with a vault, by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.close()

			km, device, err := localstate.LoadDeviceCreds(sess.repository())
			if err != nil {
				return err
			}
			defer km.Close()

			if err := localstate.SaveUserCreds(sess.repository(), model.VaultName(vaultName), device, km); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "associated with vault %q — run sign-up to create it, or join-vault to request membership\n", vaultName)
			return nil
		},
	}
	c.Flags().StringVar(&vaultName, "vault", "", "vault name to create or join")
	_ = c.MarkFlagRequired("vault")
	return c
}
