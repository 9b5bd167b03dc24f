package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meta-secret/meta-secret/app/device/internal/localstate"
	"github.com/meta-secret/meta-secret/internal/action"
	"github.com/meta-secret/meta-secret/internal/config"
	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
	"github.com/meta-secret/meta-secret/internal/model"
)

// newShowCommand prints a secret already recovered by a prior `recover`
// call, or re-attempts recovery from whatever shares have arrived since
// (S8: split followed immediately by show, before any provider has
// re-encrypted a share, reports insufficient shares rather than
// crashing).
func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <pass-name>",
		Short: "print a recovered secret, or retry recovery if not yet cached",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			passName := args[0]
			path := filepath.Join(config.RecoveryFolder(), passName)

			if cached, err := os.ReadFile(path); err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), string(cached))
				return nil
			}

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.close()

			km, _, err := localstate.LoadDeviceCreds(sess.repository())
			if err != nil {
				return err
			}
			defer km.Close()

			self, err := localstate.LoadUserData(sess.repository())
			if err != nil {
				return err
			}

			ctx := backgroundCtx()
			if err := sess.sync(ctx, self); err != nil {
				return err
			}

			vault, ok, err := localstate.LatestVault(sess.repository(), self.VaultName)
			if err != nil {
				return err
			}
			if !ok {
				return metaerrors.New(metaerrors.KindNotFound, "vault not known locally yet, sync first")
			}

			var providers []model.DeviceId
			for _, membership := range vault.Users {
				if membership.IsMember() && membership.User.DeviceId() != self.DeviceId() {
					providers = append(providers, membership.User.DeviceId())
				}
			}

			passId := model.BuildMetaPasswordId(passName)
			recovered, err := action.Recover(sess.repository(), km, self, passId, providers, config.ShamirThreshold())
			if err != nil {
				return err
			}

			if err := os.WriteFile(path, recovered, 0600); err != nil {
				return metaerrors.Wrap(metaerrors.KindTransport, "failed to write recovered secret to disk", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(recovered))
			return nil
		},
	}
}
