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

func newRecoverCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recover <pass-name>",
		Short: "claim recovery of a secret and attempt reconstruction from available shares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			passName := args[0]

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
			if err := action.CreateClaim(sess.repository(), self, passId, providers); err != nil {
				return err
			}
			if err := sess.sync(ctx, self); err != nil {
				return err
			}

			recovered, err := action.Recover(sess.repository(), km, self, passId, providers, config.ShamirThreshold())
			if err != nil {
				return err
			}

			path := filepath.Join(config.RecoveryFolder(), passName)
			if err := os.WriteFile(path, recovered, 0600); err != nil {
				return metaerrors.Wrap(metaerrors.KindTransport, "failed to write recovered secret to disk", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "recovered %q, written to %s\n", passName, path)
			return nil
		},
	}
}
