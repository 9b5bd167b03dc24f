package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meta-secret/meta-secret/app/device/internal/localstate"
	"github.com/meta-secret/meta-secret/internal/action"
	"github.com/meta-secret/meta-secret/internal/config"
	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
	"github.com/meta-secret/meta-secret/internal/model"
	"github.com/meta-secret/meta-secret/internal/shamir"
)

func newSplitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "split <pass-name> <plaintext>",
		Short: "split a secret into Shamir shares and distribute one to each current vault member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			passName, plaintext := args[0], args[1]

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

			var recipients []model.UserData
			for _, membership := range vault.Users {
				if membership.IsMember() {
					recipients = append(recipients, membership.User)
				}
			}

			cfg := shamir.SharedSecretConfig{NumberOfShares: len(recipients), Threshold: config.ShamirThreshold()}
			passId, err := action.Split(sess.repository(), km, self, passName, []byte(plaintext), cfg, recipients)
			if err != nil {
				return err
			}

			for _, recipient := range recipients {
				link := model.DeviceLink{Sender: self.DeviceId(), Receiver: recipient.DeviceId()}
				distId := model.SsDistributionId{PassId: passId, DeviceLink: link}
				event, ok, err := sess.repository().FindOne(model.UnitId(model.SsDistributionDescriptor(distId)))
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				if err := sess.push(ctx, self, event); err != nil {
					return err
				}
			}

			if err := sess.sync(ctx, self); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "split %q into %d shares across %d recipients\n", passName, len(recipients), len(recipients))
			return nil
		},
	}
}
