package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meta-secret/meta-secret/app/device/internal/localstate"
	"github.com/meta-secret/meta-secret/internal/action"
	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
	"github.com/meta-secret/meta-secret/internal/model"
)

func newAcceptJoinCommand() *cobra.Command {
	var all bool

	c := &cobra.Command{
		Use:   "accept-join [device-id]",
		Short: "promote a pending join request to full membership",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) != 1 {
				return metaerrors.New(metaerrors.KindInvalidCast, "accept-join requires a device id argument, or --all")
			}

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.close()

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

			var candidates []model.UserData
			for _, membership := range vault.Users {
				if membership.Kind != model.MembershipOutsider || membership.Status != model.OutsiderPending {
					continue
				}
				if all || membership.User.DeviceId().String() == args[0] {
					candidates = append(candidates, membership.User)
				}
			}
			if len(candidates) == 0 {
				return metaerrors.New(metaerrors.KindNotFound, "no matching pending join request")
			}

			for _, candidate := range candidates {
				if err := action.AcceptMembership(sess.repository(), self, candidate); err != nil {
					return err
				}
			}

			if err := sess.sync(ctx, self); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "accepted %d join request(s)\n", len(candidates))
			return nil
		},
	}
	c.Flags().BoolVar(&all, "all", false, "accept every pending join request")
	return c
}
