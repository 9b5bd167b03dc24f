package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meta-secret/meta-secret/app/device/internal/localstate"
	"github.com/meta-secret/meta-secret/internal/action"
	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
	"github.com/meta-secret/meta-secret/internal/model"
	"github.com/meta-secret/meta-secret/internal/objects"
	"github.com/meta-secret/meta-secret/internal/store"
)

func newAcceptRecoveryCommand() *cobra.Command {
	var all bool

	c := &cobra.Command{
		Use:   "accept-recovery [claim-id]",
		Short: "re-encrypt this device's share of a claimed secret toward its requester",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) != 1 {
				return metaerrors.New(metaerrors.KindInvalidCast, "accept-recovery requires a claim id argument, or --all")
			}

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.close()
			repo := sess.repository()

			km, _, err := localstate.LoadDeviceCreds(repo)
			if err != nil {
				return err
			}
			defer km.Close()

			self, err := localstate.LoadUserData(repo)
			if err != nil {
				return err
			}

			ctx := backgroundCtx()
			if err := sess.sync(ctx, self); err != nil {
				return err
			}

			vault, ok, err := localstate.LatestVault(repo, self.VaultName)
			if err != nil {
				return err
			}
			if !ok {
				return metaerrors.New(metaerrors.KindNotFound, "vault not known locally yet, sync first")
			}

			claims, err := pendingClaims(repo, self.VaultName)
			if err != nil {
				return err
			}

			var matched []model.SsClaim
			for _, claim := range claims {
				if !deviceListContains(claim.SenderMembers, self.DeviceId()) {
					continue
				}
				claimId := model.ClaimDbId{PassId: claim.PassId, RequesterDevice: claim.RequesterDevice}
				if all || claimId.String() == args[0] {
					matched = append(matched, claim)
				}
			}
			if len(matched) == 0 {
				return metaerrors.New(metaerrors.KindNotFound, "no matching recovery claim naming this device as a sender")
			}

			for _, claim := range matched {
				requesterMembership, ok := vault.Membership(claim.RequesterDevice)
				if !ok {
					return metaerrors.ErrNotFound
				}
				requester := requesterMembership.User

				senderOfOriginalShare, err := findOriginalSender(repo, vault, claim.PassId, self.DeviceId())
				if err != nil {
					return err
				}

				if err := action.ProvideShare(repo, km, self, senderOfOriginalShare, requester, claim.PassId); err != nil {
					return err
				}

				newLink := model.DeviceLink{Sender: self.DeviceId(), Receiver: requester.DeviceId()}
				newDistId := model.SsDistributionId{PassId: claim.PassId, DeviceLink: newLink}
				if err := pushIfPresent(ctx, sess, self, model.UnitId(model.SsDistributionDescriptor(newDistId))); err != nil {
					return err
				}

				claimDbId := model.ClaimDbId{PassId: claim.PassId, RequesterDevice: requester.DeviceId()}
				if err := pushIfPresent(ctx, sess, self, model.UnitId(model.SsDistributionStatusDescriptor(claimDbId))); err != nil {
					return err
				}
			}

			if err := sess.sync(ctx, self); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "provided %d share(s)\n", len(matched))
			return nil
		},
	}
	c.Flags().BoolVar(&all, "all", false, "provide a share for every outstanding claim naming this device")
	return c
}

func pushIfPresent(ctx context.Context, sess *session, self model.UserData, id model.ArtifactId) error {
	event, ok, err := sess.repository().FindOne(id)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return sess.push(ctx, self, event)
}

// pendingClaims enumerates every claim recorded in vaultName's SsLog:
// the genesis event carries the first claim directly, every regular
// event afterward wraps one in SsLogPayload.
func pendingClaims(repo store.Repository, vaultName model.VaultName) ([]model.SsClaim, error) {
	d := model.SsLogDescriptor(vaultName)
	if _, ok, err := repo.GetKey(model.UnitId(d)); err != nil {
		return nil, err
	} else if !ok {
		return nil, nil
	}

	events, err := objects.FindObjectEvents(repo, model.UnitId(d))
	if err != nil {
		return nil, err
	}

	var claims []model.SsClaim
	for _, event := range events {
		switch event.Stage {
		case model.StageGenesis:
			if claim, ok := event.Value.(model.SsClaim); ok {
				claims = append(claims, claim)
			}
		case model.StageRegular:
			if payload, ok := event.Value.(model.SsLogPayload); ok {
				claims = append(claims, payload.Claim)
			}
		}
	}
	return claims, nil
}

// findOriginalSender locates which vault member's original Shamir split
// addressed a share to self for passId, by checking every member for a
// locally-present SsDistribution from them to self.
func findOriginalSender(repo store.Repository, vault model.VaultData, passId model.MetaPasswordId, self model.DeviceId) (model.DeviceId, error) {
	for _, membership := range vault.Users {
		candidate := membership.User.DeviceId()
		link := model.DeviceLink{Sender: candidate, Receiver: self}
		distId := model.SsDistributionId{PassId: passId, DeviceLink: link}
		if _, ok, err := repo.GetKey(model.UnitId(model.SsDistributionDescriptor(distId))); err != nil {
			return model.DeviceId{}, err
		} else if ok {
			return candidate, nil
		}
	}
	return model.DeviceId{}, metaerrors.New(metaerrors.KindNotFound, "no original share found for this device, sync first")
}

func deviceListContains(list []model.DeviceId, id model.DeviceId) bool {
	for _, d := range list {
		if d == id {
			return true
		}
	}
	return false
}
