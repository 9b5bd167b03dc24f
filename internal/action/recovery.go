package action

import (
	metacrypto "github.com/meta-secret/meta-secret/internal/crypto"
	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
	"github.com/meta-secret/meta-secret/internal/model"
	"github.com/meta-secret/meta-secret/internal/objects"
	"github.com/meta-secret/meta-secret/internal/shamir"
	"github.com/meta-secret/meta-secret/internal/store"
)

// CreateClaim writes a recovery claim to requester's SsDeviceLog and
// merges it into the vault's server-side SsLog queue. senderMembers
// lists the provider devices expected to re-encrypt their shares.
func CreateClaim(repo store.Repository, requester model.UserData, passId model.MetaPasswordId, senderMembers []model.DeviceId) error {
	claim := model.SsClaim{
		PassId:          passId,
		RequesterDevice: requester.DeviceId(),
		SenderMembers:   senderMembers,
	}

	ssDeviceLogDesc := model.SsDeviceLogDescriptor(requester.DeviceId())
	if _, ok, err := repo.GetKey(model.UnitId(ssDeviceLogDesc)); err != nil {
		return err
	} else if !ok {
		if err := objects.InitQueue(repo, ssDeviceLogDesc, requester.DeviceId(), requester); err != nil {
			return err
		}
	}
	if _, err := objects.Append(repo, ssDeviceLogDesc, model.SsDeviceLogPayload{Claim: &claim}); err != nil {
		return err
	}

	ssLogDesc := model.SsLogDescriptor(requester.VaultName)
	if _, ok, err := repo.GetKey(model.UnitId(ssLogDesc)); err != nil {
		return err
	} else if !ok {
		if err := objects.InitQueue(repo, ssLogDesc, requester.VaultName, claim); err != nil {
			return err
		}
		return nil
	}
	_, err := objects.Append(repo, ssLogDesc, model.SsLogPayload{Claim: claim})
	return err
}

// ProvideShare is called on a provider device listed in a claim's
// SenderMembers: it decrypts its own share of passId (held in an
// SsDistribution addressed to it from a prior Split), re-encrypts it
// under the requester's transport public key, and emits a fresh
// SsDistribution event addressed requester-ward. It then marks the
// claim's distribution status Delivered (a lazy-GC tombstone per
// spec.md §9's open question (b)); the status is keyed by claim, not by
// provider, so only the first provider's call writes it and later calls
// leave it unchanged.
func ProvideShare(
	repo store.Repository,
	km *metacrypto.KeyManager,
	provider model.UserData,
	senderOfOriginalShare model.DeviceId,
	requester model.UserData,
	passId model.MetaPasswordId,
) error {
	originalLink := model.DeviceLink{Sender: senderOfOriginalShare, Receiver: provider.DeviceId()}
	originalDistId := model.SsDistributionId{PassId: passId, DeviceLink: originalLink}

	originalEvent, ok, err := repo.FindOne(model.UnitId(model.SsDistributionDescriptor(originalDistId)))
	if err != nil {
		return err
	}
	if !ok {
		return metaerrors.ErrNotFound
	}
	originalPayload, ok := originalEvent.Value.(model.SsDistributionPayload)
	if !ok {
		return metaerrors.New(metaerrors.KindInvalidCast, "ss distribution has unexpected payload shape")
	}

	originalCiphertext, err := metacrypto.DecodeBase64(originalPayload.Ciphertext)
	if err != nil {
		return metaerrors.Wrap(metaerrors.KindCryptographic, "invalid distribution ciphertext", err)
	}

	senderTransportPub, err := deviceTransportKey(repo, provider.VaultName, senderOfOriginalShare)
	if err != nil {
		return err
	}
	shareBytes, err := metacrypto.SealedBoxDecrypt(&senderTransportPub, &km.Transport.PrivateKey, originalCiphertext)
	if err != nil {
		return err
	}

	requesterTransportPub, err := metacrypto.DecodeBase64(requester.OpenBox.TransportPublicKey)
	if err != nil {
		return metaerrors.Wrap(metaerrors.KindCryptographic, "invalid requester transport key", err)
	}
	var requesterPubArr [32]byte
	copy(requesterPubArr[:], requesterTransportPub)

	reEncrypted, err := metacrypto.SealedBoxEncrypt(&km.Transport.PrivateKey, &requesterPubArr, shareBytes)
	if err != nil {
		return err
	}

	newLink := model.DeviceLink{Sender: provider.DeviceId(), Receiver: requester.DeviceId()}
	newDistId := model.SsDistributionId{PassId: passId, DeviceLink: newLink}
	newPayload := model.SsDistributionPayload{Id: newDistId, Ciphertext: metacrypto.EncodeBase64(reEncrypted)}
	if err := objects.SaveSingleton(repo, model.SsDistributionDescriptor(newDistId), newPayload); err != nil {
		return err
	}

	claimId := model.ClaimDbId{PassId: passId, RequesterDevice: requester.DeviceId()}
	statusPayload := model.SsDistributionStatusPayload{Id: claimId, State: model.DistributionDelivered}
	return objects.SaveSingleton(repo, model.SsDistributionStatusDescriptor(claimId), statusPayload)
}

// deviceTransportKey looks up a vault member's transport public key from
// the vault's latest snapshot, which carries every member's OpenBox.
func deviceTransportKey(repo store.Repository, vaultName model.VaultName, deviceId model.DeviceId) ([32]byte, error) {
	vault, err := latestVault(repo, vaultName)
	if err != nil {
		return [32]byte{}, err
	}
	membership, ok := vault.Membership(deviceId)
	if !ok {
		return [32]byte{}, metaerrors.ErrNotFound
	}

	pub, err := metacrypto.DecodeBase64(membership.User.OpenBox.TransportPublicKey)
	if err != nil {
		return [32]byte{}, err
	}
	var arr [32]byte
	copy(arr[:], pub)
	return arr, nil
}

// Recover gathers the SsDistribution event addressed to requester for
// passId from each of providers and, once at least threshold shares are
// present, performs
// Shamir recovery locally. Fewer than threshold shares yields
// InsufficientShares (S5).
func Recover(
	repo store.Repository,
	km *metacrypto.KeyManager,
	requester model.UserData,
	passId model.MetaPasswordId,
	providers []model.DeviceId,
	threshold int,
) ([]byte, error) {
	var blocks []shamir.EncryptedDataBlock

	for _, provider := range providers {
		link := model.DeviceLink{Sender: provider, Receiver: requester.DeviceId()}
		distId := model.SsDistributionId{PassId: passId, DeviceLink: link}

		event, ok, err := repo.FindOne(model.UnitId(model.SsDistributionDescriptor(distId)))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		payload, ok := event.Value.(model.SsDistributionPayload)
		if !ok {
			return nil, metaerrors.New(metaerrors.KindInvalidCast, "ss distribution has unexpected payload shape")
		}

		ciphertext, err := metacrypto.DecodeBase64(payload.Ciphertext)
		if err != nil {
			return nil, metaerrors.Wrap(metaerrors.KindCryptographic, "invalid distribution ciphertext", err)
		}

		providerTransportPub, err := deviceTransportKey(repo, requester.VaultName, provider)
		if err != nil {
			return nil, err
		}

		shareBytes, err := metacrypto.SealedBoxDecrypt(&providerTransportPub, &km.Transport.PrivateKey, ciphertext)
		if err != nil {
			return nil, err
		}

		block, err := shamir.EncryptedDataBlockFromBytes(shareBytes)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	if len(blocks) < threshold {
		return nil, metaerrors.ErrInsufficientShares
	}

	recovered, err := shamir.Recover(blocks[:threshold])
	if err != nil {
		return nil, err
	}
	return recovered.Bytes(), nil
}
