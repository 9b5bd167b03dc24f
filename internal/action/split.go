package action

import (
	metacrypto "github.com/meta-secret/meta-secret/internal/crypto"
	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
	"github.com/meta-secret/meta-secret/internal/model"
	"github.com/meta-secret/meta-secret/internal/objects"
	"github.com/meta-secret/meta-secret/internal/shamir"
	"github.com/meta-secret/meta-secret/internal/store"
)

// Split distributes plaintext (named passName) as Shamir shares across
// recipients (current vault members, including the sender), per
// spec.md §4.5's cluster distribution. Plaintext longer than 64 bytes
// is rejected with an error — longer secrets must be chunked by the caller
// into multiple PlainDataBlocks, one MetaPasswordId per block index, a
// concern spec.md leaves to callers of the single-block codec (§4.2).
func Split(
	repo store.Repository,
	km *metacrypto.KeyManager,
	sender model.UserData,
	passName string,
	plaintext []byte,
	cfg shamir.SharedSecretConfig,
	recipients []model.UserData,
) (model.MetaPasswordId, error) {
	passId := model.BuildMetaPasswordId(passName)

	block, err := shamir.NewPlainDataBlock(plaintext)
	if err != nil {
		return model.MetaPasswordId{}, err
	}

	if cfg.NumberOfShares != len(recipients) {
		return model.MetaPasswordId{}, metaerrors.New(metaerrors.KindInvalidCast, "number of shares must equal number of recipients")
	}

	shares, err := shamir.Split(block, cfg)
	if err != nil {
		return model.MetaPasswordId{}, err
	}

	senderDeviceId := sender.DeviceId()
	for i, recipient := range recipients {
		receiverDeviceId := recipient.DeviceId()
		link := model.DeviceLink{Sender: senderDeviceId, Receiver: receiverDeviceId}

		receiverTransportPub, err := metacrypto.DecodeBase64(recipient.OpenBox.TransportPublicKey)
		if err != nil {
			return model.MetaPasswordId{}, metaerrors.Wrap(metaerrors.KindCryptographic, "invalid recipient transport key", err)
		}
		var receiverPubArr [32]byte
		copy(receiverPubArr[:], receiverTransportPub)

		shareBytes := shares[i].ToBytes()
		ciphertext, err := metacrypto.SealedBoxEncrypt(&km.Transport.PrivateKey, &receiverPubArr, shareBytes[:])
		if err != nil {
			return model.MetaPasswordId{}, err
		}

		distId := model.SsDistributionId{PassId: passId, DeviceLink: link}
		d := model.SsDistributionDescriptor(distId)
		payload := model.SsDistributionPayload{Id: distId, Ciphertext: metacrypto.EncodeBase64(ciphertext)}
		if err := objects.SaveSingleton(repo, d, payload); err != nil {
			return model.MetaPasswordId{}, err
		}
	}

	addMetaPass := model.AddMetaPassAction(sender, passId)
	deviceLogDesc := model.DeviceLogDescriptor(sender.UserId())
	if err := bootstrapDeviceLog(repo, deviceLogDesc, sender); err != nil {
		return model.MetaPasswordId{}, err
	}
	if _, err := objects.Append(repo, deviceLogDesc, model.VaultActionEvent{Author: sender, Action: addMetaPass}); err != nil {
		return model.MetaPasswordId{}, err
	}

	return passId, ApplyVaultAction(repo, sender.VaultName, addMetaPass)
}
