// Package localstate persists one device's own credentials and vault
// association in its local repository, under the DeviceCreds/UserCreds
// singleton descriptors — the only two object kinds never synchronized
// with a relay server.
package localstate

import (
	"path/filepath"

	"github.com/meta-secret/meta-secret/internal/config"
	metacrypto "github.com/meta-secret/meta-secret/internal/crypto"
	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
	"github.com/meta-secret/meta-secret/internal/model"
	"github.com/meta-secret/meta-secret/internal/objects"
	"github.com/meta-secret/meta-secret/internal/store"
	"github.com/meta-secret/meta-secret/internal/store/boltstore"
)

// OpenRepo opens the device's local event store: a single bbolt file
// under config.DataFolder(), shared by device/user credentials and
// every synchronized object kind.
func OpenRepo() (*boltstore.Store, error) {
	return boltstore.Open(filepath.Join(config.DataFolder(), "meta-secret.db"))
}

// SaveDeviceCreds persists a freshly generated device identity.
func SaveDeviceCreds(repo store.Repository, km *metacrypto.KeyManager, device model.DeviceData) error {
	payload := model.DeviceCredsPayload{SecretBox: km.ToSecretBox(), Device: device}
	return objects.SaveSingleton(repo, model.DeviceCredsDescriptor(), payload)
}

// LoadDeviceCreds reconstructs the device's KeyManager and its chosen
// name. Returns NotFound if init-device has not run yet.
func LoadDeviceCreds(repo store.Repository) (*metacrypto.KeyManager, model.DeviceData, error) {
	event, ok, err := repo.FindOne(model.UnitId(model.DeviceCredsDescriptor()))
	if err != nil {
		return nil, model.DeviceData{}, err
	}
	if !ok {
		return nil, model.DeviceData{}, metaerrors.New(metaerrors.KindNotFound, "no device credentials found, run init-device first")
	}

	payload, ok := event.Value.(model.DeviceCredsPayload)
	if !ok {
		return nil, model.DeviceData{}, metaerrors.New(metaerrors.KindInvalidCast, "device credentials have unexpected payload shape")
	}

	km, err := metacrypto.KeyManagerFromSecretBox(payload.SecretBox)
	if err != nil {
		return nil, model.DeviceData{}, err
	}
	return km, payload.Device, nil
}

// SaveUserCreds records the vault a device has associated itself with.
func SaveUserCreds(repo store.Repository, vaultName model.VaultName, device model.DeviceData, km *metacrypto.KeyManager) error {
	deviceCreds := model.DeviceCredsPayload{SecretBox: km.ToSecretBox(), Device: device}
	payload := model.UserCredsPayload{VaultName: vaultName, DeviceCreds: deviceCreds}
	return objects.SaveSingleton(repo, model.UserCredsDescriptor(), payload)
}

// LoadUserData reconstructs the device's UserData (its public identity
// within its associated vault). Returns NotFound if init-user has not
// run yet.
func LoadUserData(repo store.Repository) (model.UserData, error) {
	event, ok, err := repo.FindOne(model.UnitId(model.UserCredsDescriptor()))
	if err != nil {
		return model.UserData{}, err
	}
	if !ok {
		return model.UserData{}, metaerrors.New(metaerrors.KindNotFound, "no vault association found, run init-user first")
	}

	payload, ok := event.Value.(model.UserCredsPayload)
	if !ok {
		return model.UserData{}, metaerrors.New(metaerrors.KindInvalidCast, "user credentials have unexpected payload shape")
	}

	openBox := metacrypto.OpenBox{
		DsaPublicKey:       payload.DeviceCreds.SecretBox.DsaPublicKey,
		TransportPublicKey: payload.DeviceCreds.SecretBox.TransportPublicKey,
	}
	return model.UserData{
		VaultName: payload.VaultName,
		Device:    payload.DeviceCreds.Device,
		OpenBox:   openBox,
	}, nil
}

// LatestVault loads the vault's current snapshot from the local
// repository (populated by a prior sync cycle), or reports it has not
// been seen locally yet.
func LatestVault(repo store.Repository, vaultName model.VaultName) (model.VaultData, bool, error) {
	d := model.VaultDescriptor(vaultName)
	tail, ok, err := objects.FindTailId(repo, d)
	if err != nil || !ok {
		return model.VaultData{}, false, err
	}
	event, ok, err := repo.FindOne(tail)
	if err != nil || !ok {
		return model.VaultData{}, false, err
	}
	vault, ok := event.Value.(model.VaultData)
	if !ok {
		return model.VaultData{}, false, metaerrors.New(metaerrors.KindInvalidCast, "vault snapshot has unexpected payload shape")
	}
	return vault, true, nil
}
