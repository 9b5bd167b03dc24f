// Package crypto wraps the two cryptographic primitives meta-secret
// consumes as-is: Ed25519 signatures for device/user identity, and
// X25519 sealed-box AEAD (via golang.org/x/crypto/nacl/box) for
// encrypting Shamir shares between devices. It also derives content-
// addressed device identifiers from transport public keys.
package crypto

import (
	"crypto/ed25519"
	cryptorand "crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/nacl/box"

	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
)

const nonceSize = 24

// DsaKeyPair is an Ed25519 signing key pair used to authenticate device
// and user actions.
type DsaKeyPair struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// TransportKeyPair is an X25519 key pair used for sealed-box AEAD between
// devices. DeviceId is derived from PublicKey.
type TransportKeyPair struct {
	PublicKey  [32]byte
	PrivateKey [32]byte
}

// KeyManager bundles the signing and transport key pairs that identify
// one device. Its private material must be released with Close once it
// is no longer needed.
type KeyManager struct {
	Dsa       DsaKeyPair
	Transport TransportKeyPair
}

// GenerateKeyManager creates a fresh Ed25519 signing pair and X25519
// transport pair.
func GenerateKeyManager() (*KeyManager, error) {
	pub, priv, err := ed25519.GenerateKey(cryptorand.Reader)
	if err != nil {
		return nil, metaerrors.Wrap(metaerrors.KindCryptographic, "failed to generate signing key pair", err)
	}

	transportPub, transportPriv, err := box.GenerateKey(cryptorand.Reader)
	if err != nil {
		return nil, metaerrors.Wrap(metaerrors.KindCryptographic, "failed to generate transport key pair", err)
	}

	return &KeyManager{
		Dsa:       DsaKeyPair{PublicKey: pub, PrivateKey: priv},
		Transport: TransportKeyPair{PublicKey: *transportPub, PrivateKey: *transportPriv},
	}, nil
}

// Close zeroizes the in-memory private key material. It must be called
// once the KeyManager is no longer needed; a KeyManager must not be used
// after Close.
func (km *KeyManager) Close() {
	for i := range km.Dsa.PrivateKey {
		km.Dsa.PrivateKey[i] = 0
	}
	for i := range km.Transport.PrivateKey {
		km.Transport.PrivateKey[i] = 0
	}
}

// SecretBox is the serializable form of a KeyManager: every field needed
// to reconstruct the device's full key material.
type SecretBox struct {
	DsaPublicKey        Base64Text `json:"dsaPublicKey"`
	DsaPrivateKey       Base64Text `json:"dsaPrivateKey"`
	TransportPublicKey  Base64Text `json:"transportPublicKey"`
	TransportPrivateKey Base64Text `json:"transportPrivateKey"`
}

// OpenBox exposes only the public halves of a device's key material —
// what a device shares with others.
type OpenBox struct {
	DsaPublicKey       Base64Text `json:"dsaPublicKey"`
	TransportPublicKey Base64Text `json:"transportPublicKey"`
}

// ToSecretBox serializes km's full key material for storage.
func (km *KeyManager) ToSecretBox() SecretBox {
	return SecretBox{
		DsaPublicKey:        EncodeBase64(km.Dsa.PublicKey),
		DsaPrivateKey:       EncodeBase64(km.Dsa.PrivateKey),
		TransportPublicKey:  EncodeBase64(km.Transport.PublicKey[:]),
		TransportPrivateKey: EncodeBase64(km.Transport.PrivateKey[:]),
	}
}

// ToOpenBox extracts the public-only view of km's key material.
func (km *KeyManager) ToOpenBox() OpenBox {
	return OpenBox{
		DsaPublicKey:       EncodeBase64(km.Dsa.PublicKey),
		TransportPublicKey: EncodeBase64(km.Transport.PublicKey[:]),
	}
}

// KeyManagerFromSecretBox reconstructs a KeyManager from its serialized
// form.
func KeyManagerFromSecretBox(sb SecretBox) (*KeyManager, error) {
	dsaPub, err := DecodeBase64(sb.DsaPublicKey)
	if err != nil {
		return nil, metaerrors.Wrap(metaerrors.KindCryptographic, "invalid dsa public key", err)
	}
	dsaPriv, err := DecodeBase64(sb.DsaPrivateKey)
	if err != nil {
		return nil, metaerrors.Wrap(metaerrors.KindCryptographic, "invalid dsa private key", err)
	}
	transportPub, err := DecodeBase64(sb.TransportPublicKey)
	if err != nil {
		return nil, metaerrors.Wrap(metaerrors.KindCryptographic, "invalid transport public key", err)
	}
	transportPriv, err := DecodeBase64(sb.TransportPrivateKey)
	if err != nil {
		return nil, metaerrors.Wrap(metaerrors.KindCryptographic, "invalid transport private key", err)
	}
	if len(transportPub) != 32 || len(transportPriv) != 32 {
		return nil, metaerrors.New(metaerrors.KindCryptographic, "transport key has wrong length")
	}

	km := &KeyManager{
		Dsa: DsaKeyPair{PublicKey: dsaPub, PrivateKey: dsaPriv},
	}
	copy(km.Transport.PublicKey[:], transportPub)
	copy(km.Transport.PrivateKey[:], transportPriv)
	return km, nil
}

// Sign produces an Ed25519 signature over msg.
func Sign(priv ed25519.PrivateKey, msg []byte) []byte {
	return ed25519.Sign(priv, msg)
}

// Verify checks an Ed25519 signature over msg.
func Verify(pub ed25519.PublicKey, msg, sig []byte) bool {
	return ed25519.Verify(pub, msg, sig)
}

// SealedBoxEncrypt authenticated-encrypts plaintext from senderPriv to
// receiverPub using a fresh random 24-byte nonce, prepending the nonce to
// the returned ciphertext. Reusing a nonce under the same key pair is a
// protocol violation.
func SealedBoxEncrypt(senderPriv, receiverPub *[32]byte, plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := cryptorand.Read(nonce[:]); err != nil {
		return nil, metaerrors.Wrap(metaerrors.KindCryptographic, "failed to generate nonce", err)
	}
	return box.Seal(nonce[:], plaintext, &nonce, receiverPub, senderPriv), nil
}

// SealedBoxDecrypt reverses SealedBoxEncrypt: senderPub/receiverPriv are
// swapped relative to the encrypting side.
func SealedBoxDecrypt(senderPub, receiverPriv *[32]byte, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < nonceSize {
		return nil, metaerrors.New(metaerrors.KindCryptographic, "ciphertext shorter than nonce")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], ciphertext[:nonceSize])

	plaintext, ok := box.Open(nil, ciphertext[nonceSize:], &nonce, senderPub, receiverPriv)
	if !ok {
		return nil, metaerrors.New(metaerrors.KindCryptographic, "aead authentication failed")
	}
	return plaintext, nil
}

// Base64Text is an opaque URL-safe base64 string carrying arbitrary
// bytes, unpadded.
type Base64Text string

// EncodeBase64 encodes raw bytes as URL-safe, unpadded base64 text.
func EncodeBase64(raw []byte) Base64Text {
	return Base64Text(base64.RawURLEncoding.EncodeToString(raw))
}

// DecodeBase64 decodes a Base64Text back into raw bytes.
func DecodeBase64(text Base64Text) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(string(text))
}

// DeviceId is a U64IdUrlEnc derived from a device's transport public key.
// Two devices have equal DeviceId iff they have equal transport keys.
type DeviceId = U64IdUrlEnc

// DeviceIdFromOpenBox derives a device's content-addressed identifier
// from the base64 text of its transport public key: U64IdUrlEnc of that
// base64 string. Two devices have equal DeviceId iff their transport
// public keys are equal.
func DeviceIdFromOpenBox(box OpenBox) DeviceId {
	return U64IdFromName(string(box.TransportPublicKey))
}

// U64IdUrlEnc is the first 8 bytes of SHA-256(name), base64url-encoded
// with no padding.
type U64IdUrlEnc [8]byte

// U64IdFromName derives a U64IdUrlEnc from an arbitrary name string.
func U64IdFromName(name string) U64IdUrlEnc {
	sum := sha256.Sum256([]byte(name))
	var id U64IdUrlEnc
	copy(id[:], sum[:8])
	return id
}

// String renders the identifier as URL-safe unpadded base64.
func (id U64IdUrlEnc) String() string {
	return base64.RawURLEncoding.EncodeToString(id[:])
}

// MarshalJSON encodes the identifier as its canonical base64 string,
// never as a JSON array of bytes.
func (id U64IdUrlEnc) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON decodes the canonical base64 string form back into id.
func (id *U64IdUrlEnc) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return err
	}
	if len(raw) != len(id) {
		return fmt.Errorf("u64 id: expected %d decoded bytes, got %d", len(id), len(raw))
	}
	copy(id[:], raw)
	return nil
}
