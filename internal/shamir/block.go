// Package shamir implements the secret-sharing codec: 64-byte plaintext
// blocks are split into N 113-byte encrypted shares with a recovery
// threshold T, using Shamir's scheme over GF(2^8).
//
// No library in the broader ecosystem splits an arbitrary byte block
// this way (Cloudflare's circl/secretsharing operates on elliptic-curve
// scalars, not byte blocks), so this codec is hand-rolled on the standard
// library — see DESIGN.md.
package shamir

import (
	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
)

// PlainDataBlockSize is the fixed size of a plaintext block prior to
// splitting. Shorter inputs are zero-padded; the true length is recorded
// in BlockMetaData.Size.
const PlainDataBlockSize = 64

// EncryptedDataBlockSize is the fixed wire size of one Shamir share:
// 1-byte share index, 1-byte declared plaintext size, 64 bytes of share
// value, 47 bytes reserved (zero).
const EncryptedDataBlockSize = 113

// BlockMetaData carries the true byte length of a plaintext block,
// needed because PlainDataBlock itself is always exactly
// PlainDataBlockSize bytes (zero-padded).
type BlockMetaData struct {
	Size int
}

// PlainDataBlock is a single 64-byte chunk of a secret prior to
// splitting.
type PlainDataBlock struct {
	Data     [PlainDataBlockSize]byte
	MetaData BlockMetaData
}

// NewPlainDataBlock builds a PlainDataBlock from data, zero-padding it to
// PlainDataBlockSize. It rejects an all-zero input and an input longer
// than PlainDataBlockSize.
func NewPlainDataBlock(data []byte) (PlainDataBlock, error) {
	if len(data) > PlainDataBlockSize {
		return PlainDataBlock{}, metaerrors.New(metaerrors.KindInvalidCast, "plaintext block exceeds 64 bytes")
	}
	if allZero(data) {
		return PlainDataBlock{}, metaerrors.New(metaerrors.KindInvalidCast, "plaintext block is all zero")
	}

	var block PlainDataBlock
	copy(block.Data[:], data)
	block.MetaData.Size = len(data)
	return block, nil
}

// Bytes returns the block's original, unpadded contents.
func (b PlainDataBlock) Bytes() []byte {
	return b.Data[:b.MetaData.Size]
}

func allZero(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

// EncryptedDataBlock is one Shamir share of a PlainDataBlock, laid out on
// the wire as:
//
//	byte 0:     share index (1..=255)
//	byte 1:     declared plaintext size (0..=64)
//	bytes 2-65: 64-byte share value (one GF(2^8) evaluation per plaintext byte)
//	bytes 66-112: reserved, zero
type EncryptedDataBlock struct {
	Index     byte
	Size      byte
	ShareData [PlainDataBlockSize]byte
}

// ToBytes serializes the share to its 113-byte wire form.
func (e EncryptedDataBlock) ToBytes() [EncryptedDataBlockSize]byte {
	var out [EncryptedDataBlockSize]byte
	out[0] = e.Index
	out[1] = e.Size
	copy(out[2:2+PlainDataBlockSize], e.ShareData[:])
	return out
}

// EncryptedDataBlockFromBytes parses a 113-byte wire share, rejecting an
// all-zero block as Invalid and any other size as WrongSize.
func EncryptedDataBlockFromBytes(raw []byte) (EncryptedDataBlock, error) {
	if len(raw) == 0 || len(raw) > EncryptedDataBlockSize {
		return EncryptedDataBlock{}, metaerrors.New(metaerrors.KindInvalidCast, "encrypted block has wrong size")
	}
	if allZero(raw) {
		return EncryptedDataBlock{}, metaerrors.New(metaerrors.KindInvalidCast, "encrypted block is invalid (all zero)")
	}
	if len(raw) != EncryptedDataBlockSize {
		return EncryptedDataBlock{}, metaerrors.New(metaerrors.KindInvalidCast, "encrypted block has wrong size")
	}

	var block EncryptedDataBlock
	block.Index = raw[0]
	block.Size = raw[1]
	copy(block.ShareData[:], raw[2:2+PlainDataBlockSize])
	return block, nil
}
