package shamir

import (
	"crypto/rand"

	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
)

// SharedSecretConfig parameterizes a split: the total number of shares
// produced and the minimum number required to recover the secret.
type SharedSecretConfig struct {
	NumberOfShares int
	Threshold      int
}

// Validate rejects configurations that cannot produce a meaningful
// split: threshold must be between 2 and the number of shares, and the
// number of shares must fit in a single byte index (1..=255).
func (c SharedSecretConfig) Validate() error {
	if c.NumberOfShares < 2 || c.NumberOfShares > 255 {
		return metaerrors.New(metaerrors.KindInvalidCast, "number of shares must be between 2 and 255")
	}
	if c.Threshold < 2 || c.Threshold > c.NumberOfShares {
		return metaerrors.New(metaerrors.KindInvalidCast, "threshold must be between 2 and the number of shares")
	}
	return nil
}

// Split divides a plaintext block into cfg.NumberOfShares encrypted
// shares, any cfg.Threshold of which suffice to recover it. Each byte of
// the plaintext block is secret-shared independently: a random
// polynomial of degree threshold-1 is generated per byte, with the
// secret byte as the constant term, and each share gets that
// polynomial's evaluation at a distinct nonzero x coordinate (the share
// index).
func Split(block PlainDataBlock, cfg SharedSecretConfig) ([]EncryptedDataBlock, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	shares := make([]EncryptedDataBlock, cfg.NumberOfShares)
	for i := range shares {
		shares[i].Index = byte(i + 1)
		shares[i].Size = byte(block.MetaData.Size)
	}

	coeffs := make([]byte, cfg.Threshold)
	randBuf := make([]byte, cfg.Threshold-1)
	for byteIdx := 0; byteIdx < PlainDataBlockSize; byteIdx++ {
		coeffs[0] = block.Data[byteIdx]
		if _, err := rand.Read(randBuf); err != nil {
			return nil, metaerrors.Wrap(metaerrors.KindCryptographic, "failed to generate share entropy", err)
		}
		copy(coeffs[1:], randBuf)

		for shareIdx := range shares {
			x := shares[shareIdx].Index
			shares[shareIdx].ShareData[byteIdx] = gfEval(coeffs, x)
		}
	}

	return shares, nil
}

// Recover reconstructs the original plaintext block from at least
// threshold shares using Lagrange interpolation at x=0. Supplying fewer
// than threshold shares yields a value indistinguishable from noise, not
// an error — callers must track how many shares they have collected
// against the threshold they split with.
func Recover(shares []EncryptedDataBlock) (PlainDataBlock, error) {
	if len(shares) == 0 {
		return PlainDataBlock{}, metaerrors.ErrInsufficientShares
	}

	size := shares[0].Size
	for _, s := range shares[1:] {
		if s.Size != size {
			return PlainDataBlock{}, metaerrors.New(metaerrors.KindInvalidCast, "shares disagree on declared plaintext size")
		}
	}
	if size > PlainDataBlockSize {
		return PlainDataBlock{}, metaerrors.New(metaerrors.KindInvalidCast, "declared plaintext size exceeds block size")
	}

	var block PlainDataBlock
	block.MetaData.Size = int(size)

	for byteIdx := 0; byteIdx < PlainDataBlockSize; byteIdx++ {
		block.Data[byteIdx] = lagrangeInterpolateAtZero(shares, byteIdx)
	}

	return block, nil
}

// lagrangeInterpolateAtZero evaluates the unique degree-(n-1) polynomial
// through the given shares' (index, ShareData[byteIdx]) points at x=0,
// which recovers the original secret byte.
func lagrangeInterpolateAtZero(shares []EncryptedDataBlock, byteIdx int) byte {
	var result byte
	for i, si := range shares {
		xi := si.Index
		yi := si.ShareData[byteIdx]

		num := byte(1)
		den := byte(1)
		for j, sj := range shares {
			if i == j {
				continue
			}
			xj := sj.Index
			num = gfMul(num, xj)
			den = gfMul(den, gfAdd(xi, xj))
		}

		term := gfMul(yi, gfDiv(num, den))
		result = gfAdd(result, term)
	}
	return result
}
