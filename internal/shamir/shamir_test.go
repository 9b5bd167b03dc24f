package shamir

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitRecoverExactThreshold(t *testing.T) {
	// S3: split "hello world" with (n=3, t=2); any two shares recover it.
	plaintext := []byte("hello world")
	block, err := NewPlainDataBlock(plaintext)
	require.NoError(t, err)

	cfg := SharedSecretConfig{NumberOfShares: 3, Threshold: 2}
	shares, err := Split(block, cfg)
	require.NoError(t, err)
	require.Len(t, shares, 3)

	pairs := [][2]int{{0, 1}, {0, 2}, {1, 2}}
	for _, pair := range pairs {
		recovered, err := Recover([]EncryptedDataBlock{shares[pair[0]], shares[pair[1]]})
		require.NoError(t, err)
		require.Equal(t, plaintext, recovered.Bytes())
	}
}

func TestSingleShareInsufficient(t *testing.T) {
	plaintext := []byte("hello world")
	block, err := NewPlainDataBlock(plaintext)
	require.NoError(t, err)

	cfg := SharedSecretConfig{NumberOfShares: 3, Threshold: 2}
	shares, err := Split(block, cfg)
	require.NoError(t, err)

	recovered, err := Recover(shares[:1])
	require.NoError(t, err)
	require.NotEqual(t, plaintext, recovered.Bytes())
}

func TestRoundTripAllLengths(t *testing.T) {
	// P3: for all plaintext lengths 1..=64, all (n,t) with 2<=t<=n<=16
	// (a representative subset of the full 255 range), recover(any t of
	// split(x,n,t)) == x.
	for length := 1; length <= PlainDataBlockSize; length++ {
		plaintext := make([]byte, length)
		for i := range plaintext {
			plaintext[i] = byte(i + 1) // avoid all-zero
		}

		for n := 2; n <= 16; n++ {
			for threshold := 2; threshold <= n; threshold++ {
				block, err := NewPlainDataBlock(plaintext)
				require.NoError(t, err)

				cfg := SharedSecretConfig{NumberOfShares: n, Threshold: threshold}
				shares, err := Split(block, cfg)
				require.NoError(t, err)

				recovered, err := Recover(shares[:threshold])
				require.NoError(t, err)
				require.Equal(t, plaintext, recovered.Bytes(), "n=%d t=%d len=%d", n, threshold, length)
			}
		}
	}
}

func TestRejectsAllZeroBlock(t *testing.T) {
	_, err := NewPlainDataBlock(make([]byte, 32))
	require.Error(t, err)
}

func TestRejectsOversizedBlock(t *testing.T) {
	_, err := NewPlainDataBlock(make([]byte, PlainDataBlockSize+1))
	require.Error(t, err)
}

func TestEncryptedDataBlockWireRoundTrip(t *testing.T) {
	plaintext := make([]byte, 20)
	_, err := rand.Read(plaintext)
	require.NoError(t, err)

	block, err := NewPlainDataBlock(plaintext)
	require.NoError(t, err)

	shares, err := Split(block, SharedSecretConfig{NumberOfShares: 5, Threshold: 3})
	require.NoError(t, err)

	for _, share := range shares {
		wire := share.ToBytes()
		require.Len(t, wire, EncryptedDataBlockSize)

		parsed, err := EncryptedDataBlockFromBytes(wire[:])
		require.NoError(t, err)
		require.Equal(t, share.Index, parsed.Index)
		require.Equal(t, share.Size, parsed.Size)
		require.True(t, bytes.Equal(share.ShareData[:], parsed.ShareData[:]))
	}
}

func TestEncryptedDataBlockRejectsAllZero(t *testing.T) {
	var zero [EncryptedDataBlockSize]byte
	_, err := EncryptedDataBlockFromBytes(zero[:])
	require.Error(t, err)
}

func TestEncryptedDataBlockRejectsWrongSize(t *testing.T) {
	_, err := EncryptedDataBlockFromBytes(make([]byte, 10))
	require.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	block, err := NewPlainDataBlock([]byte("x"))
	require.NoError(t, err)

	_, err = Split(block, SharedSecretConfig{NumberOfShares: 1, Threshold: 1})
	require.Error(t, err)

	_, err = Split(block, SharedSecretConfig{NumberOfShares: 3, Threshold: 5})
	require.Error(t, err)
}
