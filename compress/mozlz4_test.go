package compress

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/arloliu/carve/errs"
	"github.com/stretchr/testify/require"
)

// helloMozLZ4 is "hello" in a mozLz4 container with a literal-only LZ4 block.
var helloMozLZ4 = []byte{
	'm', 'o', 'z', 'L', 'z', '4', '0', 0x00,
	0x05, 0x00, 0x00, 0x00,
	0x50, 'h', 'e', 'l', 'l', 'o',
}

func TestMozLZ4_DecompressKnownContainer(t *testing.T) {
	out, err := NewMozLZ4Compressor().Decompress(helloMozLZ4)
	require.NoError(t, err)
	require.Equal(t, "hello", string(out))
}

func TestMozLZ4_CompressHeader(t *testing.T) {
	data := sessionPayload(20)

	out, err := NewMozLZ4Compressor().Compress(data)
	require.NoError(t, err)
	require.Equal(t, MozLZ4Magic, string(out[:8]))
	require.Equal(t, uint32(len(data)), binary.LittleEndian.Uint32(out[8:12]))

	size, err := ParseMozLZ4Header(out)
	require.NoError(t, err)
	require.Equal(t, len(data), size)
}

func TestMozLZ4_InvalidContainers(t *testing.T) {
	codec := NewMozLZ4Compressor()

	t.Run("short header", func(t *testing.T) {
		_, err := codec.Decompress([]byte("mozLz40"))
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("wrong magic", func(t *testing.T) {
		bad := append([]byte("mozLz41\x00"), helloMozLZ4[8:]...)
		_, err := codec.Decompress(bad)
		require.ErrorIs(t, err, errs.ErrInvalidMagicNumber)
	})

	t.Run("size mismatch", func(t *testing.T) {
		bad := append([]byte(nil), helloMozLZ4...)
		bad[8] = 9
		out, err := codec.Decompress(bad)
		require.ErrorIs(t, err, errs.ErrTruncatedInput)
		require.Equal(t, "hello", string(out))
	})

	t.Run("undecodable block", func(t *testing.T) {
		// The first match points before the start of the output.
		bad := append([]byte(MozLZ4Magic), 0xff, 0xff, 0x00, 0x00, 0x00, 0x01, 0x00)
		out, err := codec.Decompress(bad)
		require.Error(t, err)
		require.NotErrorIs(t, err, errs.ErrTruncatedInput)
		require.Nil(t, out)
	})

	t.Run("oversized header", func(t *testing.T) {
		bad := append([]byte(nil), helloMozLZ4...)
		binary.LittleEndian.PutUint32(bad[8:12], MaxMozLZ4Size+1)
		_, err := codec.Decompress(bad)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("truncated block", func(t *testing.T) {
		out, err := codec.Decompress(helloMozLZ4[:15])
		require.ErrorIs(t, err, errs.ErrTruncatedInput)
		require.Equal(t, "he", string(out))
	})

	t.Run("empty payload", func(t *testing.T) {
		out, err := codec.Decompress(helloMozLZ4[:8:8])
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
		require.Nil(t, out)

		zero := append([]byte(MozLZ4Magic), 0, 0, 0, 0)
		out, err = codec.Decompress(zero)
		require.NoError(t, err)
		require.Empty(t, out)
	})
}

func TestMozLZ4_Decompress_CutContainer(t *testing.T) {
	payload := sessionPayload(500)
	container, err := NewMozLZ4Compressor().Compress(payload)
	require.NoError(t, err)

	for _, cut := range []int{MozLZ4HeaderSize + 40, len(container) / 3, len(container) / 2, len(container) - 1} {
		out, err := NewMozLZ4Compressor().Decompress(container[:cut])
		require.ErrorIs(t, err, errs.ErrTruncatedInput, "cut at %d", cut)
		require.NotEmpty(t, out)
		require.Less(t, len(out), len(payload))
		require.True(t, bytes.HasPrefix(payload, out), "cut at %d is not a prefix", cut)
	}
}

func TestDecodeLZ4Prefix_WholeBlock(t *testing.T) {
	payload := sessionPayload(200)
	block, err := compressLZ4Block(payload, nil)
	require.NoError(t, err)

	dst := make([]byte, len(payload))
	require.Equal(t, len(payload), decodeLZ4Prefix(block, dst))
	require.Equal(t, payload, dst)
}

func TestDecodeLZ4Prefix_LongLiteralCut(t *testing.T) {
	// 20 literals need a length extension byte; the block ends after 7 of them.
	block := append([]byte{0xf0, 20 - 15}, "abcdefg"...)
	dst := make([]byte, 20)

	require.Equal(t, 7, decodeLZ4Prefix(block, dst))
	require.Equal(t, "abcdefg", string(dst[:7]))
	require.Zero(t, decodeLZ4Prefix([]byte{0xf0}, dst))
}
