package matrix

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func testMatrix() *Dense {
	d := NewDense(3, 4)
	d.Set(0, 0, 0.5)
	d.Set(0, 3, 1.25)
	d.Set(1, 1, -3.0)
	d.Set(2, 2, 1e-9)
	return d
}

func TestSparse_RoundTrip(t *testing.T) {
	compressions := map[string]Compression{
		"none": CompressionNone,
		"lz4":  CompressionLZ4,
		"zstd": CompressionZSTD,
	}

	for name, compression := range compressions {
		t.Run(name, func(t *testing.T) {
			want := testMatrix()

			var buf bytes.Buffer
			require.NoError(t, WriteSparse(&buf, want, compression))

			got, err := ReadSparse(&buf)
			require.NoError(t, err)

			require.Equal(t, want.Rows(), got.Rows())
			require.Equal(t, want.Cols(), got.Cols())
			for i := 0; i < want.Rows(); i++ {
				require.Equal(t, want.Row(i), got.Row(i), "row %d", i)
			}
		})
	}
}

func TestSparse_EmptyMatrix(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSparse(&buf, NewDense(0, 0), CompressionZSTD))

	got, err := ReadSparse(&buf)
	require.NoError(t, err)
	require.Equal(t, 0, got.Rows())
	require.Equal(t, 0, got.Cols())
}

func TestReadSparse_BadMagic(t *testing.T) {
	data := make([]byte, headerSize)
	copy(data, "NOPE")

	_, err := ReadSparse(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrFormat)
}

func TestReadSparse_ShortHeader(t *testing.T) {
	_, err := ReadSparse(bytes.NewReader([]byte{'S', 'R'}))
	require.ErrorIs(t, err, ErrFormat)
}

func TestReadSparse_TruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSparse(&buf, testMatrix(), CompressionNone))

	data := buf.Bytes()
	_, err := ReadSparse(bytes.NewReader(data[:len(data)-4]))
	require.ErrorIs(t, err, ErrFormat)
}

func TestReadSparse_UnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSparse(&buf, testMatrix(), CompressionNone))

	data := buf.Bytes()
	data[4] = 99

	_, err := ReadSparse(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrFormat)
}

func TestReadSparse_PayloadLengthBound(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSparse(&buf, testMatrix(), CompressionNone))

	// Claim a payload no compressor could produce for four entries. The
	// decoder must reject the header instead of allocating the claimed size.
	data := buf.Bytes()
	binary.LittleEndian.PutUint64(data[22:30], 1<<33)

	_, err := ReadSparse(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrFormat)
}

func TestReadSparse_EntryOutOfBounds(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSparse(&buf, testMatrix(), CompressionNone))

	// Corrupt the first entry's column index to exceed cols.
	data := buf.Bytes()
	data[headerSize+4] = 0xFF

	_, err := ReadSparse(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrFormat)
}
