package matrix

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the algorithm applied to the entry payload.
//
// The header names the compression so readers never have to guess; unknown
// values fail decoding instead of producing garbage.
type Compression uint8

const (
	// CompressionNone stores entries uncompressed.
	CompressionNone Compression = 0
	// CompressionLZ4 applies LZ4 block compression (fast decode).
	CompressionLZ4 Compression = 1
	// CompressionZSTD applies ZSTD compression (better ratio).
	CompressionZSTD Compression = 2
)

// ErrFormat is returned when a sparse matrix blob is structurally invalid.
var ErrFormat = errors.New("matrix: invalid sparse encoding")

var magic = [4]byte{'S', 'R', 'M', 'X'}

const (
	formatVersion = 1

	// row uint32 + col uint32 + value float64
	entrySize = 16

	// maxEntries bounds allocation before the payload is trusted.
	maxEntries = 1 << 30
)

// header layout: magic(4) version(1) compression(1) rows(4) cols(4) nnz(8) payloadLen(8)
const headerSize = 30

// ReadSparse decodes a sparse-encoded matrix blob into a dense matrix.
// Entries absent from the encoding are zero.
func ReadSparse(r io.Reader) (*Dense, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: short header: %w", ErrFormat, err)
	}

	if [4]byte(hdr[0:4]) != magic {
		return nil, fmt.Errorf("%w: bad magic", ErrFormat)
	}
	if hdr[4] != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrFormat, hdr[4])
	}

	compression := Compression(hdr[5])
	rows := binary.LittleEndian.Uint32(hdr[6:10])
	cols := binary.LittleEndian.Uint32(hdr[10:14])
	nnz := binary.LittleEndian.Uint64(hdr[14:22])
	payloadLen := binary.LittleEndian.Uint64(hdr[22:30])

	if nnz > maxEntries || nnz > uint64(rows)*uint64(cols) {
		return nil, fmt.Errorf("%w: entry count %d out of range for %dx%d", ErrFormat, nnz, rows, cols)
	}
	// A valid payload never exceeds the raw entry bytes plus block-compression
	// overhead; larger claims are corruption, not data.
	if maxPayload := nnz*entrySize + nnz*entrySize/255 + 64; payloadLen > maxPayload {
		return nil, fmt.Errorf("%w: payload length %d exceeds %d for %d entries", ErrFormat, payloadLen, maxPayload, nnz)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("%w: short payload: %w", ErrFormat, err)
	}

	rawLen := int(nnz) * entrySize
	raw, err := decompress(compression, payload, rawLen)
	if err != nil {
		return nil, err
	}
	if len(raw) != rawLen {
		return nil, fmt.Errorf("%w: decompressed to %d bytes, want %d", ErrFormat, len(raw), rawLen)
	}

	d := NewDense(int(rows), int(cols))
	for i := 0; i < int(nnz); i++ {
		entry := raw[i*entrySize:]
		row := binary.LittleEndian.Uint32(entry[0:4])
		col := binary.LittleEndian.Uint32(entry[4:8])
		if row >= rows || col >= cols {
			return nil, fmt.Errorf("%w: entry (%d,%d) outside %dx%d", ErrFormat, row, col, rows, cols)
		}
		d.Set(int(row), int(col), math.Float64frombits(binary.LittleEndian.Uint64(entry[8:16])))
	}

	return d, nil
}

// WriteSparse encodes the non-zero entries of d.
//
// The scoring engine only reads this format; the encoder exists for the
// training pipeline and for test fixtures.
func WriteSparse(w io.Writer, d *Dense, compression Compression) error {
	var raw []byte
	var nnz uint64
	for i := 0; i < d.Rows(); i++ {
		for j := 0; j < d.Cols(); j++ {
			v := d.At(i, j)
			if v == 0 {
				continue
			}
			var entry [entrySize]byte
			binary.LittleEndian.PutUint32(entry[0:4], uint32(i))
			binary.LittleEndian.PutUint32(entry[4:8], uint32(j))
			binary.LittleEndian.PutUint64(entry[8:16], math.Float64bits(v))
			raw = append(raw, entry[:]...)
			nnz++
		}
	}

	payload, compression, err := compress(compression, raw)
	if err != nil {
		return err
	}

	var hdr [headerSize]byte
	copy(hdr[0:4], magic[:])
	hdr[4] = formatVersion
	hdr[5] = byte(compression)
	binary.LittleEndian.PutUint32(hdr[6:10], uint32(d.Rows()))
	binary.LittleEndian.PutUint32(hdr[10:14], uint32(d.Cols()))
	binary.LittleEndian.PutUint64(hdr[14:22], nnz)
	binary.LittleEndian.PutUint64(hdr[22:30], uint64(len(payload)))

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// compress applies the requested algorithm. Incompressible payloads degrade
// to CompressionNone; the returned Compression is what the header must record.
func compress(compression Compression, raw []byte) ([]byte, Compression, error) {
	switch compression {
	case CompressionNone:
		return raw, CompressionNone, nil
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, dst, nil)
		if err != nil {
			return nil, 0, err
		}
		if n == 0 {
			// The lz4 block API signals an incompressible payload with n == 0.
			return raw, CompressionNone, nil
		}
		return dst[:n], CompressionLZ4, nil
	case CompressionZSTD:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, 0, err
		}
		defer enc.Close()
		return enc.EncodeAll(raw, nil), CompressionZSTD, nil
	default:
		return nil, 0, fmt.Errorf("%w: unknown compression %d", ErrFormat, compression)
	}
}

func decompress(compression Compression, payload []byte, rawLen int) ([]byte, error) {
	switch compression {
	case CompressionNone:
		return payload, nil
	case CompressionLZ4:
		dst := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(payload, dst)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %w", ErrFormat, err)
		}
		return dst[:n], nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		raw, err := dec.DecodeAll(payload, make([]byte, 0, rawLen))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrFormat, err)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrFormat, compression)
	}
}
