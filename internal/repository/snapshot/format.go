package snapshot

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/ahsan-courses/coursebot/internal/domain"
)

// Layout (little-endian):
//
//	magic "CBKS" | version u16 | dim u32 | count u32
//	count × (len u32 | utf-8 bytes)
//	count×dim float32
//	xxhash64 u64 over everything above
const (
	magic         = "CBKS"
	formatVersion = uint16(1)
	headerSize    = len(magic) + 2 + 4 + 4
	checksumSize  = 8
)

// Encode serializes documents and their position-aligned vectors.
func Encode(documents []string, vectors [][]float32) ([]byte, error) {
	if len(documents) == 0 {
		return nil, domain.ErrEmptyCorpus
	}
	if len(documents) != len(vectors) {
		return nil, fmt.Errorf("%w: %d documents, %d vectors",
			domain.ErrDimensionMismatch, len(documents), len(vectors))
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero-length vector", domain.ErrDimensionMismatch)
	}

	size := headerSize + len(documents)*dim*4 + checksumSize
	for _, d := range documents {
		size += 4 + len(d)
	}
	buf := make([]byte, 0, size)

	buf = append(buf, magic...)
	buf = binary.LittleEndian.AppendUint16(buf, formatVersion)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(dim))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(documents)))

	for _, d := range documents {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(d)))
		buf = append(buf, d...)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d dims, expected %d",
				domain.ErrDimensionMismatch, i, len(v), dim)
		}
		for _, f := range v {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}

	return binary.LittleEndian.AppendUint64(buf, xxhash.Sum64(buf)), nil
}

// Decode parses a snapshot. Every structural problem, including truncation
// and checksum mismatch, is reported as domain.ErrSnapshotCorrupt.
func Decode(data []byte) ([]string, [][]float32, error) {
	if len(data) < headerSize+checksumSize {
		return nil, nil, corrupt("file too short (%d bytes)", len(data))
	}

	body := data[:len(data)-checksumSize]
	want := binary.LittleEndian.Uint64(data[len(body):])
	if got := xxhash.Sum64(body); got != want {
		return nil, nil, corrupt("checksum mismatch")
	}

	if string(body[:len(magic)]) != magic {
		return nil, nil, corrupt("bad magic %q", body[:len(magic)])
	}
	r := reader{buf: body, off: len(magic)}

	version := r.u16()
	if version != formatVersion {
		return nil, nil, corrupt("unsupported version %d", version)
	}
	dim := int(r.u32())
	count := int(r.u32())
	if count == 0 || dim == 0 {
		return nil, nil, corrupt("empty snapshot (count=%d, dim=%d)", count, dim)
	}
	// Each document takes at least its length prefix plus dim floats.
	if count > r.remaining()/(4+4*dim) {
		return nil, nil, corrupt("count %d exceeds payload", count)
	}

	documents := make([]string, count)
	for i := range documents {
		n := int(r.u32())
		b, ok := r.bytes(n)
		if !ok {
			return nil, nil, corrupt("document %d truncated", i)
		}
		documents[i] = string(b)
	}

	if r.remaining() != count*dim*4 {
		return nil, nil, corrupt("vector block has %d bytes, expected %d", r.remaining(), count*dim*4)
	}
	flat := make([]float32, count*dim)
	for i := range flat {
		flat[i] = math.Float32frombits(r.u32())
	}
	vectors := make([][]float32, count)
	for i := range vectors {
		vectors[i] = flat[i*dim : (i+1)*dim : (i+1)*dim]
	}

	return documents, vectors, nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrSnapshotCorrupt, fmt.Sprintf(format, args...))
}

// reader walks a byte slice. Reads past the end yield zero values; callers
// check lengths through bytes and remaining.
type reader struct {
	buf []byte
	off int
}

func (r *reader) remaining() int { return len(r.buf) - r.off }

func (r *reader) u16() uint16 {
	if r.remaining() < 2 {
		r.off = len(r.buf)
		return 0
	}
	v := binary.LittleEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v
}

func (r *reader) u32() uint32 {
	if r.remaining() < 4 {
		r.off = len(r.buf)
		return 0
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v
}

func (r *reader) bytes(n int) ([]byte, bool) {
	if n < 0 || n > r.remaining() {
		return nil, false
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, true
}
