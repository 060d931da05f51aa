package snapshot

import (
	"encoding/binary"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahsan-courses/coursebot/internal/domain"
)

func TestEncode_Header(t *testing.T) {
	data, err := Encode([]string{"ab"}, [][]float32{{1, 2}})
	require.NoError(t, err)

	assert.Equal(t, "CBKS", string(data[:4]))
	assert.Equal(t, formatVersion, binary.LittleEndian.Uint16(data[4:]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[6:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[10:]))
	// header + (4 + 2) + 2*4 + checksum
	assert.Len(t, data, headerSize+6+8+checksumSize)
}

// resign recomputes the trailing checksum so structural checks are reached.
func resign(body []byte) []byte {
	return binary.LittleEndian.AppendUint64(body, xxhash.Sum64(body))
}

func TestDecode_StructuralErrors(t *testing.T) {
	valid, err := Encode([]string{"ab"}, [][]float32{{1, 2}})
	require.NoError(t, err)
	body := valid[:len(valid)-checksumSize]

	mutate := func(fn func(b []byte) []byte) []byte {
		b := append([]byte(nil), body...)
		return resign(fn(b))
	}

	tests := map[string][]byte{
		"bad magic": mutate(func(b []byte) []byte { b[0] = 'X'; return b }),
		"bad version": mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint16(b[4:], 9)
			return b
		}),
		"zero count": mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[10:], 0)
			return b
		}),
		"count too large": mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[10:], 1<<30)
			return b
		}),
		"doc length overflow": mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[headerSize:], 1000)
			return b
		}),
		"extra vector bytes": mutate(func(b []byte) []byte { return append(b, 0, 0, 0, 0) }),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := Decode(data)
			assert.ErrorIs(t, err, domain.ErrSnapshotCorrupt)
		})
	}
}
