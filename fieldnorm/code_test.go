package fieldnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drusellers/tantivy/model"
)

func TestSmallLengthsAreExact(t *testing.T) {
	for length := uint32(0); length <= 40; length++ {
		id := EncodeFieldLength(length)
		assert.Equal(t, uint8(length), id)
		assert.Equal(t, length, DecodeFieldNorm(id))
	}
}

func TestTableIsStrictlyIncreasing(t *testing.T) {
	for id := 1; id < 256; id++ {
		assert.Greater(t, DecodeFieldNorm(uint8(id)), DecodeFieldNorm(uint8(id-1)),
			"id %d", id)
	}
}

func TestEncodeRoundsDown(t *testing.T) {
	lengths := []uint32{0, 1, 40, 41, 42, 100, 1000, 65535, 1 << 20, 5 << 20}
	for _, length := range lengths {
		id := EncodeFieldLength(length)
		decoded := DecodeFieldNorm(id)
		assert.LessOrEqual(t, decoded, length, "length %d", length)
		if id < 255 {
			assert.Greater(t, DecodeFieldNorm(id+1), length, "length %d", length)
		}
	}
}

func TestEncodeDecodeIsIdentityOnIDs(t *testing.T) {
	for id := 0; id < 256; id++ {
		assert.Equal(t, uint8(id), EncodeFieldLength(DecodeFieldNorm(uint8(id))))
	}
}

func TestHugeLengthsSaturate(t *testing.T) {
	assert.Equal(t, uint8(255), EncodeFieldLength(1<<31))
	assert.Equal(t, uint8(255), EncodeFieldLength(^uint32(0)))
}

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter()
	lengths := []uint32{3, 5, 0, 7, 120}
	for doc, length := range lengths {
		require.NoError(t, w.Record(model.DocID(doc), length))
	}
	require.Equal(t, uint32(len(lengths)), w.NumDocs())

	r := NewReader(w.Bytes())
	require.Equal(t, uint32(len(lengths)), r.NumDocs())
	for doc, length := range lengths {
		got := r.FieldLength(model.DocID(doc))
		assert.LessOrEqual(t, got, length)
		assert.Equal(t, EncodeFieldLength(length), r.NormID(model.DocID(doc)))
	}
	// Short lengths survive exactly.
	assert.Equal(t, uint32(3), r.FieldLength(0))
	assert.Equal(t, uint32(5), r.FieldLength(1))
}

func TestWriterRejectsOutOfOrderDocs(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.Record(0, 4))
	err := w.Record(2, 4)
	require.Error(t, err)
}

func TestConstReader(t *testing.T) {
	r := ConstReader(4, 9)
	require.Equal(t, uint32(4), r.NumDocs())
	for doc := model.DocID(0); doc < 4; doc++ {
		assert.Equal(t, uint32(9), r.FieldLength(doc))
	}
}
