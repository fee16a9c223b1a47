package fieldnorm

import "sort"

// fieldNormTable maps a norm id to the smallest field length of its bucket.
// Ids 0 through 40 are exact. Past that the bucket width doubles every 12
// ids, so the table covers lengths up to a few million tokens while staying
// accurate for the short fields that dominate real corpora.
var fieldNormTable = buildFieldNormTable()

func buildFieldNormTable() [256]uint32 {
	var table [256]uint32
	for id := uint32(0); id <= 40; id++ {
		table[id] = id
	}
	value, step := uint32(40), uint32(1)
	for id := 41; id < 256; id++ {
		if (id-41)%12 == 0 {
			step <<= 1
		}
		value += step
		table[id] = value
	}
	return table
}

// EncodeFieldLength compresses a field length to its one byte norm id.
// The mapping rounds down: the id decodes to the largest table entry that
// does not exceed length.
func EncodeFieldLength(length uint32) uint8 {
	if length >= fieldNormTable[255] {
		return 255
	}
	// First id whose lower bound exceeds length, minus one.
	idx := sort.Search(256, func(i int) bool {
		return fieldNormTable[i] > length
	})
	return uint8(idx - 1)
}

// DecodeFieldNorm expands a norm id back to the field length it stands for.
// For ids above 40 this is the lower bound of the id's bucket, so
// DecodeFieldNorm(EncodeFieldLength(n)) <= n always holds.
func DecodeFieldNorm(id uint8) uint32 {
	return fieldNormTable[id]
}
