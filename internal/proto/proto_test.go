package proto

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestFieldTypes(t *testing.T) {
	require.EqualValues(t, protowire.VarintType, FieldTypeVARINT)
	require.EqualValues(t, protowire.Fixed64Type, FieldTypeI64)
	require.EqualValues(t, protowire.BytesType, FieldTypeLEN)
	require.EqualValues(t, protowire.StartGroupType, FieldTypeSGROUP)
	require.EqualValues(t, protowire.EndGroupType, FieldTypeEGROUP)
	require.EqualValues(t, protowire.Fixed32Type, FieldTypeI32)
}

func TestEncodeTag(t *testing.T) {
	for _, num := range []uint64{1, 2, 15, 16, 100, 1000} {
		for _, typ := range []uint64{FieldTypeVARINT, FieldTypeI64, FieldTypeLEN, FieldTypeI32} {
			require.EqualValues(t, protowire.EncodeTag(protowire.Number(num), protowire.Type(typ)),
				EncodeTag(num, typ), "field %d, type %d", num, typ)
		}
	}
}

func TestAppendVarint(t *testing.T) {
	for _, x := range []uint64{
		0, 1, 127, 128, 150, 300,
		1<<14 - 1, 1 << 14,
		1<<21 - 1, 1 << 21,
		1<<35 - 1, 1 << 35,
		math.MaxInt64, math.MaxUint64,
	} {
		require.Equal(t, protowire.AppendVarint(nil, x), AppendVarint(nil, x), x)
	}

	// Values are appended, the preceding bytes stay intact.
	require.Equal(t, []byte{0xaa, 0x96, 0x01}, AppendVarint([]byte{0xaa}, 150))
}

func TestAppendVarintField(t *testing.T) {
	// Canonical example from the protobuf encoding guide.
	require.Equal(t, []byte{0x08, 0x96, 0x01}, AppendVarintField(nil, 1, 150))

	b := AppendVarintField(nil, 4, 42)
	b = AppendVarintField(b, 5, 0)

	exp := protowire.AppendVarint(nil, protowire.EncodeTag(4, protowire.VarintType))
	exp = protowire.AppendVarint(exp, 42)
	exp = protowire.AppendVarint(exp, protowire.EncodeTag(5, protowire.VarintType))
	exp = protowire.AppendVarint(exp, 0)
	require.Equal(t, exp, b)
}

func TestAppendBytesField(t *testing.T) {
	// Canonical example from the protobuf encoding guide.
	require.Equal(t, append([]byte{0x12, 0x07}, "testing"...), AppendBytesField(nil, 2, []byte("testing")))

	val := []byte{0xde, 0xad, 0xbe, 0xef}

	b := AppendVarintField(nil, 1, 1)
	b = AppendBytesField(b, 2, val)

	exp := protowire.AppendVarint(nil, protowire.EncodeTag(1, protowire.VarintType))
	exp = protowire.AppendVarint(exp, 1)
	exp = protowire.AppendTag(exp, 2, protowire.BytesType)
	exp = protowire.AppendBytes(exp, val)
	require.Equal(t, exp, b)
}
