package proto

// EncodeTag encodes protobuf tag for field with given number and type.
func EncodeTag(num, typ uint64) uint64 {
	return num<<3 | typ&7
}

// AppendVarint appends protobuf VARINT value to b and returns the result.
func AppendVarint(b []byte, x uint64) []byte {
	for x >= 0x80 {
		// &0xFF is the only difference with binary.AppendUvarint needed because
		// VM throws exception on type narrowing.
		b = append(b, byte(x&0xFF|0x80))
		x = x >> 7
	}
	return append(b, byte(x))
}

// AppendVarintField appends protobuf field of [FieldTypeVARINT] type with
// given number to b and returns the result.
func AppendVarintField(b []byte, num, x uint64) []byte {
	b = AppendVarint(b, EncodeTag(num, FieldTypeVARINT))
	return AppendVarint(b, x)
}

// AppendBytesField appends protobuf field of [FieldTypeLEN] type with given
// number to b and returns the result. Note that protobuf does not distinguish
// missing and empty LEN fields, so zero-length val is better off skipped on
// the caller side.
func AppendBytesField(b []byte, num uint64, val []byte) []byte {
	b = AppendVarint(b, EncodeTag(num, FieldTypeLEN))
	b = AppendVarint(b, uint64(len(val)))
	return append(b, val...)
}
