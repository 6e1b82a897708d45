package proto

// All possible field types declared in https://protobuf.dev/programming-guides/encoding/#structure.
const (
	FieldTypeVARINT = iota
	FieldTypeI64
	FieldTypeLEN
	FieldTypeSGROUP
	FieldTypeEGROUP
	FieldTypeI32
)
