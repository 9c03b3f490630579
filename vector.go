package duckbridge

import (
	"unsafe"

	"github.com/google/uuid"
)

// IsNull reports whether the value at (col, row) is NULL.
func (c *Chunk) IsNull(col, row int) (bool, error) {
	if c.closed {
		return false, errInvalidHandle("chunk")
	}
	if col < 0 || col >= len(c.cols) {
		return false, errIndexOutOfRange("column", col, len(c.cols))
	}
	if row < 0 || row >= c.rows {
		return false, errIndexOutOfRange("row", row, c.rows)
	}

	vec := duckdbDataChunkGetVector(c.handle, uint64(col))
	return !validityRowIsValid(duckdbVectorGetValidity(vec), row), nil
}

// Value decodes the value at (col, row) into its Go representation:
//
//	BOOLEAN                  bool
//	TINYINT..BIGINT          int8, int16, int32, int64
//	UTINYINT..UBIGINT        uint8, uint16, uint32, uint64
//	FLOAT, DOUBLE            float32, float64
//	TIMESTAMP[_S|_MS|_NS|TZ] Timestamp, TimestampS, TimestampMS, TimestampNS, Timestamp
//	DATE, TIME, TIMETZ       Date, Time, TimeTZ
//	INTERVAL                 Interval
//	HUGEINT, UHUGEINT        HugeInt, UHugeInt
//	VARCHAR                  string
//	BLOB                     []byte
//	DECIMAL                  Decimal
//	UUID                     uuid.UUID
//
// NULL decodes to nil regardless of type. String and blob bytes are copied
// out of engine memory, so returned values outlive the chunk.
func (c *Chunk) Value(col, row int) (any, error) {
	if c.closed {
		return nil, errInvalidHandle("chunk")
	}
	if col < 0 || col >= len(c.cols) {
		return nil, errIndexOutOfRange("column", col, len(c.cols))
	}
	if row < 0 || row >= c.rows {
		return nil, errIndexOutOfRange("row", row, c.rows)
	}

	vec := duckdbDataChunkGetVector(c.handle, uint64(col))
	if !validityRowIsValid(duckdbVectorGetValidity(vec), row) {
		return nil, nil
	}

	data := duckdbVectorGetData(vec)
	if c.cache != nil && c.cols[col].Type == TypeVarchar {
		s := (*stringT)(unsafe.Add(data, row*stringTSize))
		return c.cache.Intern(stringTView(s)), nil
	}
	return decodeValue(c.cols[col], data, row), nil
}

// stringTView returns the descriptor's payload without copying. The slice
// aliases engine (or inline descriptor) memory and must not escape the call
// it is passed to.
func stringTView(s *stringT) []byte {
	n := int(s.length)
	if n == 0 {
		return nil
	}
	if n <= stringInlineLength {
		return s.inlineBytes()[:n]
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(s.ptr)), n)
}

// decodeValue reads one non-NULL value out of a vector's data area. The
// column's type table entry determines both the element width used for
// indexing and the Go representation produced. meta must describe a
// stream-supported type.
func decodeValue(meta ColumnMeta, data unsafe.Pointer, row int) any {
	switch meta.Type {
	case TypeBoolean:
		return *(*bool)(unsafe.Add(data, row))
	case TypeTinyInt:
		return *(*int8)(unsafe.Add(data, row))
	case TypeSmallInt:
		return *(*int16)(unsafe.Add(data, row*2))
	case TypeInteger:
		return *(*int32)(unsafe.Add(data, row*4))
	case TypeBigInt:
		return *(*int64)(unsafe.Add(data, row*8))
	case TypeUTinyInt:
		return *(*uint8)(unsafe.Add(data, row))
	case TypeUSmallInt:
		return *(*uint16)(unsafe.Add(data, row*2))
	case TypeUInteger:
		return *(*uint32)(unsafe.Add(data, row*4))
	case TypeUBigInt:
		return *(*uint64)(unsafe.Add(data, row*8))
	case TypeFloat:
		return *(*float32)(unsafe.Add(data, row*4))
	case TypeDouble:
		return *(*float64)(unsafe.Add(data, row*8))
	case TypeTimestamp, TypeTimestampTZ:
		return Timestamp{Micros: *(*int64)(unsafe.Add(data, row*8))}
	case TypeTimestampS:
		return TimestampS{Seconds: *(*int64)(unsafe.Add(data, row*8))}
	case TypeTimestampMS:
		return TimestampMS{Millis: *(*int64)(unsafe.Add(data, row*8))}
	case TypeTimestampNS:
		return TimestampNS{Nanos: *(*int64)(unsafe.Add(data, row*8))}
	case TypeDate:
		return Date{Days: *(*int32)(unsafe.Add(data, row*4))}
	case TypeTime:
		return Time{Micros: *(*int64)(unsafe.Add(data, row*8))}
	case TypeTimeTZ:
		return TimeTZ{Bits: *(*uint64)(unsafe.Add(data, row*8))}
	case TypeInterval:
		return *(*Interval)(unsafe.Add(data, row*16))
	case TypeHugeInt:
		return *(*HugeInt)(unsafe.Add(data, row*16))
	case TypeUHugeInt:
		return *(*UHugeInt)(unsafe.Add(data, row*16))
	case TypeVarchar:
		return decodeString((*stringT)(unsafe.Add(data, row*stringTSize)))
	case TypeBlob:
		return decodeBlob((*stringT)(unsafe.Add(data, row*stringTSize)))
	case TypeDecimal:
		return decodeDecimal(meta, data, row)
	case TypeUUID:
		return uuidFromHugeInt(*(*HugeInt)(unsafe.Add(data, row*16)))
	}
	return nil
}

// decodeString copies the payload of a string descriptor into a Go string.
// Descriptors up to 12 bytes carry the payload inline; longer ones carry a
// 4-byte prefix and a pointer to the full bytes. The prefix duplicates the
// start of the out-of-line payload, so it is never read here.
func decodeString(s *stringT) string {
	n := int(s.length)
	if n == 0 {
		return ""
	}
	if n <= stringInlineLength {
		return string(s.inlineBytes()[:n])
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(s.ptr)), n))
}

// decodeBlob is decodeString with a copied byte slice result.
func decodeBlob(s *stringT) []byte {
	n := int(s.length)
	out := make([]byte, n)
	if n == 0 {
		return out
	}
	if n <= stringInlineLength {
		copy(out, s.inlineBytes()[:n])
	} else {
		copy(out, unsafe.Slice((*byte)(unsafe.Pointer(s.ptr)), n))
	}
	return out
}

// decodeDecimal reads the unscaled value from whichever physical integer
// width the column stores, sign-extends it to 128 bits, and attaches the
// width/scale resolved at classification time.
func decodeDecimal(meta ColumnMeta, data unsafe.Pointer, row int) Decimal {
	var value HugeInt
	switch meta.decimalStorage {
	case TypeSmallInt:
		value = hugeIntFromInt64(int64(*(*int16)(unsafe.Add(data, row*2))))
	case TypeInteger:
		value = hugeIntFromInt64(int64(*(*int32)(unsafe.Add(data, row*4))))
	case TypeBigInt:
		value = hugeIntFromInt64(*(*int64)(unsafe.Add(data, row*8)))
	case TypeHugeInt:
		value = *(*HugeInt)(unsafe.Add(data, row*16))
	}
	return Decimal{Width: meta.Width, Scale: meta.Scale, Value: value}
}

// uuidFromHugeInt converts the engine's UUID storage to a uuid.UUID. The
// engine keeps UUIDs as hugeints with the most significant bit flipped so
// they sort correctly as signed integers; flipping it back and writing the
// halves big-endian yields the RFC 4122 byte order.
func uuidFromHugeInt(h HugeInt) uuid.UUID {
	var u uuid.UUID
	upper := uint64(h.Upper) ^ (uint64(1) << 63)
	for i := 0; i < 8; i++ {
		u[i] = byte(upper >> (56 - 8*i))
		u[8+i] = byte(h.Lower >> (56 - 8*i))
	}
	return u
}

// hugeIntFromUUID is the inverse of uuidFromHugeInt.
func hugeIntFromUUID(u uuid.UUID) HugeInt {
	var upper, lower uint64
	for i := 0; i < 8; i++ {
		upper = upper<<8 | uint64(u[i])
		lower = lower<<8 | uint64(u[8+i])
	}
	return HugeInt{Lower: lower, Upper: int64(upper ^ uint64(1)<<63)}
}
