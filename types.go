package duckbridge

import (
	"unsafe"
)

// TypeID mirrors the engine's duckdb_type enum. The numeric values are part
// of the C ABI and are not sequential: UHUGEINT and ARRAY were appended to
// the C enum after the types that logically precede them, so every value is
// pinned explicitly here rather than derived with iota.
type TypeID uint32

const (
	TypeInvalid     TypeID = 0
	TypeBoolean     TypeID = 1
	TypeTinyInt     TypeID = 2
	TypeSmallInt    TypeID = 3
	TypeInteger     TypeID = 4
	TypeBigInt      TypeID = 5
	TypeUTinyInt    TypeID = 6
	TypeUSmallInt   TypeID = 7
	TypeUInteger    TypeID = 8
	TypeUBigInt     TypeID = 9
	TypeFloat       TypeID = 10
	TypeDouble      TypeID = 11
	TypeTimestamp   TypeID = 12
	TypeDate        TypeID = 13
	TypeTime        TypeID = 14
	TypeInterval    TypeID = 15
	TypeHugeInt     TypeID = 16
	TypeVarchar     TypeID = 17
	TypeBlob        TypeID = 18
	TypeDecimal     TypeID = 19
	TypeTimestampS  TypeID = 20
	TypeTimestampMS TypeID = 21
	TypeTimestampNS TypeID = 22
	TypeEnum        TypeID = 23
	TypeList        TypeID = 24
	TypeStruct      TypeID = 25
	TypeMap         TypeID = 26
	TypeUUID        TypeID = 27
	TypeUnion       TypeID = 28
	TypeBit         TypeID = 29
	TypeTimeTZ      TypeID = 30
	TypeTimestampTZ TypeID = 31
	TypeUHugeInt    TypeID = 32
	TypeArray       TypeID = 33
	TypeAny         TypeID = 34
	TypeVarInt      TypeID = 35
	TypeSQLNull     TypeID = 36
)

func (t TypeID) String() string {
	switch t {
	case TypeBoolean:
		return "BOOLEAN"
	case TypeTinyInt:
		return "TINYINT"
	case TypeSmallInt:
		return "SMALLINT"
	case TypeInteger:
		return "INTEGER"
	case TypeBigInt:
		return "BIGINT"
	case TypeUTinyInt:
		return "UTINYINT"
	case TypeUSmallInt:
		return "USMALLINT"
	case TypeUInteger:
		return "UINTEGER"
	case TypeUBigInt:
		return "UBIGINT"
	case TypeFloat:
		return "FLOAT"
	case TypeDouble:
		return "DOUBLE"
	case TypeTimestamp:
		return "TIMESTAMP"
	case TypeDate:
		return "DATE"
	case TypeTime:
		return "TIME"
	case TypeInterval:
		return "INTERVAL"
	case TypeHugeInt:
		return "HUGEINT"
	case TypeUHugeInt:
		return "UHUGEINT"
	case TypeVarchar:
		return "VARCHAR"
	case TypeBlob:
		return "BLOB"
	case TypeDecimal:
		return "DECIMAL"
	case TypeTimestampS:
		return "TIMESTAMP_S"
	case TypeTimestampMS:
		return "TIMESTAMP_MS"
	case TypeTimestampNS:
		return "TIMESTAMP_NS"
	case TypeEnum:
		return "ENUM"
	case TypeList:
		return "LIST"
	case TypeStruct:
		return "STRUCT"
	case TypeMap:
		return "MAP"
	case TypeArray:
		return "ARRAY"
	case TypeUUID:
		return "UUID"
	case TypeUnion:
		return "UNION"
	case TypeBit:
		return "BIT"
	case TypeTimeTZ:
		return "TIME WITH TIME ZONE"
	case TypeTimestampTZ:
		return "TIMESTAMP WITH TIME ZONE"
	default:
		return "INVALID"
	}
}

// Date is a calendar date stored as days since the Unix epoch.
type Date struct {
	Days int32
}

// Time is a time of day stored as microseconds since midnight.
type Time struct {
	Micros int64
}

// maxTimeTZOffset is the largest UTC offset the engine can represent,
// in seconds (±15:59:59).
const maxTimeTZOffset = 57599

// TimeTZ is a time of day with a UTC offset, packed into 64 bits the way the
// engine stores it: microseconds in the upper 40 bits, the offset biased into
// the lower 24.
type TimeTZ struct {
	Bits uint64
}

// Micros returns the time-of-day component in microseconds since midnight.
func (t TimeTZ) Micros() int64 {
	return int64(t.Bits >> 24)
}

// OffsetSeconds returns the UTC offset in seconds, positive east of UTC.
func (t TimeTZ) OffsetSeconds() int32 {
	return maxTimeTZOffset - int32(t.Bits&0xFFFFFF)
}

// MakeTimeTZ packs a time of day and a UTC offset into the engine encoding.
func MakeTimeTZ(micros int64, offsetSeconds int32) TimeTZ {
	return TimeTZ{Bits: uint64(micros)<<24 | uint64(uint32(maxTimeTZOffset-offsetSeconds))&0xFFFFFF}
}

// Timestamp is an instant stored as microseconds since the Unix epoch.
type Timestamp struct {
	Micros int64
}

// TimestampS is an instant stored as seconds since the Unix epoch.
type TimestampS struct {
	Seconds int64
}

// TimestampMS is an instant stored as milliseconds since the Unix epoch.
type TimestampMS struct {
	Millis int64
}

// TimestampNS is an instant stored as nanoseconds since the Unix epoch.
type TimestampNS struct {
	Nanos int64
}

// Interval is the engine's calendar interval: months and days are kept
// separate from the sub-day microsecond component because neither has a fixed
// length in the other's unit.
type Interval struct {
	Months int32
	Days   int32
	Micros int64
}

// HugeInt is a 128-bit two's-complement signed integer, split into the
// engine's lower/upper halves.
type HugeInt struct {
	Lower uint64
	Upper int64
}

// Int64 narrows the value to 64 bits. ok is false when the value does not
// fit.
func (h HugeInt) Int64() (v int64, ok bool) {
	v = int64(h.Lower)
	if h.Upper == 0 && v >= 0 {
		return v, true
	}
	if h.Upper == -1 && v < 0 {
		return v, true
	}
	return 0, false
}

// hugeIntFromInt64 sign-extends a 64-bit value to 128 bits.
func hugeIntFromInt64(v int64) HugeInt {
	h := HugeInt{Lower: uint64(v)}
	if v < 0 {
		h.Upper = -1
	}
	return h
}

// UHugeInt is a 128-bit unsigned integer.
type UHugeInt struct {
	Lower uint64
	Upper uint64
}

// Decimal is a fixed-point value carried as an unscaled 128-bit integer plus
// width/scale metadata. The numeric value is Value / 10^Scale; no float
// conversion is performed here, so no precision is lost in transit.
type Decimal struct {
	Width uint8
	Scale uint8
	Value HugeInt
}

// stringInlineLength is the number of payload bytes a string descriptor can
// hold without spilling to out-of-line storage.
const stringInlineLength = 12

// stringT matches the engine's 16-byte string descriptor. Strings of up to 12
// bytes live directly in the 12 bytes starting at prefix; longer strings keep
// a 4-byte prefix and a pointer to externally owned bytes. The two layouts
// alias the same storage, so every read must branch on length first — and
// ptr is a uintptr, not an unsafe.Pointer, because for inline strings its
// storage holds payload bytes, not a pointer the garbage collector may scan.
type stringT struct {
	length uint32
	prefix [4]byte
	ptr    uintptr
}

const stringTSize = 16

// inlineBytes returns the 12-byte inline region of the descriptor.
func (s *stringT) inlineBytes() []byte {
	return unsafe.Slice(&s.prefix[0], stringInlineLength)
}

// validityRowIsValid tests one bit of a validity bitmap. A nil bitmap means
// every row is valid.
func validityRowIsValid(validity *uint64, row int) bool {
	if validity == nil {
		return true
	}
	entry := *(*uint64)(unsafe.Add(unsafe.Pointer(validity), (row/64)*8))
	return entry&(uint64(1)<<(uint(row)%64)) != 0
}

// ColumnMeta is one entry of a stream's column type table: the validated
// logical type plus whatever the decoder needs to interpret raw vector memory
// without further engine calls. Decimal columns resolve their width, scale
// and physical storage type once, at classification time.
type ColumnMeta struct {
	Name  string
	Type  TypeID
	Width uint8
	Scale uint8

	// Physical storage of a decimal column: SMALLINT, INTEGER, BIGINT or
	// HUGEINT depending on width.
	decimalStorage TypeID
}
