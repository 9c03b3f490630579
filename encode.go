package duckbridge

import (
	"bytes"
	"encoding/binary"
	"unsafe"
)

// EncodeMode selects the wire layout of an encoded column.
type EncodeMode int

const (
	// EncodeDense lays out [u32 count][count fixed-width values]. For
	// strings and blobs: [u32 count][u32 total_bytes][NUL-terminated
	// values concatenated in row order].
	EncodeDense EncodeMode = iota

	// EncodeNullable is the dense layout followed by count validity
	// bytes, one per row, 1 = present. NULL rows carry a zeroed value
	// slot (or an empty string) in the value section.
	EncodeNullable
)

// All multi-byte fields in encoded buffers are little-endian, regardless of
// host byte order.
var wireOrder = binary.LittleEndian

// Allocator produces the byte buffers encoded columns are returned in. It
// exists so a host runtime can route buffer allocation through its own
// memory manager; the default simply makes a Go slice.
type Allocator func(size int) ([]byte, error)

var allocate Allocator = func(size int) ([]byte, error) {
	return make([]byte, size), nil
}

// SetAllocator installs a buffer allocator for encoded columns. Passing nil
// restores the default. Not safe to call concurrently with encoding.
func SetAllocator(a Allocator) {
	if a == nil {
		a = func(size int) ([]byte, error) { return make([]byte, size), nil }
	}
	allocate = a
}

// elementWidth returns the encoded size in bytes of one value of a
// fixed-width type, or 0 for variable-width types (VARCHAR, BLOB). Decimals
// are widened to 128 bits on the wire independent of their physical storage.
func elementWidth(t TypeID) int {
	switch t {
	case TypeBoolean, TypeTinyInt, TypeUTinyInt:
		return 1
	case TypeSmallInt, TypeUSmallInt:
		return 2
	case TypeInteger, TypeUInteger, TypeFloat, TypeDate:
		return 4
	case TypeBigInt, TypeUBigInt, TypeDouble,
		TypeTimestamp, TypeTimestampS, TypeTimestampMS, TypeTimestampNS, TypeTimestampTZ,
		TypeTime, TypeTimeTZ:
		return 8
	case TypeInterval, TypeHugeInt, TypeUHugeInt, TypeDecimal, TypeUUID:
		return 16
	}
	return 0
}

// columnData is a fully collected column, decoupled from engine memory:
// fixed-width values (null slots zeroed) or string payloads, plus one
// validity byte per row. Assembly into the wire layout is a pure function of
// this struct.
type columnData struct {
	meta     ColumnMeta
	width    int      // 0 for string/blob
	values   []byte   // fixed-width section, len = count*width
	payloads [][]byte // string/blob payloads, nil entries for NULL rows
	validity []byte   // one byte per row, 1 = present
}

func (d *columnData) count() int {
	return len(d.validity)
}

// EncodeColumn materializes one column of a result into a single binary
// buffer. The whole column is encoded in one shot; the returned buffer is a
// full copy with a lifetime independent of the result. An empty result
// yields a zero-length buffer, not an error.
func EncodeColumn(res *Result, col int, mode EncodeMode) ([]byte, error) {
	if res == nil || res.closed {
		return nil, errInvalidHandle("result")
	}
	if n := res.ColumnCount(); col < 0 || col >= n {
		return nil, errIndexOutOfRange("column", col, n)
	}

	meta, err := classifyColumn(&res.raw, col)
	if err != nil {
		return nil, err
	}

	data, err := collectColumn(res, col, meta)
	if err != nil {
		return nil, err
	}
	return assembleColumn(data, mode)
}

// classifyColumn validates and resolves a single column the same way the
// stream classifier does for all of them.
func classifyColumn(res *apiResult, col int) (ColumnMeta, error) {
	t := TypeID(duckdbColumnType(res, uint64(col)))
	name := goString(duckdbColumnName(res, uint64(col)))
	if !streamSupported(t) {
		return ColumnMeta{}, errUnsupportedType(name, col, t)
	}

	meta := ColumnMeta{Name: name, Type: t}
	if t == TypeDecimal {
		logical := duckdbColumnLogicalType(res, uint64(col))
		meta.Width = duckdbDecimalWidth(logical)
		meta.Scale = duckdbDecimalScale(logical)
		meta.decimalStorage = TypeID(duckdbDecimalInternalType(logical))
		duckdbDestroyLogicalType(&logical)

		switch meta.decimalStorage {
		case TypeSmallInt, TypeInteger, TypeBigInt, TypeHugeInt:
		default:
			return ColumnMeta{}, errUnsupportedType(name, col, t)
		}
	}
	return meta, nil
}

// collectColumn walks every chunk of a materialized result and copies the
// target column out of engine memory into a columnData. After it returns,
// nothing references engine memory.
func collectColumn(res *Result, col int, meta ColumnMeta) (*columnData, error) {
	data := &columnData{
		meta:  meta,
		width: elementWidth(meta.Type),
	}

	chunkCount := duckdbResultChunkCount(res.raw)
	for ci := uint64(0); ci < chunkCount; ci++ {
		chunk := duckdbResultGetChunk(res.raw, ci)
		if chunk == 0 {
			return nil, engineError("", "failed to fetch result chunk")
		}
		collectChunk(data, chunk, col)
		duckdbDestroyDataChunk(&chunk)
	}
	return data, nil
}

func collectChunk(data *columnData, chunk chunkHandle, col int) {
	rows := int(duckdbDataChunkGetSize(chunk))
	if rows == 0 {
		return
	}

	vec := duckdbDataChunkGetVector(chunk, uint64(col))
	raw := duckdbVectorGetData(vec)
	validity := duckdbVectorGetValidity(vec)

	for row := 0; row < rows; row++ {
		valid := validityRowIsValid(validity, row)
		if valid {
			data.validity = append(data.validity, 1)
		} else {
			data.validity = append(data.validity, 0)
		}

		switch data.meta.Type {
		case TypeVarchar, TypeBlob:
			if !valid {
				data.payloads = append(data.payloads, nil)
				break
			}
			data.payloads = append(data.payloads,
				decodeBlob((*stringT)(unsafe.Add(raw, row*stringTSize))))
		case TypeDecimal:
			// Widen to 128 bits. NULL slots stay zero; the data
			// slot of a null row is unspecified and must not be
			// read.
			var h HugeInt
			if valid {
				h = decodeDecimal(data.meta, raw, row).Value
			}
			data.values = wireOrder.AppendUint64(data.values, h.Lower)
			data.values = wireOrder.AppendUint64(data.values, uint64(h.Upper))
		default:
			if !valid {
				data.values = append(data.values, make([]byte, data.width)...)
				break
			}
			data.values = appendValueLE(data.values, data.meta.Type, raw, row, data.width)
		}
	}
}

// appendValueLE serializes one fixed-width value from vector memory in the
// wire byte order, field by field, so encoded buffers are little-endian even
// on a big-endian host.
func appendValueLE(dst []byte, t TypeID, raw unsafe.Pointer, row, width int) []byte {
	p := unsafe.Add(raw, row*width)
	switch width {
	case 1:
		return append(dst, *(*byte)(p))
	case 2:
		return wireOrder.AppendUint16(dst, *(*uint16)(p))
	case 4:
		return wireOrder.AppendUint32(dst, *(*uint32)(p))
	case 8:
		return wireOrder.AppendUint64(dst, *(*uint64)(p))
	default:
		// 16-byte values. Intervals are (i32, i32, i64); the 128-bit
		// integers and UUIDs are (u64 lower, u64 upper).
		if t == TypeInterval {
			iv := *(*Interval)(p)
			dst = wireOrder.AppendUint32(dst, uint32(iv.Months))
			dst = wireOrder.AppendUint32(dst, uint32(iv.Days))
			return wireOrder.AppendUint64(dst, uint64(iv.Micros))
		}
		h := *(*UHugeInt)(p)
		dst = wireOrder.AppendUint64(dst, h.Lower)
		return wireOrder.AppendUint64(dst, h.Upper)
	}
}

// assembleColumn lays a collected column out in the requested wire mode.
// Pure: engine memory is not touched.
func assembleColumn(data *columnData, mode EncodeMode) ([]byte, error) {
	count := data.count()
	if count == 0 {
		return allocEmpty()
	}
	if data.width == 0 {
		return assembleStrings(data, mode)
	}

	size := 4 + count*data.width
	if mode == EncodeNullable {
		size += count
	}
	buf, err := allocate(size)
	if err != nil || len(buf) < size {
		return nil, errAllocation("column buffer")
	}

	wireOrder.PutUint32(buf, uint32(count))
	copy(buf[4:], data.values)
	if mode == EncodeNullable {
		copy(buf[4+count*data.width:], data.validity)
	}
	return buf[:size], nil
}

// assembleStrings lays out [count][total_bytes][NUL-terminated payloads],
// plus validity bytes in nullable mode. A payload containing an embedded NUL
// cannot survive the terminator scan on the consumer side, so it is
// truncated at the first NUL rather than corrupting the framing of every
// value after it. NULL rows contribute an empty value (a lone terminator);
// in nullable mode the validity bytes distinguish them from genuinely empty
// strings.
func assembleStrings(data *columnData, mode EncodeMode) ([]byte, error) {
	count := data.count()

	total := 0
	for _, p := range data.payloads {
		total += payloadLength(p) + 1
	}

	size := 8 + total
	if mode == EncodeNullable {
		size += count
	}
	buf, err := allocate(size)
	if err != nil || len(buf) < size {
		return nil, errAllocation("column buffer")
	}

	wireOrder.PutUint32(buf, uint32(count))
	wireOrder.PutUint32(buf[4:], uint32(total))

	off := 8
	for _, p := range data.payloads {
		n := payloadLength(p)
		copy(buf[off:], p[:n])
		buf[off+n] = 0
		off += n + 1
	}
	if mode == EncodeNullable {
		copy(buf[off:], data.validity)
		off += count
	}
	return buf[:size], nil
}

// payloadLength is the number of payload bytes that survive the wire: up to
// the first NUL, or the whole payload if it contains none.
func payloadLength(p []byte) int {
	if i := bytes.IndexByte(p, 0); i >= 0 {
		return i
	}
	return len(p)
}

func allocEmpty() ([]byte, error) {
	buf, err := allocate(0)
	if err != nil {
		return nil, errAllocation("column buffer")
	}
	return buf[:0], nil
}
