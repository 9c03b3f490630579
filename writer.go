package duckbridge

import (
	"unsafe"
)

// WritableChunk is an engine-native data chunk built on the Go side, row by
// row, for bulk ingestion through an Appender. Column types are fixed at
// creation; SetSize declares the row count before any values are written.
type WritableChunk struct {
	handle chunkHandle
	types  []TypeID
	rows   int
	closed bool

	// Buffers referenced by out-of-line string descriptors. Held so the
	// garbage collector cannot reclaim them while the engine still reads
	// through the raw pointers.
	pinned [][]byte
}

// NewWritableChunk creates an empty chunk with the given column types. The
// caller owns the chunk and must Close it; handing it to an appender does
// not transfer ownership.
func NewWritableChunk(types ...TypeID) (*WritableChunk, error) {
	if err := Load(); err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, errIndexOutOfRange("column", 0, 0)
	}

	logical := make([]logicalHandle, len(types))
	for i, t := range types {
		logical[i] = duckdbCreateLogicalType(uint32(t))
	}
	handle := duckdbCreateDataChunk(&logical[0], uint64(len(logical)))
	for i := range logical {
		duckdbDestroyLogicalType(&logical[i])
	}
	if handle == 0 {
		return nil, errAllocation("data chunk")
	}

	return &WritableChunk{handle: handle, types: append([]TypeID(nil), types...)}, nil
}

// SetSize declares the number of rows the chunk holds. Must be called before
// the chunk is consumed; values written beyond the declared size are ignored
// by the engine.
func (w *WritableChunk) SetSize(rows int) error {
	if w.closed {
		return errInvalidHandle("chunk")
	}
	w.rows = rows
	duckdbDataChunkSetSize(w.handle, uint64(rows))
	return nil
}

// Rows returns the declared row count.
func (w *WritableChunk) Rows() int {
	return w.rows
}

func (w *WritableChunk) vector(col int) (vectorHandle, error) {
	if w.closed {
		return 0, errInvalidHandle("chunk")
	}
	if col < 0 || col >= len(w.types) {
		return 0, errIndexOutOfRange("column", col, len(w.types))
	}
	return duckdbDataChunkGetVector(w.handle, uint64(col)), nil
}

// SetNull marks (col, row) as NULL.
func (w *WritableChunk) SetNull(col, row int) error {
	vec, err := w.vector(col)
	if err != nil {
		return err
	}
	duckdbVectorEnsureValidityWritable(vec)
	duckdbValiditySetRowValidity(duckdbVectorGetValidity(vec), uint64(row), false)
	return nil
}

func (w *WritableChunk) set(col, row, width int, write func(p unsafe.Pointer)) error {
	vec, err := w.vector(col)
	if err != nil {
		return err
	}
	write(unsafe.Add(duckdbVectorGetData(vec), row*width))
	return nil
}

func (w *WritableChunk) SetBool(col, row int, v bool) error {
	return w.set(col, row, 1, func(p unsafe.Pointer) { *(*bool)(p) = v })
}

func (w *WritableChunk) SetInt8(col, row int, v int8) error {
	return w.set(col, row, 1, func(p unsafe.Pointer) { *(*int8)(p) = v })
}

func (w *WritableChunk) SetInt16(col, row int, v int16) error {
	return w.set(col, row, 2, func(p unsafe.Pointer) { *(*int16)(p) = v })
}

func (w *WritableChunk) SetInt32(col, row int, v int32) error {
	return w.set(col, row, 4, func(p unsafe.Pointer) { *(*int32)(p) = v })
}

func (w *WritableChunk) SetInt64(col, row int, v int64) error {
	return w.set(col, row, 8, func(p unsafe.Pointer) { *(*int64)(p) = v })
}

func (w *WritableChunk) SetUint8(col, row int, v uint8) error {
	return w.set(col, row, 1, func(p unsafe.Pointer) { *(*uint8)(p) = v })
}

func (w *WritableChunk) SetUint16(col, row int, v uint16) error {
	return w.set(col, row, 2, func(p unsafe.Pointer) { *(*uint16)(p) = v })
}

func (w *WritableChunk) SetUint32(col, row int, v uint32) error {
	return w.set(col, row, 4, func(p unsafe.Pointer) { *(*uint32)(p) = v })
}

func (w *WritableChunk) SetUint64(col, row int, v uint64) error {
	return w.set(col, row, 8, func(p unsafe.Pointer) { *(*uint64)(p) = v })
}

func (w *WritableChunk) SetFloat32(col, row int, v float32) error {
	return w.set(col, row, 4, func(p unsafe.Pointer) { *(*float32)(p) = v })
}

func (w *WritableChunk) SetFloat64(col, row int, v float64) error {
	return w.set(col, row, 8, func(p unsafe.Pointer) { *(*float64)(p) = v })
}

func (w *WritableChunk) SetDate(col, row int, v Date) error {
	return w.set(col, row, 4, func(p unsafe.Pointer) { *(*int32)(p) = v.Days })
}

func (w *WritableChunk) SetTime(col, row int, v Time) error {
	return w.set(col, row, 8, func(p unsafe.Pointer) { *(*int64)(p) = v.Micros })
}

func (w *WritableChunk) SetTimestamp(col, row int, v Timestamp) error {
	return w.set(col, row, 8, func(p unsafe.Pointer) { *(*int64)(p) = v.Micros })
}

func (w *WritableChunk) SetInterval(col, row int, v Interval) error {
	return w.set(col, row, 16, func(p unsafe.Pointer) { *(*Interval)(p) = v })
}

func (w *WritableChunk) SetHugeInt(col, row int, v HugeInt) error {
	return w.set(col, row, 16, func(p unsafe.Pointer) { *(*HugeInt)(p) = v })
}

// SetString writes buf into the column's string storage using the
// inline/out-of-line descriptor rule: payloads of up to 12 bytes are copied
// into the descriptor itself; longer payloads store a 4-byte prefix plus a
// raw pointer to buf.
//
// Lifetime contract for long payloads: the descriptor borrows buf, it does
// not copy it. buf must not be mutated or released until the engine has
// consumed the chunk (for example via Appender.AppendChunk). The chunk pins
// buf against garbage collection, but a caller that reuses the backing array
// corrupts the value silently. Use AssignString to pay for a copy and avoid
// the hazard.
func (w *WritableChunk) SetString(col, row int, buf []byte) error {
	vec, err := w.vector(col)
	if err != nil {
		return err
	}
	dst := (*stringT)(unsafe.Add(duckdbVectorGetData(vec), row*stringTSize))
	putStringT(dst, buf)
	if len(buf) > stringInlineLength {
		w.pinned = append(w.pinned, buf)
	}
	return nil
}

// AssignString hands s to the engine, which copies it into storage it owns.
// Slower than SetString for long payloads but free of lifetime hazards.
func (w *WritableChunk) AssignString(col, row int, s string) error {
	vec, err := w.vector(col)
	if err != nil {
		return err
	}
	buf := append([]byte(s), 0)
	duckdbVectorAssignStringElementLen(vec, uint64(row), &buf[0], uint64(len(s)))
	return nil
}

// putStringT fills a string descriptor from buf. Short payloads are copied
// into the inline region with the remainder zeroed; long payloads record the
// length, the first four bytes, and a pointer to buf's backing array.
func putStringT(dst *stringT, buf []byte) {
	dst.length = uint32(len(buf))
	if len(buf) <= stringInlineLength {
		// The inline region aliases the ptr field: copy plus zero-fill
		// overwrite all 12 bytes, so ptr must not be touched afterwards
		// or it would wipe payload bytes 4-11.
		inline := dst.inlineBytes()
		n := copy(inline, buf)
		for i := n; i < stringInlineLength; i++ {
			inline[i] = 0
		}
		return
	}
	copy(dst.prefix[:], buf[:4])
	dst.ptr = uintptr(unsafe.Pointer(&buf[0]))
}

// ListReserve grows the child vector of a LIST column to hold at least
// capacity elements.
func (w *WritableChunk) ListReserve(col int, capacity int) error {
	vec, err := w.vector(col)
	if err != nil {
		return err
	}
	if duckdbListVectorReserve(vec, uint64(capacity)) != stateSuccess {
		return errAllocation("list child vector")
	}
	return nil
}

// ListSetSize declares the total number of child elements across all rows of
// a LIST column.
func (w *WritableChunk) ListSetSize(col int, size int) error {
	vec, err := w.vector(col)
	if err != nil {
		return err
	}
	if duckdbListVectorSetSize(vec, uint64(size)) != stateSuccess {
		return errAllocation("list child vector")
	}
	return nil
}

// SetListEntry writes the (offset, length) pair that maps row to its slice
// of the child vector.
func (w *WritableChunk) SetListEntry(col, row int, offset, length uint64) error {
	return w.set(col, row, 16, func(p unsafe.Pointer) {
		*(*uint64)(p) = offset
		*(*uint64)(unsafe.Add(p, 8)) = length
	})
}

// ListChildAssignString engine-copies s into position index of a LIST
// column's child vector.
func (w *WritableChunk) ListChildAssignString(col, index int, s string) error {
	vec, err := w.vector(col)
	if err != nil {
		return err
	}
	child := duckdbListVectorGetChild(vec)
	buf := append([]byte(s), 0)
	duckdbVectorAssignStringElementLen(child, uint64(index), &buf[0], uint64(len(s)))
	return nil
}

// Reset clears the chunk for reuse, dropping pinned string buffers.
func (w *WritableChunk) Reset() error {
	if w.closed {
		return errInvalidHandle("chunk")
	}
	duckdbDataChunkReset(w.handle)
	w.rows = 0
	w.pinned = nil
	return nil
}

// Close releases the chunk's engine memory and the pinned string buffers.
// Close is idempotent.
func (w *WritableChunk) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.pinned = nil
	duckdbDestroyDataChunk(&w.handle)
	return nil
}
