package duckbridge

import (
	"unsafe"
)

// Appender streams rows into a table through the engine's bulk ingestion
// path. Rows are written with BeginRow/Append*/EndRow, or wholesale with
// AppendChunk; Flush makes buffered rows visible. Appenders are not
// goroutine-safe.
type Appender struct {
	conn   *Connection
	handle appenderHandle
	closed bool
}

// appendErr surfaces this appender's own engine message. Append failures are
// scoped to the appender handle.
func (a *Appender) appendErr(fallback string) error {
	return engineError(goString(duckdbAppenderError(a.handle)), fallback)
}

func (a *Appender) check() error {
	if a == nil || a.closed {
		return errInvalidHandle("appender")
	}
	return nil
}

func (a *Appender) BeginRow() error {
	if err := a.check(); err != nil {
		return err
	}
	if duckdbAppenderBeginRow(a.handle) != stateSuccess {
		return a.appendErr("failed to begin row")
	}
	return nil
}

func (a *Appender) EndRow() error {
	if err := a.check(); err != nil {
		return err
	}
	if duckdbAppenderEndRow(a.handle) != stateSuccess {
		return a.appendErr("failed to end row")
	}
	return nil
}

func (a *Appender) AppendBool(v bool) error {
	if err := a.check(); err != nil {
		return err
	}
	if duckdbAppendBool(a.handle, v) != stateSuccess {
		return a.appendErr("failed to append value")
	}
	return nil
}

func (a *Appender) AppendInt8(v int8) error {
	if err := a.check(); err != nil {
		return err
	}
	if duckdbAppendInt8(a.handle, v) != stateSuccess {
		return a.appendErr("failed to append value")
	}
	return nil
}

func (a *Appender) AppendInt16(v int16) error {
	if err := a.check(); err != nil {
		return err
	}
	if duckdbAppendInt16(a.handle, v) != stateSuccess {
		return a.appendErr("failed to append value")
	}
	return nil
}

func (a *Appender) AppendInt32(v int32) error {
	if err := a.check(); err != nil {
		return err
	}
	if duckdbAppendInt32(a.handle, v) != stateSuccess {
		return a.appendErr("failed to append value")
	}
	return nil
}

func (a *Appender) AppendInt64(v int64) error {
	if err := a.check(); err != nil {
		return err
	}
	if duckdbAppendInt64(a.handle, v) != stateSuccess {
		return a.appendErr("failed to append value")
	}
	return nil
}

func (a *Appender) AppendFloat32(v float32) error {
	if err := a.check(); err != nil {
		return err
	}
	if duckdbAppendFloat(a.handle, v) != stateSuccess {
		return a.appendErr("failed to append value")
	}
	return nil
}

func (a *Appender) AppendFloat64(v float64) error {
	if err := a.check(); err != nil {
		return err
	}
	if duckdbAppendDouble(a.handle, v) != stateSuccess {
		return a.appendErr("failed to append value")
	}
	return nil
}

func (a *Appender) AppendString(v string) error {
	if err := a.check(); err != nil {
		return err
	}
	if duckdbAppendVarchar(a.handle, cString(v)) != stateSuccess {
		return a.appendErr("failed to append value")
	}
	return nil
}

func (a *Appender) AppendBlob(v []byte) error {
	if err := a.check(); err != nil {
		return err
	}
	var p unsafe.Pointer
	if len(v) > 0 {
		p = unsafe.Pointer(&v[0])
	}
	if duckdbAppendBlob(a.handle, p, uint64(len(v))) != stateSuccess {
		return a.appendErr("failed to append value")
	}
	return nil
}

func (a *Appender) AppendNull() error {
	if err := a.check(); err != nil {
		return err
	}
	if duckdbAppendNull(a.handle) != stateSuccess {
		return a.appendErr("failed to append value")
	}
	return nil
}

// AppendDate appends a native date without any string round trip.
func (a *Appender) AppendDate(v Date) error {
	if err := a.check(); err != nil {
		return err
	}
	if duckdbAppendDate(a.handle, v.Days) != stateSuccess {
		return a.appendErr("failed to append value")
	}
	return nil
}

// AppendTimestamp appends a native microsecond timestamp.
func (a *Appender) AppendTimestamp(v Timestamp) error {
	if err := a.check(); err != nil {
		return err
	}
	if duckdbAppendTimestamp(a.handle, v.Micros) != stateSuccess {
		return a.appendErr("failed to append value")
	}
	return nil
}

func (a *Appender) AppendInterval(v Interval) error {
	if err := a.check(); err != nil {
		return err
	}
	iv := apiInterval{Months: v.Months, Days: v.Days, Micros: v.Micros}
	if duckdbAppendInterval(a.handle, iv) != stateSuccess {
		return a.appendErr("failed to append value")
	}
	return nil
}

// AppendChunk hands a writable chunk to the appender in one call. The chunk
// remains owned by the caller; string buffers borrowed by the chunk must
// stay alive until this call returns.
func (a *Appender) AppendChunk(chunk *WritableChunk) error {
	if err := a.check(); err != nil {
		return err
	}
	if chunk == nil || chunk.closed {
		return errInvalidHandle("chunk")
	}
	if duckdbAppendDataChunk(a.handle, chunk.handle) != stateSuccess {
		return a.appendErr("failed to append data chunk")
	}
	return nil
}

// Flush pushes buffered rows into the table.
func (a *Appender) Flush() error {
	if err := a.check(); err != nil {
		return err
	}
	if duckdbAppenderFlush(a.handle) != stateSuccess {
		return a.appendErr("failed to flush appender")
	}
	return nil
}

// Close flushes remaining rows and destroys the appender. Close is
// idempotent.
func (a *Appender) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	if duckdbAppenderDestroy(&a.handle) != stateSuccess {
		return engineError("", "failed to close appender")
	}
	return nil
}
