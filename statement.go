package duckbridge

import (
	"fmt"
	"unsafe"

	"github.com/google/uuid"
)

// Statement is a compiled SQL statement with parameter slots. Parameter
// indices are 1-based, matching the engine. Statements are not
// goroutine-safe.
type Statement struct {
	conn   *Connection
	handle stmtHandle
	closed bool
}

// bindErr turns a failed bind into an error carrying the statement's own
// engine message. Bind failures are scoped to this statement; they do not
// affect any other handle.
func (s *Statement) bindErr(index int) error {
	return engineError(goString(duckdbPrepareError(s.handle)),
		fmt.Sprintf("failed to bind parameter %d", index))
}

func (s *Statement) check() error {
	if s == nil || s.closed {
		return errInvalidHandle("statement")
	}
	return nil
}

func (s *Statement) BindBool(index int, v bool) error {
	if err := s.check(); err != nil {
		return err
	}
	if duckdbBindBoolean(s.handle, uint64(index), v) != stateSuccess {
		return s.bindErr(index)
	}
	return nil
}

func (s *Statement) BindInt8(index int, v int8) error {
	if err := s.check(); err != nil {
		return err
	}
	if duckdbBindInt8(s.handle, uint64(index), v) != stateSuccess {
		return s.bindErr(index)
	}
	return nil
}

func (s *Statement) BindInt16(index int, v int16) error {
	if err := s.check(); err != nil {
		return err
	}
	if duckdbBindInt16(s.handle, uint64(index), v) != stateSuccess {
		return s.bindErr(index)
	}
	return nil
}

func (s *Statement) BindInt32(index int, v int32) error {
	if err := s.check(); err != nil {
		return err
	}
	if duckdbBindInt32(s.handle, uint64(index), v) != stateSuccess {
		return s.bindErr(index)
	}
	return nil
}

func (s *Statement) BindInt64(index int, v int64) error {
	if err := s.check(); err != nil {
		return err
	}
	if duckdbBindInt64(s.handle, uint64(index), v) != stateSuccess {
		return s.bindErr(index)
	}
	return nil
}

func (s *Statement) BindUint8(index int, v uint8) error {
	if err := s.check(); err != nil {
		return err
	}
	if duckdbBindUInt8(s.handle, uint64(index), v) != stateSuccess {
		return s.bindErr(index)
	}
	return nil
}

func (s *Statement) BindUint16(index int, v uint16) error {
	if err := s.check(); err != nil {
		return err
	}
	if duckdbBindUInt16(s.handle, uint64(index), v) != stateSuccess {
		return s.bindErr(index)
	}
	return nil
}

func (s *Statement) BindUint32(index int, v uint32) error {
	if err := s.check(); err != nil {
		return err
	}
	if duckdbBindUInt32(s.handle, uint64(index), v) != stateSuccess {
		return s.bindErr(index)
	}
	return nil
}

func (s *Statement) BindUint64(index int, v uint64) error {
	if err := s.check(); err != nil {
		return err
	}
	if duckdbBindUInt64(s.handle, uint64(index), v) != stateSuccess {
		return s.bindErr(index)
	}
	return nil
}

func (s *Statement) BindFloat32(index int, v float32) error {
	if err := s.check(); err != nil {
		return err
	}
	if duckdbBindFloat(s.handle, uint64(index), v) != stateSuccess {
		return s.bindErr(index)
	}
	return nil
}

func (s *Statement) BindFloat64(index int, v float64) error {
	if err := s.check(); err != nil {
		return err
	}
	if duckdbBindDouble(s.handle, uint64(index), v) != stateSuccess {
		return s.bindErr(index)
	}
	return nil
}

func (s *Statement) BindString(index int, v string) error {
	if err := s.check(); err != nil {
		return err
	}
	if duckdbBindVarchar(s.handle, uint64(index), cString(v)) != stateSuccess {
		return s.bindErr(index)
	}
	return nil
}

func (s *Statement) BindBlob(index int, v []byte) error {
	if err := s.check(); err != nil {
		return err
	}
	var p unsafe.Pointer
	if len(v) > 0 {
		p = unsafe.Pointer(&v[0])
	}
	if duckdbBindBlob(s.handle, uint64(index), p, uint64(len(v))) != stateSuccess {
		return s.bindErr(index)
	}
	return nil
}

func (s *Statement) BindDate(index int, v Date) error {
	if err := s.check(); err != nil {
		return err
	}
	if duckdbBindDate(s.handle, uint64(index), v.Days) != stateSuccess {
		return s.bindErr(index)
	}
	return nil
}

func (s *Statement) BindTime(index int, v Time) error {
	if err := s.check(); err != nil {
		return err
	}
	if duckdbBindTime(s.handle, uint64(index), v.Micros) != stateSuccess {
		return s.bindErr(index)
	}
	return nil
}

func (s *Statement) BindTimestamp(index int, v Timestamp) error {
	if err := s.check(); err != nil {
		return err
	}
	if duckdbBindTimestamp(s.handle, uint64(index), v.Micros) != stateSuccess {
		return s.bindErr(index)
	}
	return nil
}

func (s *Statement) BindInterval(index int, v Interval) error {
	if err := s.check(); err != nil {
		return err
	}
	iv := apiInterval{Months: v.Months, Days: v.Days, Micros: v.Micros}
	if duckdbBindInterval(s.handle, uint64(index), iv) != stateSuccess {
		return s.bindErr(index)
	}
	return nil
}

func (s *Statement) BindDecimal(index int, v Decimal) error {
	if err := s.check(); err != nil {
		return err
	}
	dv := apiDecimal{
		Width: v.Width,
		Scale: v.Scale,
		Value: apiHugeInt{Lower: v.Value.Lower, Upper: v.Value.Upper},
	}
	if duckdbBindDecimal(s.handle, uint64(index), dv) != stateSuccess {
		return s.bindErr(index)
	}
	return nil
}

// BindUUID binds a UUID through its canonical text form; the engine casts it
// to native UUID storage.
func (s *Statement) BindUUID(index int, v uuid.UUID) error {
	return s.BindString(index, v.String())
}

func (s *Statement) BindNull(index int) error {
	if err := s.check(); err != nil {
		return err
	}
	if duckdbBindNull(s.handle, uint64(index)) != stateSuccess {
		return s.bindErr(index)
	}
	return nil
}

// BindComposite binds a structured Value (list, struct, map or scalar) as a
// native engine value.
func (s *Statement) BindComposite(index int, v Value) error {
	if err := s.check(); err != nil {
		return err
	}
	handle, err := v.engineValue()
	if err != nil {
		return err
	}
	defer duckdbDestroyValue(&handle)
	if duckdbBindValue(s.handle, uint64(index), handle) != stateSuccess {
		return s.bindErr(index)
	}
	return nil
}

// ClearBindings resets every parameter slot.
func (s *Statement) ClearBindings() error {
	if err := s.check(); err != nil {
		return err
	}
	if duckdbClearBindings(s.handle) != stateSuccess {
		return engineError(goString(duckdbPrepareError(s.handle)), "failed to clear bindings")
	}
	return nil
}

// Execute runs the statement with the current bindings and materializes the
// result.
func (s *Statement) Execute() (*Result, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	res := &Result{}
	if duckdbExecutePrepared(s.handle, &res.raw) != stateSuccess {
		msg := goString(duckdbResultError(&res.raw))
		duckdbDestroyResult(&res.raw)
		return nil, engineError(msg, "execute failed")
	}
	return res, nil
}

// ExecuteStream runs the statement and returns a chunk stream over the
// result, classified the same way as Connection.QueryStream.
func (s *Statement) ExecuteStream() (*Stream, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	res := &Result{}
	if duckdbExecutePreparedStreaming(s.handle, &res.raw) != stateSuccess {
		msg := goString(duckdbResultError(&res.raw))
		duckdbDestroyResult(&res.raw)
		return nil, engineError(msg, "execute failed")
	}

	cols, err := classifyResult(&res.raw)
	if err != nil {
		res.Close()
		return nil, err
	}
	return newStream(res, cols), nil
}

// Close destroys the statement. Close is idempotent.
func (s *Statement) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	duckdbDestroyPrepare(&s.handle)
	return nil
}
