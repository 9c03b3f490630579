package duckbridge

import (
	"unsafe"

	"github.com/ebitengine/purego"
)

// Opaque engine handles. Each one is a C pointer; the Go side never looks
// inside, it only passes them back across the boundary.
type (
	dbHandle       uintptr
	connHandle     uintptr
	stmtHandle     uintptr
	chunkHandle    uintptr
	vectorHandle   uintptr
	logicalHandle  uintptr
	appenderHandle uintptr
	configHandle   uintptr
	valueHandle    uintptr
)

// Engine call states.
const (
	stateSuccess = 0
	stateError   = 1
)

// apiResult mirrors the engine's duckdb_result struct. It is passed by
// pointer to the metadata calls and by value to the chunk calls, exactly as
// the C header declares. Only internalData is live; the deprecated fields
// exist to keep the in-memory layout identical.
type apiResult struct {
	deprecatedColumnCount uint64
	deprecatedRowCount    uint64
	deprecatedRowsChanged uint64
	deprecatedColumns     uintptr
	errorMessage          uintptr
	internalData          uintptr
}

// apiInterval mirrors duckdb_interval.
type apiInterval struct {
	Months int32
	Days   int32
	Micros int64
}

// apiHugeInt mirrors duckdb_hugeint.
type apiHugeInt struct {
	Lower uint64
	Upper int64
}

// apiDecimal mirrors duckdb_decimal, padding included.
type apiDecimal struct {
	Width uint8
	Scale uint8
	_     [6]byte
	Value apiHugeInt
}

// Registered engine entry points. Populated once by registerAPI after the
// shared library is loaded.
var (
	// Database and connection lifecycle.
	duckdbOpenExt        func(path *byte, out *dbHandle, config configHandle, outError **byte) int32
	duckdbClose          func(db *dbHandle)
	duckdbConnect        func(db dbHandle, out *connHandle) int32
	duckdbDisconnect     func(conn *connHandle)
	duckdbLibraryVersion func() *byte
	duckdbFree           func(p unsafe.Pointer)

	// Query execution and result metadata.
	duckdbQuery             func(conn connHandle, sql *byte, out *apiResult) int32
	duckdbDestroyResult     func(res *apiResult)
	duckdbColumnName        func(res *apiResult, col uint64) *byte
	duckdbColumnType        func(res *apiResult, col uint64) uint32
	duckdbColumnLogicalType func(res *apiResult, col uint64) logicalHandle
	duckdbColumnCount       func(res *apiResult) uint64
	duckdbRowCount          func(res *apiResult) uint64
	duckdbRowsChanged       func(res *apiResult) uint64
	duckdbResultError       func(res *apiResult) *byte

	// Chunk access. fetch_chunk pulls the next batch of a streaming
	// result; chunk_count/get_chunk walk a materialized one.
	duckdbFetchChunk       func(res apiResult) chunkHandle
	duckdbResultChunkCount func(res apiResult) uint64
	duckdbResultGetChunk   func(res apiResult, index uint64) chunkHandle

	// Data chunk and vector memory.
	duckdbDataChunkGetSize        func(chunk chunkHandle) uint64
	duckdbDataChunkSetSize        func(chunk chunkHandle, size uint64)
	duckdbDataChunkGetColumnCount func(chunk chunkHandle) uint64
	duckdbDataChunkGetVector      func(chunk chunkHandle, col uint64) vectorHandle
	duckdbDataChunkReset          func(chunk chunkHandle)
	duckdbDestroyDataChunk        func(chunk *chunkHandle)
	duckdbCreateDataChunk         func(types *logicalHandle, count uint64) chunkHandle

	duckdbVectorGetData                func(vec vectorHandle) unsafe.Pointer
	duckdbVectorGetValidity            func(vec vectorHandle) *uint64
	duckdbVectorEnsureValidityWritable func(vec vectorHandle)
	duckdbValiditySetRowValidity       func(validity *uint64, row uint64, valid bool)
	duckdbVectorAssignStringElementLen func(vec vectorHandle, index uint64, str *byte, length uint64)
	duckdbListVectorGetChild           func(vec vectorHandle) vectorHandle
	duckdbListVectorReserve            func(vec vectorHandle, capacity uint64) int32
	duckdbListVectorSetSize            func(vec vectorHandle, size uint64) int32

	// Logical types.
	duckdbCreateLogicalType   func(id uint32) logicalHandle
	duckdbCreateListType      func(child logicalHandle) logicalHandle
	duckdbCreateMapType       func(key, value logicalHandle) logicalHandle
	duckdbCreateStructType    func(memberTypes *logicalHandle, memberNames **byte, count uint64) logicalHandle
	duckdbDestroyLogicalType  func(t *logicalHandle)
	duckdbGetTypeID           func(t logicalHandle) uint32
	duckdbDecimalWidth        func(t logicalHandle) uint8
	duckdbDecimalScale        func(t logicalHandle) uint8
	duckdbDecimalInternalType func(t logicalHandle) uint32

	// Prepared statements.
	duckdbPrepare                  func(conn connHandle, sql *byte, out *stmtHandle) int32
	duckdbDestroyPrepare           func(stmt *stmtHandle)
	duckdbPrepareError             func(stmt stmtHandle) *byte
	duckdbBindBoolean              func(stmt stmtHandle, index uint64, v bool) int32
	duckdbBindInt8                 func(stmt stmtHandle, index uint64, v int8) int32
	duckdbBindInt16                func(stmt stmtHandle, index uint64, v int16) int32
	duckdbBindInt32                func(stmt stmtHandle, index uint64, v int32) int32
	duckdbBindInt64                func(stmt stmtHandle, index uint64, v int64) int32
	duckdbBindUInt8                func(stmt stmtHandle, index uint64, v uint8) int32
	duckdbBindUInt16               func(stmt stmtHandle, index uint64, v uint16) int32
	duckdbBindUInt32               func(stmt stmtHandle, index uint64, v uint32) int32
	duckdbBindUInt64               func(stmt stmtHandle, index uint64, v uint64) int32
	duckdbBindFloat                func(stmt stmtHandle, index uint64, v float32) int32
	duckdbBindDouble               func(stmt stmtHandle, index uint64, v float64) int32
	duckdbBindVarchar              func(stmt stmtHandle, index uint64, v *byte) int32
	duckdbBindBlob                 func(stmt stmtHandle, index uint64, data unsafe.Pointer, length uint64) int32
	duckdbBindDate                 func(stmt stmtHandle, index uint64, days int32) int32
	duckdbBindTime                 func(stmt stmtHandle, index uint64, micros int64) int32
	duckdbBindTimestamp            func(stmt stmtHandle, index uint64, micros int64) int32
	duckdbBindInterval             func(stmt stmtHandle, index uint64, v apiInterval) int32
	duckdbBindDecimal              func(stmt stmtHandle, index uint64, v apiDecimal) int32
	duckdbBindNull                 func(stmt stmtHandle, index uint64) int32
	duckdbBindValue                func(stmt stmtHandle, index uint64, v valueHandle) int32
	duckdbClearBindings            func(stmt stmtHandle) int32
	duckdbExecutePrepared          func(stmt stmtHandle, out *apiResult) int32
	duckdbExecutePreparedStreaming func(stmt stmtHandle, out *apiResult) int32

	// Appender.
	duckdbAppenderCreate   func(conn connHandle, schema, table *byte, out *appenderHandle) int32
	duckdbAppenderError    func(app appenderHandle) *byte
	duckdbAppenderDestroy  func(app *appenderHandle) int32
	duckdbAppenderBeginRow func(app appenderHandle) int32
	duckdbAppenderEndRow   func(app appenderHandle) int32
	duckdbAppenderFlush    func(app appenderHandle) int32
	duckdbAppendBool       func(app appenderHandle, v bool) int32
	duckdbAppendInt8       func(app appenderHandle, v int8) int32
	duckdbAppendInt16      func(app appenderHandle, v int16) int32
	duckdbAppendInt32      func(app appenderHandle, v int32) int32
	duckdbAppendInt64      func(app appenderHandle, v int64) int32
	duckdbAppendFloat      func(app appenderHandle, v float32) int32
	duckdbAppendDouble     func(app appenderHandle, v float64) int32
	duckdbAppendVarchar    func(app appenderHandle, v *byte) int32
	duckdbAppendBlob       func(app appenderHandle, data unsafe.Pointer, length uint64) int32
	duckdbAppendNull       func(app appenderHandle) int32
	duckdbAppendDate       func(app appenderHandle, days int32) int32
	duckdbAppendTimestamp  func(app appenderHandle, micros int64) int32
	duckdbAppendInterval   func(app appenderHandle, v apiInterval) int32
	duckdbAppendDataChunk  func(app appenderHandle, chunk chunkHandle) int32

	// Configuration.
	duckdbCreateConfig  func(out *configHandle) int32
	duckdbSetConfig     func(cfg configHandle, key, value *byte) int32
	duckdbDestroyConfig func(cfg *configHandle)

	// Value construction, used for composite binds.
	duckdbCreateBool          func(v bool) valueHandle
	duckdbCreateInt64         func(v int64) valueHandle
	duckdbCreateDouble        func(v float64) valueHandle
	duckdbCreateVarcharLength func(text *byte, length uint64) valueHandle
	duckdbCreateNullValue     func() valueHandle
	duckdbCreateListValue     func(elementType logicalHandle, values *valueHandle, count uint64) valueHandle
	duckdbCreateStructValue   func(structType logicalHandle, values *valueHandle) valueHandle
	duckdbCreateMapValue      func(mapType logicalHandle, keys, values *valueHandle, count uint64) valueHandle
	duckdbDestroyValue        func(v *valueHandle)
)

// registerAPI binds every entry point above against the loaded library.
// A missing symbol panics inside purego; the supported engine versions
// export all of these.
func registerAPI(lib uintptr) {
	purego.RegisterLibFunc(&duckdbOpenExt, lib, "duckdb_open_ext")
	purego.RegisterLibFunc(&duckdbClose, lib, "duckdb_close")
	purego.RegisterLibFunc(&duckdbConnect, lib, "duckdb_connect")
	purego.RegisterLibFunc(&duckdbDisconnect, lib, "duckdb_disconnect")
	purego.RegisterLibFunc(&duckdbLibraryVersion, lib, "duckdb_library_version")
	purego.RegisterLibFunc(&duckdbFree, lib, "duckdb_free")

	purego.RegisterLibFunc(&duckdbQuery, lib, "duckdb_query")
	purego.RegisterLibFunc(&duckdbDestroyResult, lib, "duckdb_destroy_result")
	purego.RegisterLibFunc(&duckdbColumnName, lib, "duckdb_column_name")
	purego.RegisterLibFunc(&duckdbColumnType, lib, "duckdb_column_type")
	purego.RegisterLibFunc(&duckdbColumnLogicalType, lib, "duckdb_column_logical_type")
	purego.RegisterLibFunc(&duckdbColumnCount, lib, "duckdb_column_count")
	purego.RegisterLibFunc(&duckdbRowCount, lib, "duckdb_row_count")
	purego.RegisterLibFunc(&duckdbRowsChanged, lib, "duckdb_rows_changed")
	purego.RegisterLibFunc(&duckdbResultError, lib, "duckdb_result_error")

	purego.RegisterLibFunc(&duckdbFetchChunk, lib, "duckdb_fetch_chunk")
	purego.RegisterLibFunc(&duckdbResultChunkCount, lib, "duckdb_result_chunk_count")
	purego.RegisterLibFunc(&duckdbResultGetChunk, lib, "duckdb_result_get_chunk")

	purego.RegisterLibFunc(&duckdbDataChunkGetSize, lib, "duckdb_data_chunk_get_size")
	purego.RegisterLibFunc(&duckdbDataChunkSetSize, lib, "duckdb_data_chunk_set_size")
	purego.RegisterLibFunc(&duckdbDataChunkGetColumnCount, lib, "duckdb_data_chunk_get_column_count")
	purego.RegisterLibFunc(&duckdbDataChunkGetVector, lib, "duckdb_data_chunk_get_vector")
	purego.RegisterLibFunc(&duckdbDataChunkReset, lib, "duckdb_data_chunk_reset")
	purego.RegisterLibFunc(&duckdbDestroyDataChunk, lib, "duckdb_destroy_data_chunk")
	purego.RegisterLibFunc(&duckdbCreateDataChunk, lib, "duckdb_create_data_chunk")

	purego.RegisterLibFunc(&duckdbVectorGetData, lib, "duckdb_vector_get_data")
	purego.RegisterLibFunc(&duckdbVectorGetValidity, lib, "duckdb_vector_get_validity")
	purego.RegisterLibFunc(&duckdbVectorEnsureValidityWritable, lib, "duckdb_vector_ensure_validity_writable")
	purego.RegisterLibFunc(&duckdbValiditySetRowValidity, lib, "duckdb_validity_set_row_validity")
	purego.RegisterLibFunc(&duckdbVectorAssignStringElementLen, lib, "duckdb_vector_assign_string_element_len")
	purego.RegisterLibFunc(&duckdbListVectorGetChild, lib, "duckdb_list_vector_get_child")
	purego.RegisterLibFunc(&duckdbListVectorReserve, lib, "duckdb_list_vector_reserve")
	purego.RegisterLibFunc(&duckdbListVectorSetSize, lib, "duckdb_list_vector_set_size")

	purego.RegisterLibFunc(&duckdbCreateLogicalType, lib, "duckdb_create_logical_type")
	purego.RegisterLibFunc(&duckdbCreateListType, lib, "duckdb_create_list_type")
	purego.RegisterLibFunc(&duckdbCreateMapType, lib, "duckdb_create_map_type")
	purego.RegisterLibFunc(&duckdbCreateStructType, lib, "duckdb_create_struct_type")
	purego.RegisterLibFunc(&duckdbDestroyLogicalType, lib, "duckdb_destroy_logical_type")
	purego.RegisterLibFunc(&duckdbGetTypeID, lib, "duckdb_get_type_id")
	purego.RegisterLibFunc(&duckdbDecimalWidth, lib, "duckdb_decimal_width")
	purego.RegisterLibFunc(&duckdbDecimalScale, lib, "duckdb_decimal_scale")
	purego.RegisterLibFunc(&duckdbDecimalInternalType, lib, "duckdb_decimal_internal_type")

	purego.RegisterLibFunc(&duckdbPrepare, lib, "duckdb_prepare")
	purego.RegisterLibFunc(&duckdbDestroyPrepare, lib, "duckdb_destroy_prepare")
	purego.RegisterLibFunc(&duckdbPrepareError, lib, "duckdb_prepare_error")
	purego.RegisterLibFunc(&duckdbBindBoolean, lib, "duckdb_bind_boolean")
	purego.RegisterLibFunc(&duckdbBindInt8, lib, "duckdb_bind_int8")
	purego.RegisterLibFunc(&duckdbBindInt16, lib, "duckdb_bind_int16")
	purego.RegisterLibFunc(&duckdbBindInt32, lib, "duckdb_bind_int32")
	purego.RegisterLibFunc(&duckdbBindInt64, lib, "duckdb_bind_int64")
	purego.RegisterLibFunc(&duckdbBindUInt8, lib, "duckdb_bind_uint8")
	purego.RegisterLibFunc(&duckdbBindUInt16, lib, "duckdb_bind_uint16")
	purego.RegisterLibFunc(&duckdbBindUInt32, lib, "duckdb_bind_uint32")
	purego.RegisterLibFunc(&duckdbBindUInt64, lib, "duckdb_bind_uint64")
	purego.RegisterLibFunc(&duckdbBindFloat, lib, "duckdb_bind_float")
	purego.RegisterLibFunc(&duckdbBindDouble, lib, "duckdb_bind_double")
	purego.RegisterLibFunc(&duckdbBindVarchar, lib, "duckdb_bind_varchar")
	purego.RegisterLibFunc(&duckdbBindBlob, lib, "duckdb_bind_blob")
	purego.RegisterLibFunc(&duckdbBindDate, lib, "duckdb_bind_date")
	purego.RegisterLibFunc(&duckdbBindTime, lib, "duckdb_bind_time")
	purego.RegisterLibFunc(&duckdbBindTimestamp, lib, "duckdb_bind_timestamp")
	purego.RegisterLibFunc(&duckdbBindInterval, lib, "duckdb_bind_interval")
	purego.RegisterLibFunc(&duckdbBindDecimal, lib, "duckdb_bind_decimal")
	purego.RegisterLibFunc(&duckdbBindNull, lib, "duckdb_bind_null")
	purego.RegisterLibFunc(&duckdbBindValue, lib, "duckdb_bind_value")
	purego.RegisterLibFunc(&duckdbClearBindings, lib, "duckdb_clear_bindings")
	purego.RegisterLibFunc(&duckdbExecutePrepared, lib, "duckdb_execute_prepared")
	purego.RegisterLibFunc(&duckdbExecutePreparedStreaming, lib, "duckdb_execute_prepared_streaming")

	purego.RegisterLibFunc(&duckdbAppenderCreate, lib, "duckdb_appender_create")
	purego.RegisterLibFunc(&duckdbAppenderError, lib, "duckdb_appender_error")
	purego.RegisterLibFunc(&duckdbAppenderDestroy, lib, "duckdb_appender_destroy")
	purego.RegisterLibFunc(&duckdbAppenderBeginRow, lib, "duckdb_appender_begin_row")
	purego.RegisterLibFunc(&duckdbAppenderEndRow, lib, "duckdb_appender_end_row")
	purego.RegisterLibFunc(&duckdbAppenderFlush, lib, "duckdb_appender_flush")
	purego.RegisterLibFunc(&duckdbAppendBool, lib, "duckdb_append_bool")
	purego.RegisterLibFunc(&duckdbAppendInt8, lib, "duckdb_append_int8")
	purego.RegisterLibFunc(&duckdbAppendInt16, lib, "duckdb_append_int16")
	purego.RegisterLibFunc(&duckdbAppendInt32, lib, "duckdb_append_int32")
	purego.RegisterLibFunc(&duckdbAppendInt64, lib, "duckdb_append_int64")
	purego.RegisterLibFunc(&duckdbAppendFloat, lib, "duckdb_append_float")
	purego.RegisterLibFunc(&duckdbAppendDouble, lib, "duckdb_append_double")
	purego.RegisterLibFunc(&duckdbAppendVarchar, lib, "duckdb_append_varchar")
	purego.RegisterLibFunc(&duckdbAppendBlob, lib, "duckdb_append_blob")
	purego.RegisterLibFunc(&duckdbAppendNull, lib, "duckdb_append_null")
	purego.RegisterLibFunc(&duckdbAppendDate, lib, "duckdb_append_date")
	purego.RegisterLibFunc(&duckdbAppendTimestamp, lib, "duckdb_append_timestamp")
	purego.RegisterLibFunc(&duckdbAppendInterval, lib, "duckdb_append_interval")
	purego.RegisterLibFunc(&duckdbAppendDataChunk, lib, "duckdb_append_data_chunk")

	purego.RegisterLibFunc(&duckdbCreateConfig, lib, "duckdb_create_config")
	purego.RegisterLibFunc(&duckdbSetConfig, lib, "duckdb_set_config")
	purego.RegisterLibFunc(&duckdbDestroyConfig, lib, "duckdb_destroy_config")

	purego.RegisterLibFunc(&duckdbCreateBool, lib, "duckdb_create_bool")
	purego.RegisterLibFunc(&duckdbCreateInt64, lib, "duckdb_create_int64")
	purego.RegisterLibFunc(&duckdbCreateDouble, lib, "duckdb_create_double")
	purego.RegisterLibFunc(&duckdbCreateVarcharLength, lib, "duckdb_create_varchar_length")
	purego.RegisterLibFunc(&duckdbCreateNullValue, lib, "duckdb_create_null_value")
	purego.RegisterLibFunc(&duckdbCreateListValue, lib, "duckdb_create_list_value")
	purego.RegisterLibFunc(&duckdbCreateStructValue, lib, "duckdb_create_struct_value")
	purego.RegisterLibFunc(&duckdbCreateMapValue, lib, "duckdb_create_map_value")
	purego.RegisterLibFunc(&duckdbDestroyValue, lib, "duckdb_destroy_value")
}

// cString copies s into a NUL-terminated byte buffer for the C side.
func cString(s string) *byte {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return &buf[0]
}

// goString copies a NUL-terminated C string into a Go string. A nil pointer
// yields the empty string.
func goString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	if n == 0 {
		return ""
	}
	return string(unsafe.Slice(p, n))
}
