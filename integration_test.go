package duckbridge

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestConn skips the test when the engine library is not installed, so
// the pure decoding and encoding tests still run everywhere.
func openTestConn(t *testing.T) *Connection {
	t.Helper()
	if err := Load(); err != nil {
		t.Skipf("engine library not available: %v", err)
	}

	db, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	conn, err := db.Connect()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestQueryBasics(t *testing.T) {
	conn := openTestConn(t)

	res, err := conn.Query("SELECT 1 AS one, 'two' AS two")
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, 2, res.ColumnCount())
	assert.Equal(t, int64(1), res.RowCount())

	name, err := res.ColumnName(1)
	require.NoError(t, err)
	assert.Equal(t, "two", name)

	typ, err := res.ColumnType(0)
	require.NoError(t, err)
	assert.Equal(t, TypeInteger, typ)

	_, err = res.ColumnName(2)
	assert.True(t, IsKind(err, KindIndexOutOfRange))
}

func TestQueryError(t *testing.T) {
	conn := openTestConn(t)

	_, err := conn.Query("SELECT * FROM no_such_table")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindEngine))
	assert.Contains(t, err.Error(), "no_such_table")
}

func TestExecRowsChanged(t *testing.T) {
	conn := openTestConn(t)

	_, err := conn.Exec("CREATE TABLE t (x INTEGER)")
	require.NoError(t, err)

	n, err := conn.Exec("INSERT INTO t SELECT * FROM range(7)")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestStreamScenarioLargeResultWithNulls(t *testing.T) {
	conn := openTestConn(t)

	_, err := conn.Exec(`CREATE TABLE big AS
		SELECT i AS id,
		       'row-' || i AS label,
		       CASE WHEN i % 10 < 3 THEN NULL ELSE i * 2 END AS score
		FROM range(10000) r(i)`)
	require.NoError(t, err)

	stream, err := conn.QueryStream("SELECT id, label, score FROM big ORDER BY id")
	require.NoError(t, err)
	defer stream.Close()

	cols := stream.Columns()
	require.Len(t, cols, 3)
	assert.Equal(t, TypeBigInt, cols[0].Type)
	assert.Equal(t, TypeVarchar, cols[1].Type)

	total := 0
	nulls := 0
	var next int64
	for {
		chunk, err := stream.Fetch()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.Greater(t, chunk.Rows(), 0)

		for row := 0; row < chunk.Rows(); row++ {
			id, err := chunk.Value(0, row)
			require.NoError(t, err)
			require.Equal(t, next, id, "row order must be preserved")
			next++

			isNull, err := chunk.IsNull(2, row)
			require.NoError(t, err)
			if isNull {
				nulls++
				v, err := chunk.Value(2, row)
				require.NoError(t, err)
				assert.Nil(t, v)
			}
		}
		total += chunk.Rows()
		require.NoError(t, chunk.Close())
	}

	assert.Equal(t, 10000, total, "no row duplicated or dropped")
	assert.Equal(t, 3000, nulls)

	// Exhaustion is terminal and repeatable.
	_, err = stream.Fetch()
	assert.Equal(t, io.EOF, err)
	_, err = stream.Fetch()
	assert.Equal(t, io.EOF, err)

	// Close is idempotent; fetching afterwards is an error, not EOF.
	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close())
	_, err = stream.Fetch()
	assert.True(t, IsKind(err, KindInvalidHandle))
}

func TestStreamRefusesUnsupportedColumn(t *testing.T) {
	conn := openTestConn(t)

	_, err := conn.QueryStream("SELECT 1 AS ok, [1, 2, 3] AS bad")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUnsupportedType))
	assert.Contains(t, err.Error(), "bad")
}

func TestStreamChunkOutlivesStream(t *testing.T) {
	conn := openTestConn(t)

	stream, err := conn.QueryStream("SELECT i FROM range(5) r(i)")
	require.NoError(t, err)

	chunk, err := stream.Fetch()
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	// The chunk holds its own copy of the type table.
	col, err := chunk.Column(0)
	require.NoError(t, err)
	assert.Equal(t, TypeBigInt, col.Type)
	require.NoError(t, chunk.Close())
	require.NoError(t, chunk.Close())

	_, err = chunk.Value(0, 0)
	assert.True(t, IsKind(err, KindInvalidHandle))
}

func TestDecodeTypesEndToEnd(t *testing.T) {
	conn := openTestConn(t)

	stream, err := conn.QueryStream(`SELECT
		true,
		42::TINYINT,
		DATE '2000-02-29',
		TIME '12:34:56.789',
		TIMESTAMP '2022-12-19 08:00:00',
		INTERVAL 1 MONTH + INTERVAL 2 DAY,
		1.25::DOUBLE,
		'a-longer-than-twelve-bytes-string',
		'short',
		123.456::DECIMAL(9,3),
		uuid '550e8400-e29b-41d4-a716-446655440000'`)
	require.NoError(t, err)
	defer stream.Close()

	chunk, err := stream.Fetch()
	require.NoError(t, err)
	defer chunk.Close()
	require.Equal(t, 1, chunk.Rows())

	get := func(col int) any {
		v, err := chunk.Value(col, 0)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, true, get(0))
	assert.Equal(t, int8(42), get(1))
	assert.Equal(t, "2000-02-29", get(2).(Date).String())
	assert.Equal(t, "12:34:56.789000", get(3).(Time).String())
	assert.Equal(t, "2022-12-19 08:00:00.000000", get(4).(Timestamp).String())
	assert.Equal(t, Interval{Months: 1, Days: 2}, get(5))
	assert.Equal(t, 1.25, get(6))
	assert.Equal(t, "a-longer-than-twelve-bytes-string", get(7))
	assert.Equal(t, "short", get(8))

	dec := get(9).(Decimal)
	assert.Equal(t, uint8(3), dec.Scale)
	unscaled, ok := dec.Value.Int64()
	require.True(t, ok)
	assert.Equal(t, int64(123456), unscaled)

	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", get(10).(uuidStringer).String())
}

// uuidStringer avoids importing uuid here just for the assertion.
type uuidStringer interface{ String() string }

func TestEncodeColumnEndToEnd(t *testing.T) {
	conn := openTestConn(t)

	res, err := conn.Query(`SELECT i::INTEGER AS v,
		CASE WHEN i = 1 THEN NULL ELSE 'v' || i END AS s
		FROM range(3) r(i) ORDER BY i`)
	require.NoError(t, err)
	defer res.Close()

	buf, err := EncodeColumn(res, 0, EncodeDense)
	require.NoError(t, err)
	require.Len(t, buf, 4+3*4)
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(buf))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[12:]))

	buf, err = EncodeColumn(res, 1, EncodeNullable)
	require.NoError(t, err)
	count := binary.LittleEndian.Uint32(buf)
	total := binary.LittleEndian.Uint32(buf[4:])
	assert.Equal(t, uint32(3), count)
	assert.Equal(t, "v0\x00\x00v2\x00", string(buf[8:8+total]))
	assert.Equal(t, []byte{1, 0, 1}, buf[8+total:])

	_, err = EncodeColumn(res, 2, EncodeDense)
	assert.True(t, IsKind(err, KindIndexOutOfRange))
}

func TestEncodeEmptyResult(t *testing.T) {
	conn := openTestConn(t)

	res, err := conn.Query("SELECT 1 AS x WHERE false")
	require.NoError(t, err)
	defer res.Close()

	buf, err := EncodeColumn(res, 0, EncodeNullable)
	require.NoError(t, err)
	assert.Empty(t, buf)
}

func TestPreparedStatement(t *testing.T) {
	conn := openTestConn(t)

	_, err := conn.Exec("CREATE TABLE p (id INTEGER, name TEXT, born DATE)")
	require.NoError(t, err)

	stmt, err := conn.Prepare("INSERT INTO p VALUES (?, ?, ?)")
	require.NoError(t, err)
	defer stmt.Close()

	require.NoError(t, stmt.BindInt32(1, 1))
	require.NoError(t, stmt.BindString(2, "ada"))
	require.NoError(t, stmt.BindDate(3, Date{Days: 11016}))
	res, err := stmt.Execute()
	require.NoError(t, err)
	res.Close()

	require.NoError(t, stmt.ClearBindings())
	require.NoError(t, stmt.BindInt32(1, 2))
	require.NoError(t, stmt.BindNull(2))
	require.NoError(t, stmt.BindNull(3))
	res, err = stmt.Execute()
	require.NoError(t, err)
	res.Close()

	stream, err := conn.QueryStream("SELECT name, born FROM p ORDER BY id")
	require.NoError(t, err)
	defer stream.Close()

	chunk, err := stream.Fetch()
	require.NoError(t, err)
	defer chunk.Close()
	require.Equal(t, 2, chunk.Rows())

	v, err := chunk.Value(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "ada", v)
	v, err = chunk.Value(1, 0)
	require.NoError(t, err)
	assert.Equal(t, "2000-02-29", v.(Date).String())

	isNull, err := chunk.IsNull(0, 1)
	require.NoError(t, err)
	assert.True(t, isNull)
}

func TestPreparedStatementBadSQL(t *testing.T) {
	conn := openTestConn(t)

	_, err := conn.Prepare("SELEC nope")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindEngine))
}

func TestAppenderRows(t *testing.T) {
	conn := openTestConn(t)

	_, err := conn.Exec("CREATE TABLE a (id BIGINT, score DOUBLE, note TEXT)")
	require.NoError(t, err)

	app, err := conn.Appender("", "a")
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		require.NoError(t, app.BeginRow())
		require.NoError(t, app.AppendInt64(int64(i)))
		require.NoError(t, app.AppendFloat64(float64(i)/2))
		if i%2 == 0 {
			require.NoError(t, app.AppendString("even"))
		} else {
			require.NoError(t, app.AppendNull())
		}
		require.NoError(t, app.EndRow())
	}
	require.NoError(t, app.Flush())
	require.NoError(t, app.Close())
	require.NoError(t, app.Close())

	res, err := conn.Query("SELECT count(*), count(note) FROM a")
	require.NoError(t, err)
	defer res.Close()

	buf, err := EncodeColumn(res, 0, EncodeDense)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), binary.LittleEndian.Uint64(buf[4:]))
}

func TestWritableChunkAppend(t *testing.T) {
	conn := openTestConn(t)

	_, err := conn.Exec("CREATE TABLE w (id INTEGER, name TEXT)")
	require.NoError(t, err)

	chunk, err := NewWritableChunk(TypeInteger, TypeVarchar)
	require.NoError(t, err)
	defer chunk.Close()

	// One short inline string, one long borrowed one. The long buffer
	// must stay alive until AppendChunk returns.
	long := []byte("this string is well past the inline limit")
	require.NoError(t, chunk.SetSize(3))
	require.NoError(t, chunk.SetInt32(0, 0, 10))
	require.NoError(t, chunk.SetString(1, 0, []byte("short")))
	require.NoError(t, chunk.SetInt32(0, 1, 20))
	require.NoError(t, chunk.SetString(1, 1, long))
	require.NoError(t, chunk.SetInt32(0, 2, 30))
	require.NoError(t, chunk.SetNull(1, 2))

	app, err := conn.Appender("", "w")
	require.NoError(t, err)
	require.NoError(t, app.AppendChunk(chunk))
	require.NoError(t, app.Close())

	stream, err := conn.QueryStream("SELECT name FROM w ORDER BY id")
	require.NoError(t, err)
	defer stream.Close()

	out, err := stream.Fetch()
	require.NoError(t, err)
	defer out.Close()
	require.Equal(t, 3, out.Rows())

	v, err := out.Value(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "short", v)
	v, err = out.Value(0, 1)
	require.NoError(t, err)
	assert.Equal(t, string(long), v)
	isNull, err := out.IsNull(0, 2)
	require.NoError(t, err)
	assert.True(t, isNull)
}

func TestWritableChunkUnsignedColumns(t *testing.T) {
	conn := openTestConn(t)

	_, err := conn.Exec("CREATE TABLE u (a UTINYINT, b USMALLINT, c UINTEGER, d UBIGINT)")
	require.NoError(t, err)

	chunk, err := NewWritableChunk(TypeUTinyInt, TypeUSmallInt, TypeUInteger, TypeUBigInt)
	require.NoError(t, err)
	defer chunk.Close()

	require.NoError(t, chunk.SetSize(1))
	require.NoError(t, chunk.SetUint8(0, 0, 255))
	require.NoError(t, chunk.SetUint16(1, 0, 65535))
	require.NoError(t, chunk.SetUint32(2, 0, 4294967295))
	require.NoError(t, chunk.SetUint64(3, 0, 18446744073709551615))

	app, err := conn.Appender("", "u")
	require.NoError(t, err)
	require.NoError(t, app.AppendChunk(chunk))
	require.NoError(t, app.Close())

	stream, err := conn.QueryStream("SELECT a, b, c, d FROM u")
	require.NoError(t, err)
	defer stream.Close()

	out, err := stream.Fetch()
	require.NoError(t, err)
	defer out.Close()
	require.Equal(t, 1, out.Rows())

	for col, want := range []any{
		uint8(255), uint16(65535), uint32(4294967295), uint64(18446744073709551615),
	} {
		v, err := out.Value(col, 0)
		require.NoError(t, err)
		assert.Equal(t, want, v, "column %d", col)
	}
}

func TestBindCompositeValues(t *testing.T) {
	conn := openTestConn(t)

	stmt, err := conn.Prepare("SELECT len(?::BIGINT[])")
	require.NoError(t, err)
	defer stmt.Close()

	list := ListValue(Int64Value(1), Int64Value(2), Int64Value(3))
	require.NoError(t, stmt.BindComposite(1, list))

	res, err := stmt.Execute()
	require.NoError(t, err)
	defer res.Close()

	buf, err := EncodeColumn(res, 0, EncodeDense)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), binary.LittleEndian.Uint64(buf[4:]))
}

func TestTransactionCommitAndRollback(t *testing.T) {
	conn := openTestConn(t)

	_, err := conn.Exec("CREATE TABLE txn (x INTEGER)")
	require.NoError(t, err)

	tx, err := conn.Begin()
	require.NoError(t, err)
	_, err = conn.Exec("INSERT INTO txn VALUES (1)")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.NoError(t, tx.Rollback(), "rollback after commit is a no-op")

	tx, err = conn.Begin()
	require.NoError(t, err)
	_, err = conn.Exec("INSERT INTO txn VALUES (2)")
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	res, err := conn.Query("SELECT count(*) FROM txn")
	require.NoError(t, err)
	defer res.Close()
	buf, err := EncodeColumn(res, 0, EncodeDense)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(buf[4:]))
}

func TestStreamStringCache(t *testing.T) {
	conn := openTestConn(t)

	stream, err := conn.QueryStream(
		"SELECT CASE WHEN i % 2 = 0 THEN 'even' ELSE 'odd' END FROM range(1000) r(i)")
	require.NoError(t, err)
	defer stream.Close()

	cache := NewStringCache(0)
	stream.UseStringCache(cache)

	seen := 0
	for {
		chunk, err := stream.Fetch()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		for row := 0; row < chunk.Rows(); row++ {
			v, err := chunk.Value(0, row)
			require.NoError(t, err)
			seen++
			assert.Contains(t, []any{"even", "odd"}, v)
		}
		chunk.Close()
	}
	require.Equal(t, 1000, seen)

	hits, misses := cache.Stats()
	assert.Equal(t, 2, misses, "only two distinct values")
	assert.Equal(t, 998, hits)
}

func TestEngineVersion(t *testing.T) {
	if err := Load(); err != nil {
		t.Skipf("engine library not available: %v", err)
	}
	v, err := EngineVersion()
	require.NoError(t, err)
	assert.NotEmpty(t, v)
}

func TestClosedHandleErrors(t *testing.T) {
	if err := Load(); err != nil {
		t.Skipf("engine library not available: %v", err)
	}

	db, err := Open("")
	require.NoError(t, err)
	conn, err := db.Connect()
	require.NoError(t, err)

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
	_, err = conn.Query("SELECT 1")
	assert.True(t, IsKind(err, KindInvalidHandle))

	require.NoError(t, db.Close())
	require.NoError(t, db.Close())
	_, err = db.Connect()
	assert.True(t, IsKind(err, KindInvalidHandle))
}
