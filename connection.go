package duckbridge

import (
	"sync"
	"unsafe"
)

// Config holds engine options applied at open time. Keys and values follow
// the engine's configuration names (for example "access_mode": "READ_ONLY",
// "threads": "4").
type Config struct {
	Path    string
	Options map[string]string
}

// Database is an open engine instance. It is safe for concurrent use; each
// Connection carved from it is not.
type Database struct {
	mu     sync.Mutex
	handle dbHandle
	closed bool
}

// Connection is a single session against a Database. Connections are not
// goroutine-safe; open one per worker.
type Connection struct {
	mu     sync.Mutex
	db     *Database
	handle connHandle
	closed bool
}

// Open opens (or creates) a database at path. An empty path opens an
// in-memory database.
func Open(path string) (*Database, error) {
	return OpenWithConfig(Config{Path: path})
}

// OpenWithConfig opens a database with explicit engine options.
func OpenWithConfig(cfg Config) (*Database, error) {
	if err := Load(); err != nil {
		return nil, err
	}

	var config configHandle
	if len(cfg.Options) > 0 {
		if duckdbCreateConfig(&config) != stateSuccess {
			return nil, errAllocation("engine config")
		}
		defer duckdbDestroyConfig(&config)
		for key, value := range cfg.Options {
			if duckdbSetConfig(config, cString(key), cString(value)) != stateSuccess {
				return nil, engineError("", "invalid config option "+key)
			}
		}
	}

	var path *byte
	if cfg.Path != "" {
		path = cString(cfg.Path)
	}

	var handle dbHandle
	var errMsg *byte
	if duckdbOpenExt(path, &handle, config, &errMsg) != stateSuccess {
		msg := goString(errMsg)
		if errMsg != nil {
			duckdbFree(unsafe.Pointer(errMsg))
		}
		return nil, engineError(msg, "failed to open database")
	}

	return &Database{handle: handle}, nil
}

// Connect opens a new session on the database.
func (db *Database) Connect() (*Connection, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil, errInvalidHandle("database")
	}

	var handle connHandle
	if duckdbConnect(db.handle, &handle) != stateSuccess {
		return nil, engineError("", "failed to connect")
	}
	return &Connection{db: db, handle: handle}, nil
}

// Close shuts the database down. Connections opened from it must be closed
// first. Close is idempotent.
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil
	}
	db.closed = true
	duckdbClose(&db.handle)
	return nil
}

// Query runs sql and materializes the full result. The caller owns the
// returned Result and must Close it.
func (c *Connection) Query(sql string) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errInvalidHandle("connection")
	}

	res := &Result{}
	if duckdbQuery(c.handle, cString(sql), &res.raw) != stateSuccess {
		msg := goString(duckdbResultError(&res.raw))
		duckdbDestroyResult(&res.raw)
		return nil, engineError(msg, "query failed")
	}
	return res, nil
}

// Exec runs sql and returns the number of rows changed, discarding any
// result data.
func (c *Connection) Exec(sql string) (int64, error) {
	res, err := c.Query(sql)
	if err != nil {
		return 0, err
	}
	defer res.Close()
	return res.RowsChanged(), nil
}

// QueryStream runs sql and returns a chunk stream over the result. The
// column type table is classified up front: if any column's type is outside
// the supported set, no stream is created and the whole query fails with
// KindUnsupportedType.
func (c *Connection) QueryStream(sql string) (*Stream, error) {
	res, err := c.Query(sql)
	if err != nil {
		return nil, err
	}

	cols, err := classifyResult(&res.raw)
	if err != nil {
		res.Close()
		return nil, err
	}
	return newStream(res, cols), nil
}

// Prepare compiles sql into a reusable statement with parameter slots.
func (c *Connection) Prepare(sql string) (*Statement, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errInvalidHandle("connection")
	}

	var handle stmtHandle
	if duckdbPrepare(c.handle, cString(sql), &handle) != stateSuccess {
		msg := goString(duckdbPrepareError(handle))
		duckdbDestroyPrepare(&handle)
		return nil, engineError(msg, "prepare failed")
	}
	return &Statement{conn: c, handle: handle}, nil
}

// Appender creates a bulk row appender for schema.table. An empty schema
// targets the default schema.
func (c *Connection) Appender(schema, table string) (*Appender, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errInvalidHandle("connection")
	}

	var schemaPtr *byte
	if schema != "" {
		schemaPtr = cString(schema)
	}

	var handle appenderHandle
	if duckdbAppenderCreate(c.handle, schemaPtr, cString(table), &handle) != stateSuccess {
		msg := goString(duckdbAppenderError(handle))
		duckdbAppenderDestroy(&handle)
		return nil, engineError(msg, "failed to create appender for "+table)
	}
	return &Appender{conn: c, handle: handle}, nil
}

// Close ends the session. Close is idempotent.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	duckdbDisconnect(&c.handle)
	return nil
}

// Result is a materialized query result. It owns engine memory until Close.
type Result struct {
	raw    apiResult
	closed bool
}

// ColumnCount returns the number of columns in the result.
func (r *Result) ColumnCount() int {
	if r.closed {
		return 0
	}
	return int(duckdbColumnCount(&r.raw))
}

// RowCount returns the number of rows in the result.
func (r *Result) RowCount() int64 {
	if r.closed {
		return 0
	}
	return int64(duckdbRowCount(&r.raw))
}

// RowsChanged returns the number of rows altered by an INSERT, UPDATE or
// DELETE.
func (r *Result) RowsChanged() int64 {
	if r.closed {
		return 0
	}
	return int64(duckdbRowsChanged(&r.raw))
}

// ColumnName returns the name of column col.
func (r *Result) ColumnName(col int) (string, error) {
	if r.closed {
		return "", errInvalidHandle("result")
	}
	if n := r.ColumnCount(); col < 0 || col >= n {
		return "", errIndexOutOfRange("column", col, n)
	}
	return goString(duckdbColumnName(&r.raw, uint64(col))), nil
}

// ColumnType returns the logical type of column col.
func (r *Result) ColumnType(col int) (TypeID, error) {
	if r.closed {
		return TypeInvalid, errInvalidHandle("result")
	}
	if n := r.ColumnCount(); col < 0 || col >= n {
		return TypeInvalid, errIndexOutOfRange("column", col, n)
	}
	return TypeID(duckdbColumnType(&r.raw, uint64(col))), nil
}

// Close releases the result's engine memory. Close is idempotent.
func (r *Result) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	duckdbDestroyResult(&r.raw)
	return nil
}
