package duckbridge

import (
	"io"
)

// Stream pulls a query result one data chunk at a time. The result's engine
// memory stays alive for as long as the stream is open; chunks fetched from
// it are owned by the caller and survive the stream's Close.
//
// A stream moves through three states: open, exhausted (Fetch returned
// io.EOF) and closed. Exhaustion is not an error and is stable: every Fetch
// after the first io.EOF returns io.EOF again. Fetching from a closed stream
// is an error.
type Stream struct {
	res   *Result
	cols  []ColumnMeta
	cache *StringCache

	done   bool
	closed bool
}

func newStream(res *Result, cols []ColumnMeta) *Stream {
	return &Stream{res: res, cols: cols}
}

// Columns returns the stream's validated column type table.
func (s *Stream) Columns() []ColumnMeta {
	return s.cols
}

// UseStringCache makes chunks fetched from this stream intern decoded
// VARCHAR values through cache. Effective for chunks fetched after the call.
func (s *Stream) UseStringCache(cache *StringCache) {
	s.cache = cache
}

// Fetch returns the next chunk of the result, or io.EOF once the result is
// exhausted. The caller owns the chunk and must Close it. A chunk is never
// empty: exhaustion and data are mutually exclusive outcomes.
func (s *Stream) Fetch() (*Chunk, error) {
	if s.closed {
		return nil, errInvalidHandle("stream")
	}
	if s.done {
		return nil, io.EOF
	}

	handle := duckdbFetchChunk(s.res.raw)
	if handle == 0 {
		s.done = true
		return nil, io.EOF
	}

	rows := int(duckdbDataChunkGetSize(handle))
	if rows == 0 {
		// The engine can hand back a trailing empty chunk; treat it as
		// exhaustion.
		duckdbDestroyDataChunk(&handle)
		s.done = true
		return nil, io.EOF
	}

	// The chunk carries its own copy of the column table so that closing
	// the stream cannot invalidate chunks still in flight.
	cols := make([]ColumnMeta, len(s.cols))
	copy(cols, s.cols)

	return &Chunk{handle: handle, cols: cols, rows: rows, cache: s.cache}, nil
}

// Close releases the underlying result. Chunks already fetched remain valid.
// Close is idempotent.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.res.Close()
}

// Chunk is one batch of rows in columnar layout. All vectors in a chunk have
// the same row count.
type Chunk struct {
	handle chunkHandle
	cols   []ColumnMeta
	rows   int
	cache  *StringCache
	closed bool
}

// Rows returns the number of rows in the chunk.
func (c *Chunk) Rows() int {
	return c.rows
}

// ColumnCount returns the number of columns in the chunk.
func (c *Chunk) ColumnCount() int {
	return len(c.cols)
}

// Column returns the type table entry for column col.
func (c *Chunk) Column(col int) (ColumnMeta, error) {
	if col < 0 || col >= len(c.cols) {
		return ColumnMeta{}, errIndexOutOfRange("column", col, len(c.cols))
	}
	return c.cols[col], nil
}

// Close releases the chunk's engine memory. Values previously decoded from
// the chunk remain valid; raw descriptors handed out by Value do not.
// Close is idempotent.
func (c *Chunk) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	duckdbDestroyDataChunk(&c.handle)
	return nil
}
