// Package duckbridge is a boundary layer between Go and an embedded DuckDB
// engine, loaded at runtime through purego — no CGO, no build-time linking.
//
// The package exposes the engine's columnar results directly rather than
// through database/sql rows:
//
//   - Chunk streams pull results batch by batch. A stream classifies every
//     column's type up front and refuses results it cannot fully decode.
//   - The vector decoder turns raw columnar memory (validity bitmaps, typed
//     arrays, inline/out-of-line string descriptors) into Go values.
//   - The column encoder materializes one whole column into a single
//     little-endian binary buffer for handoff to another runtime.
//   - Writable chunks and appenders run the inverse path for bulk insert.
//
// Basic usage:
//
//	db, err := duckbridge.Open("analytics.db")
//	if err != nil { ... }
//	defer db.Close()
//
//	conn, err := db.Connect()
//	if err != nil { ... }
//	defer conn.Close()
//
//	stream, err := conn.QueryStream("SELECT id, name, score FROM players")
//	if err != nil { ... }
//	defer stream.Close()
//
//	for {
//		chunk, err := stream.Fetch()
//		if err == io.EOF {
//			break
//		}
//		if err != nil { ... }
//		for row := 0; row < chunk.Rows(); row++ {
//			v, _ := chunk.Value(1, row)
//			_ = v
//		}
//		chunk.Close()
//	}
//
// Every fallible call returns its own error; there is no shared last-error
// state. Engine handles follow single-owner semantics with idempotent Close
// methods, and a closed handle reports an invalid-handle error instead of
// touching freed memory.
//
// The engine's shared library is located via DUCKBRIDGE_LIBRARY_PATH, the
// working directory, the executable's directory, or the system loader, in
// that order.
package duckbridge
