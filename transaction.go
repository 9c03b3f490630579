package duckbridge

import (
	"sync"
	"sync/atomic"
)

// Tx is an explicit transaction on a Connection. The engine supports one
// active transaction per connection; nesting is not supported.
type Tx struct {
	conn     *Connection
	mu       sync.Mutex
	finished atomic.Bool
}

// Begin starts a transaction. The connection must not already be in one.
func (c *Connection) Begin() (*Tx, error) {
	if _, err := c.Exec("BEGIN TRANSACTION"); err != nil {
		return nil, err
	}
	return &Tx{conn: c}, nil
}

// Commit makes the transaction's changes durable. Committing an already
// finished transaction is a no-op.
func (tx *Tx) Commit() error {
	return tx.finish("COMMIT")
}

// Rollback discards the transaction's changes. Safe to defer next to a
// Commit: rolling back a finished transaction is a no-op.
func (tx *Tx) Rollback() error {
	return tx.finish("ROLLBACK")
}

func (tx *Tx) finish(sql string) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.finished.Load() {
		return nil
	}
	tx.finished.Store(true)
	_, err := tx.conn.Exec(sql)
	return err
}
