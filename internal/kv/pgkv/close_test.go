package pgkv

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenDriver hands out connections that fail every statement.
type brokenDriver struct {
	closed atomic.Int32
}

func (d *brokenDriver) Open(string) (driver.Conn, error) {
	return &brokenConn{driver: d}, nil
}

type brokenConn struct {
	driver *brokenDriver
}

func (c *brokenConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("relation does not exist")
}

func (c *brokenConn) Begin() (driver.Tx, error) {
	return nil, errors.New("cannot begin")
}

func (c *brokenConn) Close() error {
	c.driver.closed.Add(1)
	return nil
}

func TestNewClosesDatabaseWhenMigrationFails(t *testing.T) {
	broken := &brokenDriver{}
	sql.Register("pgkv-broken", broken)

	previous := driverName
	driverName = "pgkv-broken"
	t.Cleanup(func() { driverName = previous })

	_, err := New(context.Background(), "broken", time.Second)
	require.Error(t, err)
	assert.Positive(t, broken.closed.Load())
}
