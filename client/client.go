// Package client executes rendered queries over database/sql, rebinding
// the renderer's %s placeholders to each driver's bind style.
package client

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"github.com/sqlexpr/sqlexpr/compiler"
	"github.com/sqlexpr/sqlexpr/expr"
	"github.com/sqlexpr/sqlexpr/internal/debug"
)

// Client pairs a database connection with the compiler for its dialect.
type Client struct {
	db   *sql.DB
	comp *compiler.SQLCompiler
}

// New opens a connection for the named dialect. The dialect must have a
// registered database/sql driver; mssql rendering is supported but no
// driver ships with this module.
func New(dialectName, dsn string) (*Client, error) {
	driverName := driverFor(dialectName)
	if driverName == "" {
		return nil, fmt.Errorf("no database driver for dialect %q", dialectName)
	}
	comp, err := compiler.ForDialect(dialectName)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	return &Client{db: db, comp: comp}, nil
}

// NewFromDB wraps an existing connection.
func NewFromDB(dialectName string, db *sql.DB) (*Client, error) {
	comp, err := compiler.ForDialect(dialectName)
	if err != nil {
		return nil, err
	}
	return &Client{db: db, comp: comp}, nil
}

func driverFor(dialectName string) string {
	switch dialectName {
	case "postgres", "postgresql":
		return "postgres"
	case "mysql":
		return "mysql"
	case "sqlite":
		return "sqlite3"
	default:
		return ""
	}
}

// Connect verifies the connection.
func (c *Client) Connect(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.db.Close()
}

// DB returns the underlying connection.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Compiler returns the client's compiler.
func (c *Client) Compiler() *compiler.SQLCompiler {
	return c.comp
}

// Select renders a query and runs it.
func (c *Client) Select(ctx context.Context, qs expr.QuerySet) (*sql.Rows, error) {
	sqlText, params, err := qs.SQL(c.comp)
	if err != nil {
		return nil, err
	}
	bound := Rebind(c.comp.Dialect(), sqlText)
	debug.Debug("executing query", "dialect", c.comp.Dialect().Name(), "sql", bound)
	return c.db.QueryContext(ctx, bound, params...)
}

// SelectRow renders a query and runs it expecting a single row.
func (c *Client) SelectRow(ctx context.Context, qs expr.QuerySet) (*sql.Row, error) {
	sqlText, params, err := qs.SQL(c.comp)
	if err != nil {
		return nil, err
	}
	return c.db.QueryRowContext(ctx, Rebind(c.comp.Dialect(), sqlText), params...), nil
}

// Exec renders an expression fragment as a statement and runs it.
func (c *Client) Exec(ctx context.Context, sqlText string, params ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, Rebind(c.comp.Dialect(), sqlText), params...)
}
