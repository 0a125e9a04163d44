package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/afero"

	"github.com/gigapi/gigapi-metastore/core"

	_ "github.com/lib/pq"
	_ "github.com/marcboeker/go-duckdb/v2"
)

var ErrMissingUser = errors.New("warehouse user is required")

var _ core.QueryClient = (*Client)(nil)

// Settings locates a Redshift (postgres protocol) cluster.
type Settings struct {
	Host     string
	Port     int
	Database string
	User     string
	// Password may be empty: the driver then looks it up in ~/.pgpass or PGPASSFILE.
	Password string
	SSLMode  string
}

func (s Settings) DSN() (string, error) {
	if s.User == "" {
		return "", fmt.Errorf("%w: host %s, database %s", ErrMissingUser, s.Host, s.Database)
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   s.Host,
		Path:   "/" + s.Database,
	}
	if s.Port != 0 {
		u.Host = net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	}
	if s.Password != "" {
		u.User = url.UserPassword(s.User, s.Password)
	} else {
		u.User = url.User(s.User)
	}
	if s.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {s.SSLMode}}.Encode()
	}
	return u.String(), nil
}

// Client runs SQL against a database/sql driver.
type Client struct {
	driver string
	dsn    string
	DB     *sql.DB
}

// NewRedshift returns a client for a Redshift cluster. Call Initialize to connect.
func NewRedshift(s Settings) (*Client, error) {
	dsn, err := s.DSN()
	if err != nil {
		return nil, err
	}
	return &Client{driver: "postgres", dsn: dsn}, nil
}

// NewDuckDB returns a client for an embedded DuckDB database; an empty path is in-memory.
func NewDuckDB(path string) *Client {
	return &Client{driver: "duckdb", dsn: path + "?access_mode=READ_WRITE"}
}

// NewWithDB wraps an already opened database.
func NewWithDB(db *sql.DB) *Client {
	return &Client{DB: db}
}

func (c *Client) Initialize() error {
	if c.DB != nil {
		return nil
	}
	db, err := sql.Open(c.driver, c.dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.driver, err)
	}
	c.DB = db
	return nil
}

// Result holds rows with their column order preserved.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Maps converts the rows to column keyed maps.
func (r *Result) Maps() []map[string]any {
	res := make([]map[string]any, len(r.Rows))
	for i, row := range r.Rows {
		m := make(map[string]any, len(r.Columns))
		for j, col := range r.Columns {
			m[col] = row[j]
		}
		res[i] = m
	}
	return res
}

func (c *Client) QueryResult(ctx context.Context, query string, args ...any) (*Result, error) {
	if c.DB == nil {
		return nil, errors.New("warehouse client is not initialized")
	}
	start := time.Now()
	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		core.Errorf(ctx, "unable to run query: %v", err)
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	res := &Result{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	core.Infof(ctx, "query returned %d rows in %v", len(res.Rows), time.Since(start))
	return res, nil
}

func (c *Client) Query(ctx context.Context, query string, args ...any) ([]map[string]interface{}, error) {
	res, err := c.QueryResult(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return res.Maps(), nil
}

// QueryFromFile runs the SQL script at path with positional args.
func (c *Client) QueryFromFile(ctx context.Context, fs afero.Fs, path string, args ...any) (*Result, error) {
	script, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	return c.QueryResult(ctx, string(script), args...)
}

func (c *Client) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
