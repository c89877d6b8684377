// Package pgkv provides a PostgreSQL-based implementation of kv.Namespace.
// Entries live in a single kv_entries table; the schema is applied with goose
// from migrations embedded into the binary.
package pgkv

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/patric-chuzhbe/atomicnotes/internal/kv"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// driverName is the database/sql driver registered by pgx/stdlib.
var driverName = "pgx"

// PostgresKV is a PostgreSQL-backed key-value namespace.
type PostgresKV struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset drops every table before migrating. Meant for tests.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresKV instance.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	optionsProto ...InitOption,
) (*PostgresKV, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open(driverName, databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresKV{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if err := result.migrate(ctx, options.DBPreReset); err != nil {
		return nil, errors.Join(err, database.Close())
	}

	return result, nil
}

func (db *PostgresKV) migrate(ctx context.Context, preReset bool) error {
	if preReset {
		if err := db.resetDB(ctx); err != nil {
			return fmt.Errorf(
				"in internal/kv/pgkv/pgkv.go/migrate(): error while `db.resetDB()` calling: %w",
				err,
			)
		}
	}

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf(
			"in internal/kv/pgkv/pgkv.go/migrate(): error while `goose.SetDialect()` calling: %w",
			err,
		)
	}

	if err := goose.UpContext(ctx, db.database, "migrations"); err != nil {
		return fmt.Errorf(
			"in internal/kv/pgkv/pgkv.go/migrate(): error while `goose.Up()` calling: %w",
			err,
		)
	}

	return nil
}

// Put upserts the value and metadata of key.
func (db *PostgresKV) Put(ctx context.Context, key string, value []byte, metadata any) error {
	if key == "" {
		return kv.ErrEmptyKey
	}

	rawMetadata, err := kv.EncodeMetadata(metadata)
	if err != nil {
		return err
	}

	_, err = db.database.ExecContext(
		ctx,
		`
			INSERT INTO kv_entries ("key", value, metadata, updated_at)
				VALUES ($1, $2, $3, now())
				ON CONFLICT ("key") DO UPDATE
				SET
					value = EXCLUDED.value,
					metadata = EXCLUDED.metadata,
					updated_at = EXCLUDED.updated_at
		`,
		key,
		value,
		string(rawMetadata),
	)

	return err
}

// Get returns the value stored under key.
func (db *PostgresKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT value FROM kv_entries WHERE "key" = $1`,
		key,
	)
	var value []byte
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return value, true, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (db *PostgresKV) Delete(ctx context.Context, key string) error {
	_, err := db.database.ExecContext(
		ctx,
		`DELETE FROM kv_entries WHERE "key" = $1`,
		key,
	)

	return err
}

// List pages through keys by prefix ordered by key. The cursor is the last
// key of the previous page.
func (db *PostgresKV) List(ctx context.Context, opts kv.ListOptions) (kv.ListResult, error) {
	limit := opts.EffectiveLimit()

	rows, err := db.database.QueryContext(
		ctx,
		`
			SELECT "key", COALESCE(metadata::text, 'null')
				FROM kv_entries
				WHERE starts_with("key", $1) AND "key" > $2
				ORDER BY "key"
				LIMIT $3
		`,
		opts.Prefix,
		opts.Cursor,
		limit+1,
	)
	if err != nil {
		return kv.ListResult{}, err
	}
	defer rows.Close()

	result := kv.ListResult{Keys: []kv.Key{}, ListComplete: true}
	for rows.Next() {
		var name, metadata string
		if err := rows.Scan(&name, &metadata); err != nil {
			return kv.ListResult{}, err
		}
		result.Keys = append(result.Keys, kv.Key{
			Name:     name,
			Metadata: json.RawMessage(metadata),
		})
	}
	if err := rows.Err(); err != nil {
		return kv.ListResult{}, err
	}

	if len(result.Keys) > limit {
		result.Keys = result.Keys[:limit]
		result.ListComplete = false
		result.Cursor = result.Keys[limit-1].Name
	}

	return result, nil
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresKV) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresKV) Close() error {
	return db.database.Close()
}

func (db *PostgresKV) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf(
			"in internal/kv/pgkv/pgkv.go/resetDB(): error while `db.database.ExecContext()` calling: %w",
			err,
		)
	}
	return nil
}
