package fetcher

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// OpenSQLite opens an existing SQLite database for reading.
func OpenSQLite(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA query_only=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return db, nil
}

// StreamTable sends every row of table to a channel. The first Row carries the
// column names, so a table whose columns are named like the CSV header reads
// the same as the CSV file. NULL values read as empty strings.
// Both channels are closed when processing completes.
func StreamTable(ctx context.Context, db *sql.DB, table string) (<-chan Row, <-chan error) {
	rowCh := make(chan Row, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		if !tableNameRe.MatchString(table) {
			errCh <- eris.Errorf("sqlite: invalid table name %q", table)
			return
		}

		rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM "%s"`, table))
		if err != nil {
			errCh <- eris.Wrapf(err, "sqlite: query %s", table)
			return
		}
		defer rows.Close() //nolint:errcheck

		cols, err := rows.Columns()
		if err != nil {
			errCh <- eris.Wrap(err, "sqlite: columns")
			return
		}

		send := func(r Row) bool {
			select {
			case rowCh <- r:
				return true
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "sqlite: context cancelled")
				return false
			}
		}

		if !send(Row{Num: 1, Fields: cols}) {
			return
		}

		num := 1
		values := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		for rows.Next() {
			if err := rows.Scan(dest...); err != nil {
				errCh <- eris.Wrapf(err, "sqlite: scan row %d", num+1)
				return
			}
			num++

			fields := make([]string, len(values))
			for i, v := range values {
				fields[i] = v.String
			}
			if !send(Row{Num: num, Fields: fields}) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			errCh <- eris.Wrap(err, "sqlite: iterate rows")
		}
	}()

	return rowCh, errCh
}
