package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a lookup or update targets a row that
	// doesn't exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnconfigured is returned when a repository is asked to do something
	// it wasn't wired up for.
	ErrUnconfigured = errors.New("repository not configured for this operation")
)

// DuplicateKeyError reports a unique or primary key violation along with the
// constraint that rejected the row, so handlers can tell the caller which
// field collided without parsing driver messages.
type DuplicateKeyError struct {
	Constraint string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key violates constraint %q", e.Constraint)
}

// sqlite extended result codes for constraint violations
const (
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// classifyError maps driver specific failures onto the repository error set.
// Anything unrecognized passes through unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return &DuplicateKeyError{Constraint: pgErr.ConstraintName}
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		if code == sqliteConstraintPrimaryKey || code == sqliteConstraintUnique {
			return &DuplicateKeyError{Constraint: sqliteConstraintName(sqliteErr.Error())}
		}
	}

	return err
}

// sqliteConstraintName digs the "table.column" part out of sqlite's
// "UNIQUE constraint failed: users.username" message and normalizes it to
// the postgres naming scheme so callers only have to know one spelling.
// Composite key violations list several columns and come out as table_pkey.
func sqliteConstraintName(msg string) string {
	idx := strings.LastIndex(msg, "constraint failed: ")
	if idx < 0 {
		return ""
	}

	rest := msg[idx+len("constraint failed: "):]
	if end := strings.Index(rest, " ("); end >= 0 {
		rest = rest[:end]
	}

	cols := strings.Split(rest, ", ")

	parts := strings.Split(strings.TrimSpace(cols[0]), ".")
	if len(parts) != 2 {
		return ""
	}

	if len(cols) > 1 {
		return parts[0] + "_pkey"
	}

	return parts[0] + "_" + parts[1] + "_key"
}
