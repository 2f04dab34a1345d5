package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump is the log-only view of an error: the typed code, the unwrap
// chain and whatever the database driver attached.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	DBDriver     string `json:"db_driver,omitempty"`
	DBCode       string `json:"db_code,omitempty"`
	DBConstraint string `json:"db_constraint,omitempty"`
	DBTable      string `json:"db_table,omitempty"`
	DBColumn     string `json:"db_column,omitempty"`
	DBDetail     string `json:"db_detail,omitempty"`
}

// sqlite reports constraint failures only through the message text.
var sqliteConstraintKinds = map[string]string{
	"UNIQUE constraint failed":      "unique",
	"FOREIGN KEY constraint failed": "foreign_key",
	"CHECK constraint failed":       "check",
	"NOT NULL constraint failed":    "not_null",
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		d.DBDriver = "pgx"
		d.DBCode = pgxErr.Code
		d.DBConstraint = pgxErr.ConstraintName
		d.DBTable = pgxErr.TableName
		d.DBColumn = pgxErr.ColumnName
		d.DBDetail = pgxErr.Detail
		return d
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		d.DBDriver = "pq"
		d.DBCode = string(pqErr.Code)
		d.DBConstraint = pqErr.Constraint
		d.DBTable = pqErr.Table
		d.DBColumn = pqErr.Column
		d.DBDetail = pqErr.Detail
		return d
	}

	dumpSQLite(&d, err.Error())
	return d
}

// dumpSQLite parses messages such as
// "UNIQUE constraint failed: users.username".
func dumpSQLite(d *ErrorDump, msg string) {
	for prefix, kind := range sqliteConstraintKinds {
		idx := strings.Index(msg, prefix)
		if idx < 0 {
			continue
		}
		d.DBDriver = "sqlite"
		d.DBCode = kind
		target := strings.TrimSpace(strings.TrimPrefix(msg[idx+len(prefix):], ":"))
		if first, _, ok := strings.Cut(target, ","); ok {
			target = first
		}
		d.DBConstraint = target
		if table, column, ok := strings.Cut(target, "."); ok {
			d.DBTable = table
			d.DBColumn = column
		}
		return
	}
}
