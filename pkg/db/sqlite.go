package db

import (
	"database/sql"
	"strings"
	"sync"

	sqlite3 "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLiteDriverName is the database/sql driver whose LOWER and UPPER fold
// every Unicode letter, matching Postgres on a UTF-8 database. The builtin
// sqlite versions only fold ASCII.
const SQLiteDriverName = "sqlite3_unicode"

var registerSQLite sync.Once

// SQLiteDialector opens dsn through the Unicode-folding sqlite driver.
func SQLiteDialector(dsn string) gorm.Dialector {
	registerSQLite.Do(func() {
		sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				if err := conn.RegisterFunc("lower", foldWith(strings.ToLower), true); err != nil {
					return err
				}
				return conn.RegisterFunc("upper", foldWith(strings.ToUpper), true)
			},
		})
	})
	return sqlite.New(sqlite.Config{DriverName: SQLiteDriverName, DSN: dsn})
}

// foldWith applies fn to TEXT values and passes NULL and numbers through.
func foldWith(fn func(string) string) func(any) any {
	return func(v any) any {
		if s, ok := v.(string); ok {
			return fn(s)
		}
		return v
	}
}
