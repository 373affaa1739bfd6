package database

import (
	"database/sql"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// DriverName is the registered sql driver used for every database file.
// It wraps the stock sqlite3 driver to install a Unicode-aware UPPER, so
// that prefix searches match accented text the way operators type it.
const DriverName = "sqlite3_procdesk"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("upper", strings.ToUpper, true)
		},
	})
}
