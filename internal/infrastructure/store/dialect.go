package store

import (
	"fmt"
	"strings"

	"go-order-hub/internal/config"
)

type dialect struct {
	driver       string
	dollarParams bool
	// singleWriter limits the pool to one connection; SQLite serializes
	// writers anyway and :memory: databases are per connection.
	singleWriter bool
	greatest     string
	lockClause   string
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case config.DriverSQLite:
		return dialect{
			driver:       "sqlite",
			singleWriter: true,
			greatest:     "MAX",
		}, nil
	case config.DriverPostgres:
		return dialect{
			driver:       "postgres",
			dollarParams: true,
			greatest:     "GREATEST",
			lockClause:   " FOR UPDATE",
		}, nil
	}
	return dialect{}, fmt.Errorf("unsupported store driver %q", driver)
}

func (d dialect) dsn(dsn string) string {
	if d.driver != "sqlite" || dsn == ":memory:" || strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
}
