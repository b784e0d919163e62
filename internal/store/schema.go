package store

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// schemaFor returns the DDL statements for driver, one per element.
func schemaFor(driver string) ([]string, error) {
	var name string
	switch driver {
	case DriverPostgres:
		name = "schema/postgres.sql"
	case DriverSQLite:
		name = "schema/sqlite.sql"
	default:
		return nil, fmt.Errorf("no schema for driver %q", driver)
	}

	raw, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, err
	}

	var stmts []string
	for _, stmt := range strings.Split(string(raw), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}
