// ============================================================================
// mDW WebR Client - Remote R Execution
// ============================================================================
//
// Package:     records
// Description: Record acquisition from SQL queries and JSON/YAML files
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package records

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"

	"github.com/msto63/webr/internal/webr"
)

// FromRows reads all rows into records keyed by column name. Row order is
// kept. []byte columns become strings and times become RFC 3339 strings.
func FromRows(rows *sql.Rows) (webr.Records, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var out webr.Records
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(out), err)
		}

		record := make(webr.Record, len(columns))
		for i, col := range columns {
			record[col] = normalize(values[i])
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return out, nil
}

// uriEscaper escapes the characters SQLite URI filenames treat specially
var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

// readOnlyDSN builds a read-only SQLite URI for path
func readOnlyDSN(path string) string {
	return "file:" + uriEscaper.Replace(path) + "?mode=ro"
}

// FromSQLite runs query against the SQLite database at path
func FromSQLite(ctx context.Context, path, query string, args ...interface{}) (webr.Records, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database not found: %s", path)
	}

	db, err := sql.Open("sqlite3", readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	return FromRows(rows)
}

// Load reads records from a JSON or YAML file holding a list of objects.
// The format is chosen by extension, JSON being the default.
func Load(path string) (webr.Records, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON parses a JSON array of objects. Numbers are kept as json.Number
// so integers survive unchanged.
func ParseJSON(data []byte) (webr.Records, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rows []map[string]interface{}
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to parse JSON records: %w", err)
	}
	return toRecords(rows), nil
}

// ParseYAML parses a YAML sequence of mappings
func ParseYAML(data []byte) (webr.Records, error) {
	var rows []map[string]interface{}
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse YAML records: %w", err)
	}
	return toRecords(rows), nil
}

func toRecords(rows []map[string]interface{}) webr.Records {
	out := make(webr.Records, 0, len(rows))
	for _, row := range rows {
		record := make(webr.Record, len(row))
		for k, v := range row {
			record[k] = normalize(v)
		}
		out = append(out, record)
	}
	return out
}

func normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return v
	}
}
