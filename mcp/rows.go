package mcp

import (
	"database/sql"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Row is one result row keyed by column name, preserving result-set column
// order through JSON encoding. Database NULL stays as an explicit null value
// under the column's key, never an absent key.
type Row = *orderedmap.OrderedMap[string, interface{}]

// materializeRows drains the cursor to exhaustion and converts every row into
// a Row. Results are fully materialized before returning, not streamed; the
// caller closes rows.
func materializeRows(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := []Row{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := orderedmap.New[string, interface{}]()
		for i, name := range columns {
			row.Set(name, values[i])
		}
		results = append(results, row)
	}

	return results, rows.Err()
}
