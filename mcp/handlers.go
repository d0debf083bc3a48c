package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sqlrover/mssql-mcp/jsonrpc"
)

// Result payloads. Slices are initialized empty so that no rows serializes as
// an empty array, never null.

// DatabasesResult is the payload of get_databases
type DatabasesResult struct {
	Databases []string `json:"databases"`
}

// TableInfo describes one table in a TablesResult
type TableInfo struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

// TablesResult is the payload of get_tables
type TablesResult struct {
	Tables []TableInfo `json:"tables"`
}

// ColumnInfo describes one column in a ColumnsResult. Precision and scale are
// present only for numeric types, max length only for character types.
type ColumnInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	Identity   bool   `json:"identity"`
	PrimaryKey bool   `json:"primaryKey"`
	Precision  *int64 `json:"precision,omitempty"`
	Scale      *int64 `json:"scale,omitempty"`
	MaxLength  *int64 `json:"maxLength,omitempty"`
}

// ColumnsResult is the payload of get_columns
type ColumnsResult struct {
	Columns []ColumnInfo `json:"columns"`
}

// ProcedureInfo describes one stored procedure in a ProceduresResult
type ProcedureInfo struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
}

// ProceduresResult is the payload of get_procedures
type ProceduresResult struct {
	Procedures []ProcedureInfo `json:"procedures"`
}

// ProcedureDefinitionResult is the payload of get_procedure_definition
type ProcedureDefinitionResult struct {
	Definition string `json:"definition"`
}

// QueryResult is the payload of the query and procedure execution tools
type QueryResult struct {
	Results []Row `json:"results"`
}

// quoteIdent wraps a SQL Server identifier in brackets, escaping any closing
// bracket inside it.
func quoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// useDatabase switches the session's database context. Handlers run it on a
// dedicated connection before their main operation, so the switch never leaks
// into another request.
func useDatabase(ctx context.Context, conn *sql.Conn, database string) error {
	_, err := conn.ExecContext(ctx, "USE "+quoteIdent(database))
	return err
}

func (s *Server) getDatabases(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	// The four lowest database ids are the reserved system databases.
	rows, err := conn.QueryContext(ctx, `SELECT name FROM sys.databases WHERE database_id > 4 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	databases := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		databases = append(databases, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return DatabasesResult{Databases: databases}, nil
}

func (s *Server) getTables(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	database, err := requiredString(args, "database")
	if err != nil {
		return nil, err
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := useDatabase(ctx, conn, database); err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT TABLE_SCHEMA, TABLE_NAME, TABLE_TYPE
		FROM INFORMATION_SCHEMA.TABLES
		ORDER BY TABLE_SCHEMA, TABLE_NAME`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := []TableInfo{}
	for rows.Next() {
		var t TableInfo
		if err := rows.Scan(&t.Schema, &t.Name, &t.Type); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return TablesResult{Tables: tables}, nil
}

const columnsQuery = `
	SELECT
		c.COLUMN_NAME,
		c.DATA_TYPE,
		c.IS_NULLABLE,
		COLUMNPROPERTY(OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME)), c.COLUMN_NAME, 'IsIdentity') AS IS_IDENTITY,
		CASE WHEN pk.COLUMN_NAME IS NOT NULL THEN 1 ELSE 0 END AS IS_PRIMARY_KEY,
		c.NUMERIC_PRECISION,
		c.NUMERIC_SCALE,
		c.CHARACTER_MAXIMUM_LENGTH
	FROM INFORMATION_SCHEMA.COLUMNS c
	LEFT JOIN (
		SELECT kcu.TABLE_CATALOG, kcu.TABLE_SCHEMA, kcu.TABLE_NAME, kcu.COLUMN_NAME
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
		JOIN INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
			ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
			AND tc.TABLE_CATALOG = kcu.TABLE_CATALOG
			AND tc.TABLE_SCHEMA = kcu.TABLE_SCHEMA
			AND tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
	) pk
		ON pk.TABLE_CATALOG = c.TABLE_CATALOG
		AND pk.TABLE_SCHEMA = c.TABLE_SCHEMA
		AND pk.TABLE_NAME = c.TABLE_NAME
		AND pk.COLUMN_NAME = c.COLUMN_NAME
	WHERE c.TABLE_SCHEMA = @schema AND c.TABLE_NAME = @table
	ORDER BY c.ORDINAL_POSITION`

func (s *Server) getColumns(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	database, err := requiredString(args, "database")
	if err != nil {
		return nil, err
	}
	table, err := requiredString(args, "table")
	if err != nil {
		return nil, err
	}
	schema, err := optionalString(args, "schema", "dbo")
	if err != nil {
		return nil, err
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := useDatabase(ctx, conn, database); err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, columnsQuery, sql.Named("schema", schema), sql.Named("table", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := []ColumnInfo{}
	for rows.Next() {
		var (
			c          ColumnInfo
			isNullable string
			isIdentity sql.NullInt64
			isPrimary  int
			precision  sql.NullInt64
			scale      sql.NullInt64
			maxLength  sql.NullInt64
		)
		if err := rows.Scan(&c.Name, &c.Type, &isNullable, &isIdentity, &isPrimary, &precision, &scale, &maxLength); err != nil {
			return nil, err
		}
		c.Nullable = strings.EqualFold(isNullable, "YES")
		c.Identity = isIdentity.Valid && isIdentity.Int64 == 1
		c.PrimaryKey = isPrimary == 1
		if precision.Valid {
			c.Precision = &precision.Int64
		}
		if scale.Valid {
			c.Scale = &scale.Int64
		}
		if maxLength.Valid {
			c.MaxLength = &maxLength.Int64
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ColumnsResult{Columns: columns}, nil
}

func (s *Server) getProcedures(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	database, err := requiredString(args, "database")
	if err != nil {
		return nil, err
	}
	// The schema argument is declared on the descriptor but not applied;
	// procedures are listed across all schemas.

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := useDatabase(ctx, conn, database); err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT ROUTINE_SCHEMA, ROUTINE_NAME
		FROM INFORMATION_SCHEMA.ROUTINES
		WHERE ROUTINE_TYPE = 'PROCEDURE'
		ORDER BY ROUTINE_SCHEMA, ROUTINE_NAME`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	procedures := []ProcedureInfo{}
	for rows.Next() {
		var p ProcedureInfo
		if err := rows.Scan(&p.Schema, &p.Name); err != nil {
			return nil, err
		}
		procedures = append(procedures, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ProceduresResult{Procedures: procedures}, nil
}

const procedureDefinitionQuery = `
	SELECT sm.definition
	FROM sys.sql_modules sm
	JOIN sys.objects o ON o.object_id = sm.object_id
	JOIN sys.schemas s ON s.schema_id = o.schema_id
	WHERE s.name = @schema AND o.name = @name AND o.type = 'P'`

func (s *Server) getProcedureDefinition(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	database, err := requiredString(args, "database")
	if err != nil {
		return nil, err
	}
	schema, err := requiredString(args, "schema")
	if err != nil {
		return nil, err
	}
	name, err := requiredString(args, "name")
	if err != nil {
		return nil, err
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := useDatabase(ctx, conn, database); err != nil {
		return nil, err
	}

	// An encrypted procedure has a NULL definition but still counts as found.
	var definition sql.NullString
	err = conn.QueryRowContext(ctx, procedureDefinitionQuery, sql.Named("schema", schema), sql.Named("name", name)).Scan(&definition)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, jsonrpc.NewError(jsonrpc.ErrInvalidParams, "Procedure not found")
	}
	if err != nil {
		return nil, err
	}

	return ProcedureDefinitionResult{Definition: definition.String}, nil
}

func (s *Server) executeDatabaseQuery(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	database, err := requiredString(args, "database")
	if err != nil {
		return nil, err
	}
	query, err := requiredString(args, "query")
	if err != nil {
		return nil, err
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := useDatabase(ctx, conn, database); err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results, err := materializeRows(rows)
	if err != nil {
		return nil, err
	}

	return QueryResult{Results: results}, nil
}

func (s *Server) executeSystemQuery(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	query, err := requiredString(args, "query")
	if err != nil {
		return nil, err
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results, err := materializeRows(rows)
	if err != nil {
		return nil, err
	}

	return QueryResult{Results: results}, nil
}

func (s *Server) executeProcedure(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	database, err := requiredString(args, "database")
	if err != nil {
		return nil, err
	}
	procedure, err := requiredString(args, "procedure")
	if err != nil {
		return nil, err
	}
	schema, err := optionalString(args, "schema", "dbo")
	if err != nil {
		return nil, err
	}
	parameters, err := optionalMap(args, "parameters")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(parameters))
	for name := range parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	assignments := make([]string, 0, len(names))
	execArgs := make([]interface{}, 0, len(names))
	for i, name := range names {
		placeholder := fmt.Sprintf("p%d", i+1)
		assignments = append(assignments, fmt.Sprintf("@%s = @%s", name, placeholder))

		// Each value is handed to the procedure as its raw JSON text,
		// whatever its original type; downstream procedures expect text.
		raw, err := json.Marshal(parameters[name])
		if err != nil {
			return nil, err
		}
		execArgs = append(execArgs, sql.Named(placeholder, string(raw)))
	}

	stmt := fmt.Sprintf("EXEC %s.%s", quoteIdent(schema), quoteIdent(procedure))
	if len(assignments) > 0 {
		stmt += " " + strings.Join(assignments, ", ")
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := useDatabase(ctx, conn, database); err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, stmt, execArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results, err := materializeRows(rows)
	if err != nil {
		return nil, err
	}

	return QueryResult{Results: results}, nil
}
