package mcp

import "context"

// toolFunc is the uniform signature every tool handler implements.
type toolFunc func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// toolEntry pairs a tool's descriptor with its handler. Descriptors and
// dispatch share this one table, so a tool cannot be listed without being
// callable, or callable without being listed.
type toolEntry struct {
	descriptor Tool
	handler    toolFunc
}

// buildRegistry returns the tools in their published order.
func (s *Server) buildRegistry() []toolEntry {
	return []toolEntry{
		{
			descriptor: Tool{
				Name:        "get_databases",
				Description: "List the user databases on the server, excluding system databases.",
				Parameters:  map[string]string{},
				Required:    []string{},
			},
			handler: s.getDatabases,
		},
		{
			descriptor: Tool{
				Name:        "get_tables",
				Description: "List the tables in a database with their schema and type.",
				Parameters: map[string]string{
					"database": "Name of the database to inspect",
				},
				Required: []string{"database"},
			},
			handler: s.getTables,
		},
		{
			descriptor: Tool{
				Name:        "get_columns",
				Description: "List the columns of a table with type, nullability, identity and primary key information.",
				Parameters: map[string]string{
					"database": "Name of the database containing the table",
					"table":    "Name of the table to inspect",
					"schema":   "Schema of the table (defaults to dbo)",
				},
				Required: []string{"database", "table"},
			},
			handler: s.getColumns,
		},
		{
			descriptor: Tool{
				Name:        "get_procedures",
				Description: "List the stored procedures in a database.",
				Parameters: map[string]string{
					"database": "Name of the database to inspect",
					"schema":   "Schema to filter by",
				},
				Required: []string{"database"},
			},
			handler: s.getProcedures,
		},
		{
			descriptor: Tool{
				Name:        "get_procedure_definition",
				Description: "Fetch the source text of a stored procedure.",
				Parameters: map[string]string{
					"database": "Name of the database containing the procedure",
					"schema":   "Schema of the procedure",
					"name":     "Name of the procedure",
				},
				Required: []string{"database", "schema", "name"},
			},
			handler: s.getProcedureDefinition,
		},
		{
			descriptor: Tool{
				Name:        "execute_database_query",
				Description: "Execute a query in the context of a specific database and return the rows.",
				Parameters: map[string]string{
					"database": "Database to run the query against",
					"query":    "SQL text to execute",
				},
				Required: []string{"database", "query"},
			},
			handler: s.executeDatabaseQuery,
		},
		{
			descriptor: Tool{
				Name:        "execute_system_query",
				Description: "Execute a query without switching database context and return the rows.",
				Parameters: map[string]string{
					"query": "SQL text to execute",
				},
				Required: []string{"query"},
			},
			handler: s.executeSystemQuery,
		},
		{
			descriptor: Tool{
				Name:        "execute_procedure",
				Description: "Invoke a stored procedure with named parameters and return the rows it produces.",
				Parameters: map[string]string{
					"database":   "Database containing the procedure",
					"procedure":  "Name of the procedure to invoke",
					"schema":     "Schema of the procedure (defaults to dbo)",
					"parameters": "Mapping of parameter names to values",
				},
				Required: []string{"database", "procedure"},
			},
			handler: s.executeProcedure,
		},
	}
}
