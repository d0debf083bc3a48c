package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlrover/mssql-mcp/jsonrpc"
)

func TestRequiredString(t *testing.T) {
	tests := []struct {
		name            string
		args            map[string]interface{}
		expected        string
		expectedMessage string
	}{
		{
			name:     "present",
			args:     map[string]interface{}{"database": "Northwind"},
			expected: "Northwind",
		},
		{
			name:            "missing",
			args:            map[string]interface{}{},
			expectedMessage: "Missing required argument: database",
		},
		{
			name:            "null",
			args:            map[string]interface{}{"database": nil},
			expectedMessage: "Missing required argument: database",
		},
		{
			name:            "empty",
			args:            map[string]interface{}{"database": ""},
			expectedMessage: "Argument database must be a non-empty string",
		},
		{
			name:            "wrong type",
			args:            map[string]interface{}{"database": float64(7)},
			expectedMessage: "Argument database must be a non-empty string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := requiredString(tt.args, "database")
			if tt.expectedMessage == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, value)
				return
			}

			var rpcErr *jsonrpc.Error
			require.ErrorAs(t, err, &rpcErr)
			assert.Equal(t, jsonrpc.ErrInvalidParams, rpcErr.Code)
			assert.Equal(t, tt.expectedMessage, rpcErr.Message)
		})
	}
}

func TestOptionalString(t *testing.T) {
	tests := []struct {
		name      string
		args      map[string]interface{}
		expected  string
		expectErr bool
	}{
		{"present", map[string]interface{}{"schema": "sales"}, "sales", false},
		{"missing falls back", map[string]interface{}{}, "dbo", false},
		{"null falls back", map[string]interface{}{"schema": nil}, "dbo", false},
		{"empty falls back", map[string]interface{}{"schema": ""}, "dbo", false},
		{"wrong type", map[string]interface{}{"schema": true}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := optionalString(tt.args, "schema", "dbo")
			if tt.expectErr {
				var rpcErr *jsonrpc.Error
				require.ErrorAs(t, err, &rpcErr)
				assert.Equal(t, jsonrpc.ErrInvalidParams, rpcErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}
}

func TestOptionalMap(t *testing.T) {
	params, err := optionalMap(map[string]interface{}{
		"parameters": map[string]interface{}{"year": float64(2024)},
	}, "parameters")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"year": float64(2024)}, params)

	params, err = optionalMap(map[string]interface{}{}, "parameters")
	require.NoError(t, err)
	assert.NotNil(t, params)
	assert.Empty(t, params)

	_, err = optionalMap(map[string]interface{}{"parameters": "not an object"}, "parameters")
	var rpcErr *jsonrpc.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, jsonrpc.ErrInvalidParams, rpcErr.Code)
}
