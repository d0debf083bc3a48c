package debuglog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	logs, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, logs.Close())

	assert.FileExists(t, filepath.Join(dir, "requests.log"))
	assert.FileExists(t, filepath.Join(dir, "responses.log"))
}

func TestRequestWritesVerbatim(t *testing.T) {
	dir := t.TempDir()
	logs, err := Open(dir)
	require.NoError(t, err)

	logs.Request(`{"protocolVersion":"2.0","method":"tools/list","id":1}`)
	logs.Request(`{"protocolVersion":"2.0","method":"initialize","id":2}`)
	require.NoError(t, logs.Close())

	data, err := os.ReadFile(filepath.Join(dir, "requests.log"))
	require.NoError(t, err)
	assert.Equal(t,
		`{"protocolVersion":"2.0","method":"tools/list","id":1}
{"protocolVersion":"2.0","method":"initialize","id":2}
`, string(data))
}

func TestResponseWritesTimestampPrefix(t *testing.T) {
	dir := t.TempDir()
	logs, err := Open(dir)
	require.NoError(t, err)

	logs.Response(`{"id":1,"result":{"ok":true}}`)
	require.NoError(t, logs.Close())

	data, err := os.ReadFile(filepath.Join(dir, "responses.log"))
	require.NoError(t, err)

	line := strings.TrimRight(string(data), "\n")
	parts := strings.SplitN(line, " ", 2)
	require.Len(t, parts, 2)

	stamp, err := time.Parse(time.RFC3339, parts[0])
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), stamp, time.Minute)
	assert.Equal(t, `{"id":1,"result":{"ok":true}}`, parts[1])
}

func TestOpenAppends(t *testing.T) {
	dir := t.TempDir()

	logs, err := Open(dir)
	require.NoError(t, err)
	logs.Request("first")
	require.NoError(t, logs.Close())

	logs, err = Open(dir)
	require.NoError(t, err)
	logs.Request("second")
	require.NoError(t, logs.Close())

	data, err := os.ReadFile(filepath.Join(dir, "requests.log"))
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}
