package outbound

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The repository builds its statements from the columns list, so every entry
// must exist in the shipped schema or writes fail at runtime.
func TestSchemaCoversRepositoryColumns(t *testing.T) {
	ddl, err := os.ReadFile("../../../db/pg/0001_init.up.sql")
	require.NoError(t, err)

	start := strings.Index(string(ddl), "CREATE TABLE IF NOT EXISTS outbound_messages")
	require.GreaterOrEqual(t, start, 0, "outbound_messages DDL not found in migration")

	table := string(ddl)[start:]
	end := strings.Index(table, ");")
	require.GreaterOrEqual(t, end, 0)
	table = table[:end]

	for _, column := range columns {
		assert.Containsf(t, table, "\n    "+column+" ", "column %q missing from outbound_messages DDL", column)
	}
}
