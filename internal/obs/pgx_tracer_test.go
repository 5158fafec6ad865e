package obs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLHelpers(t *testing.T) {
	require.Equal(t, "SELECT", sqlOperation("  select id from flat_tax_rules"))
	require.Equal(t, "QUERY", sqlOperation("   "))

	long := strings.Repeat("x", maxStatementAttr+10)
	require.Len(t, truncateSQL(long), maxStatementAttr+3)
	require.Equal(t, "SELECT 1", truncateSQL(" SELECT 1 "))
}
