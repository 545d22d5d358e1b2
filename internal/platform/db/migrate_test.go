package db

import (
	"io/fs"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsArePaired(t *testing.T) {
	names, err := fs.Glob(Migrations(), "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)
	sort.Strings(names)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, name := range names {
		base := strings.TrimPrefix(name, "migrations/")
		switch {
		case strings.HasSuffix(base, ".up.sql"):
			ups[strings.TrimSuffix(base, ".up.sql")] = true
		case strings.HasSuffix(base, ".down.sql"):
			downs[strings.TrimSuffix(base, ".down.sql")] = true
		default:
			t.Fatalf("unexpected migration file %s", base)
		}
	}
	assert.Equal(t, ups, downs)
}

func TestMigrationsCreateTables(t *testing.T) {
	var all strings.Builder
	err := fs.WalkDir(Migrations(), "migrations", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".up.sql") {
			return err
		}
		data, err := fs.ReadFile(Migrations(), path)
		if err != nil {
			return err
		}
		all.Write(data)
		return nil
	})
	require.NoError(t, err)
	assert.Contains(t, all.String(), "CREATE TABLE IF NOT EXISTS audit_logs")
	assert.Contains(t, all.String(), "CREATE TABLE IF NOT EXISTS idempotency_keys")
}
