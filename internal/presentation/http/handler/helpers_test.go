package handler

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataPath(t *testing.T) {
	root := t.TempDir()

	got, err := dataPath(root, "exports/catalog.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "exports", "catalog.csv"), got)

	got, err = dataPath(root, filepath.Join(root, "bills.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "bills.xlsx"), got)

	for _, name := range []string{
		"",
		"   ",
		"../catalog.csv",
		"a/../../catalog.csv",
		"a/../b.csv",
		".",
		filepath.Join(filepath.Dir(root), "other", "catalog.csv"),
		"/etc/passwd",
	} {
		_, err := dataPath(root, name)
		assert.Error(t, err, "%q", name)
	}
}
