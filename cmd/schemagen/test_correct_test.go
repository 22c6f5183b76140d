package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemaarchitect/internal/types"
)

func TestLoadRecords(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "documents"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "objects"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "documents", "page.ts"),
		[]byte("export default defineType({\n  name: 'page',\n  type: 'document',\n})\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "objects", "hero-section.ts"),
		[]byte("// no name here\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "objects", "notes.md"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "drafts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "drafts", "old.ts"), []byte("name: 'old'"), 0o644))

	got, err := loadRecords(dir)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "page", got[0].Name)
	assert.Equal(t, types.KindDocument, got[0].Kind)
	assert.Equal(t, filepath.Join(dir, "documents", "page.ts"), got[0].path)

	assert.Equal(t, "heroSection", got[1].Name)
	assert.Equal(t, types.KindObject, got[1].Kind)
}

func TestLoadRecordsMissingDir(t *testing.T) {
	got, err := loadRecords(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, got)
}
