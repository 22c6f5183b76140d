package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"document":  KindDocument,
		"documents": KindDocument,
		" Objects ": KindObject,
		"object":    KindObject,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseKind("drafts")
	assert.Error(t, err)
}

func TestRecordPaths(t *testing.T) {
	r := SchemaRecord{Name: "heroCTAButton", Kind: KindObject}
	assert.Equal(t, "objects/hero-cta-button.ts", r.Path())
	assert.Equal(t, "./objects/hero-cta-button", r.ImportPath())
}
