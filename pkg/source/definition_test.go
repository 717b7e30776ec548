package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deperrors "github.com/Dima09182/depviz/pkg/errors"
)

func TestParseDefinition(t *testing.T) {
	def, err := ParseDefinition(strings.NewReader("A: B C\nB: \nC: D\nD:\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C", "D"}, def.Packages())
	assert.Equal(t, 4, def.Len())

	deps, ok := def.Dependencies("A")
	assert.True(t, ok)
	assert.Equal(t, []string{"B", "C"}, deps)

	deps, ok = def.Dependencies("B")
	assert.True(t, ok)
	assert.NotNil(t, deps)
	assert.Empty(t, deps)

	_, ok = def.Dependencies("Z")
	assert.False(t, ok)
}

func TestParseDefinitionIgnoredLines(t *testing.T) {
	input := "\n# comment: ignored\nno colon here\n   \nA:B   C\n"
	def, err := ParseDefinition(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, def.Packages())
	deps, _ := def.Dependencies("A")
	assert.Equal(t, []string{"B", "C"}, deps)
}

func TestParseDefinitionErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		line   int
		reason string
	}{
		{"empty name", "A: B\n: C\n", 2, "empty package name"},
		{"blank name", "  : C\n", 1, "empty package name"},
		{"duplicate", "A: B\nB:\nA: C\n", 3, "declared twice"},
		{"invalid utf8", "A: B\nB: \xff\xfe\n", 2, "invalid UTF-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDefinition(strings.NewReader(tt.input))
			require.Error(t, err)

			var fe *StaticRepoFormatError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.line, fe.Line)
			assert.Contains(t, fe.Reason, tt.reason)
			assert.ErrorIs(t, err, ErrStaticRepoFormat)
			assert.True(t, deperrors.IsFatal(err))
		})
	}
}

func TestDefinitionIsolation(t *testing.T) {
	def, err := ParseDefinition(strings.NewReader("A: B\n"))
	require.NoError(t, err)

	deps, _ := def.Dependencies("A")
	deps[0] = "mutated"
	again, _ := def.Dependencies("A")
	assert.Equal(t, []string{"B"}, again)

	pkgs := def.Packages()
	pkgs[0] = "mutated"
	assert.Equal(t, []string{"A"}, def.Packages())
}

func TestLoadDefinition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repo.txt")
	require.NoError(t, os.WriteFile(path, []byte("A: B\nA: C\n"), 0o644))

	_, err := LoadDefinition(path)
	var fe *StaticRepoFormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, path, fe.Path)
	assert.Contains(t, err.Error(), path+":2")

	_, err = LoadDefinition(filepath.Join(dir, "missing.txt"))
	assert.True(t, deperrors.Is(err, deperrors.ErrCodeInvalidLocation))
}

func TestStatic(t *testing.T) {
	def, err := ParseDefinition(strings.NewReader("A: B C\nB:\n"))
	require.NoError(t, err)
	s := NewStatic(def)
	ctx := context.Background()

	assert.Equal(t, "static", s.Name())

	id, err := s.Resolve(ctx, "anything-1.0.apk")
	require.NoError(t, err)
	assert.Equal(t, "anything-1.0.apk", id)

	deps, err := s.Dependencies(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, deps)

	deps, err = s.Dependencies(ctx, "undeclared")
	require.NoError(t, err)
	assert.NotNil(t, deps)
	assert.Empty(t, deps)

	assert.Equal(t, 0, NewStatic(nil).Definition().Len())
}
