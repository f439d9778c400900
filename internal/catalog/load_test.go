package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRejectsMalformedSource(t *testing.T) {
	cases := map[string]string{
		"not an object":     `["list files"]`,
		"truncated":         `{"git": {"git status": ["check`,
		"phrase not a list": `{"git": {"git status": "check status"}}`,
		"no templates":      `{"conversational": ["hello"]}`,
		"empty phrase list": `{"git": {"git status": []}}`,
		"two placeholders":  `{"files": {"cp {a} {b}": ["copy"]}}`,
		"blank phrase":      `{"git": {"git status": ["   "]}}`,
	}

	for name, source := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(source)
			require.Error(t, err)
		})
	}
}

func TestParseAllowsCommentsAndTrailingCommas(t *testing.T) {
	c, err := Parse(`{
  // git helpers
  "git": {
    "git status": ["git status",],
  },
}`)
	require.NoError(t, err)
	require.Len(t, c.Templates(), 1)
}

func TestLoadMissingFileFallsBackToDefault(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.jsonc"))
	require.NoError(t, err)
	require.NotEmpty(t, c.Templates())
}

func TestLoadReadsCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "git": {"git status": ["git status"]}
}`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	require.Len(t, c.Templates(), 1)
	require.Equal(t, "git", c.Templates()[0].Category)
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{"git": [1,2,3]}`), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestDefaultCatalogParses(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	require.NotEmpty(t, c.Templates())
	require.True(t, c.IsFiller("thank you"))

	candidates := c.Lookup("list all files")
	require.NotEmpty(t, candidates)
	require.Equal(t, "ls -la", candidates[0].Template.Command)
}
