package phrase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"voxterm/internal/catalog"
)

const testCatalogSource = `{
	"file_operations": {
		"ls -la": ["list files", "show files", "list all files"],
		"mkdir {name}": ["create folder", "make directory"]
	},
	"git": {
		"git status": ["git status", "check status"]
	},
	"network": {
		"ss -tulpn": ["check status"]
	},
	"conversational": ["okay", "thanks", "never mind"]
}`

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	cat, err := catalog.Parse(testCatalogSource)
	require.NoError(t, err)
	return NewResolver(cat)
}

func TestResolveCommand(t *testing.T) {
	r := testResolver(t)

	u := r.Resolve("list all files")

	require.Equal(t, Command, u.Kind)
	require.Equal(t, "ls -la", u.Command)
	require.Equal(t, "file_operations", u.Category)
}

func TestResolveCommandWithParameter(t *testing.T) {
	r := testResolver(t)

	u := r.Resolve("create folder called myproject please")

	require.Equal(t, Command, u.Kind)
	require.Equal(t, "mkdir myproject", u.Command)
	require.Equal(t, "myproject", u.Param)
}

func TestResolveIncompleteParameter(t *testing.T) {
	r := testResolver(t)

	u := r.Resolve("create folder")

	require.Equal(t, Incomplete, u.Kind)
	require.Equal(t, "name", u.Missing)
}

func TestResolveSessionControl(t *testing.T) {
	r := testResolver(t)

	cases := map[string]Action{
		"go to sleep":    ActionSleep,
		"Stop listening": ActionSleep,
		"keep going":     ActionContinue,
		"exit":           ActionExit,
		"goodbye":        ActionExit,
	}
	for text, want := range cases {
		u := r.Resolve(text)
		require.Equal(t, SessionControl, u.Kind, text)
		require.Equal(t, want, u.Action, text)
	}
}

func TestResolveConversational(t *testing.T) {
	r := testResolver(t)

	u := r.Resolve("okay thanks")

	require.Equal(t, Conversational, u.Kind)
}

func TestResolveUnknown(t *testing.T) {
	r := testResolver(t)

	require.Equal(t, Unknown, r.Resolve("make me a sandwich").Kind)
	require.Equal(t, Unknown, r.Resolve("").Kind)
}

func TestResolveCrossCategoryTie(t *testing.T) {
	r := testResolver(t)

	u := r.Resolve("check status")

	require.Equal(t, Ambiguous, u.Kind)
	require.Len(t, u.Choices, 2)
	require.Contains(t, u.Choices, "git status")
	require.Contains(t, u.Choices, "ss -tulpn")
}

func TestResolveSameCategoryTieUsesDeclarationOrder(t *testing.T) {
	source := `{
		"file_operations": {
			"ls -la": ["show contents"],
			"cat notes.txt": ["show contents"]
		}
	}`
	cat, err := catalog.Parse(source)
	require.NoError(t, err)
	r := NewResolver(cat)

	u := r.Resolve("show contents")

	require.Equal(t, Command, u.Kind)
	require.Equal(t, "ls -la", u.Command)
}
