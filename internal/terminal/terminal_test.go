package terminal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescriptorDisplayNamePrefersAlias(t *testing.T) {
	d := Descriptor{ID: "tmux:main:1", Name: "terminal 1", App: "tmux", Ordinal: 1}
	require.Equal(t, "terminal 1", d.DisplayName())

	d.Alias = "frontend"
	require.Equal(t, "frontend", d.DisplayName())
}

func TestDescriptorMatchesName(t *testing.T) {
	d := Descriptor{ID: "tmux:main:2", Name: "terminal 2", App: "tmux", Ordinal: 2, Alias: "backend"}

	require.True(t, d.MatchesName("backend"))
	require.True(t, d.MatchesName("Terminal 2"))
	require.True(t, d.MatchesName("tmux 2"))
	require.True(t, d.MatchesName("tmux"))
	require.False(t, d.MatchesName("terminal 3"))
	require.False(t, d.MatchesName(""))
}

func TestAliasStoreSetResolve(t *testing.T) {
	store := NewAliasStore()

	store.Set("tmux:main:1", "Frontend")
	id, ok := store.Resolve("frontend")
	require.True(t, ok)
	require.Equal(t, "tmux:main:1", id)

	alias, ok := store.AliasFor("tmux:main:1")
	require.True(t, ok)
	require.Equal(t, "frontend", alias)
}

func TestAliasReassignmentSupersedes(t *testing.T) {
	store := NewAliasStore()

	store.Set("tmux:main:1", "work")
	store.Set("tmux:main:1", "play")

	_, ok := store.Resolve("work")
	require.False(t, ok)
	id, ok := store.Resolve("play")
	require.True(t, ok)
	require.Equal(t, "tmux:main:1", id)
}

func TestAliasStealingReleasesPriorHolder(t *testing.T) {
	store := NewAliasStore()

	store.Set("tmux:main:1", "work")
	store.Set("tmux:main:2", "work")

	id, ok := store.Resolve("work")
	require.True(t, ok)
	require.Equal(t, "tmux:main:2", id)

	_, ok = store.AliasFor("tmux:main:1")
	require.False(t, ok)
}

func TestAliasStoreRemove(t *testing.T) {
	store := NewAliasStore()
	store.Set("tmux:main:1", "work")

	require.True(t, store.Remove("work"))
	require.False(t, store.Remove("work"))
	_, ok := store.Resolve("work")
	require.False(t, ok)
}

func TestAliasApplyDecoratesSnapshot(t *testing.T) {
	store := NewAliasStore()
	store.Set("tmux:main:1", "frontend")

	snapshot := []Descriptor{
		{ID: "tmux:main:1", Name: "terminal 1"},
		{ID: "tmux:main:2", Name: "terminal 2"},
	}
	decorated := store.Apply(snapshot)

	require.Equal(t, "frontend", decorated[0].Alias)
	require.Empty(t, decorated[1].Alias)
	// the input snapshot stays untouched
	require.Empty(t, snapshot[0].Alias)
}

func TestWindowDisplayName(t *testing.T) {
	require.Equal(t, "terminal 1", windowDisplayName("zsh", 1))
	require.Equal(t, "terminal 3", windowDisplayName("", 3))
	require.Equal(t, "frontend", windowDisplayName("frontend", 2))
}

func TestPaneTarget(t *testing.T) {
	target, ok := PaneTarget("tmux:main:1")
	require.True(t, ok)
	require.Equal(t, "main:1", target)

	_, ok = PaneTarget("local")
	require.False(t, ok)
}
