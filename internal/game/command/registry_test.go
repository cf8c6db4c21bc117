package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Len(t, r.Commands(), len(BuiltinCommands()))
}

func TestResolve_CanonicalAndAlias(t *testing.T) {
	r := DefaultRegistry()
	tests := []struct {
		input   string
		handler string
	}{
		{"create", HandlerCreate},
		{"new", HandlerCreate},
		{"sh", HandlerSheet},
		{"SHEET", HandlerSheet},
		{"setbase", HandlerSet},
		{"who", HandlerUnits},
		{"wear", HandlerEquip},
		{"remove", HandlerUnequip},
		{"inv", HandlerItems},
		{"cat", HandlerCatalog},
		{"summon", HandlerEnemy},
		{"saved", HandlerSaved},
		{"?", HandlerHelp},
		{"exit", HandlerQuit},
	}
	for _, tt := range tests {
		cmd, ok := r.Resolve(tt.input)
		require.True(t, ok, "input %q not found", tt.input)
		assert.Equal(t, tt.handler, cmd.Handler, "input %q wrong handler", tt.input)
	}
}

func TestResolve_NotFound(t *testing.T) {
	_, ok := DefaultRegistry().Resolve("north")
	assert.False(t, ok)
}

func TestNewRegistry_Collisions(t *testing.T) {
	cases := map[string][]Command{
		"duplicate command name": {{Name: "a", Handler: "x"}, {Name: "a", Handler: "y"}},
		"duplicate alias":        {{Name: "a", Aliases: []string{"t"}, Handler: "x"}, {Name: "b", Aliases: []string{"t"}, Handler: "y"}},
		"conflicts with command": {{Name: "a", Handler: "x"}, {Name: "b", Aliases: []string{"a"}, Handler: "y"}},
		"conflicts with an existing alias": {{Name: "a", Aliases: []string{"b"}, Handler: "x"}, {Name: "b", Handler: "y"}},
		"required":               {{Name: "a"}},
	}
	for want, cmds := range cases {
		t.Run(want, func(t *testing.T) {
			_, err := NewRegistry(cmds)
			require.Error(t, err)
			assert.Contains(t, err.Error(), want)
		})
	}
}

func TestCommandsByCategory(t *testing.T) {
	cats := DefaultRegistry().CommandsByCategory()
	for _, c := range Categories() {
		assert.NotEmpty(t, cats[c], c)
	}
	assert.Len(t, cats, len(Categories()), "every command uses a listed category")
	storage := cats[CategoryStorage]
	require.Len(t, storage, 3)
	assert.Equal(t, "load", storage[0].Name)
}

func TestPropertyAllAliasesResolveToCanonical(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := DefaultRegistry()
		cmds := r.Commands()
		cmd := cmds[rapid.IntRange(0, len(cmds)-1).Draw(t, "cmd_idx")]

		resolved, ok := r.Resolve(cmd.Name)
		if !ok || resolved.Name != cmd.Name {
			t.Fatalf("canonical name %q did not resolve to itself", cmd.Name)
		}
		for _, alias := range cmd.Aliases {
			aliasResolved, ok := r.Resolve(alias)
			if !ok {
				t.Fatalf("alias %q did not resolve", alias)
			}
			if aliasResolved.Name != cmd.Name {
				t.Fatalf("alias %q resolved to %q, expected %q", alias, aliasResolved.Name, cmd.Name)
			}
		}
	})
}
