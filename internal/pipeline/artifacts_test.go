package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nihei9/gramminer/internal/corpus"
	"github.com/nihei9/gramminer/internal/dtree"
	"github.com/nihei9/gramminer/internal/grammar"
)

func TestWriteGrammarRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "mined_g.json")

	g := grammar.Grammar{
		grammar.Start: {{"<a>", "x"}, {}},
		"<a>":         {{"y"}},
	}
	require.NoError(t, WriteGrammar(path, grammar.Start, g, "gramminer mine test", 7))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc GrammarDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Equal(t, grammar.Start, doc.Start)
	require.Equal(t, "gramminer mine test", doc.Command)
	require.Equal(t, 7, doc.NoTestedInputs)
	require.ElementsMatch(t, []string{"<a> x", ""}, doc.Grammar[grammar.Start])
	require.Equal(t, []string{"y"}, doc.Grammar["<a>"])
}

func TestWriteSeedTreesAndReadTreesRoundTrip(t *testing.T) {
	leaf1 := &dtree.Node{Name: "a", Start: 0, End: 1}
	leaf2 := &dtree.Node{Name: "b", Start: 1, End: 2}
	root := dtree.Internal("<scope_1>", []*dtree.Node{leaf1, leaf2})
	empty := dtree.Empty(0)

	seeds := []corpus.Seed{
		{Root: root, Arg: "first"},
		{Root: empty, Arg: "second"},
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "trees.json")
	require.NoError(t, WriteSeedTrees(path, seeds))

	got, err := ReadTrees(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, "first", got[0].Arg)
	require.Equal(t, "<scope_1>", got[0].Root.Name)
	require.Equal(t, string(root.Yield()), string(got[0].Root.Yield()))

	require.Equal(t, "second", got[1].Arg)
	require.True(t, got[1].Root.IsEmpty())
}
