package hgraphio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/micropuma/mt-kahypar-leon/codecs"
	"github.com/micropuma/mt-kahypar-leon/hgraphio"
	"github.com/micropuma/mt-kahypar-leon/hypergraph"
)

func idSlice(ids []hypergraph.HypernodeID) []int {
	var out = make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}

func TestReadHypergraphParsesUnweightedFormat(t *testing.T) {
	var dir = t.TempDir()
	var path = filepath.Join(dir, "test.hgr")
	writeFile(t, path, "3 4\n1 2\n2 3 4\n1 4\n")

	var g, err = hgraphio.ReadHypergraph(path)
	require.NoError(t, err)
	require.Equal(t, 4, g.NumNodes())
	require.Equal(t, 3, g.NumEdges())
	require.ElementsMatch(t, []int{0, 1}, idSlice(g.Pins(0)))
	require.ElementsMatch(t, []int{1, 2, 3}, idSlice(g.Pins(1)))
	require.ElementsMatch(t, []int{0, 3}, idSlice(g.Pins(2)))
}

func TestReadHypergraphParsesWeightedEdgesAndNodes(t *testing.T) {
	var dir = t.TempDir()
	var path = filepath.Join(dir, "weighted.hgr")
	writeFile(t, path, "2 3 3\n5 1 2\n7 2 3\n10\n20\n30\n")

	var g, err = hgraphio.ReadHypergraph(path)
	require.NoError(t, err)
	require.Equal(t, int64(5), int64(g.EdgeWeight(0)))
	require.Equal(t, int64(7), int64(g.EdgeWeight(1)))
	require.Equal(t, int64(10), int64(g.NodeWeight(0)))
	require.Equal(t, int64(30), int64(g.NodeWeight(2)))
}

func TestReadHypergraphRejectsOutOfRangePin(t *testing.T) {
	var dir = t.TempDir()
	var path = filepath.Join(dir, "bad.hgr")
	writeFile(t, path, "1 2\n1 5\n")

	var _, err = hgraphio.ReadHypergraph(path)
	require.Error(t, err)
}

func TestWriteReadPartitionRoundTrip(t *testing.T) {
	for _, codec := range []codecs.CompressionCodec{codecs.None, codecs.Gzip, codecs.Snappy, codecs.Zstandard} {
		var dir = t.TempDir()
		var path = filepath.Join(dir, "out.part")
		var original = []int32{0, 1, 2, 0, 1}

		require.NoError(t, hgraphio.WritePartition(path, original, codec))
		var roundTripped, err = hgraphio.ReadPartition(path, codec)
		require.NoError(t, err)
		require.Equal(t, original, roundTripped)
	}
}

func TestPartitionFileNameAddsCodecSuffix(t *testing.T) {
	require.Equal(t, "foo.hgr.part4.epsilon0.03.seed1.KaHyPar",
		hgraphio.PartitionFileName("foo.hgr", 4, 0.03, 1, codecs.None))
	require.Equal(t, "foo.hgr.part4.epsilon0.03.seed1.KaHyPar.gz",
		hgraphio.PartitionFileName("foo.hgr", 4, 0.03, 1, codecs.Gzip))
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}
