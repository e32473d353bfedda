package loader

import (
	"bytes"
	"strings"
	"testing"

	"greenroute/internal/infra/routing/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadNodes(t *testing.T) {
	nodesCSV := `id,lat,lng,elevation
1,12.9716,77.5946,920.5
2,12.9000,77.4000,
3,12.2958,76.6394,763
`

	nodes, err := ReadNodes(strings.NewReader(nodesCSV))
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	assert.Equal(t, graph.NodeID(1), nodes[0].ID)
	assert.InDelta(t, 12.9716, nodes[0].Lat, 0.0001)
	assert.InDelta(t, 77.5946, nodes[0].Lng, 0.0001)
	require.True(t, nodes[0].HasElevation())
	assert.Equal(t, 920.5, *nodes[0].Elevation)

	assert.False(t, nodes[1].HasElevation())
	assert.Equal(t, 763.0, *nodes[2].Elevation)
}

func TestReadNodes_WithoutElevationColumn(t *testing.T) {
	nodes, err := ReadNodes(strings.NewReader("id,lat,lng\n7,12.5,77.1\n"))
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Nil(t, nodes[0].Elevation)
}

func TestReadNodes_InvalidRows(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{name: "too few columns", input: "id,lat,lng\n1,12.5\n", errMsg: "line 2"},
		{name: "bad id", input: "id,lat,lng\nabc,12.5,77.1\n", errMsg: "line 2"},
		{name: "bad elevation", input: "id,lat,lng,elevation\n1,12.5,77.1,high\n", errMsg: "line 2"},
		{name: "empty file", input: "", errMsg: "header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadNodes(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestReadEdges(t *testing.T) {
	edgesCSV := `from,to,length
1,2,120
1,2,95
2,3,2500.75
`

	edges, err := ReadEdges(strings.NewReader(edgesCSV))
	require.NoError(t, err)

	require.Len(t, edges, 3)
	assert.Equal(t, graph.NodeID(1), edges[0].From)
	assert.Equal(t, graph.NodeID(2), edges[0].To)
	assert.InDelta(t, 2500.75, edges[2].Length, 0.01)
}

func TestReadEdges_Invalid(t *testing.T) {
	_, err := ReadEdges(strings.NewReader("from,to,length\n1,2,far\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "edges.csv line 2")
}

func TestWriteNodesAndEdges(t *testing.T) {
	elevation := 880.0
	nodes := []graph.Node{
		{ID: 1, Lat: 12.9716, Lng: 77.5946, Elevation: &elevation},
		{ID: 2, Lat: 12.2958, Lng: 76.6394},
	}
	edges := []graph.Edge{{From: 1, To: 2, Length: 1234.567}}

	var nodesBuf, edgesBuf bytes.Buffer
	require.NoError(t, WriteNodes(&nodesBuf, nodes))
	require.NoError(t, WriteEdges(&edgesBuf, edges))

	assert.Equal(t, "id,lat,lng,elevation\n1,12.9716000,77.5946000,880\n2,12.2958000,76.6394000,\n", nodesBuf.String())
	assert.Equal(t, "from,to,length\n1,2,1234.57\n", edgesBuf.String())

	readNodes, err := ReadNodes(&nodesBuf)
	require.NoError(t, err)
	assert.Equal(t, 880.0, *readNodes[0].Elevation)
	assert.Nil(t, readNodes[1].Elevation)
}
