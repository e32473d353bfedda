package loader

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"greenroute/internal/errors"
	"greenroute/internal/infra/routing/graph"
)

// File names of a region's road network inside a bucket prefix
const (
	NodesFile    = "nodes.csv"
	EdgesFile    = "edges.csv"
	MetadataFile = "metadata.json"
)

var (
	nodesHeader = []string{"id", "lat", "lng", "elevation"}
	edgesHeader = []string{"from", "to", "length"}
)

// ReadNodes parses nodes.csv
// Expected CSV format: id,lat,lng,elevation (elevation may be empty)
func ReadNodes(r io.Reader) ([]graph.Node, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Skip header row
	if _, err := reader.Read(); err != nil {
		return nil, errors.Wrap(err, "read nodes.csv header")
	}

	var nodes []graph.Node
	lineNum := 1 // Start at 1 because we skipped header

	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, errors.WithStack(readErr)
		}
		lineNum++

		if len(record) < 3 {
			return nil, errors.Errorf("invalid nodes.csv format at line %d: expected at least 3 columns, got %d", lineNum, len(record))
		}

		node, parseErr := parseNode(record)
		if parseErr != nil {
			return nil, errors.Wrapf(parseErr, "nodes.csv line %d", lineNum)
		}

		nodes = append(nodes, node)
	}

	return nodes, nil
}

// ReadEdges parses edges.csv
// Expected CSV format: from,to,length
func ReadEdges(r io.Reader) ([]graph.Edge, error) {
	reader := csv.NewReader(r)

	if _, err := reader.Read(); err != nil {
		return nil, errors.Wrap(err, "read edges.csv header")
	}

	var edges []graph.Edge
	lineNum := 1

	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, errors.WithStack(readErr)
		}
		lineNum++

		if len(record) < 3 {
			return nil, errors.Errorf("invalid edges.csv format at line %d: expected 3 columns, got %d", lineNum, len(record))
		}

		edge, parseErr := parseEdge(record)
		if parseErr != nil {
			return nil, errors.Wrapf(parseErr, "edges.csv line %d", lineNum)
		}

		edges = append(edges, edge)
	}

	return edges, nil
}

// WriteNodes writes nodes in the nodes.csv format
func WriteNodes(w io.Writer, nodes []graph.Node) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(nodesHeader); err != nil {
		return errors.WithStack(err)
	}

	for _, node := range nodes {
		elevation := ""
		if node.HasElevation() {
			elevation = strconv.FormatFloat(*node.Elevation, 'f', -1, 64)
		}

		record := []string{
			strconv.FormatInt(int64(node.ID), 10),
			strconv.FormatFloat(node.Lat, 'f', 7, 64),
			strconv.FormatFloat(node.Lng, 'f', 7, 64),
			elevation,
		}
		if err := writer.Write(record); err != nil {
			return errors.WithStack(err)
		}
	}

	writer.Flush()

	return errors.WithStack(writer.Error())
}

// WriteEdges writes edges in the edges.csv format
func WriteEdges(w io.Writer, edges []graph.Edge) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(edgesHeader); err != nil {
		return errors.WithStack(err)
	}

	for _, edge := range edges {
		record := []string{
			strconv.FormatInt(int64(edge.From), 10),
			strconv.FormatInt(int64(edge.To), 10),
			strconv.FormatFloat(edge.Length, 'f', 2, 64),
		}
		if err := writer.Write(record); err != nil {
			return errors.WithStack(err)
		}
	}

	writer.Flush()

	return errors.WithStack(writer.Error())
}

func parseNode(record []string) (graph.Node, error) {
	nodeID, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return graph.Node{}, errors.WithStack(err)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return graph.Node{}, errors.WithStack(err)
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return graph.Node{}, errors.WithStack(err)
	}

	node := graph.Node{
		ID:  graph.NodeID(nodeID),
		Lat: lat,
		Lng: lng,
	}

	if len(record) > 3 && strings.TrimSpace(record[3]) != "" {
		elevation, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
		if err != nil {
			return graph.Node{}, errors.WithStack(err)
		}
		node.Elevation = &elevation
	}

	return node, nil
}

func parseEdge(record []string) (graph.Edge, error) {
	from, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return graph.Edge{}, errors.WithStack(err)
	}

	toNode, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
	if err != nil {
		return graph.Edge{}, errors.WithStack(err)
	}

	length, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return graph.Edge{}, errors.WithStack(err)
	}

	return graph.Edge{
		From:   graph.NodeID(from),
		To:     graph.NodeID(toNode),
		Length: length,
	}, nil
}
