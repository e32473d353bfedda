package loader

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"greenroute/internal/errors"
	"greenroute/internal/infra/routing/graph"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

// DriveHighwayClasses are the highway values routable by car
var DriveHighwayClasses = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"road":           true,
}

type wayDirection int

const (
	bothWays wayDirection = iota
	forwardOnly
	backwardOnly
)

// Network is a drive network extracted from OSM data
type Network struct {
	Nodes          []graph.Node
	Edges          []graph.Edge
	WaysUsed       int
	MissingNodes   int
	HighwayClasses []string
}

// NodesWithElevation counts the nodes carrying an elevation value
func (n *Network) NodesWithElevation() int64 {
	var count int64
	for _, node := range n.Nodes {
		if node.HasElevation() {
			count++
		}
	}

	return count
}

// PBFSource builds region graphs from an .osm.pbf extract
type PBFSource struct {
	path       string
	cellSizeKm float64
	logger     *slog.Logger
}

// NewPBFSource creates a source reading the given .osm.pbf file
func NewPBFSource(path string, cellSizeKm float64, logger *slog.Logger) *PBFSource {
	return &PBFSource{
		path:       strings.TrimPrefix(path, "file://"),
		cellSizeKm: cellSizeKm,
		logger:     logger,
	}
}

// Load extracts the drive network and builds the region graph
func (s *PBFSource) Load(ctx context.Context, region string) (*graph.Graph, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, errors.Wrapf(ErrGraphLoad, "open %s: %v", s.path, err)
	}
	defer file.Close()

	network, err := ExtractDriveNetwork(ctx, file)
	if err != nil {
		return nil, errors.Wrapf(ErrGraphLoad, "extract %s: %v", s.path, err)
	}

	if network.MissingNodes > 0 {
		s.logger.Warn("Ways reference nodes outside the extract",
			slog.String("region", region),
			slog.Int("missing_nodes", network.MissingNodes),
		)
	}

	g, err := graph.New(region, network.Nodes, network.Edges, s.cellSizeKm)
	if err != nil {
		return nil, errors.Wrapf(ErrGraphLoad, "build graph: %v", err)
	}

	return g, nil
}

// ExtractDriveNetwork reads an OSM PBF stream twice: ways first to learn which
// nodes are routable, then nodes for their coordinates.
func ExtractDriveNetwork(ctx context.Context, r io.ReadSeeker) (*Network, error) {
	ways, classes, err := scanDriveWays(ctx, r)
	if err != nil {
		return nil, err
	}

	needed := make(map[osm.NodeID]struct{})
	for _, way := range ways {
		for _, wayNode := range way.Nodes {
			needed[wayNode.ID] = struct{}{}
		}
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, errors.WithStack(err)
	}

	coords, err := scanNodes(ctx, r, needed)
	if err != nil {
		return nil, err
	}

	return buildNetwork(ways, coords, classes), nil
}

func scanDriveWays(ctx context.Context, r io.Reader) ([]*osm.Way, []string, error) {
	scanner := osmpbf.New(ctx, r, runtime.GOMAXPROCS(0))
	defer scanner.Close()

	scanner.SkipNodes = true
	scanner.SkipRelations = true

	var ways []*osm.Way
	classes := make(map[string]struct{})

	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok || !isDrivable(way.Tags) {
			continue
		}

		ways = append(ways, way)
		classes[way.Tags.Find("highway")] = struct{}{}
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "scan ways")
	}

	names := make([]string, 0, len(classes))
	for class := range classes {
		names = append(names, class)
	}
	sort.Strings(names)

	return ways, names, nil
}

func scanNodes(ctx context.Context, r io.Reader, needed map[osm.NodeID]struct{}) (map[osm.NodeID]graph.Node, error) {
	scanner := osmpbf.New(ctx, r, runtime.GOMAXPROCS(0))
	defer scanner.Close()

	scanner.SkipWays = true
	scanner.SkipRelations = true

	coords := make(map[osm.NodeID]graph.Node, len(needed))

	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, want := needed[node.ID]; !want {
			continue
		}

		coords[node.ID] = graph.Node{
			ID:        graph.NodeID(node.ID),
			Lat:       node.Lat,
			Lng:       node.Lon,
			Elevation: parseElevation(node.Tags.Find("ele")),
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan nodes")
	}

	return coords, nil
}

func buildNetwork(ways []*osm.Way, coords map[osm.NodeID]graph.Node, classes []string) *Network {
	network := &Network{HighwayClasses: classes}
	used := make(map[osm.NodeID]struct{})
	missing := make(map[osm.NodeID]struct{})

	for _, way := range ways {
		direction := onewayDirection(way.Tags)
		segments := 0

		for i := 1; i < len(way.Nodes); i++ {
			from, okFrom := coords[way.Nodes[i-1].ID]
			to, okTo := coords[way.Nodes[i].ID]
			if !okFrom {
				missing[way.Nodes[i-1].ID] = struct{}{}
			}
			if !okTo {
				missing[way.Nodes[i].ID] = struct{}{}
			}
			if !okFrom || !okTo || from.ID == to.ID {
				continue
			}

			length := geo.Distance(orb.Point{from.Lng, from.Lat}, orb.Point{to.Lng, to.Lat})
			if direction != backwardOnly {
				network.Edges = append(network.Edges, graph.Edge{From: from.ID, To: to.ID, Length: length})
			}
			if direction != forwardOnly {
				network.Edges = append(network.Edges, graph.Edge{From: to.ID, To: from.ID, Length: length})
			}

			used[way.Nodes[i-1].ID] = struct{}{}
			used[way.Nodes[i].ID] = struct{}{}
			segments++
		}

		if segments > 0 {
			network.WaysUsed++
		}
	}

	network.Nodes = make([]graph.Node, 0, len(used))
	for id := range used {
		network.Nodes = append(network.Nodes, coords[id])
	}
	sort.Slice(network.Nodes, func(i, j int) bool {
		return network.Nodes[i].ID < network.Nodes[j].ID
	})
	network.MissingNodes = len(missing)

	return network
}

func isDrivable(tags osm.Tags) bool {
	if !DriveHighwayClasses[tags.Find("highway")] {
		return false
	}

	if tags.Find("area") == "yes" {
		return false
	}

	for _, key := range []string{"access", "motor_vehicle", "motorcar"} {
		switch tags.Find(key) {
		case "no", "private":
			return false
		}
	}

	return true
}

func onewayDirection(tags osm.Tags) wayDirection {
	switch tags.Find("oneway") {
	case "yes", "true", "1":
		return forwardOnly
	case "-1", "reverse":
		return backwardOnly
	case "no", "false", "0":
		return bothWays
	}

	if tags.Find("junction") == "roundabout" || tags.Find("highway") == "motorway" {
		return forwardOnly
	}

	return bothWays
}

func parseElevation(value string) *float64 {
	value = strings.TrimSuffix(strings.TrimSpace(value), "m")
	if value == "" {
		return nil
	}

	elevation, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return nil
	}

	return &elevation
}
