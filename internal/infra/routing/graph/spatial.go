package graph

import (
	"math"
)

const (
	kmPerDegreeLat = 111.32

	// Beyond this many cells outside the indexed bounding box a linear scan is
	// cheaper than walking empty rings.
	maxRingsOutsideBounds = 64
)

// GridIndex implements a grid-based spatial index over graph nodes
type GridIndex struct {
	nodes       []Node
	grid        map[gridKey][]int // maps grid cell to node slots
	cellSizeKm  float64
	cellSizeLat float64 // grid cell size in latitude degrees
	cellSizeLng float64 // grid cell size in longitude degrees
	minCellKm   float64 // smallest ground width of a cell anywhere in the box
	minLat      float64
	maxLat      float64
	minLng      float64
	maxLng      float64
	latCells    int
	lngCells    int
}

type gridKey struct {
	latCell int
	lngCell int
}

// NewGridIndex creates a new grid-based spatial index.
// cellSizeKm determines the grid cell size (smaller = more cells, faster lookup but more memory)
func NewGridIndex(cellSizeKm float64) *GridIndex {
	return &GridIndex{
		grid:       make(map[gridKey][]int),
		cellSizeKm: cellSizeKm,
	}
}

// Build constructs the grid index from nodes
func (g *GridIndex) Build(nodes []Node) {
	g.nodes = nodes
	g.grid = make(map[gridKey][]int)

	if len(nodes) == 0 {
		return
	}

	g.minLat, g.maxLat = nodes[0].Lat, nodes[0].Lat
	g.minLng, g.maxLng = nodes[0].Lng, nodes[0].Lng

	for _, node := range nodes {
		g.minLat = math.Min(g.minLat, node.Lat)
		g.maxLat = math.Max(g.maxLat, node.Lat)
		g.minLng = math.Min(g.minLng, node.Lng)
		g.maxLng = math.Max(g.maxLng, node.Lng)
	}

	// Longitude degrees shrink with latitude; size cells for the box center and
	// keep the narrowest ground width for the search bound.
	midLatRad := (g.minLat + g.maxLat) / 2 * math.Pi / 180
	cosMid := math.Max(math.Cos(midLatRad), 0.01)
	g.cellSizeLat = g.cellSizeKm / kmPerDegreeLat
	g.cellSizeLng = g.cellSizeKm / (kmPerDegreeLat * cosMid)

	maxAbsLatRad := math.Max(math.Abs(g.minLat), math.Abs(g.maxLat)) * math.Pi / 180
	lngCellKm := g.cellSizeLng * kmPerDegreeLat * math.Max(math.Cos(maxAbsLatRad), 0.01)
	g.minCellKm = math.Min(g.cellSizeKm, lngCellKm)

	g.latCells = int(math.Ceil((g.maxLat - g.minLat) / g.cellSizeLat))
	g.lngCells = int(math.Ceil((g.maxLng - g.minLng) / g.cellSizeLng))

	for idx, node := range nodes {
		key := g.getGridKey(node.Lat, node.Lng)
		g.grid[key] = append(g.grid[key], idx)
	}
}

// Size returns the number of nodes in the index
func (g *GridIndex) Size() int {
	return len(g.nodes)
}

// Nearest finds the node closest to the given coordinate. It returns the node
// slot, the haversine distance in meters and false when the index is empty.
func (g *GridIndex) Nearest(lat, lng float64) (int, float64, bool) {
	if len(g.nodes) == 0 {
		return -1, 0, false
	}

	key := g.getGridKey(lat, lng)
	if g.ringsOutsideBounds(key) > maxRingsOutsideBounds {
		return g.linearNearest(lat, lng)
	}

	bestIdx := -1
	bestDist := math.MaxFloat64
	maxRing := g.maxSearchRing(key)

	for ring := 0; ring <= maxRing; ring++ {
		g.searchRing(lat, lng, key, ring, &bestIdx, &bestDist)

		// Every node not yet examined sits at least `ring` full cells away.
		// The 0.95 factor absorbs the planar approximation of cell widths.
		if bestIdx >= 0 && float64(ring)*g.minCellKm*1000*0.95 >= bestDist {
			break
		}
	}

	if bestIdx < 0 {
		return g.linearNearest(lat, lng)
	}

	return bestIdx, bestDist, true
}

func (g *GridIndex) linearNearest(lat, lng float64) (int, float64, bool) {
	bestIdx := -1
	bestDist := math.MaxFloat64

	for idx, node := range g.nodes {
		dist := HaversineMeters(lat, lng, node.Lat, node.Lng)
		if dist < bestDist {
			bestDist = dist
			bestIdx = idx
		}
	}

	return bestIdx, bestDist, bestIdx >= 0
}

func (g *GridIndex) getGridKey(lat, lng float64) gridKey {
	latCell := int(math.Floor((lat - g.minLat) / g.cellSizeLat))
	lngCell := int(math.Floor((lng - g.minLng) / g.cellSizeLng))

	return gridKey{latCell: latCell, lngCell: lngCell}
}

// ringsOutsideBounds returns how many cells the key lies outside the indexed box
func (g *GridIndex) ringsOutsideBounds(key gridKey) int {
	outside := 0
	if key.latCell < 0 {
		outside = max(outside, -key.latCell)
	}
	if key.latCell > g.latCells {
		outside = max(outside, key.latCell-g.latCells)
	}
	if key.lngCell < 0 {
		outside = max(outside, -key.lngCell)
	}
	if key.lngCell > g.lngCells {
		outside = max(outside, key.lngCell-g.lngCells)
	}

	return outside
}

// maxSearchRing returns the ring count needed to cover the whole box from key
func (g *GridIndex) maxSearchRing(key gridKey) int {
	return max(
		abs(key.latCell),
		abs(key.latCell-g.latCells),
		abs(key.lngCell),
		abs(key.lngCell-g.lngCells),
	) + 1
}

func (g *GridIndex) searchRing(lat, lng float64, centerKey gridKey, ring int, bestIdx *int, bestDist *float64) {
	if ring == 0 {
		g.searchCell(lat, lng, centerKey, bestIdx, bestDist)

		return
	}

	// Only the perimeter of the ring is new
	for dLat := -ring; dLat <= ring; dLat++ {
		for dLng := -ring; dLng <= ring; dLng++ {
			if abs(dLat) != ring && abs(dLng) != ring {
				continue
			}

			cellKey := gridKey{
				latCell: centerKey.latCell + dLat,
				lngCell: centerKey.lngCell + dLng,
			}
			g.searchCell(lat, lng, cellKey, bestIdx, bestDist)
		}
	}
}

func (g *GridIndex) searchCell(lat, lng float64, key gridKey, bestIdx *int, bestDist *float64) {
	indices, exists := g.grid[key]
	if !exists {
		return
	}

	for _, idx := range indices {
		node := g.nodes[idx]
		dist := HaversineMeters(lat, lng, node.Lat, node.Lng)
		if dist < *bestDist {
			*bestDist = dist
			*bestIdx = idx
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
