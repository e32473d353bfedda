package main

import (
	"sort"
	"strings"
)

const defaultExtract = "southern-zone"

// Extract is a downloadable OSM extract
type Extract struct {
	Name        string
	URL         string
	Filename    string
	Description string
}

var supportedExtracts = map[string]Extract{
	"southern-zone": {
		Name:        "India Southern Zone",
		URL:         "https://download.geofabrik.de/asia/india/southern-zone-latest.osm.pbf",
		Filename:    "southern-zone-latest.osm.pbf",
		Description: "Karnataka, Kerala, Tamil Nadu, Andhra Pradesh and Telangana",
	},
	"india": {
		Name:        "India",
		URL:         "https://download.geofabrik.de/asia/india-latest.osm.pbf",
		Filename:    "india-latest.osm.pbf",
		Description: "Whole country (~1.5 GB)",
	},
}

func lookupExtract(name string) (Extract, bool) {
	extract, ok := supportedExtracts[name]

	return extract, ok
}

func extractNames() string {
	names := make([]string, 0, len(supportedExtracts))
	for name := range supportedExtracts {
		names = append(names, name)
	}
	sort.Strings(names)

	return strings.Join(names, ", ")
}
