package entity

// StationType is the closed set of station kinds searched along a route
type StationType string

const (
	// StationFuel maps to OSM amenity=fuel
	StationFuel StationType = "fuel"
	// StationCharging maps to OSM amenity=charging_station
	StationCharging StationType = "charging"
)

// UnknownStationName is used for stations without a name tag
const UnknownStationName = "Unknown Station"

// String returns the string representation of the StationType.
func (s StationType) String() string {
	return string(s)
}

// IsValid checks if the StationType is a valid value.
func (s StationType) IsValid() bool {
	return s == StationFuel || s == StationCharging
}

// Amenity returns the OSM amenity tag value of the station type.
func (s StationType) Amenity() string {
	if s == StationCharging {
		return "charging_station"
	}

	return "fuel"
}

// Station is a fuel or charging station found near a route.
type Station struct {
	Name                string      `json:"name"`
	Lat                 float64     `json:"lat"`
	Lon                 float64     `json:"lon"`
	DistanceFromRouteKm float64     `json:"distance_from_route_km"`
	StationType         StationType `json:"station_type"`
}
