// Package entity contains the core business objects of the project.
package entity

import "strings"

// VehicleType is the kind of vehicle a route is planned for
type VehicleType string

const (
	VehicleBike    VehicleType = "bike"
	VehicleVan     VehicleType = "van"
	VehicleTruck   VehicleType = "truck"
	VehicleEVBike  VehicleType = "ev_bike"
	VehicleEVVan   VehicleType = "ev_van"
	VehicleEVTruck VehicleType = "ev_truck"
)

// String returns the string representation of the VehicleType.
func (v VehicleType) String() string {
	return string(v)
}

// IsValid checks if the VehicleType is a valid value.
func (v VehicleType) IsValid() bool {
	switch v {
	case VehicleBike, VehicleVan, VehicleTruck, VehicleEVBike, VehicleEVVan, VehicleEVTruck:
		return true
	default:
		return false
	}
}

// IsElectric reports whether the vehicle charges instead of refuelling.
func (v VehicleType) IsElectric() bool {
	return strings.HasPrefix(string(v), "ev_")
}

// StationType returns the kind of station the vehicle needs.
func (v VehicleType) StationType() StationType {
	if v.IsElectric() {
		return StationCharging
	}

	return StationFuel
}

// RouteMode selects which route variants are computed
type RouteMode string

const (
	RouteModeFastest RouteMode = "fastest"
	RouteModeGreen   RouteMode = "green"
	RouteModeBoth    RouteMode = "both"
)

// String returns the string representation of the RouteMode.
func (m RouteMode) String() string {
	return string(m)
}

// IsValid checks if the RouteMode is a valid value.
func (m RouteMode) IsValid() bool {
	switch m {
	case RouteModeFastest, RouteModeGreen, RouteModeBoth:
		return true
	default:
		return false
	}
}

// IncludesFastest reports whether the fastest route is requested.
func (m RouteMode) IncludesFastest() bool {
	return m == RouteModeFastest || m == RouteModeBoth
}

// IncludesGreen reports whether the green route is requested.
func (m RouteMode) IncludesGreen() bool {
	return m == RouteModeGreen || m == RouteModeBoth
}
