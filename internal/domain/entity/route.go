package entity

// RouteType tags a computed route variant
type RouteType string

const (
	RouteTypeFastest RouteType = "fastest"
	RouteTypeGreen   RouteType = "green"
)

// RoutePoint is one polyline coordinate. Elevation is nil when unknown.
type RoutePoint struct {
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Elevation *float64 `json:"elevation"`
}

// RouteMetrics holds the aggregate figures of a route.
// FuelConsumption, CostEstimate, CarbonEmissionKg and IdleTimeMin are never computed.
type RouteMetrics struct {
	DistanceKm       float64  `json:"distance_km"`
	EstimatedTimeMin float64  `json:"estimated_time_min"`
	FuelConsumption  *float64 `json:"fuel_consumption"`
	CostEstimate     *float64 `json:"cost_estimate"`
	CarbonEmissionKg *float64 `json:"carbon_emission_kg"`
	ElevationGainM   *float64 `json:"elevation_gain_m"`
	IdleTimeMin      *float64 `json:"idle_time_min"`

	// Green cost breakdown; zero for the fastest route
	DistanceMeters   float64 `json:"distance_m"`
	ElevationPenalty float64 `json:"elevation_penalty,omitempty"`
	IdlePenalty      float64 `json:"idle_penalty,omitempty"`
	GreenCost        float64 `json:"green_cost,omitempty"`
}

// Route is one computed route variant
type Route struct {
	RouteType RouteType    `json:"route_type"`
	Polyline  []RoutePoint `json:"polyline"`
	Metrics   RouteMetrics `json:"metrics"`
}

// Savings compares the green route against the fastest route
type Savings struct {
	FastestDistanceKm    float64 `json:"fastest_distance_km"`
	GreenDistanceKm      float64 `json:"green_distance_km"`
	GreenCost            float64 `json:"green_cost"`
	EcoFriendly          bool    `json:"eco_friendly"`
	DistanceDifferenceKm float64 `json:"distance_difference_km"`
	TimeDifferenceMin    float64 `json:"time_difference_min"`
}
