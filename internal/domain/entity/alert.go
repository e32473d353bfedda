package entity

// AlertType identifies the condition an alert reports
type AlertType string

const (
	AlertLowFuel               AlertType = "low_fuel"
	AlertTraffic               AlertType = "traffic"
	AlertStationSearchDegraded AlertType = "station_search_degraded"
)

// Severity grades an alert
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is a notice attached to a route response
type Alert struct {
	AlertType   AlertType `json:"alert_type"`
	Message     string    `json:"message"`
	Severity    Severity  `json:"severity"`
	TriggerAtKm *float64  `json:"trigger_at_km"`
}
