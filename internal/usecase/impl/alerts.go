package impl

import (
	"fmt"

	"greenroute/config"
	"greenroute/internal/domain/entity"
)

// BuildAlerts derives the notices attached to a route response from the
// request and the station search outcome
func BuildAlerts(cfg *config.AlertsConfig, fuelLevel *float64, trafficFactor float64, stations StationSearchResult) []entity.Alert {
	alerts := make([]entity.Alert, 0)

	if fuelLevel != nil && *fuelLevel < cfg.LowFuelPercent {
		alert := entity.Alert{
			AlertType: entity.AlertLowFuel,
			Severity:  entity.SeverityWarning,
			Message:   fmt.Sprintf("Fuel level at %.0f%%, %d stations found along the route", *fuelLevel, len(stations.Stations)),
		}

		if len(stations.Stations) == 0 {
			alert.Severity = entity.SeverityCritical
			alert.Message = fmt.Sprintf("Fuel level at %.0f%% and no station found along the route", *fuelLevel)
		}

		alerts = append(alerts, alert)
	}

	if trafficFactor >= cfg.HeavyTrafficFactor {
		alerts = append(alerts, entity.Alert{
			AlertType: entity.AlertTraffic,
			Severity:  entity.SeverityInfo,
			Message:   fmt.Sprintf("Heavy traffic expected, travel time scaled by %.1fx", trafficFactor),
		})
	}

	if stations.Degraded() {
		alerts = append(alerts, entity.Alert{
			AlertType: entity.AlertStationSearchDegraded,
			Severity:  entity.SeverityInfo,
			Message:   fmt.Sprintf("Station search incomplete: %d of %d queries failed", stations.Failed, stations.Queried),
		})
	}

	return alerts
}
