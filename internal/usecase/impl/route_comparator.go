package impl

import (
	"greenroute/config"
	"greenroute/internal/domain/entity"
	"greenroute/internal/infra/routing/planner"
)

// EcoFriendly compares a green cost against the fastest distance expressed in meters
func EcoFriendly(greenCost, fastestDistanceKm float64) bool {
	return greenCost < fastestDistanceKm*1000
}

// CompareRoutes summarizes the green route against the fastest one.
//
// In literal mode the green cost is compared with the fastest distance. In
// consistent mode it is compared with fastestGreenCost, the fastest path scored
// by the same cost model.
func CompareRoutes(fastest, green *entity.Route, unitMode string, fastestGreenCost float64) *entity.Savings {
	fm, gm := fastest.Metrics, green.Metrics

	eco := EcoFriendly(gm.GreenCost, fm.DistanceKm)
	if unitMode == config.UnitModeConsistent {
		eco = gm.GreenCost < fastestGreenCost
	}

	return &entity.Savings{
		FastestDistanceKm:    fm.DistanceKm,
		GreenDistanceKm:      gm.DistanceKm,
		GreenCost:            gm.GreenCost,
		EcoFriendly:          eco,
		DistanceDifferenceKm: planner.Round2(gm.DistanceKm - fm.DistanceKm),
		TimeDifferenceMin:    planner.Round2(gm.EstimatedTimeMin - fm.EstimatedTimeMin),
	}
}
