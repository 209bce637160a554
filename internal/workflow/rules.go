package workflow

import "github.com/grovetrack/importflow/internal/models"

// ArrivalStates are the site-specific arrival statuses from which the
// post-arrival workflow may begin.
var ArrivalStates = []models.ShipmentStatus{
	models.StatusArrivedPTA,
	models.StatusArrivedKLM,
	models.StatusArrivedOffsite,
}

// AmendTargets are the statuses an administrator may amend a shipment back
// to, bypassing the forward-only chain. Deliberately limited to pre-workflow
// states so the guarded chain cannot be forged forwards.
var AmendTargets = []models.ShipmentStatus{
	models.StatusPlanning,
	models.StatusInTransit,
	models.StatusArrivedPTA,
	models.StatusArrivedKLM,
	models.StatusArrivedOffsite,
}

// IsArrival reports whether s is one of the arrival statuses.
func IsArrival(s models.ShipmentStatus) bool {
	for _, a := range ArrivalStates {
		if s == a {
			return true
		}
	}
	return false
}

// IsAmendTarget reports whether s is a legal amend-status target.
func IsAmendTarget(s models.ShipmentStatus) bool {
	for _, a := range AmendTargets {
		if s == a {
			return true
		}
	}
	return false
}

// StartInspectionSources returns the states from which an inspection may
// start: the normal chain entry plus re-inspection after a failure.
func StartInspectionSources() []models.ShipmentStatus {
	return []models.ShipmentStatus{
		models.StatusInspectionPending,
		models.StatusInspectionFailed,
	}
}

// RejectableFrom reports whether a shipment in status s may be rejected.
// Rejection is the escape hatch from any live state; terminal states stay put.
func RejectableFrom(s models.ShipmentStatus) bool {
	return s != models.StatusStored && s != models.StatusRejected
}
