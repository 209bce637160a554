// Package costing computes landed-cost figures for an import cost estimate.
//
// The engine is a pure function over the raw charge inputs of an
// ImportCostEstimate: it overwrites every derived field from scratch, so a
// record can be recomputed at any time without drift. Missing inputs are
// zero values and simply contribute nothing.
package costing

import (
	"math"

	"github.com/grovetrack/importflow/internal/models"
)

// Round2 rounds a monetary value to 2 decimal places, half away from zero
// (round-half-up for the positive amounts used here).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CalculateAllTotals recomputes every derived field of the estimate in place.
// The fee schedule must already be resolved by the caller; this keeps the
// computation free of lookups and errors.
func CalculateAllTotals(est *models.ImportCostEstimate, sched FeeSchedule) {
	// 1. Origin charges converted to ZAR at the booked rates of exchange
	est.OriginChargeZar = Round2(est.OriginChargeUsd*est.RoeOrigin + est.OriginChargeEur*est.RoeEur)

	// 2. Local charge line items
	est.LocalChargesSubtotalZar = Round2(est.CartageZar +
		est.PortHandlingZar +
		est.DocumentationZar +
		est.ContainerDepositZar +
		est.FacilityFeeZar)

	// 3. Destination charge line items
	est.DestinationChargesSubtotalZar = Round2(est.TransportToWarehouseZar +
		est.OffloadingZar +
		est.StorageZar)

	// 4. Clearing-agent fee: percentage of customs value with a minimum floor
	est.AgencyFeeZar = sched.Fee(est.CustomsValueZar)

	// 5. Customs subtotal; duties drop out entirely when marked not applicable
	duties := est.CustomsDutiesZar
	if est.CustomsDutyNotApplicable {
		duties = 0
	}
	est.CustomsSubtotalZar = Round2(duties +
		est.CustomsVatZar +
		est.CustomsDeclarationZar +
		est.AgencyFeeZar)

	// 6. Total shipping cost
	est.TotalShippingCostZar = Round2(est.OriginChargeZar +
		est.LocalChargesSubtotalZar +
		est.DestinationChargesSubtotalZar)

	// 7. Total in-warehouse cost
	est.TotalInWarehouseCostZar = Round2(est.TotalShippingCostZar + est.CustomsSubtotalZar)

	// 8. Cost per kg; zero weight must yield zero, never Inf or NaN
	if est.TotalGrossWeightKg > 0 {
		est.CostPerKgZar = Round2(est.TotalInWarehouseCostZar / est.TotalGrossWeightKg)
	} else {
		est.CostPerKgZar = 0
	}
}
