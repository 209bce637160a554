package costing

import (
	"testing"

	"github.com/grovetrack/importflow/internal/models"
)

func mustSchedule(t *testing.T, code string) FeeSchedule {
	t.Helper()
	s, err := ResolveSchedule(code)
	if err != nil {
		t.Fatalf("ResolveSchedule(%q): %v", code, err)
	}
	return s
}

func TestOriginChargeConversion(t *testing.T) {
	est := &models.ImportCostEstimate{
		OriginChargeUsd: 100,
		RoeOrigin:       18,
	}
	CalculateAllTotals(est, mustSchedule(t, ScheduleAgency))

	if est.OriginChargeZar != 1800.00 {
		t.Errorf("OriginChargeZar: got %.2f, want 1800.00", est.OriginChargeZar)
	}
	// USD conversion flows into the shipping and warehouse totals
	if est.TotalShippingCostZar != 1800.00 {
		t.Errorf("TotalShippingCostZar: got %.2f, want 1800.00", est.TotalShippingCostZar)
	}
}

func TestOriginChargeWithEur(t *testing.T) {
	est := &models.ImportCostEstimate{
		OriginChargeUsd: 100,
		RoeOrigin:       18,
		OriginChargeEur: 50,
		RoeEur:          20,
	}
	CalculateAllTotals(est, mustSchedule(t, ScheduleAgency))

	if est.OriginChargeZar != 2800.00 {
		t.Errorf("OriginChargeZar: got %.2f, want 2800.00", est.OriginChargeZar)
	}
}

func TestAgencyFeeMinimumFloor(t *testing.T) {
	tests := []struct {
		name         string
		customsValue float64
		schedule     string
		want         float64
	}{
		{"agency floor binds", 10000, ScheduleAgency, 1187.00},
		{"agency percentage binds", 100000, ScheduleAgency, 3500.00},
		{"agency at zero customs value", 0, ScheduleAgency, 1187.00},
		{"davif floor binds", 1000, ScheduleDavif, 125.00},
		{"davif percentage binds", 100000, ScheduleDavif, 3250.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := &models.ImportCostEstimate{CustomsValueZar: tt.customsValue}
			CalculateAllTotals(est, mustSchedule(t, tt.schedule))
			if est.AgencyFeeZar != tt.want {
				t.Errorf("AgencyFeeZar: got %.2f, want %.2f", est.AgencyFeeZar, tt.want)
			}
		})
	}
}

func TestCustomsSubtotal(t *testing.T) {
	est := &models.ImportCostEstimate{
		CustomsValueZar:       100000,
		CustomsDutiesZar:      4500,
		CustomsVatZar:         15000,
		CustomsDeclarationZar: 350,
	}
	CalculateAllTotals(est, mustSchedule(t, ScheduleAgency))

	// 4500 + 15000 + 350 + 3500 (fee)
	if est.CustomsSubtotalZar != 23350.00 {
		t.Errorf("CustomsSubtotalZar: got %.2f, want 23350.00", est.CustomsSubtotalZar)
	}
}

func TestCustomsDutyNotApplicable(t *testing.T) {
	est := &models.ImportCostEstimate{
		CustomsValueZar:          100000,
		CustomsDutiesZar:         4500,
		CustomsVatZar:            15000,
		CustomsDeclarationZar:    350,
		CustomsDutyNotApplicable: true,
	}
	CalculateAllTotals(est, mustSchedule(t, ScheduleAgency))

	// Duties zeroed out: 15000 + 350 + 3500
	if est.CustomsSubtotalZar != 18850.00 {
		t.Errorf("CustomsSubtotalZar: got %.2f, want 18850.00", est.CustomsSubtotalZar)
	}
	// Raw input must survive untouched so un-flagging restores it
	if est.CustomsDutiesZar != 4500 {
		t.Errorf("CustomsDutiesZar input mutated: got %.2f", est.CustomsDutiesZar)
	}
}

func TestFullRollup(t *testing.T) {
	est := &models.ImportCostEstimate{
		RoeOrigin:       18,
		OriginChargeUsd: 1000,

		CartageZar:       2500,
		PortHandlingZar:  1800,
		DocumentationZar: 450,

		TransportToWarehouseZar: 3200,
		OffloadingZar:           800,

		CustomsValueZar:       100000,
		CustomsDutiesZar:      4500,
		CustomsVatZar:         15000,
		CustomsDeclarationZar: 350,

		TotalGrossWeightKg: 1000,
	}
	CalculateAllTotals(est, mustSchedule(t, ScheduleAgency))

	if est.OriginChargeZar != 18000.00 {
		t.Errorf("OriginChargeZar: got %.2f, want 18000.00", est.OriginChargeZar)
	}
	if est.LocalChargesSubtotalZar != 4750.00 {
		t.Errorf("LocalChargesSubtotalZar: got %.2f, want 4750.00", est.LocalChargesSubtotalZar)
	}
	if est.DestinationChargesSubtotalZar != 4000.00 {
		t.Errorf("DestinationChargesSubtotalZar: got %.2f, want 4000.00", est.DestinationChargesSubtotalZar)
	}
	if est.TotalShippingCostZar != 26750.00 {
		t.Errorf("TotalShippingCostZar: got %.2f, want 26750.00", est.TotalShippingCostZar)
	}
	if est.CustomsSubtotalZar != 23350.00 {
		t.Errorf("CustomsSubtotalZar: got %.2f, want 23350.00", est.CustomsSubtotalZar)
	}
	if est.TotalInWarehouseCostZar != 50100.00 {
		t.Errorf("TotalInWarehouseCostZar: got %.2f, want 50100.00", est.TotalInWarehouseCostZar)
	}
	if est.CostPerKgZar != 50.10 {
		t.Errorf("CostPerKgZar: got %.2f, want 50.10", est.CostPerKgZar)
	}
}

func TestCostPerKgZeroWeight(t *testing.T) {
	for _, weight := range []float64{0, -5} {
		est := &models.ImportCostEstimate{
			OriginChargeUsd:    100,
			RoeOrigin:          18,
			TotalGrossWeightKg: weight,
		}
		CalculateAllTotals(est, mustSchedule(t, ScheduleAgency))
		if est.CostPerKgZar != 0 {
			t.Errorf("CostPerKgZar with weight %.0f: got %v, want 0", weight, est.CostPerKgZar)
		}
	}
}

func TestRound2HalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.125, 1.13}, // exact binary half: rounds up, not to even
		{2.675000001, 2.68},
		{1800, 1800},
		{0.004999, 0.00},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResolveScheduleDefaultsToAgency(t *testing.T) {
	s, err := ResolveSchedule("")
	if err != nil {
		t.Fatalf("ResolveSchedule(\"\"): %v", err)
	}
	if s.Code != ScheduleAgency {
		t.Errorf("default schedule: got %s, want %s", s.Code, ScheduleAgency)
	}

	if _, err := ResolveSchedule("bogus"); err == nil {
		t.Error("expected error for unknown schedule code")
	}
}

func TestRecomputeOverwritesDerivedFields(t *testing.T) {
	est := &models.ImportCostEstimate{
		OriginChargeUsd: 100,
		RoeOrigin:       18,
		// Stale derived values a client might try to smuggle in
		TotalInWarehouseCostZar: 999999,
		CostPerKgZar:            42,
	}
	CalculateAllTotals(est, mustSchedule(t, ScheduleAgency))

	// 1800 shipping + 1187 fee-only customs subtotal
	if est.TotalInWarehouseCostZar != 2987.00 {
		t.Errorf("TotalInWarehouseCostZar: got %.2f, want 2987.00", est.TotalInWarehouseCostZar)
	}
	if est.CostPerKgZar != 0 {
		t.Errorf("CostPerKgZar: got %v, want 0 (no weight)", est.CostPerKgZar)
	}
}
