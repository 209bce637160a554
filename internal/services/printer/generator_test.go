package printer

import (
	"bytes"
	"testing"

	"github.com/grovetrack/importflow/internal/models"
)

func TestShipmentLabelPDF(t *testing.T) {
	s := &models.Shipment{
		ID:           "uuid-1",
		Supplier:     "Acme Trading Co",
		OrderRef:     "PO-2025-0042",
		ProductName:  "Bearing housings",
		Quantity:     1200,
		WeekNumber:   34,
		LatestStatus: models.StatusReceived,
	}

	pdf, err := ShipmentLabelPDF(s)
	if err != nil {
		t.Fatalf("Failed to generate label: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("Output is not a PDF (starts with %q)", pdf[:4])
	}
}

func TestCostEstimatePDF(t *testing.T) {
	est := &models.ImportCostEstimate{
		ID:                      "uuid-2",
		Supplier:                "Acme Trading Co",
		RoeOrigin:               18.25,
		OriginChargeUsd:         2400,
		OriginChargeZar:         43800,
		CartageZar:              3100,
		AgencyFeeZar:            3010,
		TotalShippingCostZar:    46900,
		TotalInWarehouseCostZar: 62810,
		TotalGrossWeightKg:      2150,
		CostPerKgZar:            29.21,
		FeeSchedule:             "agency",
	}

	pdf, err := CostEstimatePDF(est)
	if err != nil {
		t.Fatalf("Failed to generate report: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("Output is not a PDF (starts with %q)", pdf[:4])
	}
}
